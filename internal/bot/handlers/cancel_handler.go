package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/clubware/askbridge/internal/telegram"
)

// NewCancelHandler returns a handler for the /cancel command, aborting an
// in-flight conversation at any point.
func NewCancelHandler(deps HandlerDeps) bot.HandlerFunc {
	return cancelHandler{deps}.Handle
}

type cancelHandler struct {
	deps HandlerDeps
}

func (h cancelHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "cancel")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Cancel handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	msg := update.Message
	msgs := h.deps.Config.Bot.Messages

	sess, err := h.deps.Sessions.Get(ctx, msg.From.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load session", "user_id", msg.From.ID, "error", err)
		return
	}

	text := msgs.NothingToCancel
	if sess != nil {
		if err := h.deps.Sessions.Delete(ctx, msg.From.ID); err != nil {
			log.ErrorContext(ctx, "Failed to delete session", "user_id", msg.From.ID, "error", err)
		}
		text = msgs.Cancelled
		log.InfoContext(ctx, "Conversation cancelled", "user_id", msg.From.ID)
	}

	if _, err := h.deps.Sender.Send(ctx, telegram.Outgoing{
		ChatID:         msg.Chat.ID,
		Text:           telegram.Escape(text),
		RemoveKeyboard: true,
	}); err != nil {
		log.ErrorContext(ctx, "Failed to send cancel reply", "chat_id", msg.Chat.ID, "error", err)
	}
}
