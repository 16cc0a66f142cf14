package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/clubware/askbridge/internal/conversation"
	"github.com/clubware/askbridge/internal/database"
	"github.com/clubware/askbridge/internal/telegram"
)

// NewStartHandler returns the handler for the /start command: the entry
// gate of the question conversation.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

type startHandler struct {
	deps HandlerDeps
}

// Handle checks the hard entry conditions (known member, not banned, under
// the daily publish limit) and, if all pass, opens a fresh conversation
// session. None of the refusals enter the state machine.
func (h startHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	msg := update.Message
	if msg.Chat.Type != models.ChatTypePrivate {
		log.DebugContext(ctx, "Ignoring /start outside a private chat", "chat_id", msg.Chat.ID)
		return
	}

	msgs := h.deps.Config.Bot.Messages
	now := time.Now().UTC()

	user, err := h.deps.Store.UserByTelegramID(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.reply(ctx, msg.Chat.ID, telegram.Escape(msgs.NotMember), nil)
			return
		}
		log.ErrorContext(ctx, "Failed to resolve user", "user_id", msg.From.ID, "error", err)
		h.reply(ctx, msg.Chat.ID, telegram.Escape(msgs.GeneralError), nil)
		return
	}

	if user.IsBanned(now) {
		log.InfoContext(ctx, "Banned user tried to start a conversation",
			"user_id", msg.From.ID, "banned_until", user.BannedUntil.Time)
		text := fmt.Sprintf(msgs.Banned, user.BannedUntil.Time.Format("January 2, 2006"))
		h.reply(ctx, msg.Chat.ID, telegram.Escape(text), nil)
		return
	}

	limit := h.deps.Config.Bot.DailyPublishLimit
	published, err := h.deps.Store.CountPublishedSince(ctx, msg.From.ID, now.Add(-24*time.Hour))
	if err != nil {
		log.ErrorContext(ctx, "Failed to count recent questions", "user_id", msg.From.ID, "error", err)
		h.reply(ctx, msg.Chat.ID, telegram.Escape(msgs.GeneralError), nil)
		return
	}
	if published >= limit {
		log.InfoContext(ctx, "User over the daily publish limit",
			"user_id", msg.From.ID, "published", published, "limit", limit)
		h.reply(ctx, msg.Chat.ID, telegram.Escape(fmt.Sprintf(msgs.RateLimited, limit)), nil)
		return
	}

	sess := conversation.NewSession()
	if err := h.deps.Sessions.Put(ctx, msg.From.ID, sess); err != nil {
		log.ErrorContext(ctx, "Failed to store new session", "user_id", msg.From.ID, "error", err)
		h.reply(ctx, msg.Chat.ID, telegram.Escape(msgs.GeneralError), nil)
		return
	}

	log.InfoContext(ctx, "Conversation started", "user_id", msg.From.ID)
	h.reply(ctx, msg.Chat.ID, telegram.Escape(msgs.Welcome), h.deps.Machine.MenuKeyboard())
}

func (h startHandler) reply(ctx context.Context, chatID int64, text string, keyboard [][]string) {
	if _, err := h.deps.Sender.Send(ctx, telegram.Outgoing{
		ChatID:   chatID,
		Text:     text,
		Keyboard: keyboard,
	}); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send start reply", "chat_id", chatID, "error", err)
	}
}
