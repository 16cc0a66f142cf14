package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/clubware/askbridge/internal/telegram"
)

// NewReloadRoomsHandler returns the handler for the admin /reload_rooms
// command, which refreshes the room directory snapshot from the database.
func NewReloadRoomsHandler(deps HandlerDeps) bot.HandlerFunc {
	return reloadRoomsHandler{deps}.Handle
}

type reloadRoomsHandler struct {
	deps HandlerDeps
}

func (h reloadRoomsHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "reload_rooms")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	count, err := h.deps.Rooms.Reload(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to reload room directory", "error", err)
		h.send(ctx, chatID, telegram.Escape(h.deps.Config.Bot.Messages.GeneralError))
		return
	}

	h.send(ctx, chatID, telegram.Escape(fmt.Sprintf(h.deps.Config.Bot.Messages.RoomsReloaded, count)))
}

func (h reloadRoomsHandler) send(ctx context.Context, chatID int64, text string) {
	if _, err := h.deps.Sender.Send(ctx, telegram.Outgoing{ChatID: chatID, Text: text}); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send reload reply", "chat_id", chatID, "error", err)
	}
}
