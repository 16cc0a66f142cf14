package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/clubware/askbridge/internal/database"
	"github.com/clubware/askbridge/internal/telegram"
)

// NewAddRoomHandler returns the handler for the admin /add_room command:
// /add_room <chat_id> <name...>
// Chat id 0 registers a room without a chat surface (listed to the user
// but never cross-posted to). Re-adding an existing name re-points it.
func NewAddRoomHandler(deps HandlerDeps) bot.HandlerFunc {
	return addRoomHandler{deps}.Handle
}

type addRoomHandler struct {
	deps HandlerDeps
}

func (h addRoomHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "add_room")
	if update.Message == nil {
		return
	}
	msg := update.Message

	args := strings.Fields(msg.Text)
	if len(args) < 3 {
		h.reply(ctx, msg.Chat.ID, "Usage: /add_room <chat_id> <name>")
		return
	}

	chatID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, "Bad chat id: "+telegram.Escape(args[1]))
		return
	}
	name := strings.Join(args[2:], " ")

	room := &database.Room{Name: name, ChatID: chatID}
	if err := h.deps.Store.SaveRoom(ctx, room); err != nil {
		log.ErrorContext(ctx, "Failed to save room", "name", name, "error", err)
		h.reply(ctx, msg.Chat.ID, telegram.Escape(h.deps.Config.Bot.Messages.GeneralError))
		return
	}

	count, err := h.deps.Rooms.Reload(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to reload room directory after save", "error", err)
		h.reply(ctx, msg.Chat.ID, telegram.Escape(h.deps.Config.Bot.Messages.GeneralError))
		return
	}

	log.InfoContext(ctx, "Room saved", "name", name, "chat_id", chatID)
	h.reply(ctx, msg.Chat.ID, telegram.Escape(fmt.Sprintf("Room %q saved. %d rooms active.", name, count)))
}

func (h addRoomHandler) reply(ctx context.Context, chatID int64, text string) {
	if _, err := h.deps.Sender.Send(ctx, telegram.Outgoing{ChatID: chatID, Text: text}); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send add_room reply", "chat_id", chatID, "error", err)
	}
}
