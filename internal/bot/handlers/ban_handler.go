package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/clubware/askbridge/internal/database"
	"github.com/clubware/askbridge/internal/telegram"
)

// NewBanHandler returns the handler for the admin /ban command:
// /ban <telegram_id> <days> [reason...]
func NewBanHandler(deps HandlerDeps) bot.HandlerFunc {
	return banHandler{deps}.HandleBan
}

// NewUnbanHandler returns the handler for the admin /unban command:
// /unban <telegram_id>
func NewUnbanHandler(deps HandlerDeps) bot.HandlerFunc {
	return banHandler{deps}.HandleUnban
}

type banHandler struct {
	deps HandlerDeps
}

func (h banHandler) HandleBan(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "ban")
	if update.Message == nil {
		return
	}
	msg := update.Message

	args := strings.Fields(msg.Text)
	if len(args) < 3 {
		h.reply(ctx, msg.Chat.ID, "Usage: /ban <telegram_id> <days> [reason]")
		return
	}

	telegramID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, "Bad telegram id: "+telegram.Escape(args[1]))
		return
	}
	days, err := strconv.Atoi(args[2])
	if err != nil || days <= 0 {
		h.reply(ctx, msg.Chat.ID, "Bad day count: "+telegram.Escape(args[2]))
		return
	}
	reason := strings.Join(args[3:], " ")

	until := time.Now().UTC().AddDate(0, 0, days)
	if err := h.deps.Store.SetUserBan(ctx, telegramID, &until, reason); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.reply(ctx, msg.Chat.ID, fmt.Sprintf("No member linked to telegram id %d.", telegramID))
			return
		}
		log.ErrorContext(ctx, "Failed to set ban", "telegram_id", telegramID, "error", err)
		h.reply(ctx, msg.Chat.ID, telegram.Escape(h.deps.Config.Bot.Messages.GeneralError))
		return
	}

	log.InfoContext(ctx, "User banned", "telegram_id", telegramID, "until", until, "reason", reason)
	h.reply(ctx, msg.Chat.ID, fmt.Sprintf("Banned %d until %s.", telegramID, until.Format("January 2, 2006")))
}

func (h banHandler) HandleUnban(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "unban")
	if update.Message == nil {
		return
	}
	msg := update.Message

	args := strings.Fields(msg.Text)
	if len(args) < 2 {
		h.reply(ctx, msg.Chat.ID, "Usage: /unban <telegram_id>")
		return
	}

	telegramID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, "Bad telegram id: "+telegram.Escape(args[1]))
		return
	}

	if err := h.deps.Store.SetUserBan(ctx, telegramID, nil, ""); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.reply(ctx, msg.Chat.ID, fmt.Sprintf("No member linked to telegram id %d.", telegramID))
			return
		}
		log.ErrorContext(ctx, "Failed to clear ban", "telegram_id", telegramID, "error", err)
		h.reply(ctx, msg.Chat.ID, telegram.Escape(h.deps.Config.Bot.Messages.GeneralError))
		return
	}

	log.InfoContext(ctx, "User unbanned", "telegram_id", telegramID)
	h.reply(ctx, msg.Chat.ID, fmt.Sprintf("Unbanned %d.", telegramID))
}

func (h banHandler) reply(ctx context.Context, chatID int64, text string) {
	if _, err := h.deps.Sender.Send(ctx, telegram.Outgoing{ChatID: chatID, Text: text}); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send ban reply", "chat_id", chatID, "error", err)
	}
}
