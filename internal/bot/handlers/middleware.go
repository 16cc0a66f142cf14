// Package handlers contains Telegram command and message handlers for the
// question intake bot, along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/clubware/askbridge/internal/telegram"
)

// AdminOnly creates a middleware that restricts a handler to the configured
// admin user. Everyone else gets a refusal message.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, b, update)
				return
			}

			if update.Message.From.ID != deps.Config.Telegram.AdminUserID {
				log := deps.Logger.With("middleware", "admin_only")
				log.WarnContext(ctx, "Unauthorized admin command",
					"user_id", update.Message.From.ID, "chat_id", update.Message.Chat.ID)

				if _, err := deps.Sender.Send(ctx, telegram.Outgoing{
					ChatID: update.Message.Chat.ID,
					Text:   telegram.Escape(deps.Config.Bot.Messages.NotAuthorized),
				}); err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message",
						"error", err, "chat_id", update.Message.Chat.ID)
				}
				return
			}

			next(ctx, b, update)
		}
	}
}
