package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Outgoing describes one message to send. Text is HTML.
type Outgoing struct {
	ChatID int64
	Text   string
	// ReplyTo anchors the message to an existing message id; zero for none.
	ReplyTo int
	// Keyboard rows build a one-time reply keyboard; nil sends no markup.
	Keyboard [][]string
	// RemoveKeyboard clears any reply keyboard. Ignored when Keyboard is set.
	RemoveKeyboard bool
	DisablePreview bool
}

// Sender is the narrow outbound transport used by the conversation handler,
// the publisher, and the reply router. It exists so those components can be
// tested without a live bot.
type Sender interface {
	// Send delivers a message and returns the id assigned to it.
	Send(ctx context.Context, out Outgoing) (int, error)
	// Edit replaces the text of an already sent message.
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
}

type botSender struct {
	bot    *bot.Bot
	logger *slog.Logger
}

// NewSender wraps a bot instance as a Sender. All messages are sent with
// HTML parse mode.
func NewSender(b *bot.Bot, logger *slog.Logger) Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &botSender{bot: b, logger: logger.With("component", "sender")}
}

func (s *botSender) Send(ctx context.Context, out Outgoing) (int, error) {
	params := &bot.SendMessageParams{
		ChatID:    out.ChatID,
		Text:      out.Text,
		ParseMode: models.ParseModeHTML,
	}
	if out.ReplyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: out.ReplyTo}
	}
	if out.DisablePreview {
		params.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: bot.True()}
	}

	switch {
	case len(out.Keyboard) > 0:
		rows := make([][]models.KeyboardButton, 0, len(out.Keyboard))
		for _, labels := range out.Keyboard {
			row := make([]models.KeyboardButton, 0, len(labels))
			for _, label := range labels {
				row = append(row, models.KeyboardButton{Text: label})
			}
			rows = append(rows, row)
		}
		params.ReplyMarkup = &models.ReplyKeyboardMarkup{
			Keyboard:        rows,
			ResizeKeyboard:  true,
			OneTimeKeyboard: true,
		}
	case out.RemoveKeyboard:
		params.ReplyMarkup = &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	}

	sent, err := s.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to send message to chat %d: %w", out.ChatID, err)
	}

	s.logger.DebugContext(ctx, "Sent message", "chat_id", out.ChatID, "message_id", sent.ID)
	return sent.ID, nil
}

func (s *botSender) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := s.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to edit message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}
