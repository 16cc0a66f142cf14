package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/clubware/askbridge/internal/conversation"
	"github.com/clubware/askbridge/internal/telegram"
)

// NewDispatchHandler returns the catch-all message handler. It routes each
// non-command message to the surface it belongs to: the discussion-forward
// relay, the reply router, or the user's conversation.
func NewDispatchHandler(deps HandlerDeps) bot.HandlerFunc {
	return dispatchHandler{deps}.Handle
}

type dispatchHandler struct {
	deps HandlerDeps
}

func (h dispatchHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	if h.deps.Relay.Observe(ctx, msg) {
		return
	}
	if h.deps.Router.Route(ctx, msg) {
		return
	}
	if msg.Chat.Type == models.ChatTypePrivate && msg.From != nil {
		h.converse(ctx, msg)
	}
}

// converse advances the sender's conversation session with one input. Any
// unexpected failure aborts the session rather than leaving it wedged.
func (h dispatchHandler) converse(ctx context.Context, msg *models.Message) {
	log := h.deps.Logger.With("handler", "conversation", "user_id", msg.From.ID)
	msgs := h.deps.Config.Bot.Messages

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "Panic during conversation step", "panic", r)
			h.abort(ctx, msg)
		}
	}()

	sess, err := h.deps.Sessions.Get(ctx, msg.From.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load session", "error", err)
		h.abort(ctx, msg)
		return
	}
	if sess == nil {
		// Stray private message with no conversation in flight.
		h.send(ctx, telegram.Outgoing{ChatID: msg.Chat.ID, Text: telegram.Escape(msgs.Help)})
		return
	}

	effects, err := h.deps.Machine.Step(sess, msg.Text)
	if err != nil {
		if errors.Is(err, conversation.ErrUnexpectedInput) {
			log.WarnContext(ctx, "Conversation aborted on contract violation", "error", err)
		} else {
			log.ErrorContext(ctx, "Conversation step failed", "error", err)
		}
		h.abort(ctx, msg)
		return
	}

	ended := false
	for _, effect := range effects {
		switch e := effect.(type) {
		case conversation.Reply:
			h.send(ctx, telegram.Outgoing{
				ChatID:         msg.Chat.ID,
				Text:           e.Text,
				Keyboard:       e.Keyboard,
				RemoveKeyboard: e.RemoveKeyboard,
			})
		case conversation.Publish:
			h.publish(ctx, log, msg, e.Draft)
		case conversation.End:
			ended = true
			if err := h.deps.Sessions.Delete(ctx, msg.From.ID); err != nil {
				log.ErrorContext(ctx, "Failed to delete finished session", "error", err)
			}
		}
	}

	if !ended {
		if err := h.deps.Sessions.Put(ctx, msg.From.ID, sess); err != nil {
			log.ErrorContext(ctx, "Failed to store session", "error", err)
			h.abort(ctx, msg)
		}
	}
}

// publish runs the fan-out pipeline for a confirmed draft and reports the
// outcome to the user. The channel post is the mandatory step; its failure
// is the one the user must hear about.
func (h dispatchHandler) publish(ctx context.Context, log *slog.Logger, msg *models.Message, draft conversation.Draft) {
	msgs := h.deps.Config.Bot.Messages

	author, err := h.deps.Store.UserByTelegramID(ctx, msg.From.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to resolve author at publish time", "error", err)
		h.send(ctx, telegram.Outgoing{
			ChatID:         msg.Chat.ID,
			Text:           telegram.Escape(msgs.PublishFailed),
			RemoveKeyboard: true,
		})
		return
	}

	permalink, err := h.deps.Publisher.Publish(ctx, author, draft)
	if err != nil {
		log.ErrorContext(ctx, "Publish failed", "error", err)
		h.send(ctx, telegram.Outgoing{
			ChatID:         msg.Chat.ID,
			Text:           telegram.Escape(msgs.PublishFailed),
			RemoveKeyboard: true,
		})
		return
	}

	h.send(ctx, telegram.Outgoing{
		ChatID:         msg.Chat.ID,
		Text:           telegram.Escape(fmt.Sprintf(msgs.Published, permalink)),
		RemoveKeyboard: true,
	})
}

// abort forces the session to its terminal state with a generic apology.
func (h dispatchHandler) abort(ctx context.Context, msg *models.Message) {
	if err := h.deps.Sessions.Delete(ctx, msg.From.ID); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to delete session during abort",
			"user_id", msg.From.ID, "error", err)
	}
	h.send(ctx, telegram.Outgoing{
		ChatID:         msg.Chat.ID,
		Text:           telegram.Escape(h.deps.Config.Bot.Messages.GeneralError),
		RemoveKeyboard: true,
	})
}

func (h dispatchHandler) send(ctx context.Context, out telegram.Outgoing) {
	if _, err := h.deps.Sender.Send(ctx, out); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send conversation reply",
			"chat_id", out.ChatID, "error", err)
	}
}
