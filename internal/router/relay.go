package router

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot/models"

	"github.com/clubware/askbridge/internal/database"
)

// Relay watches the discussion group for the platform's automatic forwards
// of channel posts and records the forwarded copy's message id against the
// originating question. That id is what room replies get threaded under.
type Relay struct {
	store  database.Store
	logger *slog.Logger

	channelID        int64
	discussionChatID int64
}

// NewRelay creates a relay listener for the given channel/discussion pair.
func NewRelay(store database.Store, channelID, discussionChatID int64, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		store:            store,
		logger:           logger.With("component", "relay"),
		channelID:        channelID,
		discussionChatID: discussionChatID,
	}
}

// Observe inspects a message and, when it is the automatic forward of one
// of our channel posts into the discussion group, links it to its question.
// It reports whether the message was such a forward.
func (r *Relay) Observe(ctx context.Context, msg *models.Message) bool {
	if msg == nil || !msg.IsAutomaticForward {
		return false
	}
	if r.discussionChatID == 0 || msg.Chat.ID != r.discussionChatID {
		return false
	}

	origin := channelOrigin(msg)
	if origin == nil || origin.Chat.ID != r.channelID {
		return false
	}

	err := r.store.SetDiscussionMessage(ctx, origin.MessageID, msg.ID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		// Forward of a channel post we don't track (predates the bot, or a
		// manual channel post). Normal.
		r.logger.DebugContext(ctx, "Discussion forward matched no tracked question",
			"channel_message_id", origin.MessageID)
	case err != nil:
		r.logger.ErrorContext(ctx, "Failed to link discussion forward",
			"channel_message_id", origin.MessageID, "discussion_message_id", msg.ID, "error", err)
	default:
		r.logger.InfoContext(ctx, "Linked discussion forward",
			"channel_message_id", origin.MessageID, "discussion_message_id", msg.ID)
	}
	return true
}
