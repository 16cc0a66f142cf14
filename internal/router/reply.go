// Package router resolves inbound replies on tracked chat surfaces back to
// their originating question and re-emits them to the interested parties.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/clubware/askbridge/internal/database"
	"github.com/clubware/askbridge/internal/directory"
	"github.com/clubware/askbridge/internal/telegram"
)

// Router dispatches one inbound reply event to at most one resolution
// branch: the channel/discussion surface or a room chat. Misses are normal
// and silent.
type Router struct {
	store  database.Store
	sender telegram.Sender
	rooms  *directory.Rooms
	logger *slog.Logger

	channelID        int64
	discussionChatID int64
}

// NewRouter creates a reply router over the given surfaces.
func NewRouter(
	store database.Store,
	sender telegram.Sender,
	rooms *directory.Rooms,
	channelID, discussionChatID int64,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		store:            store,
		sender:           sender,
		rooms:            rooms,
		logger:           logger.With("component", "reply_router"),
		channelID:        channelID,
		discussionChatID: discussionChatID,
	}
}

// Route inspects an inbound message and, when it is a reply correlating to
// a tracked question, notifies the asker and cross-posts as needed. It
// reports whether the message resolved to a question.
func (r *Router) Route(ctx context.Context, msg *models.Message) bool {
	if msg == nil || msg.ReplyToMessage == nil {
		return false
	}

	// A reply under the channel's auto-forwarded copy in the discussion
	// group carries the original channel post as its forward origin.
	if origin := channelOrigin(msg.ReplyToMessage); origin != nil && origin.Chat.ID == r.channelID {
		return r.routeChannelReply(ctx, msg, origin.MessageID)
	}

	if r.isRoomChat(msg.Chat.ID) {
		return r.routeRoomReply(ctx, msg)
	}

	return false
}

func (r *Router) routeChannelReply(ctx context.Context, msg *models.Message, channelMessageID int) bool {
	q, err := r.store.QuestionByChannelMessageID(ctx, channelMessageID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			r.logger.DebugContext(ctx, "Channel reply matched no tracked question",
				"channel_message_id", channelMessageID)
		} else {
			r.logger.ErrorContext(ctx, "Channel reply lookup failed",
				"channel_message_id", channelMessageID, "error", err)
		}
		return false
	}

	r.notifyAuthor(ctx, q, msg, "")
	return true
}

func (r *Router) routeRoomReply(ctx context.Context, msg *models.Message) bool {
	q, err := r.store.QuestionByRoomMessage(ctx, msg.Chat.ID, msg.ReplyToMessage.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			r.logger.DebugContext(ctx, "Room reply matched no tracked question",
				"chat_id", msg.Chat.ID, "reply_to", msg.ReplyToMessage.ID)
		} else {
			r.logger.ErrorContext(ctx, "Room reply lookup failed",
				"chat_id", msg.Chat.ID, "reply_to", msg.ReplyToMessage.ID, "error", err)
		}
		return false
	}

	r.notifyAuthor(ctx, q, msg, " in the room chat")
	r.forwardToDiscussion(ctx, q, msg)
	r.acknowledgeInRoom(ctx, q, msg)
	return true
}

// notifyAuthor sends the asker a private notification with the reply text
// and a link to it. Self-replies produce no notification.
func (r *Router) notifyAuthor(ctx context.Context, q *database.Question, msg *models.Message, sourceLabel string) {
	if !q.AuthorTelegramID.Valid {
		r.logger.DebugContext(ctx, "Question has no author to notify", "question_id", q.ID)
		return
	}
	if msg.From != nil && msg.From.ID == q.AuthorTelegramID.Int64 {
		r.logger.DebugContext(ctx, "Skipping self-reply notification", "question_id", q.ID)
		return
	}

	text := fmt.Sprintf("%s replied%s to your question %s:\n\n%s\n\n%s",
		telegram.Escape(senderName(msg)),
		sourceLabel,
		telegram.Bold(q.Title),
		telegram.Escape(msg.Text),
		telegram.Link(telegram.MessageLink(msg.Chat.ID, msg.ID), "Go to the reply"),
	)

	if _, err := r.sender.Send(ctx, telegram.Outgoing{
		ChatID:         q.AuthorTelegramID.Int64,
		Text:           text,
		DisablePreview: true,
	}); err != nil {
		r.logger.WarnContext(ctx, "Failed to notify question author",
			"question_id", q.ID, "author_telegram_id", q.AuthorTelegramID.Int64, "error", err)
	}
}

// forwardToDiscussion mirrors a room-chat reply into the channel's
// discussion thread so channel readers see room activity. Best effort.
func (r *Router) forwardToDiscussion(ctx context.Context, q *database.Question, msg *models.Message) {
	if r.discussionChatID == 0 {
		return
	}
	if !q.DiscussionMessageID.Valid {
		r.logger.DebugContext(ctx, "Discussion thread unknown for question, skipping forward",
			"question_id", q.ID)
		return
	}

	text := fmt.Sprintf("%s replied in the room chat:\n\n%s",
		telegram.Escape(senderName(msg)), telegram.Escape(msg.Text))

	if _, err := r.sender.Send(ctx, telegram.Outgoing{
		ChatID:  r.discussionChatID,
		Text:    text,
		ReplyTo: int(q.DiscussionMessageID.Int64),
	}); err != nil {
		r.logger.WarnContext(ctx, "Failed to forward room reply to discussion thread",
			"question_id", q.ID, "error", err)
	}
}

// acknowledgeInRoom posts a short confirmation under the room reply linking
// to the channel copy. Best effort.
func (r *Router) acknowledgeInRoom(ctx context.Context, q *database.Question, msg *models.Message) {
	if !q.ChannelMessageID.Valid {
		return
	}

	text := "Answered ✅ — " + telegram.Link(
		telegram.MessageLink(r.channelID, int(q.ChannelMessageID.Int64)),
		"see it in the question channel",
	)

	if _, err := r.sender.Send(ctx, telegram.Outgoing{
		ChatID:         msg.Chat.ID,
		Text:           text,
		ReplyTo:        msg.ID,
		DisablePreview: true,
	}); err != nil {
		r.logger.WarnContext(ctx, "Failed to acknowledge reply in room chat",
			"question_id", q.ID, "chat_id", msg.Chat.ID, "error", err)
	}
}

func (r *Router) isRoomChat(chatID int64) bool {
	for _, name := range r.rooms.Names() {
		if room, ok := r.rooms.ByName(name); ok && room.ChatID == chatID {
			return true
		}
	}
	return false
}

// channelOrigin returns the channel forward origin of a message, or nil.
func channelOrigin(msg *models.Message) *models.MessageOriginChannel {
	if msg == nil || msg.ForwardOrigin == nil {
		return nil
	}
	if msg.ForwardOrigin.Type != models.MessageOriginTypeChannel {
		return nil
	}
	return msg.ForwardOrigin.MessageOriginChannel
}

func senderName(msg *models.Message) string {
	if msg.From == nil {
		return "Someone"
	}
	name := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	if name == "" {
		name = msg.From.Username
	}
	if name == "" {
		name = "Someone"
	}
	return name
}
