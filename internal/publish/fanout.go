// Package publish turns a completed draft into a persisted Question and
// fans it out to the chat surfaces: optionally a room chat, and always the
// public question channel.
package publish

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clubware/askbridge/internal/conversation"
	"github.com/clubware/askbridge/internal/database"
	"github.com/clubware/askbridge/internal/directory"
	"github.com/clubware/askbridge/internal/telegram"
)

// Publisher implements the publication pipeline. Step order is strict:
// persist first (so a failed publish still leaves an auditable row), then
// room post (best effort), then channel post (mandatory), then the cosmetic
// room-message backlink edit.
type Publisher struct {
	store  database.Store
	sender telegram.Sender
	rooms  *directory.Rooms
	logger *slog.Logger

	channelID        int64
	editRoomBacklink bool
}

// NewPublisher creates a publisher posting to the given channel.
func NewPublisher(
	store database.Store,
	sender telegram.Sender,
	rooms *directory.Rooms,
	channelID int64,
	editRoomBacklink bool,
	logger *slog.Logger,
) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		store:            store,
		sender:           sender,
		rooms:            rooms,
		logger:           logger.With("component", "publisher"),
		channelID:        channelID,
		editRoomBacklink: editRoomBacklink,
	}
}

// Publish persists the question, posts it to its surfaces, records the
// correlation ids, and returns the public permalink of the channel post.
// A room-post failure degrades to a channel-only publish; a channel-post
// failure is returned to the caller, with the question row kept.
func (p *Publisher) Publish(ctx context.Context, author *database.User, draft conversation.Draft) (string, error) {
	q := &database.Question{
		AuthorID:         sql.NullInt64{Int64: author.ID, Valid: true},
		AuthorTelegramID: sql.NullInt64{Int64: author.TelegramID, Valid: true},
		Title:            strings.TrimSpace(draft.Title),
		Body:             strings.TrimSpace(draft.Body),
		Tags:             strings.TrimSpace(draft.Tags),
	}
	if err := p.store.CreateQuestion(ctx, q); err != nil {
		return "", fmt.Errorf("failed to persist question: %w", err)
	}

	log := p.logger.With("question_id", q.ID)
	baseText := composeText(author, q)

	roomChatID, roomMessageID, roomPosted := p.postToRoom(ctx, log, q, draft.Room, baseText)

	channelText := baseText
	if roomPosted {
		channelText += "\n\n" + telegram.Link(
			telegram.MessageLink(roomChatID, roomMessageID),
			fmt.Sprintf("Discussion in the %s room", draft.Room),
		)
	}

	channelMessageID, err := p.sender.Send(ctx, telegram.Outgoing{
		ChatID: p.channelID,
		Text:   channelText,
	})
	if err != nil {
		// Mandatory step. The question row stays for audit.
		return "", fmt.Errorf("failed to publish question %d to channel: %w", q.ID, err)
	}
	if err := p.store.SetChannelMessage(ctx, q.ID, channelMessageID); err != nil {
		// The post is out; replies to it just won't route. Loud log, no abort.
		log.ErrorContext(ctx, "Failed to record channel message id",
			"channel_message_id", channelMessageID, "error", err)
	}

	if roomPosted && p.editRoomBacklink {
		backlinked := baseText + "\n\n" + telegram.Link(
			telegram.MessageLink(p.channelID, channelMessageID),
			"Also in the question channel",
		)
		if err := p.sender.Edit(ctx, roomChatID, roomMessageID, backlinked); err != nil {
			log.WarnContext(ctx, "Failed to edit room message with channel backlink",
				"room_chat_id", roomChatID, "room_message_id", roomMessageID, "error", err)
		}
	}

	permalink := telegram.MessageLink(p.channelID, channelMessageID)
	log.InfoContext(ctx, "Question published",
		"channel_message_id", channelMessageID, "room_posted", roomPosted, "permalink", permalink)
	return permalink, nil
}

// postToRoom performs the optional room cross-post. Failures degrade to a
// channel-only publish.
func (p *Publisher) postToRoom(ctx context.Context, log *slog.Logger, q *database.Question, roomName, text string) (int64, int, bool) {
	if roomName == "" {
		return 0, 0, false
	}

	room, ok := p.rooms.ByName(roomName)
	if !ok || room.ChatID == 0 {
		log.DebugContext(ctx, "Room has no chat surface, skipping cross-post", "room", roomName)
		return 0, 0, false
	}

	messageID, err := p.sender.Send(ctx, telegram.Outgoing{ChatID: room.ChatID, Text: text})
	if err != nil {
		log.WarnContext(ctx, "Room cross-post failed, continuing with channel only",
			"room", roomName, "error", err)
		return 0, 0, false
	}

	if err := p.store.SetRoomMessage(ctx, q.ID, roomName, room.ChatID, messageID); err != nil {
		log.ErrorContext(ctx, "Failed to record room message id",
			"room", roomName, "room_message_id", messageID, "error", err)
		// The message is in the room but untracked; replies to it won't
		// route back. Still worth linking from the channel.
	}

	return room.ChatID, messageID, true
}

func composeText(author *database.User, q *database.Question) string {
	var b strings.Builder
	b.WriteString(telegram.UserMention(author.TelegramID, author.DisplayName()))
	b.WriteString(" asks:\n\n")
	b.WriteString(telegram.Bold(q.Title))
	b.WriteString("\n\n")
	b.WriteString(telegram.Escape(q.Body))
	if q.Tags != "" {
		b.WriteString("\n\n<i>")
		b.WriteString(telegram.Escape(q.Tags))
		b.WriteString("</i>")
	}
	return b.String()
}
