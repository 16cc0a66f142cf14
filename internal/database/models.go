package database

import (
	"database/sql"
	"time"
)

// User links a community member to a Telegram account, with optional
// moderation state. Only linked members may start question conversations.
type User struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	TelegramID  int64        `db:"telegram_id"`
	Slug        string       `db:"slug"`
	FullName    string       `db:"full_name"`
	BannedUntil sql.NullTime `db:"banned_until"`
	BanReason   string       `db:"ban_reason"`
}

// IsBanned reports whether the user's ban is still in effect at now.
func (u *User) IsBanned(now time.Time) bool {
	return u.BannedUntil.Valid && u.BannedUntil.Time.After(now)
}

// DisplayName returns the name shown in published questions and
// notifications.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Slug
}

// Room is a topic chat a question may be cross-posted to. ChatID zero means
// the room has no chat surface configured and cannot receive posts.
type Room struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Name   string `db:"name"`
	ChatID int64  `db:"chat_id"`
}

// Question is the structured record produced by a completed conversation.
// The payload fields are immutable after creation; the correlation fields
// are each set at most once, as the corresponding chat message appears:
//
//   - ChannelMessageID: post in the public question channel (unique).
//   - DiscussionMessageID: the platform's auto-forward of that post into
//     the channel's linked discussion group.
//   - RoomChatID/RoomMessageID: optional cross-post into a room chat
//     (unique as a pair).
//
// Inbound replies are resolved back to a Question through these ids.
type Question struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// AuthorID survives author deletion as NULL; AuthorTelegramID is kept
	// denormalized so reply notifications don't depend on the users table.
	AuthorID         sql.NullInt64 `db:"author_id"`
	AuthorTelegramID sql.NullInt64 `db:"author_telegram_id"`

	Title string `db:"title"`
	Body  string `db:"body"`
	Tags  string `db:"tags"`

	RoomName            sql.NullString `db:"room_name"`
	RoomChatID          sql.NullInt64  `db:"room_chat_id"`
	RoomMessageID       sql.NullInt64  `db:"room_message_id"`
	ChannelMessageID    sql.NullInt64  `db:"channel_message_id"`
	DiscussionMessageID sql.NullInt64  `db:"discussion_message_id"`
}
