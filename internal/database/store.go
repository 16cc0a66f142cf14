package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by lookups that match no row. Correlation-store
// misses are a normal condition for reply routing and must be distinguishable
// from real failures.
var ErrNotFound = errors.New("not found")

// Store defines the data access operations for users, rooms, and the
// question correlation store.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UserByTelegramID resolves a Telegram account to a community member.
	// Returns ErrNotFound for unknown accounts.
	UserByTelegramID(ctx context.Context, telegramID int64) (*User, error)

	// SaveUser inserts a new user record.
	SaveUser(ctx context.Context, user *User) error

	// SetUserBan sets or clears (until == nil) a user's ban.
	SetUserBan(ctx context.Context, telegramID int64, until *time.Time, reason string) error

	// ListRooms returns all rooms ordered by name.
	ListRooms(ctx context.Context) ([]Room, error)

	// SaveRoom inserts a room, or re-points an existing room of the same
	// name at a new chat.
	SaveRoom(ctx context.Context, room *Room) error

	// CreateQuestion inserts a new question with null correlation fields and
	// fills in its assigned ID.
	CreateQuestion(ctx context.Context, q *Question) error

	// SetChannelMessage records the channel post id for a question. Set once.
	SetChannelMessage(ctx context.Context, questionID int64, channelMessageID int) error

	// SetRoomMessage records the room cross-post for a question. Set once.
	SetRoomMessage(ctx context.Context, questionID int64, roomName string, roomChatID int64, roomMessageID int) error

	// SetDiscussionMessage links the observed discussion-group auto-forward
	// to the question with the given channel message id.
	SetDiscussionMessage(ctx context.Context, channelMessageID, discussionMessageID int) error

	// QuestionByChannelMessageID resolves a channel (or forwarded-from-channel)
	// message back to its question. Returns ErrNotFound on a miss.
	QuestionByChannelMessageID(ctx context.Context, channelMessageID int) (*Question, error)

	// QuestionByRoomMessage resolves a room-chat message back to its question.
	// Returns ErrNotFound on a miss.
	QuestionByRoomMessage(ctx context.Context, roomChatID int64, roomMessageID int) (*Question, error)

	// CountPublishedSince counts questions by the given author that reached
	// the channel after the given instant.
	CountPublishedSince(ctx context.Context, telegramID int64, since time.Time) (int, error)

	// RunSQLMaintenance performs periodic maintenance (VACUUM, ANALYZE).
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) UserByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE telegram_id = ?`, telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user by telegram id %d: %w", telegramID, err)
	}
	return &user, nil
}

func (s *sqlxStore) SaveUser(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("cannot save nil user")
	}
	if user.TelegramID == 0 {
		return errors.New("user must have a non-zero telegram_id")
	}
	if user.Slug == "" {
		return errors.New("user must have a non-empty slug")
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := s.db.NamedExecContext(ctx, `
        INSERT INTO users (created_at, updated_at, telegram_id, slug, full_name, banned_until, ban_reason)
        VALUES (:created_at, :updated_at, :telegram_id, :slug, :full_name, :banned_until, :ban_reason)`,
		user)
	if err != nil {
		return fmt.Errorf("failed to save user %q: %w", user.Slug, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		user.ID = id
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving user",
			"slug", user.Slug, "error", err)
	}
	return nil
}

func (s *sqlxStore) SetUserBan(ctx context.Context, telegramID int64, until *time.Time, reason string) error {
	banned := sql.NullTime{}
	if until != nil {
		banned = sql.NullTime{Time: until.UTC(), Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
        UPDATE users SET banned_until = ?, ban_reason = ?, updated_at = ?
        WHERE telegram_id = ?`,
		banned, reason, time.Now().UTC(), telegramID)
	if err != nil {
		return fmt.Errorf("failed to update ban for user %d: %w", telegramID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlxStore) ListRooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	if err := s.db.SelectContext(ctx, &rooms, `SELECT * FROM rooms ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *sqlxStore) SaveRoom(ctx context.Context, room *Room) error {
	if room == nil {
		return errors.New("cannot save nil room")
	}
	if room.Name == "" {
		return errors.New("room must have a non-empty name")
	}

	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	result, err := s.db.NamedExecContext(ctx, `
        INSERT INTO rooms (created_at, updated_at, name, chat_id)
        VALUES (:created_at, :updated_at, :name, :chat_id)
        ON CONFLICT (name) DO UPDATE SET chat_id = excluded.chat_id, updated_at = excluded.updated_at`,
		room)
	if err != nil {
		return fmt.Errorf("failed to save room %q: %w", room.Name, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		room.ID = id
	}
	return nil
}

func (s *sqlxStore) CreateQuestion(ctx context.Context, q *Question) error {
	if q == nil {
		return errors.New("cannot save nil question")
	}
	if q.Title == "" {
		return errors.New("question must have a non-empty title")
	}
	if q.Body == "" {
		return errors.New("question must have a non-empty body")
	}

	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	result, err := s.db.NamedExecContext(ctx, `
        INSERT INTO questions (created_at, updated_at, author_id, author_telegram_id, title, body, tags,
                               room_name, room_chat_id, room_message_id, channel_message_id, discussion_message_id)
        VALUES (:created_at, :updated_at, :author_id, :author_telegram_id, :title, :body, :tags,
                :room_name, :room_chat_id, :room_message_id, :channel_message_id, :discussion_message_id)`,
		q)
	if err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to retrieve question id: %w", err)
	}
	q.ID = id

	s.logger.DebugContext(ctx, "Question created", "question_id", q.ID)
	return nil
}

func (s *sqlxStore) SetChannelMessage(ctx context.Context, questionID int64, channelMessageID int) error {
	result, err := s.db.ExecContext(ctx, `
        UPDATE questions SET channel_message_id = ?, updated_at = ?
        WHERE id = ? AND channel_message_id IS NULL`,
		channelMessageID, time.Now().UTC(), questionID)
	if err != nil {
		return fmt.Errorf("failed to set channel message for question %d: %w", questionID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("question %d missing or channel message already set: %w", questionID, ErrNotFound)
	}
	return nil
}

func (s *sqlxStore) SetRoomMessage(ctx context.Context, questionID int64, roomName string, roomChatID int64, roomMessageID int) error {
	result, err := s.db.ExecContext(ctx, `
        UPDATE questions SET room_name = ?, room_chat_id = ?, room_message_id = ?, updated_at = ?
        WHERE id = ? AND room_message_id IS NULL`,
		roomName, roomChatID, roomMessageID, time.Now().UTC(), questionID)
	if err != nil {
		return fmt.Errorf("failed to set room message for question %d: %w", questionID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("question %d missing or room message already set: %w", questionID, ErrNotFound)
	}
	return nil
}

func (s *sqlxStore) SetDiscussionMessage(ctx context.Context, channelMessageID, discussionMessageID int) error {
	result, err := s.db.ExecContext(ctx, `
        UPDATE questions SET discussion_message_id = ?, updated_at = ?
        WHERE channel_message_id = ? AND discussion_message_id IS NULL`,
		discussionMessageID, time.Now().UTC(), channelMessageID)
	if err != nil {
		return fmt.Errorf("failed to set discussion message for channel message %d: %w", channelMessageID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		// Either the channel message is untracked or the forward was seen
		// before. Both are normal for the relay listener.
		return ErrNotFound
	}
	return nil
}

func (s *sqlxStore) QuestionByChannelMessageID(ctx context.Context, channelMessageID int) (*Question, error) {
	var q Question
	err := s.db.GetContext(ctx, &q,
		`SELECT * FROM questions WHERE channel_message_id = ?`, channelMessageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query question by channel message %d: %w", channelMessageID, err)
	}
	return &q, nil
}

func (s *sqlxStore) QuestionByRoomMessage(ctx context.Context, roomChatID int64, roomMessageID int) (*Question, error) {
	var q Question
	err := s.db.GetContext(ctx, &q,
		`SELECT * FROM questions WHERE room_chat_id = ? AND room_message_id = ?`,
		roomChatID, roomMessageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query question by room message (%d, %d): %w", roomChatID, roomMessageID, err)
	}
	return &q, nil
}

func (s *sqlxStore) CountPublishedSince(ctx context.Context, telegramID int64, since time.Time) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
        SELECT COUNT(*) FROM questions
        WHERE author_telegram_id = ? AND channel_message_id IS NOT NULL AND created_at >= ?`,
		telegramID, since.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to count published questions for user %d: %w", telegramID, err)
	}
	return count, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	for _, stmt := range []string{"VACUUM", "ANALYZE"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("maintenance statement %q failed: %w", stmt, err)
		}
	}
	s.logger.InfoContext(ctx, "SQL maintenance completed")
	return nil
}
