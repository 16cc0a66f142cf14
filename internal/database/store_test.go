package database_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubware/askbridge/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func saveTestUser(t *testing.T, store database.Store, telegramID int64, slug string) *database.User {
	t.Helper()
	user := &database.User{TelegramID: telegramID, Slug: slug, FullName: "Test " + slug}
	require.NoError(t, store.SaveUser(context.Background(), user))
	return user
}

func saveTestQuestion(t *testing.T, store database.Store, author *database.User) *database.Question {
	t.Helper()
	q := &database.Question{Title: "How?", Body: "Like this?"}
	if author != nil {
		q.AuthorID = sql.NullInt64{Int64: author.ID, Valid: true}
		q.AuthorTelegramID = sql.NullInt64{Int64: author.TelegramID, Valid: true}
	}
	require.NoError(t, store.CreateQuestion(context.Background(), q))
	return q
}

func TestSaveAndFindUser(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	user := saveTestUser(t, store, 1001, "alice")
	assert.NotZero(t, user.ID)

	found, err := store.UserByTelegramID(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Slug)
	assert.Equal(t, "Test alice", found.FullName)
	assert.False(t, found.IsBanned(time.Now()))

	_, err = store.UserByTelegramID(ctx, 9999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestSaveUserValidation(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.SaveUser(ctx, nil))
	assert.Error(t, store.SaveUser(ctx, &database.User{Slug: "no-id"}))
	assert.Error(t, store.SaveUser(ctx, &database.User{TelegramID: 1}))
}

func TestSetUserBan(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	saveTestUser(t, store, 1001, "alice")

	until := time.Now().UTC().AddDate(0, 0, 7)
	require.NoError(t, store.SetUserBan(ctx, 1001, &until, "spam"))

	banned, err := store.UserByTelegramID(ctx, 1001)
	require.NoError(t, err)
	assert.True(t, banned.IsBanned(time.Now()))
	assert.Equal(t, "spam", banned.BanReason)

	require.NoError(t, store.SetUserBan(ctx, 1001, nil, ""))
	cleared, err := store.UserByTelegramID(ctx, 1001)
	require.NoError(t, err)
	assert.False(t, cleared.IsBanned(time.Now()))

	assert.ErrorIs(t, store.SetUserBan(ctx, 9999, &until, ""), database.ErrNotFound)
}

func TestRooms(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	rooms, err := store.ListRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	require.NoError(t, store.SaveRoom(ctx, &database.Room{Name: "General", ChatID: -100200}))
	require.NoError(t, store.SaveRoom(ctx, &database.Room{Name: "Career", ChatID: -100300}))

	rooms, err = store.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Career", rooms[0].Name)
	assert.Equal(t, "General", rooms[1].Name)

	// Saving the same name again re-points the chat instead of duplicating.
	require.NoError(t, store.SaveRoom(ctx, &database.Room{Name: "General", ChatID: -100999}))
	rooms, err = store.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, int64(-100999), rooms[1].ChatID)
}

func TestQuestionCorrelationRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	author := saveTestUser(t, store, 1001, "alice")
	q := saveTestQuestion(t, store, author)
	require.NotZero(t, q.ID)

	require.NoError(t, store.SetChannelMessage(ctx, q.ID, 555))
	require.NoError(t, store.SetRoomMessage(ctx, q.ID, "General", -100200, 777))
	require.NoError(t, store.SetDiscussionMessage(ctx, 555, 888))

	byChannel, err := store.QuestionByChannelMessageID(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, q.ID, byChannel.ID)
	assert.Equal(t, int64(1001), byChannel.AuthorTelegramID.Int64)
	assert.Equal(t, "General", byChannel.RoomName.String)
	assert.Equal(t, int64(888), byChannel.DiscussionMessageID.Int64)

	byRoom, err := store.QuestionByRoomMessage(ctx, -100200, 777)
	require.NoError(t, err)
	assert.Equal(t, q.ID, byRoom.ID)

	_, err = store.QuestionByChannelMessageID(ctx, 556)
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = store.QuestionByRoomMessage(ctx, -100200, 778)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCorrelationIDsSetOnce(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	q := saveTestQuestion(t, store, saveTestUser(t, store, 1001, "alice"))

	require.NoError(t, store.SetChannelMessage(ctx, q.ID, 555))
	assert.ErrorIs(t, store.SetChannelMessage(ctx, q.ID, 556), database.ErrNotFound)

	require.NoError(t, store.SetRoomMessage(ctx, q.ID, "General", -100200, 777))
	assert.ErrorIs(t, store.SetRoomMessage(ctx, q.ID, "Career", -100300, 779), database.ErrNotFound)

	require.NoError(t, store.SetDiscussionMessage(ctx, 555, 888))
	assert.ErrorIs(t, store.SetDiscussionMessage(ctx, 555, 889), database.ErrNotFound)

	// The first values won.
	final, err := store.QuestionByChannelMessageID(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, int64(777), final.RoomMessageID.Int64)
	assert.Equal(t, int64(888), final.DiscussionMessageID.Int64)
}

func TestSetChannelMessageUnknownQuestion(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	assert.ErrorIs(t, store.SetChannelMessage(context.Background(), 424242, 1), database.ErrNotFound)
}

func TestSetDiscussionMessageUntrackedChannelPost(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	assert.ErrorIs(t, store.SetDiscussionMessage(context.Background(), 424242, 1), database.ErrNotFound)
}

func TestCountPublishedSince(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	alice := saveTestUser(t, store, 1001, "alice")
	bob := saveTestUser(t, store, 1002, "bob")
	since := time.Now().UTC().Add(-24 * time.Hour)

	// Two published questions and one that never reached the channel.
	q1 := saveTestQuestion(t, store, alice)
	require.NoError(t, store.SetChannelMessage(ctx, q1.ID, 101))
	q2 := saveTestQuestion(t, store, alice)
	require.NoError(t, store.SetChannelMessage(ctx, q2.ID, 102))
	saveTestQuestion(t, store, alice)

	qBob := saveTestQuestion(t, store, bob)
	require.NoError(t, store.SetChannelMessage(ctx, qBob.ID, 103))

	count, err := store.CountPublishedSince(ctx, alice.TelegramID, since)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.CountPublishedSince(ctx, bob.TelegramID, since)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.CountPublishedSince(ctx, alice.TelegramID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateQuestionValidation(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.CreateQuestion(ctx, nil))
	assert.Error(t, store.CreateQuestion(ctx, &database.Question{Body: "no title"}))
	assert.Error(t, store.CreateQuestion(ctx, &database.Question{Title: "no body"}))
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, store.RunSQLMaintenance(context.Background()))
}
