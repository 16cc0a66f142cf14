package publish_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubware/askbridge/internal/conversation"
	"github.com/clubware/askbridge/internal/database"
	"github.com/clubware/askbridge/internal/directory"
	"github.com/clubware/askbridge/internal/publish"
	"github.com/clubware/askbridge/internal/telegram"
)

const testChannelID int64 = -1001234500001

type fakeEdit struct {
	ChatID    int64
	MessageID int
	Text      string
}

// fakeSender records outbound traffic and can be told to fail per chat.
type fakeSender struct {
	mu        sync.Mutex
	nextID    int
	sends     []telegram.Outgoing
	sentIDs   []int
	edits     []fakeEdit
	failChats map[int64]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{nextID: 100, failChats: make(map[int64]bool)}
}

func (f *fakeSender) Send(_ context.Context, out telegram.Outgoing) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failChats[out.ChatID] {
		return 0, errors.New("send failed")
	}
	f.nextID++
	f.sends = append(f.sends, out)
	f.sentIDs = append(f.sentIDs, f.nextID)
	return f.nextID, nil
}

func (f *fakeSender) Edit(_ context.Context, chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, fakeEdit{ChatID: chatID, MessageID: messageID, Text: text})
	return nil
}

func (f *fakeSender) sentTo(chatID int64) []telegram.Outgoing {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []telegram.Outgoing
	for _, s := range f.sends {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

type fixture struct {
	store  database.Store
	rooms  *directory.Rooms
	sender *fakeSender
	author *database.User
}

func newFixture(t *testing.T, roomRows ...database.Room) fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	store := database.NewStore(db, nil)
	for i := range roomRows {
		require.NoError(t, store.SaveRoom(ctx, &roomRows[i]))
	}

	rooms, err := directory.NewRooms(ctx, store, nil)
	require.NoError(t, err)

	author := &database.User{TelegramID: 1001, Slug: "alice", FullName: "Alice Doe"}
	require.NoError(t, store.SaveUser(ctx, author))

	return fixture{store: store, rooms: rooms, sender: newFakeSender(), author: author}
}

func (f fixture) publisher(editBacklink bool) *publish.Publisher {
	return publish.NewPublisher(f.store, f.sender, f.rooms, testChannelID, editBacklink, nil)
}

func TestPublishChannelOnly(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	permalink, err := f.publisher(true).Publish(ctx, f.author, conversation.Draft{
		Title: "How do I grow tomatoes?",
		Body:  "My balcony <faces> north.",
		Tags:  "gardening",
	})
	require.NoError(t, err)

	require.Len(t, f.sender.sends, 1)
	post := f.sender.sends[0]
	assert.Equal(t, testChannelID, post.ChatID)
	assert.Contains(t, post.Text, `tg://user?id=1001`)
	assert.Contains(t, post.Text, "Alice Doe")
	assert.Contains(t, post.Text, "<b>How do I grow tomatoes?</b>")
	assert.Contains(t, post.Text, "My balcony &lt;faces&gt; north.")
	assert.Contains(t, post.Text, "<i>gardening</i>")
	assert.NotContains(t, post.Text, "Discussion in the")

	assert.Equal(t, telegram.MessageLink(testChannelID, f.sender.sentIDs[0]), permalink)

	q, err := f.store.QuestionByChannelMessageID(ctx, f.sender.sentIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "How do I grow tomatoes?", q.Title)
	assert.False(t, q.RoomMessageID.Valid)
	assert.Empty(t, f.sender.edits)
}

func TestPublishWithRoomCrossPost(t *testing.T) {
	t.Parallel()
	roomChatID := int64(-1009900001)
	f := newFixture(t, database.Room{Name: "General", ChatID: roomChatID})
	ctx := context.Background()

	_, err := f.publisher(true).Publish(ctx, f.author, conversation.Draft{
		Title: "Title", Body: "Body", Room: "General", RoomSet: true,
	})
	require.NoError(t, err)

	roomSends := f.sender.sentTo(roomChatID)
	require.Len(t, roomSends, 1)
	channelSends := f.sender.sentTo(testChannelID)
	require.Len(t, channelSends, 1)

	// Room post happens first, so the channel post can link to it.
	roomMessageID := f.sender.sentIDs[0]
	channelMessageID := f.sender.sentIDs[1]
	assert.Contains(t, channelSends[0].Text, "Discussion in the General room")
	assert.Contains(t, channelSends[0].Text, telegram.MessageLink(roomChatID, roomMessageID))

	q, err := f.store.QuestionByRoomMessage(ctx, roomChatID, roomMessageID)
	require.NoError(t, err)
	assert.Equal(t, int64(channelMessageID), q.ChannelMessageID.Int64)
	assert.Equal(t, "General", q.RoomName.String)

	// The room post was edited to link back to the channel copy.
	require.Len(t, f.sender.edits, 1)
	edit := f.sender.edits[0]
	assert.Equal(t, roomChatID, edit.ChatID)
	assert.Equal(t, roomMessageID, edit.MessageID)
	assert.Contains(t, edit.Text, "Also in the question channel")
	assert.Contains(t, edit.Text, telegram.MessageLink(testChannelID, channelMessageID))
}

func TestPublishBacklinkEditDisabled(t *testing.T) {
	t.Parallel()
	f := newFixture(t, database.Room{Name: "General", ChatID: -1009900001})

	_, err := f.publisher(false).Publish(context.Background(), f.author, conversation.Draft{
		Title: "Title", Body: "Body", Room: "General", RoomSet: true,
	})
	require.NoError(t, err)
	assert.Empty(t, f.sender.edits)
}

func TestPublishRoomFailureDegradesToChannelOnly(t *testing.T) {
	t.Parallel()
	roomChatID := int64(-1009900001)
	f := newFixture(t, database.Room{Name: "General", ChatID: roomChatID})
	f.sender.failChats[roomChatID] = true
	ctx := context.Background()

	permalink, err := f.publisher(true).Publish(ctx, f.author, conversation.Draft{
		Title: "Title", Body: "Body", Room: "General", RoomSet: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, permalink)

	require.Len(t, f.sender.sends, 1)
	assert.Equal(t, testChannelID, f.sender.sends[0].ChatID)
	assert.NotContains(t, f.sender.sends[0].Text, "Discussion in the")

	q, err := f.store.QuestionByChannelMessageID(ctx, f.sender.sentIDs[0])
	require.NoError(t, err)
	assert.False(t, q.RoomMessageID.Valid)
	assert.Empty(t, f.sender.edits)
}

func TestPublishSkipsRoomWithoutChatSurface(t *testing.T) {
	t.Parallel()
	f := newFixture(t, database.Room{Name: "Lurkers", ChatID: 0})

	_, err := f.publisher(true).Publish(context.Background(), f.author, conversation.Draft{
		Title: "Title", Body: "Body", Room: "Lurkers", RoomSet: true,
	})
	require.NoError(t, err)

	require.Len(t, f.sender.sends, 1)
	assert.Equal(t, testChannelID, f.sender.sends[0].ChatID)
}

func TestPublishChannelFailureReturnsError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.sender.failChats[testChannelID] = true
	ctx := context.Background()

	_, err := f.publisher(true).Publish(ctx, f.author, conversation.Draft{
		Title: "Title", Body: "Body",
	})
	require.Error(t, err)
	assert.Empty(t, f.sender.sends)

	// The row is kept for audit even though nothing was posted: its channel
	// message id is still unset and can be claimed.
	require.NoError(t, f.store.SetChannelMessage(ctx, 1, 999))
}
