package conversation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubware/askbridge/internal/conversation"
)

type stubRooms struct {
	names []string
}

func (s stubRooms) Names() []string { return s.names }

func (s stubRooms) Has(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

func testTexts() conversation.Texts {
	return conversation.Texts{
		Menu:         "menu:\n%s",
		PromptTitle:  "prompt title",
		PromptBody:   "prompt body",
		PromptTags:   "prompt tags",
		PromptRoom:   "prompt room",
		Confirm:      "confirm:\n%s",
		TitleMissing: "title missing",
		BodyMissing:  "body missing",
		TitleTooLong: "title too long %d",
		BodyTooLong:  "body too long %d",
		Fallback:     "fallback",
		Cancelled:    "cancelled",
	}
}

func newTestMachine() *conversation.Machine {
	return conversation.NewMachine(stubRooms{names: []string{"General", "Career"}}, testTexts())
}

// step asserts the transition succeeds and returns its effects.
func step(t *testing.T, m *conversation.Machine, sess *conversation.Session, input string) []conversation.Effect {
	t.Helper()
	effects, err := m.Step(sess, input)
	require.NoError(t, err)
	return effects
}

func firstReply(t *testing.T, effects []conversation.Effect) conversation.Reply {
	t.Helper()
	for _, e := range effects {
		if reply, ok := e.(conversation.Reply); ok {
			return reply
		}
	}
	t.Fatal("no Reply effect")
	return conversation.Reply{}
}

func TestFullConversationToPublish(t *testing.T) {
	t.Parallel()

	m := newTestMachine()
	sess := conversation.NewSession()
	require.Equal(t, conversation.StateMenu, sess.State)

	reply := firstReply(t, step(t, m, sess, conversation.ButtonTitle))
	assert.Equal(t, "prompt title", reply.Text)
	assert.True(t, reply.RemoveKeyboard)
	require.Equal(t, conversation.StateAwaitingText, sess.State)

	step(t, m, sess, "Why is sky blue?")
	require.Equal(t, conversation.StateMenu, sess.State)
	assert.Equal(t, "Why is sky blue?", sess.Draft.Title)

	step(t, m, sess, conversation.ButtonBody)
	step(t, m, sess, "Just curious")
	assert.Equal(t, "Just curious", sess.Draft.Body)

	reply = firstReply(t, step(t, m, sess, conversation.ButtonRoom))
	assert.Equal(t, "prompt room", reply.Text)
	assert.Contains(t, reply.Keyboard, []string{"General"})
	assert.Contains(t, reply.Keyboard, []string{conversation.ButtonNoRoom})
	require.Equal(t, conversation.StateAwaitingRoom, sess.State)

	step(t, m, sess, "General")
	assert.Equal(t, "General", sess.Draft.Room)
	assert.True(t, sess.Draft.RoomSet)
	require.Equal(t, conversation.StateMenu, sess.State)

	reply = firstReply(t, step(t, m, sess, conversation.ButtonFinish))
	assert.Contains(t, reply.Text, "Why is sky blue?")
	assert.Equal(t, [][]string{{conversation.ButtonPublish, conversation.ButtonEdit, conversation.ButtonCancel}}, reply.Keyboard)
	require.Equal(t, conversation.StateConfirm, sess.State)

	effects := step(t, m, sess, conversation.ButtonPublish)
	require.Equal(t, conversation.StateDone, sess.State)

	var published *conversation.Publish
	var ended bool
	for _, e := range effects {
		switch eff := e.(type) {
		case conversation.Publish:
			published = &eff
		case conversation.End:
			ended = true
		}
	}
	require.NotNil(t, published)
	assert.True(t, ended)
	assert.Equal(t, "Why is sky blue?", published.Draft.Title)
	assert.Equal(t, "Just curious", published.Draft.Body)
	assert.Equal(t, "General", published.Draft.Room)
}

func TestFinishValidationOrderAndMessages(t *testing.T) {
	t.Parallel()

	longTitle := strings.Repeat("t", conversation.MaxTitleLen+1)
	longBody := strings.Repeat("b", conversation.MaxBodyLen+1)

	testCases := []struct {
		name    string
		draft   conversation.Draft
		wantMsg string
	}{
		{
			name:    "empty draft reports missing title first",
			draft:   conversation.Draft{},
			wantMsg: "title missing",
		},
		{
			name:    "missing body",
			draft:   conversation.Draft{Title: "ok"},
			wantMsg: "body missing",
		},
		{
			name:    "title presence wins over body length",
			draft:   conversation.Draft{Body: longBody},
			wantMsg: "title missing",
		},
		{
			name:    "title too long",
			draft:   conversation.Draft{Title: longTitle, Body: "ok"},
			wantMsg: "title too long 150",
		},
		{
			name:    "title length wins over body length",
			draft:   conversation.Draft{Title: longTitle, Body: longBody},
			wantMsg: "title too long 150",
		},
		{
			name:    "body too long",
			draft:   conversation.Draft{Title: "ok", Body: longBody},
			wantMsg: "body too long 2500",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := newTestMachine()
			sess := conversation.NewSession()
			sess.Draft = tc.draft

			reply := firstReply(t, step(t, m, sess, conversation.ButtonFinish))
			assert.Equal(t, tc.wantMsg, reply.Text)
			// Validation failures never reach the confirmation state.
			assert.Equal(t, conversation.StateMenu, sess.State)
		})
	}
}

func TestTitleAtLimitPasses(t *testing.T) {
	t.Parallel()

	m := newTestMachine()
	sess := conversation.NewSession()
	sess.Draft = conversation.Draft{
		Title: strings.Repeat("t", conversation.MaxTitleLen),
		Body:  "ok",
	}

	step(t, m, sess, conversation.ButtonFinish)
	assert.Equal(t, conversation.StateConfirm, sess.State)
}

func TestMenuFallbackKeepsState(t *testing.T) {
	t.Parallel()

	m := newTestMachine()
	sess := conversation.NewSession()
	sess.Draft.Title = "keep me"

	reply := firstReply(t, step(t, m, sess, "some stray text"))
	assert.Equal(t, "fallback", reply.Text)
	assert.NotEmpty(t, reply.Keyboard)
	assert.Equal(t, conversation.StateMenu, sess.State)
	assert.Equal(t, "keep me", sess.Draft.Title)
}

func TestRoomSelection(t *testing.T) {
	t.Parallel()

	t.Run("unknown room keeps waiting", func(t *testing.T) {
		t.Parallel()

		m := newTestMachine()
		sess := conversation.NewSession()
		step(t, m, sess, conversation.ButtonRoom)

		reply := firstReply(t, step(t, m, sess, "Atlantis"))
		assert.Equal(t, "fallback", reply.Text)
		assert.Equal(t, conversation.StateAwaitingRoom, sess.State)
		assert.False(t, sess.Draft.RoomSet)
	})

	t.Run("no-room sentinel clears the room", func(t *testing.T) {
		t.Parallel()

		m := newTestMachine()
		sess := conversation.NewSession()
		sess.Draft.Room = "General"
		sess.Draft.RoomSet = true
		step(t, m, sess, conversation.ButtonRoom)

		step(t, m, sess, conversation.ButtonNoRoom)
		assert.Equal(t, conversation.StateMenu, sess.State)
		assert.Empty(t, sess.Draft.Room)
		assert.True(t, sess.Draft.RoomSet)
	})
}

func TestConfirmEditReturnsToMenu(t *testing.T) {
	t.Parallel()

	m := newTestMachine()
	sess := conversation.NewSession()
	sess.Draft = conversation.Draft{Title: "t", Body: "b"}
	step(t, m, sess, conversation.ButtonFinish)
	require.Equal(t, conversation.StateConfirm, sess.State)

	step(t, m, sess, conversation.ButtonEdit)
	assert.Equal(t, conversation.StateMenu, sess.State)
	assert.Equal(t, "t", sess.Draft.Title)
}

func TestConfirmCancelEndsSession(t *testing.T) {
	t.Parallel()

	m := newTestMachine()
	sess := conversation.NewSession()
	sess.Draft = conversation.Draft{Title: "t", Body: "b"}
	step(t, m, sess, conversation.ButtonFinish)

	effects := step(t, m, sess, conversation.ButtonCancel)
	assert.Equal(t, conversation.StateDone, sess.State)

	reply := firstReply(t, effects)
	assert.Equal(t, "cancelled", reply.Text)
	assert.True(t, reply.RemoveKeyboard)

	var ended bool
	for _, e := range effects {
		if _, ok := e.(conversation.End); ok {
			ended = true
		}
	}
	assert.True(t, ended)
}

func TestConfirmRejectsUnexpectedInput(t *testing.T) {
	t.Parallel()

	m := newTestMachine()
	sess := conversation.NewSession()
	sess.Draft = conversation.Draft{Title: "t", Body: "b"}
	step(t, m, sess, conversation.ButtonFinish)

	_, err := m.Step(sess, "free text the keyboard cannot produce")
	require.ErrorIs(t, err, conversation.ErrUnexpectedInput)
	assert.Equal(t, conversation.StateDone, sess.State)
}

func TestStepOnFinishedSessionFails(t *testing.T) {
	t.Parallel()

	m := newTestMachine()
	sess := conversation.NewSession()
	sess.State = conversation.StateDone

	_, err := m.Step(sess, "anything")
	require.ErrorIs(t, err, conversation.ErrUnexpectedInput)
}

func TestSummaryMarksUnsetFields(t *testing.T) {
	t.Parallel()

	d := conversation.Draft{Title: "t"}
	summary := d.Summary()
	assert.Contains(t, summary, "Title: t")
	assert.Contains(t, summary, "Body: —")
	assert.Contains(t, summary, "Room: —")

	d.RoomSet = true
	assert.Contains(t, d.Summary(), "not sending to a room")
}
