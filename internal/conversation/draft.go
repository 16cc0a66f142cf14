// Package conversation implements the multi-turn dialogue that collects a
// question draft from a user. The state machine is pure: it consumes text
// input and produces effects, and knows nothing about the chat transport.
package conversation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Payload limits for a publishable draft.
const (
	MaxTitleLen = 150
	MaxBodyLen  = 2500
)

// State identifies where a session is in the dialogue. String-valued so
// sessions serialize cleanly for the redis backend.
type State string

const (
	// StateMenu shows the field keyboard and waits for a selection.
	StateMenu State = "menu"
	// StateAwaitingText waits for free text for the pending field.
	StateAwaitingText State = "awaiting_text"
	// StateAwaitingRoom waits for a room name from the room keyboard.
	StateAwaitingRoom State = "awaiting_room"
	// StateConfirm waits for Publish, Edit, or Cancel.
	StateConfirm State = "confirm"
	// StateDone marks a finished conversation; the session is discarded.
	StateDone State = "done"
)

// Field identifies a draft attribute awaiting free-text input.
type Field string

const (
	FieldNone  Field = ""
	FieldTitle Field = "title"
	FieldBody  Field = "body"
	FieldTags  Field = "tags"
)

// Draft accumulates the question payload across turns.
type Draft struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tags  string `json:"tags"`
	// Room is the chosen cross-post room name; empty with RoomSet true
	// means the user explicitly chose not to cross-post.
	Room    string `json:"room"`
	RoomSet bool   `json:"room_set"`
}

// Session is the per-user conversation state held in the session store.
type Session struct {
	State     State     `json:"state"`
	Pending   Field     `json:"pending,omitempty"`
	Draft     Draft     `json:"draft"`
	StartedAt time.Time `json:"started_at"`
}

// NewSession starts a fresh conversation at the field menu.
func NewSession() *Session {
	return &Session{
		State:     StateMenu,
		StartedAt: time.Now().UTC(),
	}
}

const unsetMark = "—"

// Summary renders the draft for the menu and confirmation prompts.
// Plain text; the caller escapes it for the transport's parse mode.
func (d Draft) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", orUnset(d.Title))
	fmt.Fprintf(&b, "Body: %s\n", orUnset(d.Body))
	fmt.Fprintf(&b, "Tags: %s\n", orUnset(d.Tags))
	room := d.Room
	if d.RoomSet && room == "" {
		room = "not sending to a room"
	}
	fmt.Fprintf(&b, "Room: %s\n", orUnset(room))
	return b.String()
}

func orUnset(s string) string {
	if s == "" {
		return unsetMark
	}
	return s
}

// problem returns the user-facing message for the first failing validation
// check, or "" when the draft is publishable. Check order: presence, title
// length, body length.
func (m *Machine) problem(d Draft) string {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return m.texts.TitleMissing
	case strings.TrimSpace(d.Body) == "":
		return m.texts.BodyMissing
	case utf8.RuneCountInString(d.Title) > MaxTitleLen:
		return fmt.Sprintf(m.texts.TitleTooLong, MaxTitleLen)
	case utf8.RuneCountInString(d.Body) > MaxBodyLen:
		return fmt.Sprintf(m.texts.BodyTooLong, MaxBodyLen)
	}
	return ""
}
