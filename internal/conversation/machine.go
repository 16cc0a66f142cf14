package conversation

import (
	"errors"
	"fmt"
	"html"
)

// Keyboard button labels. These are the state machine's input contract:
// every non-free-text state only accepts these literals.
const (
	ButtonTitle  = "Title"
	ButtonBody   = "Body"
	ButtonTags   = "Tags"
	ButtonRoom   = "Room"
	ButtonFinish = "Finish"

	ButtonPublish = "Publish"
	ButtonEdit    = "Edit"
	ButtonCancel  = "Cancel"

	// ButtonNoRoom is the sentinel for skipping the room cross-post.
	ButtonNoRoom = "Don't send to a room"
)

// ErrUnexpectedInput reports input that is impossible under the keyboard
// contract of the current state. Callers must treat it as fatal to the
// session, not to the process.
var ErrUnexpectedInput = errors.New("input violates keyboard contract")

// Effect is an action the caller must perform after a transition.
type Effect interface{ isEffect() }

// Reply sends a message back to the user driving the conversation.
type Reply struct {
	Text           string
	Keyboard       [][]string
	RemoveKeyboard bool
}

// Publish hands the completed draft to the publication pipeline.
type Publish struct {
	Draft Draft
}

// End signals that the session is finished and must be discarded.
type End struct{}

func (Reply) isEffect()   {}
func (Publish) isEffect() {}
func (End) isEffect()     {}

// RoomDirectory is the read-only room view the machine builds its room
// keyboard from.
type RoomDirectory interface {
	Names() []string
	Has(name string) bool
}

// Texts carries the user-facing strings the machine emits. Menu, Confirm,
// TitleTooLong and BodyTooLong are format templates.
type Texts struct {
	Menu         string
	PromptTitle  string
	PromptBody   string
	PromptTags   string
	PromptRoom   string
	Confirm      string
	TitleMissing string
	BodyMissing  string
	TitleTooLong string
	BodyTooLong  string
	Fallback     string
	Cancelled    string
}

// Machine drives one user's conversation. It is stateless itself: all
// per-conversation state lives in the Session, so a single Machine serves
// every user concurrently.
type Machine struct {
	rooms RoomDirectory
	texts Texts
}

// NewMachine creates a conversation machine over the given room directory.
func NewMachine(rooms RoomDirectory, texts Texts) *Machine {
	return &Machine{rooms: rooms, texts: texts}
}

// MenuKeyboard returns the field-selection keyboard, exposed so the entry
// handler can attach it to the welcome message.
func (m *Machine) MenuKeyboard() [][]string {
	return [][]string{
		{ButtonTitle, ButtonBody},
		{ButtonTags, ButtonRoom},
		{ButtonFinish},
	}
}

func (m *Machine) roomKeyboard() [][]string {
	names := m.rooms.Names()
	rows := make([][]string, 0, len(names)+1)
	for _, name := range names {
		rows = append(rows, []string{name})
	}
	rows = append(rows, []string{ButtonNoRoom})
	return rows
}

func confirmKeyboard() [][]string {
	return [][]string{{ButtonPublish, ButtonEdit, ButtonCancel}}
}

// Step advances the session with one text input and returns the effects to
// perform. A returned error means the session must be aborted; the session
// state is already StateDone in that case.
func (m *Machine) Step(sess *Session, text string) ([]Effect, error) {
	switch sess.State {
	case StateMenu:
		return m.stepMenu(sess, text), nil
	case StateAwaitingText:
		return m.stepAwaitingText(sess, text), nil
	case StateAwaitingRoom:
		return m.stepAwaitingRoom(sess, text), nil
	case StateConfirm:
		return m.stepConfirm(sess, text)
	default:
		sess.State = StateDone
		return nil, fmt.Errorf("step on finished session: %w", ErrUnexpectedInput)
	}
}

func (m *Machine) stepMenu(sess *Session, text string) []Effect {
	switch text {
	case ButtonTitle:
		sess.State = StateAwaitingText
		sess.Pending = FieldTitle
		return []Effect{Reply{Text: m.texts.PromptTitle, RemoveKeyboard: true}}
	case ButtonBody:
		sess.State = StateAwaitingText
		sess.Pending = FieldBody
		return []Effect{Reply{Text: m.texts.PromptBody, RemoveKeyboard: true}}
	case ButtonTags:
		sess.State = StateAwaitingText
		sess.Pending = FieldTags
		return []Effect{Reply{Text: m.texts.PromptTags, RemoveKeyboard: true}}
	case ButtonRoom:
		sess.State = StateAwaitingRoom
		return []Effect{Reply{Text: m.texts.PromptRoom, Keyboard: m.roomKeyboard()}}
	case ButtonFinish:
		if msg := m.problem(sess.Draft); msg != "" {
			return []Effect{Reply{Text: msg, Keyboard: m.MenuKeyboard()}}
		}
		sess.State = StateConfirm
		preview := html.EscapeString(sess.Draft.Summary())
		return []Effect{Reply{
			Text:     fmt.Sprintf(m.texts.Confirm, preview),
			Keyboard: confirmKeyboard(),
		}}
	default:
		// Stray input while the menu is up: reissue the menu, stay put.
		return []Effect{Reply{Text: m.texts.Fallback, Keyboard: m.MenuKeyboard()}}
	}
}

func (m *Machine) stepAwaitingText(sess *Session, text string) []Effect {
	switch sess.Pending {
	case FieldTitle:
		sess.Draft.Title = text
	case FieldBody:
		sess.Draft.Body = text
	case FieldTags:
		sess.Draft.Tags = text
	}
	sess.Pending = FieldNone
	sess.State = StateMenu
	return []Effect{m.menuReply(sess)}
}

func (m *Machine) stepAwaitingRoom(sess *Session, text string) []Effect {
	switch {
	case text == ButtonNoRoom:
		sess.Draft.Room = ""
		sess.Draft.RoomSet = true
	case m.rooms.Has(text):
		sess.Draft.Room = text
		sess.Draft.RoomSet = true
	default:
		// Not a known room: keep waiting with the same keyboard.
		return []Effect{Reply{Text: m.texts.Fallback, Keyboard: m.roomKeyboard()}}
	}
	sess.State = StateMenu
	return []Effect{m.menuReply(sess)}
}

func (m *Machine) stepConfirm(sess *Session, text string) ([]Effect, error) {
	switch text {
	case ButtonPublish:
		sess.State = StateDone
		return []Effect{Publish{Draft: sess.Draft}, End{}}, nil
	case ButtonEdit:
		sess.State = StateMenu
		return []Effect{m.menuReply(sess)}, nil
	case ButtonCancel:
		sess.State = StateDone
		return []Effect{Reply{Text: m.texts.Cancelled, RemoveKeyboard: true}, End{}}, nil
	default:
		// The keyboard only offers three answers; anything else is a
		// contract violation and aborts the session.
		sess.State = StateDone
		return nil, fmt.Errorf("confirmation got %q: %w", text, ErrUnexpectedInput)
	}
}

func (m *Machine) menuReply(sess *Session) Reply {
	return Reply{
		Text:     fmt.Sprintf(m.texts.Menu, html.EscapeString(sess.Draft.Summary())),
		Keyboard: m.MenuKeyboard(),
	}
}
