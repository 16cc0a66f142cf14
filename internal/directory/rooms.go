// Package directory holds the room directory: an immutable snapshot of the
// rooms a question may be cross-posted to, loaded from the database at
// startup and replaced wholesale on an explicit reload.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/clubware/askbridge/internal/database"
)

// Room pairs a room name with its chat surface. ChatID zero means the room
// exists but has no chat to post to.
type Room struct {
	Name   string
	ChatID int64
}

type snapshot struct {
	ordered []Room
	byName  map[string]Room
}

// Rooms is a read-mostly view over the rooms table. Lookups always hit the
// current snapshot; Reload swaps in a fresh one atomically, so readers never
// observe a partially updated directory.
type Rooms struct {
	store   database.Store
	logger  *slog.Logger
	current atomic.Pointer[snapshot]
}

// NewRooms creates a room directory and performs the initial load.
func NewRooms(ctx context.Context, store database.Store, logger *slog.Logger) (*Rooms, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Rooms{
		store:  store,
		logger: logger.With("component", "room_directory"),
	}
	if _, err := r.Reload(ctx); err != nil {
		return nil, fmt.Errorf("failed to load room directory: %w", err)
	}
	return r, nil
}

// Reload replaces the snapshot with the current contents of the rooms table
// and returns the number of rooms loaded.
func (r *Rooms) Reload(ctx context.Context) (int, error) {
	rows, err := r.store.ListRooms(ctx)
	if err != nil {
		return 0, err
	}

	snap := &snapshot{
		ordered: make([]Room, 0, len(rows)),
		byName:  make(map[string]Room, len(rows)),
	}
	for _, row := range rows {
		room := Room{Name: row.Name, ChatID: row.ChatID}
		snap.ordered = append(snap.ordered, room)
		snap.byName[room.Name] = room
	}

	r.current.Store(snap)
	r.logger.InfoContext(ctx, "Room directory loaded", "rooms", len(snap.ordered))
	return len(snap.ordered), nil
}

// Names returns the room names in listing order.
func (r *Rooms) Names() []string {
	snap := r.current.Load()
	names := make([]string, 0, len(snap.ordered))
	for _, room := range snap.ordered {
		names = append(names, room.Name)
	}
	return names
}

// ByName resolves a room name to its entry.
func (r *Rooms) ByName(name string) (Room, bool) {
	room, ok := r.current.Load().byName[name]
	return room, ok
}

// Has reports whether a room with the given name exists.
func (r *Rooms) Has(name string) bool {
	_, ok := r.ByName(name)
	return ok
}
