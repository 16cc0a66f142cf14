package session

import (
	"context"
	"sync"
	"time"

	"github.com/clubware/askbridge/internal/conversation"
)

type memoryEntry struct {
	sess     *conversation.Session
	deadline time.Time
}

// Memory is an in-process session store. Expired entries are dropped lazily
// on access and in bulk by Sweep, which the scheduler runs periodically.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int64]memoryEntry
}

// NewMemory creates a memory store whose sessions expire ttl after their
// last write.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[int64]memoryEntry),
	}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, userID int64) (*conversation.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[userID]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.deadline) {
		delete(m.entries, userID)
		return nil, nil
	}
	return entry.sess, nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, userID int64, sess *conversation.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[userID] = memoryEntry{
		sess:     sess,
		deadline: time.Now().Add(m.ttl),
	}
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, userID)
	return nil
}

// Sweep evicts all expired sessions and returns how many were dropped.
func (m *Memory) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for userID, entry := range m.entries {
		if now.After(entry.deadline) {
			delete(m.entries, userID)
			dropped++
		}
	}
	return dropped
}
