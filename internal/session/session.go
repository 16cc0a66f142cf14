// Package session persists in-flight conversation sessions, keyed by the
// user driving the conversation. Two backends exist: an in-process memory
// map (single instance deployments) and redis (shared TTL state).
package session

import (
	"context"

	"github.com/clubware/askbridge/internal/conversation"
)

// Store holds at most one conversation session per user. Implementations
// must expire abandoned sessions on their own: the conversation code never
// cleans up after users who walk away.
type Store interface {
	// Get returns the user's session, or nil, nil when there is none.
	Get(ctx context.Context, userID int64) (*conversation.Session, error)

	// Put stores the session and resets its expiry window.
	Put(ctx context.Context, userID int64, sess *conversation.Session) error

	// Delete discards the user's session. Deleting a missing session is not
	// an error.
	Delete(ctx context.Context, userID int64) error
}
