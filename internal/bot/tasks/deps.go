// Package tasks implements the scheduled maintenance tasks: SQL
// maintenance and expired-session sweeping.
package tasks

import (
	"log/slog"

	"github.com/clubware/askbridge/internal/config"
	"github.com/clubware/askbridge/internal/database"
	"github.com/clubware/askbridge/internal/session"
)

// TaskDeps contains the dependencies available to scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config

	// MemorySessions is set only when the memory session backend is in
	// use; the redis backend expires keys natively and needs no sweep.
	MemorySessions *session.Memory
}
