package tasks

import (
	"context"
	"time"
)

// newSessionSweepTask creates the scheduled task evicting expired
// conversation sessions from the memory session store.
func newSessionSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "session_sweep")

	return func(ctx context.Context) error {
		dropped := deps.MemorySessions.Sweep(time.Now())
		if dropped > 0 {
			log.InfoContext(ctx, "Swept expired sessions", "dropped", dropped)
		}
		return nil
	}
}
