// Package jobs runs background maintenance tasks.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/sellorama/sellorama/internal/repository"
)

// DefaultSweepInterval is how often the session sweeper runs. Logins
// also sweep opportunistically; this catches idle periods.
const DefaultSweepInterval = time.Hour

// SessionSweeper periodically deletes expired session rows.
type SessionSweeper struct {
	repo     repository.Querier
	interval time.Duration
	logger   *slog.Logger
}

// NewSessionSweeper creates a sweeper. A non-positive interval falls
// back to DefaultSweepInterval.
func NewSessionSweeper(repo repository.Querier, interval time.Duration, logger *slog.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionSweeper{repo: repo, interval: interval, logger: logger}
}

// Run sweeps on a ticker until the context is cancelled. Call it in a
// goroutine from main.
func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	removed, err := s.repo.DeleteExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("session sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", "count", removed)
	}
}
