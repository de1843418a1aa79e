package core

// scheduler.go runs the background sweep that drops expired workbook
// sessions. Expired sessions are already invisible to lookups; the sweep only
// releases their memory. The sweeper stops when its context is cancelled.

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper removes expired sessions every interval until ctx is done.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	slog.Info("session sweeper started",
		"interval", interval.String(),
		"ttl", s.ttl.String(),
		"max_workbooks", s.maxWorkbooks,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("expired workbooks removed", "count", n)
			}
		}
	}
}

// Sweep removes expired sessions now and returns how many were removed.
func (s *Service) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
