package fitness

import (
	"context"
	"time"

	"github.com/conorfennell/knolstate/internal/domain"
)

const defaultRolloverInterval = time.Minute

// CheckRollover starts a fresh today row if the local date has changed since
// the current one began. The finished row moves into the weekly window and
// every goal restarts from zero. It reports whether a rollover happened.
func (s *Store) CheckRollover() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.rolloverLocked() {
		return false
	}
	s.persistAllLocked()
	return true
}

func (s *Store) rolloverLocked() bool {
	day := s.Today()
	if s.today.Date == day {
		return false
	}
	s.Logger.Info("rolling over daily stats", "from", s.today.Date, "to", day)
	s.history = append(s.history, s.today)
	s.trimHistoryLocked()
	s.today = domain.DailyStats{Date: day}
	s.recomputeLocked()
	return true
}

// StartRolloverWatch checks for a date change every interval until ctx is done.
func (s *Store) StartRolloverWatch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRolloverInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			s.CheckRollover()
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
