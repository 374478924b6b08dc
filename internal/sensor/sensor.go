// Package sensor defines the device collaborators the stores consume: a step
// counter feeding the fitness store and a speech engine used for pronunciation.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/conorfennell/knolstate/internal/store"
)

// ErrUnavailable is returned by devices that are not present.
var ErrUnavailable = errors.New("sensor unavailable")

// ErrPermissionDenied is returned when the user refuses sensor access.
var ErrPermissionDenied = errors.New("sensor permission denied")

// Subscription is an active event stream. Remove stops delivery; it is safe
// to call more than once.
type Subscription interface {
	Remove()
}

// Pedometer is a step counter.
type Pedometer interface {
	Available(ctx context.Context) (bool, error)
	RequestPermission(ctx context.Context) (bool, error)
	// StepsSince returns the steps counted between since and now.
	StepsSince(ctx context.Context, since, now time.Time) (int, error)
	// Watch calls fn with the steps counted since Watch was called.
	Watch(fn func(steps int)) (Subscription, error)
}

// StepSink receives today's cumulative step count.
type StepSink func(steps int)

type noopSubscription struct{}

func (noopSubscription) Remove() {}

// Attach backfills the steps counted since local midnight and then forwards
// cumulative counts from p to sink. When a reading arrives on a later local
// date than the previous one, the count is re-based on that date's midnight so
// a new day never inherits yesterday's steps. Any failure while attaching is
// logged and leaves the step count where it was: the returned Subscription is
// then a no-op, never nil. now supplies the local time of each reading.
func Attach(ctx context.Context, p Pedometer, sink StepSink, now func() time.Time, logger *slog.Logger) Subscription {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	if p == nil {
		return noopSubscription{}
	}
	sub, err := attach(ctx, p, sink, now, logger)
	if err != nil {
		logger.Warn("pedometer not attached", "error", err)
		return noopSubscription{}
	}
	return sub
}

// counter turns the steps reported since Watch into today's total.
type counter struct {
	mu   sync.Mutex
	day  string
	base int
}

func attach(ctx context.Context, p Pedometer, sink StepSink, now func() time.Time, logger *slog.Logger) (Subscription, error) {
	ok, err := p.Available(ctx)
	if err != nil {
		return nil, fmt.Errorf("availability check: %w", err)
	}
	if !ok {
		return nil, ErrUnavailable
	}
	granted, err := p.RequestPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("permission request: %w", err)
	}
	if !granted {
		return nil, ErrPermissionDenied
	}
	t := now()
	initial, err := p.StepsSince(ctx, store.StartOfDay(t), t)
	if err != nil {
		return nil, fmt.Errorf("steps since midnight: %w", err)
	}
	c := &counter{day: store.DateKey(t), base: max(0, initial)}
	sink(c.base)

	sub, err := p.Watch(func(steps int) {
		c.mu.Lock()
		defer c.mu.Unlock()
		t := now()
		if day := store.DateKey(t); day != c.day {
			c.day = day
			today, err := p.StepsSince(ctx, store.StartOfDay(t), t)
			if err != nil {
				// Count the new day from this reading on.
				logger.Warn("re-basing steps at midnight", "error", err)
				today = 0
			}
			c.base = max(0, today) - steps
		}
		sink(max(0, c.base+steps))
	})
	if err != nil {
		return nil, fmt.Errorf("watch steps: %w", err)
	}
	return sub, nil
}

// Speaker reads text aloud.
type Speaker interface {
	Speak(ctx context.Context, text, language string) error
}
