// Package store holds the machinery shared by the app stores: loading
// collections from a kv.Storage, scheduling write-through after mutations,
// id generation and input validation.
//
// Each app store owns its collections in memory and is the only writer of its
// keys. Reads never touch storage. Durability is eventually consistent: a
// mutation is visible to readers as soon as it returns, and its snapshot
// reaches storage when the Writer next flushes. There is no transaction across
// keys, so a crash between two writes can leave collections out of step.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/conorfennell/knolstate/internal/kv"
)

// Options configure a Base.
type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
}

// Option mutates Options.
type Option func(*Options)

// WithLogger sets the logger used for storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// Base carries the storage plumbing embedded by every app store.
type Base struct {
	Storage kv.Storage
	Writer  *Writer
	Logger  *slog.Logger
	Now     func() time.Time

	ready atomic.Bool
}

// NewBase builds a Base and starts its Writer.
func NewBase(storage kv.Storage, opts ...Option) *Base {
	o := Options{Logger: slog.Default(), Now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Base{
		Storage: storage,
		Writer:  NewWriter(storage, o.Logger),
		Logger:  o.Logger,
		Now:     o.Now,
	}
}

// MarkReady enables write-through. Until then Persist is a no-op so that
// empty initial state never overwrites storage that has not been read yet.
func (b *Base) MarkReady() { b.ready.Store(true) }

// Ready reports whether loading has finished.
func (b *Base) Ready() bool { return b.ready.Load() }

// Persist encodes v and schedules it for key.
func (b *Base) Persist(key string, v any) {
	if !b.ready.Load() {
		return
	}
	blob, err := json.Marshal(v)
	if err != nil {
		b.Logger.Error("encode collection failed", "key", key, "error", err)
		return
	}
	b.Writer.Schedule(key, blob)
}

// Today returns the current local calendar date key.
func (b *Base) Today() string { return DateKey(b.Now()) }

// Flush waits for every scheduled write.
func (b *Base) Flush(ctx context.Context) error { return b.Writer.Flush(ctx) }

// Close flushes and stops the writer.
func (b *Base) Close(ctx context.Context) error { return b.Writer.Close(ctx) }

// Slot describes one persisted collection to load.
type Slot struct {
	Key string
	// Target is a pointer the stored JSON is decoded into.
	Target any
	// Default resets Target to its fallback value.
	Default func()
	// Found is set when Target was decoded from storage.
	Found bool
}

// LoadAll reads every slot concurrently and returns when all are done. Absent
// keys, read failures and corrupt values fall back to the slot's default; the
// failures are logged, never returned.
func LoadAll(ctx context.Context, storage kv.Storage, logger *slog.Logger, slots ...*Slot) {
	var wg sync.WaitGroup
	for _, slot := range slots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slot.load(ctx, storage, logger)
		}()
	}
	wg.Wait()
}

func (s *Slot) load(ctx context.Context, storage kv.Storage, logger *slog.Logger) {
	blob, err := storage.Get(ctx, s.Key)
	if err != nil {
		logger.Warn("load failed, using defaults", "key", s.Key, "error", err)
		s.Default()
		return
	}
	if blob == nil {
		s.Default()
		return
	}
	if err := json.Unmarshal(blob, s.Target); err != nil {
		logger.Warn("stored value is corrupt, using defaults", "key", s.Key, "error", err)
		s.Default()
		return
	}
	s.Found = true
}
