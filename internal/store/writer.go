package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/conorfennell/knolstate/internal/kv"
)

// Writer persists collection snapshots asynchronously. It keeps a dirty set of
// keys mapped to their latest encoded snapshot; bursts of mutations to the same
// key coalesce into one write. Writes are serialized, so a key is never
// overwritten by an older snapshot.
type Writer struct {
	storage kv.Storage
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string][]byte
	order   []string

	writeMu sync.Mutex

	kick     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewWriter starts a Writer with a background flush goroutine.
func NewWriter(storage kv.Storage, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		storage: storage,
		logger:  logger,
		pending: make(map[string][]byte),
		kick:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Schedule marks key dirty with blob as its latest snapshot and wakes the flusher.
// It never blocks on storage.
func (w *Writer) Schedule(key string, blob []byte) {
	w.mu.Lock()
	if _, ok := w.pending[key]; !ok {
		w.order = append(w.order, key)
	}
	w.pending[key] = blob
	w.mu.Unlock()

	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Pending returns the number of dirty keys not yet written.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Flush synchronously writes every dirty key. Failed writes are logged and
// returned joined; they are not retried.
func (w *Writer) Flush(ctx context.Context) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.writeBatch(ctx)
}

// Drop discards pending writes for keys and removes them from storage. No
// in-flight write can land after Drop returns.
func (w *Writer) Drop(ctx context.Context, keys ...string) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	for _, k := range keys {
		delete(w.pending, k)
	}
	w.order = slices.DeleteFunc(w.order, func(k string) bool { return slices.Contains(keys, k) })
	w.mu.Unlock()

	if err := w.storage.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("remove keys: %w", err)
	}
	return nil
}

// Close stops the background goroutine and flushes what is left.
func (w *Writer) Close(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
	return w.Flush(ctx)
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case <-w.kick:
			w.writeMu.Lock()
			_ = w.writeBatch(context.Background())
			w.writeMu.Unlock()
		}
	}
}

// writeBatch must be called with writeMu held.
func (w *Writer) writeBatch(ctx context.Context) error {
	w.mu.Lock()
	batch, order := w.pending, w.order
	w.pending, w.order = make(map[string][]byte), nil
	w.mu.Unlock()

	var errs []error
	for _, key := range order {
		if err := w.storage.Set(ctx, key, batch[key]); err != nil {
			w.logger.Warn("write-through failed", "key", key, "error", err)
			errs = append(errs, fmt.Errorf("write %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
