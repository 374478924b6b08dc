package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conorfennell/knolstate/internal/flashcards"
	"github.com/conorfennell/knolstate/internal/kv"
	"github.com/conorfennell/knolstate/internal/store"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeDeck(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func newCardStore(t *testing.T) *flashcards.Store {
	t.Helper()
	m := kv.NewMemory()
	_ = m.Set(context.Background(), flashcards.KeyCards, []byte("[]"))
	s, err := flashcards.New(m, nil,
		store.WithLogger(quietLogger()),
		store.WithClock(func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestImportDirectory(t *testing.T) {
	dir := t.TempDir()
	writeDeck(t, dir, "spanish.md", "Q: Hola\nA: Hello\n---\nQ: Adiós\nA: Goodbye\n")
	writeDeck(t, dir, "nested/math.md", "Q: 2+2?\nA: 4\nC: Math\n\nQ: Blank answer\n")
	writeDeck(t, dir, "notes.txt", "Q: ignored\nA: ignored\n")
	writeDeck(t, dir, "broken.md", "Q: q\nA: a\nT: hologram\n")

	s := newCardStore(t)
	im := New(t.TempDir(), quietLogger())

	report, err := im.Import(context.Background(), dir, s)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if report.Files != 3 || report.Added != 3 || report.Parsed != 4 || len(report.Errors) != 2 {
		t.Errorf("Unexpected report %+v", report)
	}

	counts := s.CategoryCounts()
	if counts["spanish"] != 2 || counts["Math"] != 1 {
		t.Errorf("Unexpected category counts %v", counts)
	}

	// A second import finds nothing new.
	again, err := im.Import(context.Background(), dir, s)
	if err != nil {
		t.Fatalf("Second import failed: %v", err)
	}
	if again.Added != 0 || again.Skipped != 3 {
		t.Errorf("Expected every card skipped on re-import, got %+v", again)
	}
	if got := len(s.Cards()); got != 3 {
		t.Errorf("Expected 3 cards after two imports, got %d", got)
	}
}

func TestImportSkipsDuplicatesWithinBatch(t *testing.T) {
	dir := t.TempDir()
	writeDeck(t, dir, "a.md", "Q: Same\nA: Card\nC: Dup\n")
	writeDeck(t, dir, "b.md", "Q:  same \nA: CARD\nC: dup\n")

	s := newCardStore(t)
	report, err := New(t.TempDir(), quietLogger()).Import(context.Background(), dir, s)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if report.Added != 1 || report.Skipped != 1 {
		t.Errorf("Expected one added and one skipped, got %+v", report)
	}
}

func TestImportMissingDirectory(t *testing.T) {
	s := newCardStore(t)
	if _, err := New("", quietLogger()).Import(context.Background(), filepath.Join(t.TempDir(), "nope"), s); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}
