package kv

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() returned an unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStorageBackends(t *testing.T) {
	backends := []struct {
		name    string
		storage func(t *testing.T) Storage
	}{
		{name: "sqlite", storage: func(t *testing.T) Storage { return openTestSQLite(t) }},
		{name: "memory", storage: func(t *testing.T) Storage { return NewMemory() }},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.storage(t)

			t.Run("absent key returns nil", func(t *testing.T) {
				v, err := s.Get(ctx, "@missing")
				if err != nil {
					t.Fatalf("Get() returned an unexpected error: %v", err)
				}
				if v != nil {
					t.Errorf("Expected nil value for absent key, but got %q", v)
				}
			})

			t.Run("set replaces whole value", func(t *testing.T) {
				if err := s.Set(ctx, "@cards", []byte(`[1,2,3]`)); err != nil {
					t.Fatalf("Set() returned an unexpected error: %v", err)
				}
				if err := s.Set(ctx, "@cards", []byte(`[4]`)); err != nil {
					t.Fatalf("Set() returned an unexpected error: %v", err)
				}
				v, err := s.Get(ctx, "@cards")
				if err != nil {
					t.Fatalf("Get() returned an unexpected error: %v", err)
				}
				if !bytes.Equal(v, []byte(`[4]`)) {
					t.Errorf("Expected value '[4]', but got '%s'", v)
				}
			})

			t.Run("remove deletes several keys", func(t *testing.T) {
				for _, k := range []string{"@a", "@b", "@c"} {
					if err := s.Set(ctx, k, []byte(`"x"`)); err != nil {
						t.Fatalf("Set(%s) returned an unexpected error: %v", k, err)
					}
				}
				if err := s.Remove(ctx, "@a", "@b", "@never-set"); err != nil {
					t.Fatalf("Remove() returned an unexpected error: %v", err)
				}
				for _, k := range []string{"@a", "@b"} {
					if v, _ := s.Get(ctx, k); v != nil {
						t.Errorf("Expected %s to be removed, but got %q", k, v)
					}
				}
				if v, _ := s.Get(ctx, "@c"); v == nil {
					t.Error("Expected @c to survive Remove, but it was gone")
				}
			})
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := []byte("abc")
	m.Set(ctx, "k", in)
	in[0] = 'z'

	out, _ := m.Get(ctx, "k")
	if string(out) != "abc" {
		t.Fatalf("Get = %q, want %q", out, "abc")
	}
	out[1] = 'z'
	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("Get after mutation = %q, want %q", again, "abc")
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() returned an unexpected error: %v", err)
	}
	if err := db.Set(ctx, "@goals", []byte(`[]`)); err != nil {
		t.Fatalf("Set() returned an unexpected error: %v", err)
	}
	db.Close()

	db, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() returned an unexpected error: %v", err)
	}
	defer db.Close()

	keys, err := db.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() returned an unexpected error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "@goals" {
		t.Errorf("Expected keys [@goals], but got %v", keys)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, _, err := Open(Options{Driver: "leveldb"}); err == nil {
		t.Fatal("Expected an error for an unknown driver, but got nil")
	}
}

func TestOpenMemoryDriver(t *testing.T) {
	s, closer, err := Open(Options{Driver: "memory"})
	if err != nil {
		t.Fatalf("Open() returned an unexpected error: %v", err)
	}
	defer closer.Close()
	if _, ok := s.(*Memory); !ok {
		t.Errorf("Expected *Memory storage, but got %T", s)
	}
}
