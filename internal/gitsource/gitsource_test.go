package gitsource

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestLocalPath(t *testing.T) {
	testCases := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://github.com/acme/decks.git", want: filepath.Join("repos", "github.com", "acme", "decks")},
		{url: "http://git.example.org/team/spanish", want: filepath.Join("repos", "git.example.org", "team", "spanish")},
		{url: "git@github.com:acme/decks.git", want: filepath.Join("repos", "github.com", "acme", "decks")},
		{url: "not a url", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			got, err := LocalPath("repos", tc.url)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected an error, got %q", got)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("LocalPath = %q, %v; want %q", got, err, tc.want)
			}
		})
	}
}

func TestIsRemote(t *testing.T) {
	for src, want := range map[string]bool{
		"https://github.com/acme/decks.git": true,
		"git@github.com:acme/decks.git":     true,
		"./decks":                           false,
		"/home/me/decks":                    false,
	} {
		if got := IsRemote(src); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", src, got, want)
		}
	}
}

// initRepo creates a repository with one committed deck.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "deck.md"), []byte("Q: q\nA: a\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree failed: %v", err)
	}
	if _, err := wt.Add("deck.md"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	_, err = wt.Commit("add deck", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	return dir
}

func TestSyncClonesThenPulls(t *testing.T) {
	src := initRepo(t)
	dst := filepath.Join(t.TempDir(), "checkout")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := Sync(context.Background(), src, dst, logger); err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "deck.md")); err != nil {
		t.Fatalf("Expected deck.md in the checkout: %v", err)
	}
	if err := Sync(context.Background(), src, dst, logger); err != nil {
		t.Errorf("Pull of an up-to-date checkout failed: %v", err)
	}
}
