// Package importer loads markdown decks from a directory or a git repository
// into the flashcard store.
package importer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/flashcards"
	"github.com/conorfennell/knolstate/internal/gitsource"
	"github.com/conorfennell/knolstate/internal/knol"
	"github.com/conorfennell/knolstate/internal/parser"
	"github.com/conorfennell/knolstate/internal/store"
)

// Target receives imported cards. *flashcards.Store implements it.
type Target interface {
	HasHash(hash string) bool
	AddBatch(drafts []flashcards.Draft) ([]domain.Flashcard, error)
}

// Report summarizes one import.
type Report struct {
	Source  string
	Dir     string
	Files   int
	Parsed  int
	Added   int
	Skipped int
	// Errors holds per-file and per-card problems that did not stop the import.
	Errors []error
}

// Importer reads decks and appends their new cards.
type Importer struct {
	reposDir string
	logger   *slog.Logger
}

// New returns an Importer that keeps git checkouts under reposDir.
func New(reposDir string, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	if reposDir == "" {
		reposDir = "repos"
	}
	return &Importer{reposDir: reposDir, logger: logger}
}

// Import reads every .md deck under src, which is a directory or a git URL,
// and appends the cards whose content hash target does not have yet. A card
// without a category is filed under its file's name. Cards are appended in
// one batch.
func (im *Importer) Import(ctx context.Context, src string, target Target) (Report, error) {
	report := Report{Source: src, Dir: src}
	if gitsource.IsRemote(src) {
		dir, err := gitsource.LocalPath(im.reposDir, src)
		if err != nil {
			return report, err
		}
		if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
			return report, fmt.Errorf("create repos directory: %w", err)
		}
		if err := gitsource.Sync(ctx, src, dir, im.logger); err != nil {
			return report, err
		}
		report.Dir = dir
	}

	seen := make(map[string]bool)
	var drafts []flashcards.Draft
	walkErr := filepath.WalkDir(report.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Files++
		cards, err := parser.ParseFile(path)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("parsing %s: %w", path, err))
			return nil
		}
		stem := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		for _, c := range cards {
			report.Parsed++
			if c.Category == "" {
				c.Category = stem
			}
			draft := flashcards.Draft{Question: c.Question, Answer: c.Answer, Category: c.Category, Kind: c.Kind}
			if err := store.Validate(draft); err != nil {
				report.Errors = append(report.Errors, fmt.Errorf("%s: card %q: %w", path, c.Question, err))
				continue
			}
			hash := knol.Hash(c)
			if seen[hash] || target.HasHash(hash) {
				report.Skipped++
				continue
			}
			seen[hash] = true
			drafts = append(drafts, draft)
		}
		return nil
	})
	if walkErr != nil {
		return report, fmt.Errorf("walk %s: %w", report.Dir, walkErr)
	}

	if len(drafts) > 0 {
		added, err := target.AddBatch(drafts)
		if err != nil {
			return report, fmt.Errorf("add imported cards: %w", err)
		}
		report.Added = len(added)
	}

	im.logger.Info("import complete",
		"source", src,
		"files", report.Files,
		"parsed", report.Parsed,
		"added", report.Added,
		"skipped", report.Skipped,
		"errors", len(report.Errors),
	)
	return report, nil
}
