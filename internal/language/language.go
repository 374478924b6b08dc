// Package language is the language-learning app's state store: the selected
// language, onboarding, lessons, vocabulary cards and learner progress.
package language

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/kv"
	"github.com/conorfennell/knolstate/internal/seed"
	"github.com/conorfennell/knolstate/internal/store"
)

// Storage keys.
const (
	KeySelected   = "@language_selected"
	KeyOnboarding = "@language_onboarding"
	KeyLessons    = "@language_lessons"
	KeyVocab      = "@language_vocab"
	KeyProgress   = "@language_progress"
)

// wordsPerLesson is credited to WordsLearned when a lesson is completed.
const wordsPerLesson = 10

// Store owns the language-learning collections. All methods are safe for
// concurrent use.
type Store struct {
	*store.Base

	seed seed.Language

	mu         sync.RWMutex
	selected   *domain.Language
	onboarded  bool
	lessons    []domain.Lesson
	vocab      []domain.VocabCard
	progress   domain.Progress
	vocabQuery string
}

// New builds an unloaded Store.
func New(storage kv.Storage, opts ...store.Option) (*Store, error) {
	sd, err := seed.LoadLanguage()
	if err != nil {
		return nil, err
	}
	return &Store{Base: store.NewBase(storage, opts...), seed: sd}, nil
}

// Load reads every collection, falling back to the starter lessons and
// vocabulary when absent, and enables write-through.
func (s *Store) Load(ctx context.Context) error {
	var (
		selected  *domain.Language
		onboarded bool
		lessons   []domain.Lesson
		vocab     []domain.VocabCard
		progress  domain.Progress
	)
	store.LoadAll(ctx, s.Storage, s.Logger,
		&store.Slot{Key: KeySelected, Target: &selected, Default: func() { selected = nil }},
		&store.Slot{Key: KeyOnboarding, Target: &onboarded, Default: func() { onboarded = false }},
		&store.Slot{Key: KeyLessons, Target: &lessons, Default: func() { lessons = s.seedLessons() }},
		&store.Slot{Key: KeyVocab, Target: &vocab, Default: func() { vocab = s.seedVocab() }},
		&store.Slot{Key: KeyProgress, Target: &progress, Default: func() { progress = domain.Progress{} }},
	)
	if n := store.BackfillIDs(lessons, "lesson"); n > 0 {
		s.Logger.Info("assigned missing lesson ids", "count", n)
	}
	if n := store.BackfillIDs(vocab, "vocab"); n > 0 {
		s.Logger.Info("assigned missing vocab ids", "count", n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected, s.onboarded, s.lessons, s.vocab, s.progress = selected, onboarded, lessons, vocab, progress
	s.MarkReady()
	s.persistAllLocked()
	return nil
}

func (s *Store) seedLessons() []domain.Lesson {
	return append([]domain.Lesson(nil), s.seed.Lessons...)
}

// seedVocab copies the starter cards with fresh ids, so a card deleted before
// a reset never shares an id with its replacement.
func (s *Store) seedVocab() []domain.VocabCard {
	now := s.Now()
	out := append([]domain.VocabCard(nil), s.seed.Vocab...)
	for i := range out {
		out[i].ID = store.NewID("vocab")
		out[i].CreatedAt = now
	}
	return out
}

func (s *Store) persistAllLocked() {
	s.Persist(KeySelected, s.selected)
	s.Persist(KeyOnboarding, s.onboarded)
	s.Persist(KeyLessons, s.lessons)
	s.Persist(KeyVocab, s.vocab)
	s.Persist(KeyProgress, s.progressLocked())
}

// Languages returns the selectable language catalog.
func (s *Store) Languages() []domain.Language {
	return append([]domain.Language(nil), s.seed.Languages...)
}

func (s *Store) findLanguage(match func(domain.Language) bool) (domain.Language, bool) {
	for _, l := range s.seed.Languages {
		if match(l) {
			return l, true
		}
	}
	return domain.Language{}, false
}

// SelectLanguage selects the catalog language with id.
func (s *Store) SelectLanguage(id string) error {
	l, ok := s.findLanguage(func(l domain.Language) bool { return l.ID == id })
	if !ok {
		return store.Invalid("language", fmt.Sprintf("unknown language %q", id))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &l
	s.Persist(KeySelected, s.selected)
	return nil
}

// SelectedLanguage returns the selected language, if any.
func (s *Store) SelectedLanguage() (domain.Language, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return domain.Language{}, false
	}
	return *s.selected, true
}

// CompleteOnboarding records that the user finished onboarding.
func (s *Store) CompleteOnboarding() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onboarded {
		return
	}
	s.onboarded = true
	s.Persist(KeyOnboarding, s.onboarded)
}

// Onboarded reports whether onboarding is complete.
func (s *Store) Onboarded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onboarded
}

// Lessons returns every lesson in insertion order.
func (s *Store) Lessons() []domain.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Lesson(nil), s.lessons...)
}

// Progress returns the learner's progress with lesson totals derived from the
// lesson list.
func (s *Store) Progress() domain.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progressLocked()
}

func (s *Store) progressLocked() domain.Progress {
	p := s.progress
	p.TotalLessons = len(s.lessons)
	p.CompletedLessons = 0
	for _, l := range s.lessons {
		if l.Completed {
			p.CompletedLessons++
		}
	}
	return p
}

// ResetAll removes every language key from storage and restores the starter
// lessons and vocabulary with zero progress and no selection.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Writer.Drop(ctx, KeySelected, KeyOnboarding, KeyLessons, KeyVocab, KeyProgress); err != nil {
		return fmt.Errorf("reset language: %w", err)
	}
	s.selected = nil
	s.onboarded = false
	s.lessons = s.seedLessons()
	s.vocab = s.seedVocab()
	s.progress = domain.Progress{}
	s.vocabQuery = ""
	s.persistAllLocked()
	if err := s.Writer.Flush(ctx); err != nil {
		return fmt.Errorf("reset language: %w", err)
	}
	return nil
}

// FilterVocab returns the cards whose word, translation or category contains
// query, ignoring case and surrounding whitespace. An empty query returns a
// copy of cards. Order is preserved.
func FilterVocab(cards []domain.VocabCard, query string) []domain.VocabCard {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.VocabCard, 0, len(cards))
	for _, c := range cards {
		if q == "" ||
			strings.Contains(strings.ToLower(c.Word), q) ||
			strings.Contains(strings.ToLower(c.Translation), q) ||
			strings.Contains(strings.ToLower(c.Category), q) {
			out = append(out, c)
		}
	}
	return out
}
