// Package flashcards is the flashcard app's state store: cards, categories,
// search, review scheduling and topic generation.
package flashcards

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/fsrs"
	"github.com/conorfennell/knolstate/internal/generate"
	"github.com/conorfennell/knolstate/internal/knol"
	"github.com/conorfennell/knolstate/internal/kv"
	"github.com/conorfennell/knolstate/internal/seed"
	"github.com/conorfennell/knolstate/internal/store"
)

// Storage keys.
const (
	KeyCards      = "@flashcards_data"
	KeyCategories = "@categories_data"
)

// Store owns the flashcard collections. All methods are safe for concurrent use.
type Store struct {
	*store.Base

	gen     generate.Generator
	seed    seed.Flashcards
	sched   *fsrs.Params
	pending atomic.Int32

	mu         sync.RWMutex
	cards      []domain.Flashcard
	categories []domain.Category
	query      string
}

// New builds an unloaded Store. gen may be nil, in which case Generate fails
// with generate.ErrMissingCredential.
func New(storage kv.Storage, gen generate.Generator, opts ...store.Option) (*Store, error) {
	sd, err := seed.LoadFlashcards()
	if err != nil {
		return nil, err
	}
	return &Store{
		Base:  store.NewBase(storage, opts...),
		gen:   gen,
		seed:  sd,
		sched: fsrs.DefaultParams(),
	}, nil
}

// Load reads both collections, falling back to the seed data for any key that
// is absent or unreadable, and then enables write-through.
func (s *Store) Load(ctx context.Context) error {
	var cards []domain.Flashcard
	var categories []domain.Category
	cardSlot := &store.Slot{Key: KeyCards, Target: &cards, Default: func() { cards = s.seedCards() }}
	catSlot := &store.Slot{Key: KeyCategories, Target: &categories, Default: func() { categories = s.seedCategories() }}
	store.LoadAll(ctx, s.Storage, s.Logger, cardSlot, catSlot)

	if n := store.BackfillIDs(cards, "card"); n > 0 {
		s.Logger.Info("assigned missing card ids", "count", n)
	}
	if n := store.BackfillIDs(categories, "cat"); n > 0 {
		s.Logger.Info("assigned missing category ids", "count", n)
	}
	for i := range cards {
		cards[i].Normalize()
		if cards[i].Hash == "" {
			cards[i].Hash = knol.Hash(cards[i])
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards, s.categories = cards, categories
	s.MarkReady()
	s.persistAll()
	return nil
}

func (s *Store) seedCards() []domain.Flashcard {
	now := s.Now()
	out := make([]domain.Flashcard, 0, len(s.seed.Cards))
	for _, sc := range s.seed.Cards {
		kind, err := domain.ParseCardKind(sc.Type)
		if err != nil {
			kind = domain.KindText
		}
		c := domain.Flashcard{
			ID:        store.NewID("card"),
			Question:  sc.Question,
			Answer:    sc.Answer,
			Category:  sc.Category,
			CreatedAt: now,
			Kind:      kind,
		}
		c.Normalize()
		c.Hash = knol.Hash(c)
		out = append(out, c)
	}
	return out
}

func (s *Store) seedCategories() []domain.Category {
	out := make([]domain.Category, 0, len(s.seed.Categories))
	for _, sc := range s.seed.Categories {
		out = append(out, domain.Category{ID: store.NewID("cat"), Name: sc.Name, Color: sc.Color})
	}
	return out
}

// persistAll must be called with mu held.
func (s *Store) persistAll() {
	s.Persist(KeyCards, s.cards)
	s.Persist(KeyCategories, s.categories)
}

// Cards returns every card in insertion order.
func (s *Store) Cards() []domain.Flashcard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Flashcard(nil), s.cards...)
}

// Card returns the card with id.
func (s *Store) Card(id string) (domain.Flashcard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := store.IndexOf(s.cards, id); i >= 0 {
		return s.cards[i], true
	}
	return domain.Flashcard{}, false
}

// Categories returns every category in insertion order.
func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...)
}

// CategoryCounts maps each category name to the number of cards filed under it.
// Categories without cards are present with a zero count.
func (s *Store) CategoryCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int, len(s.categories))
	for _, c := range s.categories {
		counts[c.Name] = 0
	}
	for _, c := range s.cards {
		counts[s.categoryNameLocked(c.Category)]++
	}
	return counts
}

// categoryNameLocked returns the stored spelling of name, or name itself.
func (s *Store) categoryNameLocked(name string) string {
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return c.Name
		}
	}
	return name
}

// HasHash reports whether a card with the given content hash exists.
func (s *Store) HasHash(hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cards {
		if c.Hash == hash {
			return true
		}
	}
	return false
}

// SetSearchQuery sets the query applied by Filtered.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// ClearSearch resets the query so Filtered returns every card.
func (s *Store) ClearSearch() { s.SetSearchQuery("") }

// Query returns the current search query.
func (s *Store) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Filtered returns the cards matching the current query, recomputed from the
// full collection on every call.
func (s *Store) Filtered() []domain.Flashcard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterFlashcards(s.cards, s.query)
}

// FilterFlashcards returns the cards whose question, answer or category
// contains query, ignoring case and surrounding whitespace. An empty query
// returns a copy of cards. Order is preserved.
func FilterFlashcards(cards []domain.Flashcard, query string) []domain.Flashcard {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Flashcard, 0, len(cards))
	for _, c := range cards {
		if q == "" ||
			strings.Contains(strings.ToLower(c.Question), q) ||
			strings.Contains(strings.ToLower(c.Answer), q) ||
			strings.Contains(strings.ToLower(c.Category), q) {
			out = append(out, c)
		}
	}
	return out
}

// ResetAll removes both keys from storage and restores the seed collections.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Writer.Drop(ctx, KeyCards, KeyCategories); err != nil {
		return fmt.Errorf("reset flashcards: %w", err)
	}
	s.cards = s.seedCards()
	s.categories = s.seedCategories()
	s.query = ""
	s.persistAll()
	if err := s.Writer.Flush(ctx); err != nil {
		return fmt.Errorf("reset flashcards: %w", err)
	}
	return nil
}
