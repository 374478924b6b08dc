package flashcards

import (
	"cmp"
	"slices"
	"time"

	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/fsrs"
	"github.com/conorfennell/knolstate/internal/store"
)

// Memory state assumed for a card that has never been reviewed.
const (
	initialStability  = 1.0
	initialDifficulty = 5.0
)

// Review records a rating for the card with id and schedules its next review.
// It reports false when no such card exists.
func (s *Store) Review(id string, rating fsrs.Rating) (domain.Flashcard, bool, error) {
	if !rating.Valid() {
		return domain.Flashcard{}, false, store.Invalid("rating", "must be between 1 and 4")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.IndexOf(s.cards, id)
	if i < 0 {
		return domain.Flashcard{}, false, nil
	}

	now := s.Now()
	current := fsrs.CardState{Stability: initialStability, Difficulty: initialDifficulty}
	reviews := 0
	if r := s.cards[i].Review; r != nil {
		current = fsrs.CardState{Stability: r.Stability, Difficulty: r.Difficulty, LastReview: r.LastReview}
		reviews = r.Reviews
	}
	next := s.sched.NextState(current, rating, now)
	s.cards[i].Review = &domain.ReviewState{
		Stability:  next.Stability,
		Difficulty: next.Difficulty,
		Due:        fsrs.NextDueDate(next.Stability, now),
		LastReview: next.LastReview,
		Reviews:    reviews + 1,
	}
	s.Persist(KeyCards, s.cards)
	return s.cards[i], true, nil
}

// Due returns the cards to study at now: never-reviewed cards first in
// insertion order, then reviewed cards whose due date has passed, earliest
// first.
func (s *Store) Due(now time.Time) []domain.Flashcard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var fresh, due []domain.Flashcard
	for _, c := range s.cards {
		switch {
		case c.Review == nil:
			fresh = append(fresh, c)
		case !c.Review.Due.After(now):
			due = append(due, c)
		}
	}
	slices.SortStableFunc(due, func(a, b domain.Flashcard) int {
		return cmp.Compare(a.Review.Due.UnixNano(), b.Review.Due.UnixNano())
	})
	return append(fresh, due...)
}
