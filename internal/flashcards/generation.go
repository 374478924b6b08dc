package flashcards

import (
	"context"
	"fmt"

	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/generate"
	"github.com/conorfennell/knolstate/internal/store"
)

// Generating reports whether a Generate call is in flight.
func (s *Store) Generating() bool { return s.pending.Load() > 0 }

// Generate asks the generation service for cards on req.Topic and appends
// them all, creating the topic's category first if needed. On any error
// nothing is appended. If ctx is cancelled before the reply is applied the
// reply is discarded. Other mutations may run while the request is in flight.
func (s *Store) Generate(ctx context.Context, req generate.Request) ([]domain.Flashcard, error) {
	if req.Difficulty == "" {
		req.Difficulty = generate.Medium
	}
	if err := store.Validate(req); err != nil {
		return nil, err
	}
	if s.gen == nil {
		return nil, generate.ErrMissingCredential
	}

	s.pending.Add(1)
	defer s.pending.Add(-1)

	generated, err := s.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(generated) == 0 {
		return nil, generate.ErrEmptyResult
	}

	drafts := make([]Draft, 0, len(generated))
	for i, g := range generated {
		kind, err := domain.ParseCardKind(g.Type)
		if err != nil {
			kind = domain.KindText
		}
		category := g.Category
		if category == "" {
			category = req.Topic
		}
		d := Draft{Question: g.Question, Answer: g.Answer, Category: category, Kind: kind}
		if err := store.Validate(d); err != nil {
			return nil, fmt.Errorf("%w: card %d: %v", generate.ErrMalformedResponse, i, err)
		}
		drafts = append(drafts, d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		s.Logger.Info("discarding generated cards after cancellation", "topic", req.Topic, "count", len(drafts))
		return nil, err
	}
	if s.ensureCategoryLocked(req.Topic) {
		s.Persist(KeyCategories, s.categories)
	}
	added := s.appendBatchLocked(drafts)
	s.Logger.Info("generated cards", "topic", req.Topic, "count", len(added))
	return added, nil
}
