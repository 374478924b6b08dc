package flashcards

import (
	"strings"

	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/knol"
	"github.com/conorfennell/knolstate/internal/store"
)

// Draft is a card before it is stored.
type Draft struct {
	Question string          `json:"question" validate:"required"`
	Answer   string          `json:"answer" validate:"required"`
	Category string          `json:"category" validate:"required"`
	Kind     domain.CardKind `json:"type" validate:"omitempty,oneof=text equation image"`
	Equation string          `json:"equationData"`
	ImageURI string          `json:"imageUri"`
}

// Patch holds the card fields to change. Nil fields are left alone.
type Patch struct {
	Question *string
	Answer   *string
	Category *string
	Kind     *domain.CardKind
	Equation *string
	ImageURI *string
}

func (p Patch) validate() error {
	fields := []struct {
		name string
		v    *string
	}{{"question", p.Question}, {"answer", p.Answer}, {"category", p.Category}}
	for _, f := range fields {
		if f.v != nil && strings.TrimSpace(*f.v) == "" {
			return store.Invalid(f.name, "must not be empty")
		}
	}
	if p.Kind != nil {
		if _, err := domain.ParseCardKind(string(*p.Kind)); err != nil {
			return store.Invalid("type", err.Error())
		}
	}
	return nil
}

// CategoryDraft is a category before it is stored. An empty color picks one
// from the palette.
type CategoryDraft struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
}

func (s *Store) newCard(d Draft) domain.Flashcard {
	c := domain.Flashcard{
		ID:        store.NewID("card"),
		Question:  d.Question,
		Answer:    d.Answer,
		Category:  d.Category,
		CreatedAt: s.Now(),
		Kind:      d.Kind,
		Equation:  d.Equation,
		ImageURI:  d.ImageURI,
	}
	c.Normalize()
	c.Hash = knol.Hash(c)
	return c
}

// Add validates d and appends it as a new card.
func (s *Store) Add(d Draft) (domain.Flashcard, error) {
	if err := store.Validate(d); err != nil {
		return domain.Flashcard{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.newCard(d)
	s.cards = append(s.cards, c)
	s.Persist(KeyCards, s.cards)
	return c, nil
}

// AddBatch appends every draft or, if any draft is invalid, none of them.
// Categories named by the drafts that do not exist yet are created.
func (s *Store) AddBatch(drafts []Draft) ([]domain.Flashcard, error) {
	for _, d := range drafts {
		if err := store.Validate(d); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendBatchLocked(drafts), nil
}

// appendBatchLocked must be called with mu held and valid drafts.
func (s *Store) appendBatchLocked(drafts []Draft) []domain.Flashcard {
	added := make([]domain.Flashcard, 0, len(drafts))
	createdCategory := false
	for _, d := range drafts {
		if s.ensureCategoryLocked(d.Category) {
			createdCategory = true
		}
		c := s.newCard(d)
		s.cards = append(s.cards, c)
		added = append(added, c)
	}
	s.Persist(KeyCards, s.cards)
	if createdCategory {
		s.Persist(KeyCategories, s.categories)
	}
	return added
}

// ensureCategoryLocked creates a category named name unless one exists with
// that name in any case. It reports whether it created one.
func (s *Store) ensureCategoryLocked(name string) bool {
	if s.categoryIndexLocked(name) >= 0 {
		return false
	}
	s.categories = append(s.categories, domain.Category{
		ID:    store.NewID("cat"),
		Name:  name,
		Color: s.nextColorLocked(),
	})
	return true
}

func (s *Store) categoryIndexLocked(name string) int {
	for i, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// nextColorLocked rotates through the palette by category count.
func (s *Store) nextColorLocked() string {
	if len(s.seed.Palette) == 0 {
		return ""
	}
	return s.seed.Palette[len(s.categories)%len(s.seed.Palette)]
}

// Update merges p into the card with id. It reports false when no such card
// exists. The card's id and creation time never change.
func (s *Store) Update(id string, p Patch) (bool, error) {
	if err := p.validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.IndexOf(s.cards, id)
	if i < 0 {
		return false, nil
	}
	c := s.cards[i]
	if p.Question != nil {
		c.Question = *p.Question
	}
	if p.Answer != nil {
		c.Answer = *p.Answer
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Kind != nil {
		c.Kind = *p.Kind
	}
	if p.Equation != nil {
		c.Equation = *p.Equation
	}
	if p.ImageURI != nil {
		c.ImageURI = *p.ImageURI
	}
	c.Normalize()
	c.Hash = knol.Hash(c)
	s.cards[i] = c
	s.Persist(KeyCards, s.cards)
	return true, nil
}

// Delete removes the card with id and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.IndexOf(s.cards, id)
	if i < 0 {
		return false
	}
	s.cards = append(s.cards[:i:i], s.cards[i+1:]...)
	s.Persist(KeyCards, s.cards)
	return true
}

// AddCategory validates d and appends a category. Names are unique
// regardless of case.
func (s *Store) AddCategory(d CategoryDraft) (domain.Category, error) {
	d.Name = strings.TrimSpace(d.Name)
	if err := store.Validate(d); err != nil {
		return domain.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categoryIndexLocked(d.Name) >= 0 {
		return domain.Category{}, store.Invalid("name", "already exists")
	}
	if d.Color == "" {
		d.Color = s.nextColorLocked()
	}
	c := domain.Category{ID: store.NewID("cat"), Name: d.Name, Color: d.Color}
	s.categories = append(s.categories, c)
	s.Persist(KeyCategories, s.categories)
	return c, nil
}

// DeleteCategory removes the category with id. It fails with a
// *store.DependentsError while any card is filed under it. Deleting an
// unknown id does nothing.
func (s *Store) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.IndexOf(s.categories, id)
	if i < 0 {
		return nil
	}
	name := s.categories[i].Name
	n := 0
	for _, c := range s.cards {
		if strings.EqualFold(c.Category, name) {
			n++
		}
	}
	if n > 0 {
		return &store.DependentsError{ID: id, Count: n}
	}
	s.categories = append(s.categories[:i:i], s.categories[i+1:]...)
	s.Persist(KeyCategories, s.categories)
	return nil
}
