package language

import (
	"context"
	"math"

	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/sensor"
	"github.com/conorfennell/knolstate/internal/store"
)

// VocabDraft is a vocabulary card before it is stored. An empty Language
// means the selected language.
type VocabDraft struct {
	Word          string `json:"word" validate:"required"`
	Translation   string `json:"translation" validate:"required"`
	Pronunciation string `json:"pronunciation"`
	Example       string `json:"example"`
	Language      string `json:"language" validate:"required"`
	Category      string `json:"category" validate:"required"`
}

// VocabPatch holds the card fields to change. Nil fields are left alone.
type VocabPatch struct {
	Word          *string `json:"word" validate:"omitnil,min=1"`
	Translation   *string `json:"translation" validate:"omitnil,min=1"`
	Pronunciation *string `json:"pronunciation"`
	Example       *string `json:"example"`
	Category      *string `json:"category" validate:"omitnil,min=1"`
}

// Practice is the outcome of one study session.
type Practice struct {
	Answered int `json:"answered" validate:"gte=0"`
	Correct  int `json:"correct" validate:"gte=0,ltefield=Answered"`
	Minutes  int `json:"minutes" validate:"gte=0"`
}

// CompleteLesson marks the lesson with id as done and credits its words. It
// reports false when no such lesson exists. Completing a lesson twice
// changes nothing.
func (s *Store) CompleteLesson(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.IndexOf(s.lessons, id)
	if i < 0 {
		return false
	}
	s.completeLessonLocked(i)
	return true
}

func (s *Store) completeLessonLocked(i int) {
	s.lessons[i].Progress = 100
	if s.lessons[i].Completed {
		s.Persist(KeyLessons, s.lessons)
		return
	}
	s.lessons[i].Completed = true
	s.progress.WordsLearned += wordsPerLesson
	s.touchStreakLocked()
	s.Persist(KeyLessons, s.lessons)
	s.Persist(KeyProgress, s.progressLocked())
}

// SetLessonProgress sets a lesson's completion percentage. Reaching 100
// completes it; dropping a completed lesson below 100 reopens it and
// withdraws its words. It reports false when no such lesson exists.
func (s *Store) SetLessonProgress(id string, percent int) (bool, error) {
	if percent < 0 || percent > 100 {
		return false, store.Invalid("progress", "must be between 0 and 100")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.IndexOf(s.lessons, id)
	if i < 0 {
		return false, nil
	}
	if percent == 100 {
		s.completeLessonLocked(i)
		return true, nil
	}
	s.lessons[i].Progress = percent
	if s.lessons[i].Completed {
		// Take back the words credited on completion.
		s.lessons[i].Completed = false
		s.progress.WordsLearned = max(0, s.progress.WordsLearned-wordsPerLesson)
	}
	s.Persist(KeyLessons, s.lessons)
	s.Persist(KeyProgress, s.progressLocked())
	return true, nil
}

// touchStreakLocked counts today as a study day.
func (s *Store) touchStreakLocked() {
	today := s.Now()
	switch s.progress.LastStudyDate {
	case store.DateKey(today):
		return
	case store.DateKey(today.AddDate(0, 0, -1)):
		s.progress.DailyStreak++
	default:
		s.progress.DailyStreak = 1
	}
	s.progress.LastStudyDate = store.DateKey(today)
}

// RecordPractice folds a study session into the learner's accuracy, study
// time and streak.
func (s *Store) RecordPractice(p Practice) error {
	if err := store.Validate(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Answered += p.Answered
	s.progress.Correct += p.Correct
	if s.progress.Answered > 0 {
		s.progress.Accuracy = int(math.Round(100 * float64(s.progress.Correct) / float64(s.progress.Answered)))
	}
	s.progress.StudyTime += p.Minutes
	s.touchStreakLocked()
	s.Persist(KeyProgress, s.progressLocked())
	return nil
}

// Vocab returns every vocabulary card in insertion order.
func (s *Store) Vocab() []domain.VocabCard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.VocabCard(nil), s.vocab...)
}

// AddVocab validates d and appends a vocabulary card.
func (s *Store) AddVocab(d VocabDraft) (domain.VocabCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.Language == "" && s.selected != nil {
		d.Language = s.selected.Name
	}
	if err := store.Validate(d); err != nil {
		return domain.VocabCard{}, err
	}
	v := domain.VocabCard{
		ID:            store.NewID("vocab"),
		Word:          d.Word,
		Translation:   d.Translation,
		Pronunciation: d.Pronunciation,
		Example:       d.Example,
		Language:      d.Language,
		Category:      d.Category,
		CreatedAt:     s.Now(),
	}
	s.vocab = append(s.vocab, v)
	s.Persist(KeyVocab, s.vocab)
	return v, nil
}

// UpdateVocab merges p into the card with id. It reports false when no such
// card exists.
func (s *Store) UpdateVocab(id string, p VocabPatch) (bool, error) {
	if err := store.Validate(p); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.IndexOf(s.vocab, id)
	if i < 0 {
		return false, nil
	}
	v := &s.vocab[i]
	if p.Word != nil {
		v.Word = *p.Word
	}
	if p.Translation != nil {
		v.Translation = *p.Translation
	}
	if p.Pronunciation != nil {
		v.Pronunciation = *p.Pronunciation
	}
	if p.Example != nil {
		v.Example = *p.Example
	}
	if p.Category != nil {
		v.Category = *p.Category
	}
	s.Persist(KeyVocab, s.vocab)
	return true, nil
}

// DeleteVocab removes the card with id and reports whether it existed.
func (s *Store) DeleteVocab(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.IndexOf(s.vocab, id)
	if i < 0 {
		return false
	}
	s.vocab = append(s.vocab[:i:i], s.vocab[i+1:]...)
	s.Persist(KeyVocab, s.vocab)
	return true
}

// SetSearchQuery sets the query applied by Filtered.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	s.vocabQuery = q
	s.mu.Unlock()
}

// Filtered returns the vocabulary cards matching the current query.
func (s *Store) Filtered() []domain.VocabCard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterVocab(s.vocab, s.vocabQuery)
}

// Pronounce reads the word of the card with id aloud in the card's language.
// It reports false when no such card exists.
func (s *Store) Pronounce(ctx context.Context, sp sensor.Speaker, id string) (bool, error) {
	if sp == nil {
		return false, sensor.ErrUnavailable
	}
	s.mu.RLock()
	i := store.IndexOf(s.vocab, id)
	var v domain.VocabCard
	if i >= 0 {
		v = s.vocab[i]
	}
	s.mu.RUnlock()
	if i < 0 {
		return false, nil
	}
	code := ""
	if l, ok := s.findLanguage(func(l domain.Language) bool { return l.Name == v.Language }); ok {
		code = l.Code
	}
	if err := sp.Speak(ctx, v.Word, code); err != nil {
		s.Logger.Warn("pronunciation failed", "id", id, "error", err)
		return true, err
	}
	return true, nil
}
