package language

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/kv"
	"github.com/conorfennell/knolstate/internal/sensor"
	"github.com/conorfennell/knolstate/internal/store"
)

func newTestStore(t *testing.T, storage kv.Storage, now *time.Time) *Store {
	t.Helper()
	s, err := New(storage,
		store.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		store.WithClock(func() time.Time { return *now }),
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

func startTime() *time.Time {
	t := time.Date(2026, 7, 1, 18, 0, 0, 0, time.Local)
	return &t
}

func TestLoadDefaults(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(), startTime())

	if len(s.Languages()) != 8 {
		t.Errorf("Expected 8 catalog languages, got %d", len(s.Languages()))
	}
	if len(s.Lessons()) != 4 || len(s.Vocab()) != 4 {
		t.Errorf("Expected 4 starter lessons and 4 vocab cards, got %d and %d", len(s.Lessons()), len(s.Vocab()))
	}
	if _, ok := s.SelectedLanguage(); ok || s.Onboarded() {
		t.Error("Expected no selection and onboarding pending")
	}
	p := s.Progress()
	if p.TotalLessons != 4 || p.CompletedLessons != 0 || p.WordsLearned != 0 {
		t.Errorf("Unexpected default progress %+v", p)
	}
}

func TestSelectLanguageAndOnboarding(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(), startTime())

	if err := s.SelectLanguage("2"); err != nil {
		t.Fatalf("SelectLanguage failed: %v", err)
	}
	if l, ok := s.SelectedLanguage(); !ok || l.Name != "French" || l.Code != "fr" {
		t.Errorf("Unexpected selection %+v", l)
	}
	var ve *store.ValidationError
	if err := s.SelectLanguage("99"); !errors.As(err, &ve) {
		t.Errorf("Expected ValidationError for unknown language, got %v", err)
	}
	s.CompleteOnboarding()
	s.CompleteOnboarding()
	if !s.Onboarded() {
		t.Error("Expected onboarding complete")
	}
}

func TestCompleteLessonIsIdempotent(t *testing.T) {
	now := startTime()
	s := newTestStore(t, kv.NewMemory(), now)

	if !s.CompleteLesson("1") {
		t.Fatal("Expected lesson 1 to exist")
	}
	if !s.CompleteLesson("1") {
		t.Fatal("Expected lesson 1 to exist")
	}
	p := s.Progress()
	if p.CompletedLessons != 1 || p.WordsLearned != 10 || p.DailyStreak != 1 {
		t.Errorf("Unexpected progress after completing twice: %+v", p)
	}
	if s.CompleteLesson("missing") {
		t.Error("Expected CompleteLesson of unknown id to report false")
	}
}

func TestSetLessonProgress(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(), startTime())

	if ok, err := s.SetLessonProgress("3", 60); !ok || err != nil {
		t.Fatalf("SetLessonProgress = %v, %v", ok, err)
	}
	if l := s.Lessons()[2]; l.Progress != 60 || l.Completed {
		t.Errorf("Unexpected lesson %+v", l)
	}
	if _, err := s.SetLessonProgress("3", 100); err != nil {
		t.Fatalf("SetLessonProgress failed: %v", err)
	}
	if p := s.Progress(); p.CompletedLessons != 1 || p.WordsLearned != 10 {
		t.Errorf("Expected reaching 100%% to complete the lesson, got %+v", p)
	}
	// Reopening and completing again credits the words once.
	if _, err := s.SetLessonProgress("3", 50); err != nil {
		t.Fatalf("SetLessonProgress failed: %v", err)
	}
	if p := s.Progress(); p.CompletedLessons != 0 || p.WordsLearned != 0 {
		t.Errorf("Expected reopening to withdraw the lesson's words, got %+v", p)
	}
	if !s.CompleteLesson("3") {
		t.Fatal("CompleteLesson reported a missing lesson")
	}
	if p := s.Progress(); p.CompletedLessons != 1 || p.WordsLearned != 10 {
		t.Errorf("Expected words credited once after reopening, got %+v", p)
	}
	if _, err := s.SetLessonProgress("3", 101); err == nil {
		t.Error("Expected ValidationError for 101%")
	}
	if ok, _ := s.SetLessonProgress("missing", 10); ok {
		t.Error("Expected false for unknown lesson")
	}
}

func TestStreak(t *testing.T) {
	now := startTime()
	s := newTestStore(t, kv.NewMemory(), now)

	steps := []struct {
		advance time.Duration
		want    int
	}{
		{advance: 0, want: 1},
		{advance: 2 * time.Hour, want: 1},
		{advance: 24 * time.Hour, want: 2},
		{advance: 24 * time.Hour, want: 3},
		{advance: 72 * time.Hour, want: 1},
	}
	for i, st := range steps {
		*now = now.Add(st.advance)
		if err := s.RecordPractice(Practice{Answered: 1, Correct: 1, Minutes: 5}); err != nil {
			t.Fatalf("RecordPractice failed: %v", err)
		}
		if got := s.Progress().DailyStreak; got != st.want {
			t.Errorf("Step %d: streak %d, want %d", i, got, st.want)
		}
	}
}

func TestRecordPractice(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(), startTime())

	_ = s.RecordPractice(Practice{Answered: 10, Correct: 9, Minutes: 12})
	_ = s.RecordPractice(Practice{Answered: 10, Correct: 5, Minutes: 8})
	p := s.Progress()
	if p.Accuracy != 70 || p.StudyTime != 20 || p.Answered != 20 || p.Correct != 14 {
		t.Errorf("Unexpected progress %+v", p)
	}
	if err := s.RecordPractice(Practice{Answered: 2, Correct: 3}); err == nil {
		t.Error("Expected ValidationError when correct exceeds answered")
	}
}

func TestVocabCRUDAndSearch(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(), startTime())
	_ = s.SelectLanguage("1")

	v, err := s.AddVocab(VocabDraft{Word: "Adiós", Translation: "Goodbye", Category: "Greetings"})
	if err != nil {
		t.Fatalf("AddVocab failed: %v", err)
	}
	if v.Language != "Spanish" || v.ID == "" {
		t.Errorf("Expected selected language and an id, got %+v", v)
	}
	if _, err := s.AddVocab(VocabDraft{Word: "Hallo", Category: "Greetings", Language: "German"}); err == nil {
		t.Error("Expected ValidationError for missing translation")
	}

	s.SetSearchQuery("greet")
	got := s.Filtered()
	if len(got) != 3 || got[2].Word != "Adiós" {
		t.Errorf("Expected three greetings ending with the new card, got %+v", got)
	}
	s.SetSearchQuery("PLEASE")
	if got := s.Filtered(); len(got) != 1 || got[0].Word != "Por favor" {
		t.Errorf("Expected translation match, got %+v", got)
	}

	word := "Hasta luego"
	if ok, err := s.UpdateVocab(v.ID, VocabPatch{Word: &word}); !ok || err != nil {
		t.Fatalf("UpdateVocab = %v, %v", ok, err)
	}
	empty := ""
	if _, err := s.UpdateVocab(v.ID, VocabPatch{Word: &empty}); err == nil {
		t.Error("Expected ValidationError for empty word")
	}
	if !s.DeleteVocab(v.ID) || s.DeleteVocab(v.ID) {
		t.Error("Expected first delete true and second false")
	}
	s.SetSearchQuery("")
	if len(s.Filtered()) != 4 {
		t.Error("Expected the full collection with an empty query")
	}
}

type fakeSpeaker struct {
	text, lang string
	err        error
}

func (f *fakeSpeaker) Speak(_ context.Context, text, language string) error {
	f.text, f.lang = text, language
	return f.err
}

func TestPronounce(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(), startTime())
	id := s.Vocab()[0].ID

	sp := &fakeSpeaker{}
	if ok, err := s.Pronounce(context.Background(), sp, id); !ok || err != nil {
		t.Fatalf("Pronounce = %v, %v", ok, err)
	}
	if sp.text != "Hola" || sp.lang != "es" {
		t.Errorf("Spoke %q in %q", sp.text, sp.lang)
	}
	if ok, _ := s.Pronounce(context.Background(), sp, "missing"); ok {
		t.Error("Expected false for unknown card")
	}
	if _, err := s.Pronounce(context.Background(), nil, id); !errors.Is(err, sensor.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable without a speaker, got %v", err)
	}
}

func snapshot(t *testing.T, s *Store) []byte {
	t.Helper()
	sel, _ := s.SelectedLanguage()
	b, err := json.Marshal(struct {
		Selected  domain.Language
		Onboarded bool
		Lessons   []domain.Lesson
		Vocab     []domain.VocabCard
		Progress  domain.Progress
	}{sel, s.Onboarded(), s.Lessons(), s.Vocab(), s.Progress()})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	return b
}

func TestRoundTripPersistence(t *testing.T) {
	now := startTime()
	m := kv.NewMemory()
	s := newTestStore(t, m, now)
	_ = s.SelectLanguage("6")
	s.CompleteOnboarding()
	s.CompleteLesson("2")
	_, _ = s.AddVocab(VocabDraft{Word: "ありがとう", Translation: "Thank you", Category: "Common Phrases"})
	_ = s.RecordPractice(Practice{Answered: 4, Correct: 3, Minutes: 10})
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	restarted := newTestStore(t, m, now)
	if !bytes.Equal(snapshot(t, s), snapshot(t, restarted)) {
		t.Errorf("State differs after restart:\n%s\n%s", snapshot(t, s), snapshot(t, restarted))
	}
}

func TestResetAll(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(), startTime())
	_ = s.SelectLanguage("1")
	s.CompleteOnboarding()
	s.CompleteLesson("1")

	if err := s.ResetAll(context.Background()); err != nil {
		t.Fatalf("ResetAll failed: %v", err)
	}
	if _, ok := s.SelectedLanguage(); ok || s.Onboarded() || s.Progress().CompletedLessons != 0 {
		t.Error("Expected a fresh state after reset")
	}
}

func TestResetAllReissuesVocabIDs(t *testing.T) {
	m := kv.NewMemory()
	s := newTestStore(t, m, startTime())
	before := map[string]bool{}
	for _, v := range s.Vocab() {
		before[v.ID] = true
	}

	if err := s.ResetAll(context.Background()); err != nil {
		t.Fatalf("ResetAll failed: %v", err)
	}
	var stored []domain.VocabCard
	blob, _ := m.Get(context.Background(), KeyVocab)
	if err := json.Unmarshal(blob, &stored); err != nil || len(stored) != 4 {
		t.Fatalf("Expected 4 stored vocab cards once ResetAll returns, got %d (%v)", len(stored), err)
	}
	for _, v := range stored {
		if !strings.HasPrefix(v.ID, "vocab-") {
			t.Errorf("Expected a generated id for %q, got %q", v.Word, v.ID)
		}
		if before[v.ID] {
			t.Errorf("Id %q for %q survived the reset", v.ID, v.Word)
		}
	}
}
