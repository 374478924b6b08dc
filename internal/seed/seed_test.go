package seed

import "testing"

func TestLoadFlashcards(t *testing.T) {
	s, err := LoadFlashcards()
	if err != nil {
		t.Fatalf("LoadFlashcards returned error: %v", err)
	}
	if len(s.Cards) != 2 || len(s.Categories) != 2 {
		t.Fatalf("seed has %d cards and %d categories, want 2 and 2", len(s.Cards), len(s.Categories))
	}
	if s.Cards[1].Type != "equation" {
		t.Errorf("second seed card type = %q, want equation", s.Cards[1].Type)
	}
	if len(s.Palette) == 0 {
		t.Error("palette is empty")
	}
}

func TestLoadFitness(t *testing.T) {
	s, err := LoadFitness()
	if err != nil {
		t.Fatalf("LoadFitness returned error: %v", err)
	}
	if len(s.Goals) != 4 {
		t.Fatalf("len(Goals) = %d, want 4", len(s.Goals))
	}
	if s.Goals[1].Type != "workouts" || s.Goals[1].Target != 5 {
		t.Errorf("workouts goal = %+v, want target 5", s.Goals[1])
	}
	if len(s.WorkoutTypes) != 8 || s.WorkoutTypes[0].CaloriesPerMin != 10 {
		t.Errorf("workout catalog = %+v", s.WorkoutTypes)
	}
}

func TestLoadLanguage(t *testing.T) {
	s, err := LoadLanguage()
	if err != nil {
		t.Fatalf("LoadLanguage returned error: %v", err)
	}
	if len(s.Languages) != 8 || s.Languages[1].Code != "fr" || s.Languages[1].NativeName != "Français" {
		t.Errorf("languages = %+v", s.Languages)
	}
	if len(s.Lessons) != 4 || s.Lessons[3].Level != "intermediate" {
		t.Errorf("lessons = %+v", s.Lessons)
	}
	if len(s.Vocab) != 4 || s.Vocab[0].Word != "Hola" {
		t.Errorf("vocab = %+v", s.Vocab)
	}
}
