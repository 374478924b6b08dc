// Package seed provides the built-in first-run data and catalogs, stored as
// embedded TOML.
package seed

import (
	"embed"
	"fmt"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/conorfennell/knolstate/internal/domain"
)

//go:embed data/*.toml
var files embed.FS

// CardSeed is a flashcard inserted on first launch.
type CardSeed struct {
	Question string `toml:"question"`
	Answer   string `toml:"answer"`
	Category string `toml:"category"`
	Type     string `toml:"type"`
}

// CategorySeed is a category inserted on first launch.
type CategorySeed struct {
	Name  string `toml:"name"`
	Color string `toml:"color"`
}

// Flashcards holds the flashcard app's seed data.
type Flashcards struct {
	Palette    []string       `toml:"palette"`
	Cards      []CardSeed     `toml:"cards"`
	Categories []CategorySeed `toml:"categories"`
}

// GoalSeed is a default fitness goal.
type GoalSeed struct {
	Title  string `toml:"title"`
	Type   string `toml:"type"`
	Target int    `toml:"target"`
	Unit   string `toml:"unit"`
}

// WorkoutType is a catalog entry used to estimate burned calories.
type WorkoutType struct {
	ID             string `toml:"id"`
	Name           string `toml:"name"`
	Icon           string `toml:"icon"`
	CaloriesPerMin int    `toml:"calories_per_min"`
}

// Fitness holds the fitness app's defaults.
type Fitness struct {
	Goals        []GoalSeed    `toml:"goals"`
	WorkoutTypes []WorkoutType `toml:"workout_types"`
}

// Language holds the language app's catalog and starter content.
type Language struct {
	Languages []domain.Language  `toml:"languages"`
	Lessons   []domain.Lesson    `toml:"lessons"`
	Vocab     []domain.VocabCard `toml:"vocab"`
}

// LoadFlashcards decodes the embedded flashcard seed.
func LoadFlashcards() (Flashcards, error) {
	var s Flashcards
	err := decode("data/flashcards.toml", &s)
	return s, err
}

// LoadFitness decodes the embedded fitness defaults.
func LoadFitness() (Fitness, error) {
	var s Fitness
	err := decode("data/fitness.toml", &s)
	return s, err
}

// LoadLanguage decodes the embedded language catalog.
func LoadLanguage() (Language, error) {
	var s Language
	err := decode("data/language.toml", &s)
	return s, err
}

func decode(name string, v any) error {
	b, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read seed %s: %w", name, err)
	}
	if err := toml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse seed %s: %w", name, err)
	}
	return nil
}
