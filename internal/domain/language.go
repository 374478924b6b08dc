package domain

import "time"

// Language is an entry of the selectable language catalog.
type Language struct {
	ID         string `json:"id" toml:"id"`
	Name       string `json:"name" toml:"name"`
	NativeName string `json:"nativeName" toml:"native_name"`
	Flag       string `json:"flag" toml:"flag"`
	Code       string `json:"code" toml:"code"`
}

// Level is a lesson difficulty.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Lesson is a unit of study with a completion percentage.
type Lesson struct {
	ID          string `json:"id" toml:"id"`
	Title       string `json:"title" toml:"title"`
	Description string `json:"description" toml:"description"`
	Language    string `json:"language" toml:"language"`
	Level       Level  `json:"difficulty" toml:"difficulty"`
	Completed   bool   `json:"completed" toml:"completed"`
	Progress    int    `json:"progress" toml:"progress"`
}

func (l *Lesson) RecordID() *string { return &l.ID }

// VocabCard is a vocabulary flashcard.
type VocabCard struct {
	ID            string    `json:"id" toml:"id"`
	Word          string    `json:"word" toml:"word"`
	Translation   string    `json:"translation" toml:"translation"`
	Pronunciation string    `json:"pronunciation" toml:"pronunciation"`
	Example       string    `json:"example" toml:"example"`
	Language      string    `json:"language" toml:"language"`
	Category      string    `json:"category" toml:"category"`
	CreatedAt     time.Time `json:"createdAt" toml:"-"`
}

func (v *VocabCard) RecordID() *string { return &v.ID }

// Progress is the learner's aggregate record. TotalLessons and
// CompletedLessons are derived from the lesson list.
type Progress struct {
	DailyStreak      int    `json:"dailyStreak"`
	TotalLessons     int    `json:"totalLessons"`
	CompletedLessons int    `json:"completedLessons"`
	WordsLearned     int    `json:"wordsLearned"`
	Accuracy         int    `json:"accuracy"`
	StudyTime        int    `json:"studyTime"`
	LastStudyDate    string `json:"lastStudyDate,omitempty"`
	Answered         int    `json:"answered"`
	Correct          int    `json:"correct"`
}
