package fsrs

import (
	"math"
	"testing"
	"time"
)

func TestCalculateNewStability(t *testing.T) {
	params := DefaultParams()

	// S' = 10 * (1 + 0.2 * 5^(-0.5) * 10^0.1 * (e^0.4 - 1)) ≈ 10.55
	expected := 10.55
	newStability := params.calculateNewStability(10.0, 5.0)

	if math.Abs(newStability-expected) > 0.01 {
		t.Errorf("Expected new stability to be around %.2f, but got %.2f", expected, newStability)
	}
}

func TestNextState(t *testing.T) {
	params := DefaultParams()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	initialState := CardState{Stability: 10, Difficulty: 5, LastReview: now.AddDate(0, 0, -10)}

	testCases := []struct {
		name             string
		rating           Rating
		stabilityUp      bool
		wantDifficultyOp string // "up", "same", "down"
	}{
		{name: "Again", rating: Again, stabilityUp: false, wantDifficultyOp: "up"},
		{name: "Hard", rating: Hard, stabilityUp: true, wantDifficultyOp: "up"},
		{name: "Good", rating: Good, stabilityUp: true, wantDifficultyOp: "same"},
		{name: "Easy", rating: Easy, stabilityUp: true, wantDifficultyOp: "down"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			newState := params.NextState(initialState, tc.rating, now)
			if !newState.LastReview.Equal(now) {
				t.Errorf("Expected LastReview %v, but got %v", now, newState.LastReview)
			}
			if tc.stabilityUp && newState.Stability <= initialState.Stability {
				t.Errorf("Expected stability to increase, but got %.2f", newState.Stability)
			}
			if !tc.stabilityUp && newState.Stability != 1 {
				t.Errorf("Expected stability to be reset to 1, but got %.2f", newState.Stability)
			}
			switch tc.wantDifficultyOp {
			case "up":
				if newState.Difficulty <= initialState.Difficulty {
					t.Errorf("Expected difficulty to increase, got %.2f", newState.Difficulty)
				}
			case "same":
				if newState.Difficulty != initialState.Difficulty {
					t.Errorf("Expected difficulty to stay %.2f, got %.2f", initialState.Difficulty, newState.Difficulty)
				}
			case "down":
				if newState.Difficulty >= initialState.Difficulty {
					t.Errorf("Expected difficulty to decrease, got %.2f", newState.Difficulty)
				}
			}
		})
	}
}

func TestNextDueDate(t *testing.T) {
	from := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	got := NextDueDate(15.5, from) // rounds to 16 days
	want := time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected due date %v, but got %v", want, got)
	}
}

func TestParseRating(t *testing.T) {
	for in, want := range map[string]Rating{"1": Again, "hard": Hard, "3": Good, "easy": Easy} {
		got, err := ParseRating(in)
		if err != nil || got != want {
			t.Errorf("ParseRating(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseRating("5"); err == nil {
		t.Error("Expected an error for rating 5")
	}
	if Rating(0).Valid() || !Good.Valid() {
		t.Error("Valid() misreports ratings")
	}
}
