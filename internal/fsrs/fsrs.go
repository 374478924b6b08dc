package fsrs

import (
	"fmt"
	"math"
	"time"
)

// Rating is the user's response to a card review.
type Rating int

const (
	Again Rating = 1
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

// ParseRating accepts 1-4 or the rating names.
func ParseRating(s string) (Rating, error) {
	switch s {
	case "1", "again":
		return Again, nil
	case "2", "hard":
		return Hard, nil
	case "3", "good":
		return Good, nil
	case "4", "easy":
		return Easy, nil
	default:
		return 0, fmt.Errorf("unknown rating %q: use again, hard, good or easy", s)
	}
}

// Valid reports whether r is one of the four ratings.
func (r Rating) Valid() bool { return r >= Again && r <= Easy }

// Params holds the parameters for the FSRS algorithm.
type Params struct {
	A                float64 // scales the overall memory increase
	B                float64 // difficulty exponent
	C                float64 // stability exponent
	D                float64 // retention effect scaler
	DesiredRetention float64 // desired retention rate (e.g., 0.9 for 90%)
}

// DefaultParams returns untuned starting parameters.
func DefaultParams() *Params {
	return &Params{
		A:                0.2,
		B:                0.5,
		C:                0.1,
		D:                4.0,
		DesiredRetention: 0.9,
	}
}

// CardState holds the memory state of a card.
type CardState struct {
	Stability  float64
	Difficulty float64
	LastReview time.Time
}

// NextState returns the memory state after a review at now.
func (p *Params) NextState(current CardState, rating Rating, now time.Time) CardState {
	if rating == Again {
		// Forgotten: stability resets to one day, difficulty rises.
		return CardState{
			Stability:  1,
			Difficulty: math.Min(10, current.Difficulty+0.5),
			LastReview: now,
		}
	}

	difficulty := current.Difficulty
	switch rating {
	case Hard:
		difficulty = math.Min(10, difficulty+0.1)
	case Easy:
		difficulty = math.Max(1, difficulty-0.2)
	}

	return CardState{
		Stability:  p.calculateNewStability(current.Stability, current.Difficulty),
		Difficulty: difficulty,
		LastReview: now,
	}
}

// calculateNewStability applies S' = S * (1 + a * D^(-b) * S^c * (e^(d * (1-R)) - 1)).
func (p *Params) calculateNewStability(stability, difficulty float64) float64 {
	// Both are floored at 1 to keep the powers well-behaved.
	stability = math.Max(1, stability)
	difficulty = math.Max(1, difficulty)

	factor := p.A * math.Pow(difficulty, -p.B) * math.Pow(stability, p.C)
	multiplier := math.Exp(p.D*(1-p.DesiredRetention)) - 1

	return stability * (1 + factor*multiplier)
}

// NextDueDate schedules the next review round(stability) days after from.
func NextDueDate(stability float64, from time.Time) time.Time {
	days := int(math.Round(stability))
	return from.AddDate(0, 0, days)
}
