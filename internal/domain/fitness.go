package domain

import (
	"fmt"
	"time"
)

// WorkoutKind is the activity a workout records.
type WorkoutKind string

const (
	WorkoutRunning  WorkoutKind = "Running"
	WorkoutCycling  WorkoutKind = "Cycling"
	WorkoutSwimming WorkoutKind = "Swimming"
	WorkoutGym      WorkoutKind = "Gym"
	WorkoutYoga     WorkoutKind = "Yoga"
	WorkoutWalking  WorkoutKind = "Walking"
	WorkoutDancing  WorkoutKind = "Dancing"
	WorkoutSports   WorkoutKind = "Sports"
)

// Workout is one logged exercise session. Date is the local calendar date it counts towards.
type Workout struct {
	ID             string      `json:"id"`
	Kind           WorkoutKind `json:"type"`
	Duration       int         `json:"duration"`
	CaloriesBurned int         `json:"caloriesBurned"`
	Date           string      `json:"date"`
	Notes          string      `json:"notes,omitempty"`
	Completed      bool        `json:"completed"`
	CreatedAt      time.Time   `json:"createdAt"`
}

func (w *Workout) RecordID() *string { return &w.ID }

// GoalType names the daily counter a goal tracks.
type GoalType string

const (
	GoalSteps    GoalType = "steps"
	GoalCalories GoalType = "calories"
	GoalWorkouts GoalType = "workouts"
	GoalWater    GoalType = "water"
	GoalSleep    GoalType = "sleep"
)

// ParseGoalType validates a goal type tag.
func ParseGoalType(s string) (GoalType, error) {
	switch t := GoalType(s); t {
	case GoalSteps, GoalCalories, GoalWorkouts, GoalWater, GoalSleep:
		return t, nil
	default:
		return "", fmt.Errorf("unknown goal type %q", s)
	}
}

// Goal is a numeric target for one of today's counters.
type Goal struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Type      GoalType `json:"type"`
	Target    int      `json:"target"`
	Current   int      `json:"current"`
	Unit      string   `json:"unit"`
	Completed bool     `json:"completed"`
}

func (g *Goal) RecordID() *string { return &g.ID }

// SetCurrent updates progress and recomputes Completed.
func (g *Goal) SetCurrent(current int) {
	if current < 0 {
		current = 0
	}
	g.Current = current
	g.Completed = g.Current >= g.Target
}

// DailyStats is the aggregate row for one calendar date.
type DailyStats struct {
	Date        string `json:"date"`
	Steps       int    `json:"steps"`
	Calories    int    `json:"calories"`
	Workouts    int    `json:"workouts"`
	WaterIntake int    `json:"waterIntake"`
	Sleep       int    `json:"sleep"`
}

// Counter returns the value of the counter a goal type tracks.
func (d DailyStats) Counter(t GoalType) int {
	switch t {
	case GoalSteps:
		return d.Steps
	case GoalCalories:
		return d.Calories
	case GoalWorkouts:
		return d.Workouts
	case GoalWater:
		return d.WaterIntake
	case GoalSleep:
		return d.Sleep
	default:
		panic(fmt.Sprintf("domain: unhandled goal type %q", t))
	}
}

// Totals sums the headline counters over a range of days.
type Totals struct {
	Steps    int `json:"steps"`
	Calories int `json:"calories"`
	Workouts int `json:"workouts"`
}

// Add folds one day into the totals.
func (t Totals) Add(d DailyStats) Totals {
	return Totals{
		Steps:    t.Steps + d.Steps,
		Calories: t.Calories + d.Calories,
		Workouts: t.Workouts + d.Workouts,
	}
}
