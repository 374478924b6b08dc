// Package fitness is the fitness tracker's state store. Workouts, goals and the
// daily aggregate rows are kept consistent with each other: every goal's
// progress equals the matching counter of today's row, and today's workout and
// calorie counters equal the contributions of today's workouts.
package fitness

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/kv"
	"github.com/conorfennell/knolstate/internal/seed"
	"github.com/conorfennell/knolstate/internal/store"
)

// Storage keys.
const (
	KeyWorkouts  = "@fitness_workouts"
	KeyGoals     = "@fitness_goals"
	KeyStats     = "@fitness_stats"
	KeyWeekly    = "@fitness_weekly_data"
	KeyActiveTab = "@fitness_active_tab"
)

// Tab selects which period CurrentStats summarizes.
type Tab string

const (
	TabToday Tab = "today"
	TabWeek  Tab = "week"
)

// DefaultWeekDays is the length of the weekly window, today included.
const DefaultWeekDays = 7

// Config tunes a Store.
type Config struct {
	// WeekDays is the number of days, today included, kept in the weekly window.
	WeekDays int
}

// Store owns the fitness collections. All methods are safe for concurrent use.
type Store struct {
	*store.Base

	weekDays int
	seed     seed.Fitness

	mu       sync.RWMutex
	workouts []domain.Workout
	goals    []domain.Goal
	today    domain.DailyStats
	history  []domain.DailyStats
	tab      Tab
}

// New builds an unloaded Store.
func New(storage kv.Storage, cfg Config, opts ...store.Option) (*Store, error) {
	sd, err := seed.LoadFitness()
	if err != nil {
		return nil, err
	}
	if cfg.WeekDays <= 0 {
		cfg.WeekDays = DefaultWeekDays
	}
	return &Store{
		Base:     store.NewBase(storage, opts...),
		weekDays: cfg.WeekDays,
		seed:     sd,
		tab:      TabToday,
	}, nil
}

// Load reads every collection, defaulting what is absent or unreadable, rolls
// a stale today row into history and re-derives today's counters and goal
// progress from the workouts. Write-through is enabled afterwards.
func (s *Store) Load(ctx context.Context) error {
	var (
		workouts []domain.Workout
		goals    []domain.Goal
		today    domain.DailyStats
		history  []domain.DailyStats
		tab      Tab
	)
	store.LoadAll(ctx, s.Storage, s.Logger,
		&store.Slot{Key: KeyWorkouts, Target: &workouts, Default: func() { workouts = nil }},
		&store.Slot{Key: KeyGoals, Target: &goals, Default: func() { goals = s.defaultGoals() }},
		&store.Slot{Key: KeyStats, Target: &today, Default: func() { today = domain.DailyStats{} }},
		&store.Slot{Key: KeyWeekly, Target: &history, Default: func() { history = nil }},
		&store.Slot{Key: KeyActiveTab, Target: &tab, Default: func() { tab = TabToday }},
	)

	if n := store.BackfillIDs(workouts, "fit"); n > 0 {
		s.Logger.Info("assigned missing workout ids", "count", n)
	}
	if n := store.BackfillIDs(goals, "goal"); n > 0 {
		s.Logger.Info("assigned missing goal ids", "count", n)
	}
	goals = s.dropUnknownGoals(goals)
	if tab != TabToday && tab != TabWeek {
		tab = TabToday
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workouts, s.goals, s.today, s.history, s.tab = workouts, goals, today, history, tab
	if s.today.Date == "" {
		s.today.Date = s.Today()
	}
	s.trimHistoryLocked()
	s.MarkReady()
	if !s.rolloverLocked() {
		s.recomputeLocked()
	}
	s.persistAllLocked()
	return nil
}

func (s *Store) dropUnknownGoals(goals []domain.Goal) []domain.Goal {
	kept := goals[:0]
	for _, g := range goals {
		if _, err := domain.ParseGoalType(string(g.Type)); err != nil {
			s.Logger.Warn("dropping stored goal", "id", g.ID, "error", err)
			continue
		}
		kept = append(kept, g)
	}
	return kept
}

func (s *Store) defaultGoals() []domain.Goal {
	goals := make([]domain.Goal, 0, len(s.seed.Goals))
	for _, gs := range s.seed.Goals {
		t, err := domain.ParseGoalType(gs.Type)
		if err != nil {
			s.Logger.Warn("skipping seed goal", "title", gs.Title, "error", err)
			continue
		}
		goals = append(goals, domain.Goal{
			ID:     store.NewID("goal"),
			Title:  gs.Title,
			Type:   t,
			Target: gs.Target,
			Unit:   gs.Unit,
		})
	}
	return goals
}

// recomputeLocked derives today's workout counters from the workouts and then
// every goal's progress from today's row.
func (s *Store) recomputeLocked() {
	day := s.today.Date
	s.today.Workouts, s.today.Calories = 0, 0
	for _, w := range s.workouts {
		if w.Date == day {
			s.today.Workouts++
			s.today.Calories += w.CaloriesBurned
		}
	}
	s.syncGoalsLocked()
}

func (s *Store) syncGoalsLocked() {
	for i := range s.goals {
		s.goals[i].SetCurrent(s.today.Counter(s.goals[i].Type))
	}
}

func (s *Store) persistAllLocked() {
	s.Persist(KeyWorkouts, s.workouts)
	s.Persist(KeyGoals, s.goals)
	s.Persist(KeyStats, s.today)
	s.Persist(KeyWeekly, s.history)
	s.Persist(KeyActiveTab, s.tab)
}

// persistTodayLocked writes the collections every counter change touches.
func (s *Store) persistTodayLocked() {
	s.Persist(KeyStats, s.today)
	s.Persist(KeyGoals, s.goals)
}

// trimHistoryLocked keeps the newest WeekDays-1 past rows.
func (s *Store) trimHistoryLocked() {
	if keep := s.weekDays - 1; len(s.history) > keep {
		s.history = append([]domain.DailyStats(nil), s.history[len(s.history)-keep:]...)
	}
}

// caloriesPerMinute looks kind up in the workout catalog by id or name.
func (s *Store) caloriesPerMinute(kind domain.WorkoutKind) (int, bool) {
	for _, wt := range s.seed.WorkoutTypes {
		if strings.EqualFold(wt.ID, string(kind)) || strings.EqualFold(wt.Name, string(kind)) {
			return wt.CaloriesPerMin, true
		}
	}
	return 0, false
}

// WorkoutTypes returns the workout catalog.
func (s *Store) WorkoutTypes() []seed.WorkoutType {
	return append([]seed.WorkoutType(nil), s.seed.WorkoutTypes...)
}

// Workouts returns every workout in insertion order.
func (s *Store) Workouts() []domain.Workout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Workout(nil), s.workouts...)
}

// TodaysWorkouts returns the workouts that count towards today.
func (s *Store) TodaysWorkouts() []domain.Workout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Workout
	for _, w := range s.workouts {
		if w.Date == s.today.Date {
			out = append(out, w)
		}
	}
	return out
}

// Goals returns every goal in insertion order.
func (s *Store) Goals() []domain.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Goal(nil), s.goals...)
}

// TodayStats returns today's aggregate row.
func (s *Store) TodayStats() domain.DailyStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.today
}

// Weekly returns the weekly window, oldest first, ending with today's row.
func (s *Store) Weekly() []domain.DailyStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weeklyLocked()
}

func (s *Store) weeklyLocked() []domain.DailyStats {
	out := make([]domain.DailyStats, 0, len(s.history)+1)
	out = append(out, s.history...)
	return append(out, s.today)
}

// WeeklyProgress sums the weekly window.
func (s *Store) WeeklyProgress() domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weeklyProgressLocked()
}

func (s *Store) weeklyProgressLocked() domain.Totals {
	var t domain.Totals
	for _, d := range s.weeklyLocked() {
		t = t.Add(d)
	}
	return t
}

// CurrentStats summarizes today or the week depending on the active tab.
func (s *Store) CurrentStats() domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tab == TabWeek {
		return s.weeklyProgressLocked()
	}
	return domain.Totals{}.Add(s.today)
}

// ActiveTab returns the selected tab.
func (s *Store) ActiveTab() Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tab
}

// SetActiveTab selects the period CurrentStats summarizes.
func (s *Store) SetActiveTab(tab Tab) error {
	if tab != TabToday && tab != TabWeek {
		return store.Invalid("tab", "must be one of: today week")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = tab
	s.Persist(KeyActiveTab, s.tab)
	return nil
}

// ResetAll removes every fitness key from storage and starts over with no
// workouts, the default goals, a zeroed today row and an empty history.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Writer.Drop(ctx, KeyWorkouts, KeyGoals, KeyStats, KeyWeekly, KeyActiveTab); err != nil {
		return fmt.Errorf("reset fitness: %w", err)
	}
	s.workouts = nil
	s.goals = s.defaultGoals()
	s.today = domain.DailyStats{Date: s.Today()}
	s.history = nil
	s.tab = TabToday
	s.persistAllLocked()
	if err := s.Writer.Flush(ctx); err != nil {
		return fmt.Errorf("reset fitness: %w", err)
	}
	return nil
}
