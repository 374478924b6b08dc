package fitness

import (
	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/store"
)

// WorkoutDraft is a workout before it is stored. A zero CaloriesBurned is
// estimated from the workout catalog; an empty Date means today.
type WorkoutDraft struct {
	Kind           domain.WorkoutKind `json:"type" validate:"required"`
	Duration       int                `json:"duration" validate:"gt=0"`
	CaloriesBurned int                `json:"caloriesBurned" validate:"gte=0"`
	Date           string             `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Notes          string             `json:"notes"`
	Completed      bool               `json:"completed"`
}

// WorkoutPatch holds the workout fields to change. Nil fields are left alone.
type WorkoutPatch struct {
	Kind           *domain.WorkoutKind `json:"type" validate:"omitnil,min=1"`
	Duration       *int                `json:"duration" validate:"omitnil,gt=0"`
	CaloriesBurned *int                `json:"caloriesBurned" validate:"omitnil,gte=0"`
	Date           *string             `json:"date" validate:"omitnil,datetime=2006-01-02"`
	Notes          *string             `json:"notes"`
	Completed      *bool               `json:"completed"`
}

// GoalDraft is a goal before it is stored. An empty Unit is derived from Type.
type GoalDraft struct {
	Title  string          `json:"title" validate:"required"`
	Type   domain.GoalType `json:"type" validate:"oneof=steps calories workouts water sleep"`
	Target int             `json:"target" validate:"gt=0"`
	Unit   string          `json:"unit"`
}

// StatsPatch sets the counters of today's row that are not derived from
// workouts. Nil fields are left alone.
type StatsPatch struct {
	Steps       *int `json:"steps" validate:"omitnil,gte=0"`
	WaterIntake *int `json:"waterIntake" validate:"omitnil,gte=0"`
	Sleep       *int `json:"sleep" validate:"omitnil,gte=0"`
}

var defaultUnits = map[domain.GoalType]string{
	domain.GoalSteps:    "steps",
	domain.GoalCalories: "calories",
	domain.GoalWorkouts: "workouts",
	domain.GoalWater:    "ml",
	domain.GoalSleep:    "hours",
}

// AddWorkout validates d and appends a workout. A workout dated today
// increments today's workout and calorie counters and the matching goals.
func (s *Store) AddWorkout(d WorkoutDraft) (domain.Workout, error) {
	if err := store.Validate(d); err != nil {
		return domain.Workout{}, err
	}
	if d.CaloriesBurned == 0 {
		if perMin, ok := s.caloriesPerMinute(d.Kind); ok {
			d.CaloriesBurned = perMin * d.Duration
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d.Date == "" {
		d.Date = s.today.Date
	}
	w := domain.Workout{
		ID:             store.NewID("fit"),
		Kind:           d.Kind,
		Duration:       d.Duration,
		CaloriesBurned: d.CaloriesBurned,
		Date:           d.Date,
		Notes:          d.Notes,
		Completed:      d.Completed,
		CreatedAt:      s.Now(),
	}
	s.workouts = append(s.workouts, w)
	s.Persist(KeyWorkouts, s.workouts)
	if w.Date == s.today.Date {
		s.recomputeLocked()
		s.persistTodayLocked()
	}
	return w, nil
}

// UpdateWorkout merges p into the workout with id and moves today's counters
// by the difference. It reports false when no such workout exists.
func (s *Store) UpdateWorkout(id string, p WorkoutPatch) (bool, error) {
	if err := store.Validate(p); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.IndexOf(s.workouts, id)
	if i < 0 {
		return false, nil
	}
	w := s.workouts[i]
	touchesToday := w.Date == s.today.Date
	if p.Kind != nil {
		w.Kind = *p.Kind
	}
	if p.Duration != nil {
		w.Duration = *p.Duration
	}
	if p.CaloriesBurned != nil {
		w.CaloriesBurned = *p.CaloriesBurned
	}
	if p.Date != nil {
		w.Date = *p.Date
	}
	if p.Notes != nil {
		w.Notes = *p.Notes
	}
	if p.Completed != nil {
		w.Completed = *p.Completed
	}
	s.workouts[i] = w
	s.Persist(KeyWorkouts, s.workouts)
	if touchesToday || w.Date == s.today.Date {
		s.recomputeLocked()
		s.persistTodayLocked()
	}
	return true, nil
}

// DeleteWorkout removes the workout with id, reversing its contribution to
// today's counters and goals. It reports whether the workout existed.
func (s *Store) DeleteWorkout(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.IndexOf(s.workouts, id)
	if i < 0 {
		return false
	}
	today := s.workouts[i].Date == s.today.Date
	s.workouts = append(s.workouts[:i:i], s.workouts[i+1:]...)
	s.Persist(KeyWorkouts, s.workouts)
	if today {
		s.recomputeLocked()
		s.persistTodayLocked()
	}
	return true
}

// AddGoal validates d and appends a goal whose progress starts at today's
// matching counter.
func (s *Store) AddGoal(d GoalDraft) (domain.Goal, error) {
	if err := store.Validate(d); err != nil {
		return domain.Goal{}, err
	}
	if d.Unit == "" {
		d.Unit = defaultUnits[d.Type]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g := domain.Goal{
		ID:     store.NewID("goal"),
		Title:  d.Title,
		Type:   d.Type,
		Target: d.Target,
		Unit:   d.Unit,
	}
	g.SetCurrent(s.today.Counter(g.Type))
	s.goals = append(s.goals, g)
	s.Persist(KeyGoals, s.goals)
	return g, nil
}

// DeleteGoal removes the goal with id. Workout and calorie goals cannot be
// deleted while workouts logged today count towards them; that fails with a
// *store.DependentsError. Deleting an unknown id does nothing.
func (s *Store) DeleteGoal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.IndexOf(s.goals, id)
	if i < 0 {
		return nil
	}
	if n := s.contributorsLocked(s.goals[i].Type); n > 0 {
		return &store.DependentsError{ID: id, Count: n}
	}
	s.goals = append(s.goals[:i:i], s.goals[i+1:]...)
	s.Persist(KeyGoals, s.goals)
	return nil
}

// contributorsLocked counts the workouts in today's row that feed a goal of
// type t. A workout that burned nothing does not feed a calorie goal.
func (s *Store) contributorsLocked(t domain.GoalType) int {
	if t != domain.GoalWorkouts && t != domain.GoalCalories {
		return 0
	}
	n := 0
	for _, w := range s.workouts {
		if w.Date != s.today.Date {
			continue
		}
		if t == domain.GoalWorkouts || w.CaloriesBurned > 0 {
			n++
		}
	}
	return n
}

// SetGoalTarget changes a goal's target. It reports false when no such goal
// exists.
func (s *Store) SetGoalTarget(id string, target int) (bool, error) {
	if target <= 0 {
		return false, store.Invalid("target", "must be greater than 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.IndexOf(s.goals, id)
	if i < 0 {
		return false, nil
	}
	s.goals[i].Target = target
	s.goals[i].SetCurrent(s.goals[i].Current)
	s.Persist(KeyGoals, s.goals)
	return true, nil
}

// UpdateDailyStats sets today's step, water and sleep counters and the goals
// that track them.
func (s *Store) UpdateDailyStats(p StatsPatch) error {
	if err := store.Validate(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Steps != nil {
		s.today.Steps = *p.Steps
	}
	if p.WaterIntake != nil {
		s.today.WaterIntake = *p.WaterIntake
	}
	if p.Sleep != nil {
		s.today.Sleep = *p.Sleep
	}
	s.syncGoalsLocked()
	s.persistTodayLocked()
	return nil
}

// UpdateSteps sets today's cumulative step count. Negative counts clamp to
// zero. It is the sink for pedometer readings, so a reading that arrives
// after midnight rolls the day over first instead of landing on yesterday.
func (s *Store) UpdateSteps(steps int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rolled := s.rolloverLocked()
	s.today.Steps = max(0, steps)
	s.syncGoalsLocked()
	if rolled {
		s.persistAllLocked()
		return
	}
	s.persistTodayLocked()
}

// AddWater adds ml millilitres to today's water intake.
func (s *Store) AddWater(ml int) error {
	if ml <= 0 {
		return store.Invalid("ml", "must be greater than 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.today.WaterIntake += ml
	s.syncGoalsLocked()
	s.persistTodayLocked()
	return nil
}

// RemoveWater subtracts ml millilitres from today's water intake, clamped at zero.
func (s *Store) RemoveWater(ml int) error {
	if ml <= 0 {
		return store.Invalid("ml", "must be greater than 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.today.WaterIntake = max(0, s.today.WaterIntake-ml)
	s.syncGoalsLocked()
	s.persistTodayLocked()
	return nil
}
