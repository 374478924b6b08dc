package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/fitness"
	"github.com/conorfennell/knolstate/internal/sensor"
)

func newFitnessCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fitness",
		Short: "Manage workouts, goals and daily stats",
	}
	cmd.AddCommand(
		newFitnessShowCmd(a),
		newFitnessWorkoutCmd(a),
		newFitnessGoalCmd(a),
		newFitnessStepsCmd(a),
		newFitnessWaterCmd(a),
		newFitnessSleepCmd(a),
		newFitnessTabCmd(a),
		newFitnessRolloverCmd(a),
		newFitnessWatchCmd(a),
	)
	return cmd
}

type fitnessView struct {
	Tab      fitness.Tab         `json:"tab"`
	Today    domain.DailyStats   `json:"today"`
	Current  domain.Totals       `json:"current"`
	Weekly   []domain.DailyStats `json:"weekly"`
	Goals    []domain.Goal       `json:"goals"`
	Workouts []domain.Workout    `json:"workouts"`
}

func newFitnessShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show today's stats, the weekly window and goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				return printJSON(cmd.OutOrStdout(), fitnessView{
					Tab:      s.ActiveTab(),
					Today:    s.TodayStats(),
					Current:  s.CurrentStats(),
					Weekly:   s.Weekly(),
					Goals:    s.Goals(),
					Workouts: s.TodaysWorkouts(),
				})
			})
		},
	}
}

func newFitnessWorkoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Log or remove workouts",
	}

	var d fitness.WorkoutDraft
	var kind string
	add := &cobra.Command{
		Use:   "add",
		Short: "Log a workout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Kind = domain.WorkoutKind(kind)
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				w, err := s.AddWorkout(d)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), w)
			})
		},
	}
	f := add.Flags()
	f.StringVar(&kind, "type", "", "Workout type, e.g. Running")
	f.IntVar(&d.Duration, "duration", 0, "Duration in minutes")
	f.IntVar(&d.CaloriesBurned, "calories", 0, "Calories burned; estimated from the type when 0")
	f.StringVar(&d.Date, "date", "", "Date as YYYY-MM-DD; today when empty")
	f.StringVar(&d.Notes, "notes", "", "Free-form notes")
	f.BoolVar(&d.Completed, "completed", true, "Whether the workout was completed")

	list := &cobra.Command{
		Use:   "list",
		Short: "List every logged workout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				return printJSON(cmd.OutOrStdout(), s.Workouts())
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				if !s.DeleteWorkout(args[0]) {
					a.logger.Warn("no such workout", "id", args[0])
				}
				return nil
			})
		},
	}

	types := &cobra.Command{
		Use:   "types",
		Short: "List the workout catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				return printJSON(cmd.OutOrStdout(), s.WorkoutTypes())
			})
		},
	}
	cmd.AddCommand(add, list, del, types)
	return cmd
}

func newFitnessGoalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Add, retarget or remove goals",
	}

	var d fitness.GoalDraft
	var goalType string
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Title = args[0]
			d.Type = domain.GoalType(goalType)
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				g, err := s.AddGoal(d)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), g)
			})
		},
	}
	add.Flags().StringVar(&goalType, "type", "", "steps, calories, workouts, water or sleep")
	add.Flags().IntVar(&d.Target, "target", 0, "Daily target")
	add.Flags().StringVar(&d.Unit, "unit", "", "Unit label; derived from the type when empty")

	target := &cobra.Command{
		Use:   "target <id> <value>",
		Short: "Change a goal's target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return codeError(2, "target must be a number: %s", args[1])
			}
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				ok, err := s.SetGoalTarget(args[0], value)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no goal with id %s", args[0])
				}
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				return s.DeleteGoal(args[0])
			})
		},
	}
	cmd.AddCommand(add, target, del)
	return cmd
}

func newFitnessStepsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "steps <count>",
		Short: "Set today's step count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := strconv.Atoi(args[0])
			if err != nil {
				return codeError(2, "steps must be a number: %s", args[0])
			}
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				s.UpdateSteps(steps)
				return nil
			})
		},
	}
}

func newFitnessWaterCmd(a *app) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "water <ml>",
		Short: "Add to (or with --remove, subtract from) today's water intake",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ml, err := strconv.Atoi(args[0])
			if err != nil {
				return codeError(2, "amount must be a number: %s", args[0])
			}
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				if remove {
					return s.RemoveWater(ml)
				}
				return s.AddWater(ml)
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "Subtract instead of add")
	return cmd
}

func newFitnessSleepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sleep <hours>",
		Short: "Set last night's sleep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := strconv.Atoi(args[0])
			if err != nil {
				return codeError(2, "hours must be a number: %s", args[0])
			}
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				return s.UpdateDailyStats(fitness.StatsPatch{Sleep: &hours})
			})
		},
	}
}

func newFitnessTabCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tab <today|week>",
		Short: "Choose which stats the summary shows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				return s.SetActiveTab(fitness.Tab(args[0]))
			})
		},
	}
}

func newFitnessRolloverCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Move today's row into history if the date has changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFitness(cmd.Context(), func(s *fitness.Store) error {
				if s.CheckRollover() {
					fmt.Fprintln(cmd.OutOrStdout(), "Rolled over to", s.Today())
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Already on", s.Today())
				}
				return nil
			})
		},
	}
}

func newFitnessWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the store open, rolling over at midnight, until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withFitness(ctx, func(s *fitness.Store) error {
				// a.pedometer is nil on a plain command-line host; steps are
				// then entered with `fitness steps`.
				sub := sensor.Attach(ctx, a.pedometer, s.UpdateSteps, time.Now, a.logger)
				defer sub.Remove()

				s.StartRolloverWatch(ctx, a.cfg.Fitness.RolloverInterval)
				a.logger.Info("watching for day changes", "interval", a.cfg.Fitness.RolloverInterval)
				<-ctx.Done()
				return nil
			})
		},
	}
}
