package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolstate/internal/fitness"
	"github.com/conorfennell/knolstate/internal/flashcards"
	"github.com/conorfennell/knolstate/internal/language"
)

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "reset <cards|fitness|language|all>",
		Short:     "Remove an app's stored state and restore its defaults",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"cards", "fitness", "language", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resets := map[string]func(context.Context) error{
				"cards": func(ctx context.Context) error {
					return a.withCards(ctx, func(s *flashcards.Store) error { return s.ResetAll(ctx) })
				},
				"fitness": func(ctx context.Context) error {
					return a.withFitness(ctx, func(s *fitness.Store) error { return s.ResetAll(ctx) })
				},
				"language": func(ctx context.Context) error {
					return a.withLanguage(ctx, func(s *language.Store) error { return s.ResetAll(ctx) })
				},
			}

			targets := []string{args[0]}
			if args[0] == "all" {
				targets = []string{"cards", "fitness", "language"}
			}
			for _, t := range targets {
				reset, ok := resets[t]
				if !ok {
					return codeError(2, "unknown app %q: use cards, fitness, language or all", t)
				}
				if err := reset(ctx); err != nil {
					return fmt.Errorf("reset %s: %w", t, err)
				}
				a.logger.Info("state reset", "app", t)
			}
			return nil
		},
	}
}
