package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/language"
)

func newLanguageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "language",
		Short: "Manage language selection, lessons, vocabulary and progress",
	}
	cmd.AddCommand(
		newLanguageShowCmd(a),
		newLanguageSelectCmd(a),
		newLanguageLessonCmd(a),
		newLanguageVocabCmd(a),
		newLanguagePracticeCmd(a),
	)
	return cmd
}

type languageView struct {
	Selected  *domain.Language `json:"selected"`
	Onboarded bool             `json:"onboarded"`
	Progress  domain.Progress  `json:"progress"`
	Lessons   []domain.Lesson  `json:"lessons"`
}

func newLanguageShowCmd(a *app) *cobra.Command {
	var catalog bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the selected language, progress and lessons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLanguage(cmd.Context(), func(s *language.Store) error {
				if catalog {
					return printJSON(cmd.OutOrStdout(), s.Languages())
				}
				v := languageView{Onboarded: s.Onboarded(), Progress: s.Progress(), Lessons: s.Lessons()}
				if l, ok := s.SelectedLanguage(); ok {
					v.Selected = &l
				}
				return printJSON(cmd.OutOrStdout(), v)
			})
		},
	}
	cmd.Flags().BoolVar(&catalog, "catalog", false, "List the available languages instead")
	return cmd
}

func newLanguageSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <language-id>",
		Short: "Select the language to study and finish onboarding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLanguage(cmd.Context(), func(s *language.Store) error {
				if err := s.SelectLanguage(args[0]); err != nil {
					return err
				}
				s.CompleteOnboarding()
				return nil
			})
		},
	}
}

func newLanguageLessonCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lesson",
		Short: "Complete lessons or record progress through them",
	}

	complete := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a lesson as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLanguage(cmd.Context(), func(s *language.Store) error {
				if !s.CompleteLesson(args[0]) {
					return fmt.Errorf("no lesson with id %s", args[0])
				}
				return nil
			})
		},
	}

	progress := &cobra.Command{
		Use:   "progress <id> <percent>",
		Short: "Record how far through a lesson the learner is",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := strconv.Atoi(args[1])
			if err != nil {
				return codeError(2, "percent must be a number: %s", args[1])
			}
			return a.withLanguage(cmd.Context(), func(s *language.Store) error {
				ok, err := s.SetLessonProgress(args[0], pct)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no lesson with id %s", args[0])
				}
				return nil
			})
		},
	}
	cmd.AddCommand(complete, progress)
	return cmd
}

func newLanguageVocabCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Manage vocabulary cards",
	}

	var query string
	list := &cobra.Command{
		Use:   "list",
		Short: "List vocabulary, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLanguage(cmd.Context(), func(s *language.Store) error {
				s.SetSearchQuery(query)
				return printJSON(cmd.OutOrStdout(), s.Filtered())
			})
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "Match word, translation or category")

	var d language.VocabDraft
	add := &cobra.Command{
		Use:   "add <word> <translation>",
		Short: "Add a vocabulary card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Word, d.Translation = args[0], args[1]
			return a.withLanguage(cmd.Context(), func(s *language.Store) error {
				v, err := s.AddVocab(d)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), v)
			})
		},
	}
	f := add.Flags()
	f.StringVar(&d.Category, "category", "", "Category")
	f.StringVar(&d.Language, "language", "", "Language name; the selected language when empty")
	f.StringVar(&d.Pronunciation, "pronunciation", "", "Pronunciation hint")
	f.StringVar(&d.Example, "example", "", "Example sentence")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a vocabulary card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLanguage(cmd.Context(), func(s *language.Store) error {
				if !s.DeleteVocab(args[0]) {
					a.logger.Warn("no such vocabulary card", "id", args[0])
				}
				return nil
			})
		},
	}
	cmd.AddCommand(list, add, del)
	return cmd
}

func newLanguagePracticeCmd(a *app) *cobra.Command {
	var p language.Practice
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Record a study session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLanguage(cmd.Context(), func(s *language.Store) error {
				if err := s.RecordPractice(p); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), s.Progress())
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&p.Answered, "answered", 0, "Questions answered")
	f.IntVar(&p.Correct, "correct", 0, "Questions answered correctly")
	f.IntVar(&p.Minutes, "minutes", 0, "Minutes studied")
	return cmd
}
