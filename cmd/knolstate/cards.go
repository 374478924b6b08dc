package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolstate/internal/domain"
	"github.com/conorfennell/knolstate/internal/flashcards"
	"github.com/conorfennell/knolstate/internal/fsrs"
	"github.com/conorfennell/knolstate/internal/generate"
	"github.com/conorfennell/knolstate/internal/importer"
)

func newCardsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage flashcards and categories",
	}
	cmd.AddCommand(
		newCardsListCmd(a),
		newCardsAddCmd(a),
		newCardsDeleteCmd(a),
		newCardsCategoriesCmd(a),
		newCardsGenerateCmd(a),
		newCardsReviewCmd(a),
		newCardsDueCmd(a),
		newCardsImportCmd(a),
	)
	return cmd
}

func newCardsListCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards, optionally filtered by a search query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCards(cmd.Context(), func(s *flashcards.Store) error {
				s.SetSearchQuery(query)
				return printJSON(cmd.OutOrStdout(), s.Filtered())
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Match question, answer or category")
	return cmd
}

func newCardsAddCmd(a *app) *cobra.Command {
	var d flashcards.Draft
	var kind string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Kind = domain.CardKind(kind)
			return a.withCards(cmd.Context(), func(s *flashcards.Store) error {
				card, err := s.Add(d)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), card)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.Question, "question", "", "Question text")
	f.StringVar(&d.Answer, "answer", "", "Answer text")
	f.StringVar(&d.Category, "category", "", "Category name")
	f.StringVar(&kind, "type", "text", "Card type: text, equation or image")
	f.StringVar(&d.Equation, "equation", "", "Equation shown with an equation card")
	f.StringVar(&d.ImageURI, "image", "", "Image URI shown with an image card")
	return cmd
}

func newCardsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCards(cmd.Context(), func(s *flashcards.Store) error {
				if !s.Delete(args[0]) {
					a.logger.Warn("no such card", "id", args[0])
				}
				return nil
			})
		},
	}
}

func newCardsCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with their card counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCards(cmd.Context(), func(s *flashcards.Store) error {
				type row struct {
					domain.Category
					Cards int `json:"cards"`
				}
				counts := s.CategoryCounts()
				var rows []row
				for _, c := range s.Categories() {
					rows = append(rows, row{Category: c, Cards: counts[c.Name]})
				}
				return printJSON(cmd.OutOrStdout(), rows)
			})
		},
	}

	var d flashcards.CategoryDraft
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Name = args[0]
			return a.withCards(cmd.Context(), func(s *flashcards.Store) error {
				c, err := s.AddCategory(d)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), c)
			})
		},
	}
	add.Flags().StringVar(&d.Color, "color", "", "Hex color; picked from the palette when empty")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category that no card uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCards(cmd.Context(), func(s *flashcards.Store) error {
				return s.DeleteCategory(args[0])
			})
		},
	}
	cmd.AddCommand(add, del)
	return cmd
}

func newCardsGenerateCmd(a *app) *cobra.Command {
	req := generate.Request{}
	var difficulty string
	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate cards about a topic with the generation service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Topic = args[0]
			req.Difficulty = generate.Difficulty(difficulty)
			return a.withCards(cmd.Context(), func(s *flashcards.Store) error {
				cards, err := s.Generate(cmd.Context(), req)
				if err != nil {
					return codeError(5, "generating cards: %s", err)
				}
				a.logger.Info("generated cards", "topic", req.Topic, "count", len(cards))
				return printJSON(cmd.OutOrStdout(), cards)
			})
		},
	}
	cmd.Flags().IntVarP(&req.Count, "count", "n", 10, "Number of cards to request (1-50)")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(generate.Medium), "easy, medium or hard")
	return cmd
}

func newCardsReviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "review <id> <again|hard|good|easy>",
		Short: "Record a review and schedule the card's next one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := fsrs.ParseRating(args[1])
			if err != nil {
				return codeError(2, "%s", err)
			}
			return a.withCards(cmd.Context(), func(s *flashcards.Store) error {
				card, ok, err := s.Review(args[0], rating)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no card with id %s", args[0])
				}
				return printJSON(cmd.OutOrStdout(), card)
			})
		},
	}
}

func newCardsDueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List the cards to study now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCards(cmd.Context(), func(s *flashcards.Store) error {
				return printJSON(cmd.OutOrStdout(), s.Due(time.Now()))
			})
		},
	}
}

func newCardsImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir|git-url>",
		Short: "Import markdown decks from a directory or git repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			im := importer.New(a.cfg.Importer.ReposDir, a.logger)
			return a.withCards(cmd.Context(), func(s *flashcards.Store) error {
				report, err := im.Import(cmd.Context(), args[0], s)
				if err != nil {
					return err
				}
				for _, e := range report.Errors {
					a.logger.Warn("skipped during import", "error", e)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Found %d cards in %d files: %d added, %d already known, %d errors.\n",
					report.Parsed, report.Files, report.Added, report.Skipped, len(report.Errors))
				return nil
			})
		},
	}
}
