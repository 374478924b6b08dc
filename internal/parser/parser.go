// Package parser reads markdown flashcard decks. A card is a block of
// prefixed lines:
//
//	Q: question, possibly continued on following lines
//	A: answer
//	C: category (optional)
//	T: text | equation | image (optional)
//
// A new Q: line or a line holding only --- ends the current card.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/knolstate/internal/domain"
)

type field int

const (
	none field = iota
	question
	answer
	category
	kind
)

var prefixes = []struct {
	prefix string
	field  field
}{
	{"Q:", question},
	{"A:", answer},
	{"C:", category},
	{"T:", kind},
}

// ParseFile reads the deck at path.
func ParseFile(path string) ([]domain.Flashcard, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse extracts every card with a question from r. Cards keep the zero
// Kind unless a T: line names one; an unknown kind is an error.
func Parse(r io.Reader) ([]domain.Flashcard, error) {
	var (
		cards   []domain.Flashcard
		current domain.Flashcard
		active  = none
		block   []string
		lineNo  int
	)

	commit := func() error {
		if active == none {
			return nil
		}
		content := strings.TrimRight(strings.Join(block, "\n"), "\n")
		block = nil
		switch active {
		case question:
			current.Question = content
		case answer:
			current.Answer = content
		case category:
			current.Category = strings.TrimSpace(content)
		case kind:
			k, err := domain.ParseCardKind(strings.TrimSpace(content))
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			current.Kind = k
		}
		active = none
		return nil
	}
	finish := func() error {
		if err := commit(); err != nil {
			return err
		}
		if current.Question != "" {
			cards = append(cards, current)
		}
		current = domain.Flashcard{}
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++

		if strings.TrimSpace(line) == "---" {
			if err := finish(); err != nil {
				return nil, err
			}
			continue
		}

		f, rest := matchPrefix(line)
		if f == none {
			if active != none {
				block = append(block, line)
			}
			continue
		}
		if f == question && (current.Question != "" || active != none) {
			if err := finish(); err != nil {
				return nil, err
			}
		} else if err := commit(); err != nil {
			return nil, err
		}
		active = f
		block = append(block, rest)
	}
	if err := finish(); err != nil {
		return nil, err
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// matchPrefix returns the field a line opens and the line's content after
// the prefix and one optional space.
func matchPrefix(line string) (field, string) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(line, p.prefix); ok {
			return p.field, strings.TrimPrefix(rest, " ")
		}
	}
	return none, ""
}
