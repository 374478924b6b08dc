package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conorfennell/knolstate/internal/domain"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedCards int
		expectedQ     string
		expectedA     string
		expectedC     string
		expectedKind  domain.CardKind
	}{
		{
			name:          "Simple Q&A",
			input:         "Q: What is the capital of France?\nA: Paris",
			expectedCards: 1,
			expectedQ:     "What is the capital of France?",
			expectedA:     "Paris",
		},
		{
			name:          "Q, A and category",
			input:         "Q: What is 1+1?\nA: 2\nC: Arithmetic",
			expectedCards: 1,
			expectedQ:     "What is 1+1?",
			expectedA:     "2",
			expectedC:     "Arithmetic",
		},
		{
			name: "Multiline Answer",
			input: `
Q: What are the primary colors?
A: Red
Blue
Yellow
`,
			expectedCards: 1,
			expectedQ:     "What are the primary colors?",
			expectedA:     "Red\nBlue\nYellow",
		},
		{
			name: "Two Cards",
			input: `
Q: First question
A: First answer

Q: Second question
A: Second answer
`,
			expectedCards: 2,
		},
		{
			name: "Separator between cards",
			input: `Q: One
A: 1
---
Q: Two
A: 2
---`,
			expectedCards: 2,
		},
		{
			name: "Equation card",
			input: `
Q: Area of a circle?
A: A = πr²
C: Geometry
T: equation
`,
			expectedCards: 1,
			expectedQ:     "Area of a circle?",
			expectedA:     "A = πr²",
			expectedC:     "Geometry",
			expectedKind:  domain.KindEquation,
		},
		{
			name:          "No cards, just text",
			input:         "This is a file with no questions.",
			expectedCards: 0,
		},
		{
			name:          "Prefixes with no space",
			input:         "Q:Question\nA:Answer",
			expectedCards: 1,
			expectedQ:     "Question",
			expectedA:     "Answer",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cards, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse() returned an unexpected error: %v", err)
			}

			if len(cards) != tc.expectedCards {
				t.Fatalf("Expected %d cards, but got %d", tc.expectedCards, len(cards))
			}

			if tc.expectedCards == 1 {
				card := cards[0]
				if card.Question != tc.expectedQ {
					t.Errorf("Expected Question to be '%s', but got '%s'", tc.expectedQ, card.Question)
				}
				if card.Answer != tc.expectedA {
					t.Errorf("Expected Answer to be '%s', but got '%s'", tc.expectedA, card.Answer)
				}
				if card.Category != tc.expectedC {
					t.Errorf("Expected Category to be '%s', but got '%s'", tc.expectedC, card.Category)
				}
				if card.Kind != tc.expectedKind {
					t.Errorf("Expected Kind to be '%s', but got '%s'", tc.expectedKind, card.Kind)
				}
			}
		})
	}
}

func TestParseUnknownKind(t *testing.T) {
	if _, err := Parse(strings.NewReader("Q: q\nA: a\nT: video")); err == nil {
		t.Error("Expected an error for an unknown kind")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.md")
	if err := os.WriteFile(path, []byte("Q: Hola?\nA: Hello\nC: Spanish\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cards, err := ParseFile(path)
	if err != nil || len(cards) != 1 || cards[0].Category != "Spanish" {
		t.Errorf("ParseFile = %+v, %v", cards, err)
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
