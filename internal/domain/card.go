package domain

import (
	"fmt"
	"time"
)

// CardKind discriminates which optional content a flashcard carries.
type CardKind string

const (
	KindText     CardKind = "text"
	KindEquation CardKind = "equation"
	KindImage    CardKind = "image"
)

// ParseCardKind maps a stored or generated kind tag to a CardKind. Empty means text.
func ParseCardKind(s string) (CardKind, error) {
	switch CardKind(s) {
	case "", KindText:
		return KindText, nil
	case KindEquation:
		return KindEquation, nil
	case KindImage:
		return KindImage, nil
	default:
		return "", fmt.Errorf("unknown card kind %q", s)
	}
}

// Flashcard is a single question-answer entry in a category.
type Flashcard struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	Kind      CardKind  `json:"type"`
	// Equation is only meaningful for KindEquation cards.
	Equation string `json:"equationData,omitempty"`
	// ImageURI is only meaningful for KindImage cards.
	ImageURI string `json:"imageUri,omitempty"`
	// Hash fingerprints question, answer and category.
	Hash   string       `json:"hash,omitempty"`
	Review *ReviewState `json:"review,omitempty"`
}

func (c *Flashcard) RecordID() *string { return &c.ID }

// CardBody is the kind-specific content of a flashcard. It is one of
// TextBody, EquationBody or ImageBody.
type CardBody interface {
	cardBody()
}

type TextBody struct {
	Answer string
}

type EquationBody struct {
	Answer   string
	Equation string
}

type ImageBody struct {
	Answer   string
	ImageURI string
}

func (TextBody) cardBody()     {}
func (EquationBody) cardBody() {}
func (ImageBody) cardBody()    {}

// Body returns the content variant selected by the card's kind.
func (c Flashcard) Body() CardBody {
	switch c.Kind {
	case KindEquation:
		eq := c.Equation
		if eq == "" {
			eq = c.Answer
		}
		return EquationBody{Answer: c.Answer, Equation: eq}
	case KindImage:
		return ImageBody{Answer: c.Answer, ImageURI: c.ImageURI}
	default:
		return TextBody{Answer: c.Answer}
	}
}

// Normalize clears the optional fields that do not belong to the card's kind.
func (c *Flashcard) Normalize() {
	switch c.Kind {
	case KindEquation:
		c.ImageURI = ""
	case KindImage:
		c.Equation = ""
	default:
		c.Kind = KindText
		c.Equation = ""
		c.ImageURI = ""
	}
}

// ReviewState records the spaced-repetition state of a card.
type ReviewState struct {
	Stability  float64   `json:"stability"`
	Difficulty float64   `json:"difficulty"`
	Due        time.Time `json:"due"`
	LastReview time.Time `json:"lastReview"`
	Reviews    int       `json:"reviews"`
}

// Category groups flashcards by name.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (c *Category) RecordID() *string { return &c.ID }
