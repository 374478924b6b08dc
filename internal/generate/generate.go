// Package generate asks a text-generation service for flashcards on a topic and
// extracts the card list embedded in its reply.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCredential means no API key was configured.
	ErrMissingCredential = errors.New("generation API key not configured")
	// ErrUnauthorized means the service rejected the API key.
	ErrUnauthorized = errors.New("invalid generation API key")
	// ErrRateLimited means the service asked us to retry later.
	ErrRateLimited = errors.New("generation rate limit exceeded, try again in a moment")
	// ErrMalformedResponse means no valid card list could be found in the reply.
	ErrMalformedResponse = errors.New("generation service returned an invalid format")
	// ErrEmptyResult means the reply held a card list with no cards.
	ErrEmptyResult = errors.New("no cards generated")
)

// StatusError is a non-success HTTP status other than 401 and 429.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generation API error: HTTP %d: %s", e.Status, e.Body)
}

// Difficulty tunes the complexity of generated cards.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Request describes a batch of cards to generate.
type Request struct {
	Topic      string     `json:"topic" validate:"required"`
	Count      int        `json:"count" validate:"gte=1,lte=50"`
	Difficulty Difficulty `json:"difficulty" validate:"oneof=easy medium hard"`
}

// Card is one generated entry as the service returns it.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
	Type     string `json:"type"`
}

// Generator produces cards for a request in one request/response exchange.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]Card, error)
}

// BuildPrompt renders the user prompt for req.
func BuildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d educational flashcards about %q at %s difficulty level.\n\n", req.Count, req.Topic, req.Difficulty)
	b.WriteString("CRITICAL: Return ONLY a valid JSON array with NO additional text, explanations, or markdown.\n\n")
	b.WriteString("Format EXACTLY:\n[\n  {\n")
	b.WriteString("    \"question\": \"Clear, specific question\",\n")
	b.WriteString("    \"answer\": \"Comprehensive, educational answer\",\n")
	fmt.Fprintf(&b, "    \"category\": %q,\n", req.Topic)
	b.WriteString("    \"type\": \"text\"\n  }\n]\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("1. For math/science/technical topics, include cards with type: \"equation\"\n")
	b.WriteString("2. For equation cards, use Unicode symbols: ×, ÷, √, ², ³, π, ∑, ∫, ±, ≤, ≥, ≠, α, β, γ, θ, Δ, Ω\n")
	b.WriteString("3. Make questions clear and answers detailed\n")
	fmt.Fprintf(&b, "4. Difficulty %s: adjust complexity accordingly\n", req.Difficulty)
	b.WriteString("5. RETURN ONLY THE JSON ARRAY - no other text")
	return b.String()
}

// truncate limits a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
