package generate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractCards locates the JSON array embedded in text and decodes it. The
// array need not be the whole text: surrounding prose and markdown fences are
// ignored. Every card needs a question and an answer.
func ExtractCards(text string) ([]Card, error) {
	cleaned := stripFences(text)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array in response: %s", ErrMalformedResponse, truncate(text, 200))
	}

	var cards []Card
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &cards); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(cards) == 0 {
		return nil, ErrEmptyResult
	}
	for i, c := range cards {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			return nil, fmt.Errorf("%w: card %d is missing a question or answer", ErrMalformedResponse, i)
		}
	}
	return cards, nil
}

// stripFences removes leading/trailing markdown code fences (```json ... ``` or ``` ... ```).
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		if idx := strings.LastIndex(s, "\n```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
