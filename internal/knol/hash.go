package knol

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/conorfennell/knolstate/internal/domain"
)

// Normalize joins the card's question, answer and category after cleaning each
// part: whitespace trimmed, lowercased, line endings unified.
func Normalize(card domain.Flashcard) string {
	parts := []string{card.Question, card.Answer, card.Category}
	for i, p := range parts {
		p = strings.ToLower(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		parts[i] = strings.TrimSpace(p)
	}
	// Newline separation keeps "ab"+"c" and "a"+"bc" apart.
	return strings.Join(parts, "\n")
}

// Hash returns the SHA-256 of the normalized card as hex. Two cards with the
// same content, modulo case and surrounding whitespace, share a hash.
func Hash(card domain.Flashcard) string {
	sum := sha256.Sum256([]byte(Normalize(card)))
	return hex.EncodeToString(sum[:])
}
