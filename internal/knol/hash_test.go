package knol

import (
	"testing"

	"github.com/conorfennell/knolstate/internal/domain"
)

func TestNormalize(t *testing.T) {
	card := domain.Flashcard{
		Question: "  What is HTMX? \r\n",
		Answer:   "A library for AJAX.",
		Category: "Web Development",
	}
	expected := "what is htmx?\na library for ajax.\nweb development"
	normalized := Normalize(card)

	if normalized != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, normalized)
	}
}

func TestHash(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		card := domain.Flashcard{Question: "Q", Answer: "A", Category: "C"}
		// Hash for "q\na\nc"
		expectedHash := "eb2456c1ee4f36305069dd0f63a30e92d5443129f5e8fd9a5ec490fbc4d4d8a2"
		if hash := Hash(card); hash != expectedHash {
			t.Errorf("Expected hash '%s', but got '%s'", expectedHash, hash)
		}
	})

	t.Run("ignores id, kind and timestamps", func(t *testing.T) {
		card1 := domain.Flashcard{ID: "card-1", Question: "Test", Kind: domain.KindText}
		card2 := domain.Flashcard{ID: "card-2", Question: "Test", Kind: domain.KindEquation}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected hashes for cards with identical content to be the same")
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		card1 := domain.Flashcard{Question: "  what is go? ", Answer: "A programming language."}
		card2 := domain.Flashcard{Question: "What Is Go?", Answer: "A programming language."}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected hashes to be the same after normalization, but they were different.")
		}
	})

	t.Run("category is part of the fingerprint", func(t *testing.T) {
		card1 := domain.Flashcard{Question: "Card", Category: "Math"}
		card2 := domain.Flashcard{Question: "Card", Category: "Physics"}
		if Hash(card1) == Hash(card2) {
			t.Error("Expected hashes for different categories to be different")
		}
	})
}
