package models

import (
	"time"

	"github.com/google/uuid"
)

// Flashcard is a single question/answer pair. The JSON keys match the shape
// the generation prompt asks the model for, so parsed output maps directly.
type Flashcard struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

type FlashcardDeck struct {
	ID        uuid.UUID   `json:"id"`
	SessionID string      `json:"session_id"`
	Title     string      `json:"title"`
	Cards     []Flashcard `json:"cards"`
	CardCount int         `json:"card_count"`
	CreatedAt time.Time   `json:"created_at"`
}

type GenerateFlashcardsRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Count     int    `json:"count,omitempty"`
	Language  string `json:"language"`
}

type GenerateFlashcardsResponse struct {
	Cards        []Flashcard `json:"cards"`
	UsedFallback bool        `json:"used_fallback"`
}
