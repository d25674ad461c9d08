package models

import "time"

// ChatMessage is one entry in the session transcript.
type ChatMessage struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Language  string `json:"language"`
	Style     string `json:"style"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
	Mood  Mood   `json:"mood"`
}
