package models

import (
	"time"
)

// ErrorFetchPrefix marks a failed acquisition result. Callers receive the
// sentinel string instead of an error so the dashboard can render it inline.
const ErrorFetchPrefix = "ERROR_FETCH:"

type Content struct {
	Source    string    `json:"source"` // "url" | "pasted" | "upload" | "youtube"
	URL       string    `json:"url,omitempty"`
	Title     string    `json:"title,omitempty"`
	Text      string    `json:"text"`
	CharCount int       `json:"char_count"`
	Truncated bool      `json:"truncated"`
	FetchedAt time.Time `json:"fetched_at"`
}

type FetchContentRequest struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id,omitempty"`
}

type PasteContentRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}
