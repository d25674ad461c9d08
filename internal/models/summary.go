package models

import (
	"time"

	"github.com/google/uuid"
)

type Summary struct {
	ID             uuid.UUID  `json:"id"`
	SessionID      string     `json:"session_id"`
	Source         string     `json:"source"`
	Title          string     `json:"title"`
	Language       string     `json:"language"`
	Style          string     `json:"style"`
	Model          string     `json:"model"`
	SummaryText    string     `json:"summary"`
	ActionItems    string     `json:"action_items"`
	Tags           []string   `json:"tags"`
	WordCount      int        `json:"word_count"`
	UsedFallback   bool       `json:"used_fallback"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
}

type SummarizeRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Language  string `json:"language"`
	Style     string `json:"style"`
}

type SummarizeResponse struct {
	Summary      string `json:"summary"`
	ActionItems  string `json:"action_items"`
	Mood         Mood   `json:"mood"`
	UsedFallback bool   `json:"used_fallback"`
}

type TranslateRequest struct {
	SessionID      string `json:"session_id,omitempty"`
	Content        string `json:"content,omitempty"`
	TargetLanguage string `json:"target_language"`
}

type TranslateResponse struct {
	Text string `json:"text"`
}

type TopicsRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Count     int    `json:"count,omitempty"`
}

type TopicsResponse struct {
	Topics []string `json:"topics"`
}

type TodosRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Language  string `json:"language"`
}

type TodosResponse struct {
	Todos []string `json:"todos"`
}
