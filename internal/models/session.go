package models

import "time"

// Mood is the avatar state label. Purely cosmetic: the only invariant is
// that it is always one of the enumerated values.
type Mood string

const (
	MoodIdle      Mood = "idle"
	MoodListening Mood = "listening"
	MoodThinking  Mood = "thinking"
	MoodHappy     Mood = "happy"
	MoodExcited   Mood = "excited"
	MoodConcerned Mood = "concerned"
	MoodBattle    Mood = "battle"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodIdle, MoodListening, MoodThinking, MoodHappy, MoodExcited, MoodConcerned, MoodBattle:
		return true
	}
	return false
}

// Session is the per-dashboard-tab state: an append-only transcript, the
// current mood, the most recently acquired content and a small preference
// map. Nothing outlives the session TTL.
type Session struct {
	ID          string            `json:"id"`
	Mood        Mood              `json:"mood"`
	Content     *Content          `json:"content,omitempty"`
	Transcript  []ChatMessage     `json:"transcript"`
	Preferences map[string]string `json:"preferences,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}
