package session

import "pagebuddy-backend/internal/models"

// Mood transitions for the avatar. The flow is:
// idle/listening -> thinking (request submitted) -> happy/concerned/listening
// (by reply sentiment) -> listening (after narration completes).

// OnRequestSubmitted moves any mood to thinking while a generation call runs.
func OnRequestSubmitted(current models.Mood) models.Mood {
	return models.MoodThinking
}

// MoodForSentiment maps a one-word sentiment judgment onto a mood.
func MoodForSentiment(sentiment string) models.Mood {
	switch sentiment {
	case "positive":
		return models.MoodHappy
	case "negative":
		return models.MoodConcerned
	default:
		return models.MoodListening
	}
}

// AfterNarration settles the avatar back to listening.
func AfterNarration() models.Mood {
	return models.MoodListening
}

// Normalize coerces arbitrary input to a valid mood, defaulting to listening.
func Normalize(m models.Mood) models.Mood {
	if m.Valid() {
		return m
	}
	return models.MoodListening
}
