package session

import (
	"testing"

	"pagebuddy-backend/internal/models"
)

func TestMoodForSentiment(t *testing.T) {
	tests := []struct {
		sentiment string
		want      models.Mood
	}{
		{"positive", models.MoodHappy},
		{"negative", models.MoodConcerned},
		{"neutral", models.MoodListening},
		{"garbage", models.MoodListening},
		{"", models.MoodListening},
	}
	for _, tt := range tests {
		if got := MoodForSentiment(tt.sentiment); got != tt.want {
			t.Errorf("MoodForSentiment(%q) = %q, want %q", tt.sentiment, got, tt.want)
		}
	}
}

func TestOnRequestSubmitted(t *testing.T) {
	for _, from := range []models.Mood{models.MoodIdle, models.MoodListening, models.MoodHappy} {
		if got := OnRequestSubmitted(from); got != models.MoodThinking {
			t.Errorf("OnRequestSubmitted(%q) = %q, want thinking", from, got)
		}
	}
}

func TestAfterNarration(t *testing.T) {
	if got := AfterNarration(); got != models.MoodListening {
		t.Errorf("got %q", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(models.MoodBattle); got != models.MoodBattle {
		t.Errorf("valid mood must pass through, got %q", got)
	}
	if got := Normalize(models.Mood("bogus")); got != models.MoodListening {
		t.Errorf("invalid mood must normalize to listening, got %q", got)
	}
}
