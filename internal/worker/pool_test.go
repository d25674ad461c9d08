package worker

import (
	"strings"
	"testing"

	"pagebuddy-backend/internal/models"
)

func TestSummaryTitlePrefersTitleThenURL(t *testing.T) {
	c := &models.Content{Title: "Page title", URL: "https://example.com", Text: "body"}
	if got := summaryTitle(c); got != "Page title" {
		t.Errorf("got %q", got)
	}

	c.Title = ""
	if got := summaryTitle(c); got != "https://example.com" {
		t.Errorf("got %q", got)
	}

	c.URL = ""
	c.Text = "  " + strings.Repeat("word ", 30)
	got := summaryTitle(c)
	if len(got) > 60 {
		t.Errorf("text-derived title too long: %d chars", len(got))
	}
	if strings.HasPrefix(got, " ") {
		t.Errorf("title not trimmed: %q", got)
	}
}

func TestResultTypeMapsJobTypes(t *testing.T) {
	if got := resultType("page-summary"); got != "summary" {
		t.Errorf("got %q", got)
	}
	if got := resultType("flashcard-deck"); got != "deck" {
		t.Errorf("got %q", got)
	}
	if got := resultType("custom"); got != "custom" {
		t.Errorf("got %q", got)
	}
}

func TestQueueNameMapsJobTypes(t *testing.T) {
	if got := queueName("page-summary"); got != QueuePageSummary {
		t.Errorf("got %q", got)
	}
	if got := queueName("flashcard-deck"); got != QueueFlashcardDeck {
		t.Errorf("got %q", got)
	}
}
