package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// failingGenerator errors on every call.
type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	return "", errors.New("provider unavailable")
}
func (failingGenerator) Name() string { return "failing" }

func (failingGenerator) Model() string { return "failing-model" }

// cannedGenerator returns a fixed response.
type cannedGenerator struct {
	response string
	lastOpts GenerateOptions
}

func (c *cannedGenerator) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	c.lastOpts = opts
	return c.response, nil
}
func (c *cannedGenerator) Name() string { return "canned" }

func (c *cannedGenerator) Model() string { return "canned-model" }

const sampleArticle = "Water boils at 100C. Ice melts at 0C. Steam rises. Cold is heavy. Heat expands metal. Gas laws apply broadly."

func newFailingAssistant() *AssistantService {
	return NewAssistantService(failingGenerator{}, GenerateOptions{}, zap.NewNop())
}

func TestSummarizeFallsBackToExtractive(t *testing.T) {
	summary, usedFallback := newFailingAssistant().Summarize(context.Background(), sampleArticle, "English", "anime")
	if !usedFallback {
		t.Error("expected fallback flag")
	}
	if summary == "" {
		t.Fatal("fallback summary must be non-empty")
	}
	if !strings.Contains(summary, "Water boils at 100C.") {
		t.Errorf("expected extractive sentences, got %q", summary)
	}
}

func TestSummarizeTooShortResponseCountsAsFailure(t *testing.T) {
	gen := &cannedGenerator{response: "ok"}
	svc := NewAssistantService(gen, GenerateOptions{}, zap.NewNop())

	summary, usedFallback := svc.Summarize(context.Background(), sampleArticle, "English", "anime")
	if !usedFallback {
		t.Error("responses under 10 chars should trigger the fallback")
	}
	if !strings.Contains(summary, "Water boils") {
		t.Errorf("got %q", summary)
	}
}

func TestSummarizeUsesModelOutput(t *testing.T) {
	gen := &cannedGenerator{response: "- Point one\n- Point two\nActions: review notes"}
	svc := NewAssistantService(gen, GenerateOptions{}, zap.NewNop())

	summary, usedFallback := svc.Summarize(context.Background(), sampleArticle, "English", "anime")
	if usedFallback {
		t.Error("did not expect fallback")
	}
	if summary != gen.response {
		t.Errorf("got %q", summary)
	}
	if gen.lastOpts.MaxOutputTokens != 420 {
		t.Errorf("MaxOutputTokens = %d, want 420", gen.lastOpts.MaxOutputTokens)
	}
}

func TestActionItemsFallbackBulletsSentences(t *testing.T) {
	items, usedFallback := newFailingAssistant().ActionItems(context.Background(), sampleArticle, "English")
	if !usedFallback {
		t.Error("expected fallback flag")
	}
	lines := strings.Split(items, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 fallback items, got %d: %q", len(lines), items)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "- ") {
			t.Errorf("fallback line not bulleted: %q", l)
		}
	}
}

func TestFlashcardsParsesJSON(t *testing.T) {
	gen := &cannedGenerator{response: "```json\n" + `[{"q":"What boils at 100C?","a":"Water"},{"q":"What melts at 0C?","a":"Ice"}]` + "\n```"}
	svc := NewAssistantService(gen, GenerateOptions{}, zap.NewNop())

	cards, usedFallback := svc.Flashcards(context.Background(), sampleArticle, 8, "English")
	if usedFallback {
		t.Error("did not expect fallback")
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].Question != "What boils at 100C?" || cards[0].Answer != "Water" {
		t.Errorf("card mismatch: %+v", cards[0])
	}
}

func TestFlashcardsParsesQALines(t *testing.T) {
	gen := &cannedGenerator{response: "Q: What rises?\nA: Steam\nQ: What is heavy?\nA: Cold"}
	svc := NewAssistantService(gen, GenerateOptions{}, zap.NewNop())

	cards, usedFallback := svc.Flashcards(context.Background(), sampleArticle, 8, "English")
	if usedFallback {
		t.Error("did not expect fallback")
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d: %+v", len(cards), cards)
	}
	if cards[1].Question != "What is heavy?" || cards[1].Answer != "Cold" {
		t.Errorf("card mismatch: %+v", cards[1])
	}
}

func TestFlashcardsFallbackPairsSentences(t *testing.T) {
	cards, usedFallback := newFailingAssistant().Flashcards(context.Background(), sampleArticle, 3, "English")
	if !usedFallback {
		t.Error("expected fallback flag")
	}
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	if cards[0].Question != "Water boils at 100C." || cards[0].Answer != "Ice melts at 0C." {
		t.Errorf("first pair mismatch: %+v", cards[0])
	}
	for _, c := range cards {
		if c.Question == "" {
			t.Errorf("fallback card has empty question: %+v", c)
		}
	}
}

func TestFlashcardsFallbackPadsWithPlaceholders(t *testing.T) {
	cards, _ := newFailingAssistant().Flashcards(context.Background(), "One sentence only.", 2, "English")
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[1].Question != "Concept 2" {
		t.Errorf("expected placeholder question, got %q", cards[1].Question)
	}
}

func TestTodosFallback(t *testing.T) {
	todos, usedFallback := newFailingAssistant().Todos(context.Background(), sampleArticle, "English")
	if !usedFallback {
		t.Error("expected fallback flag")
	}
	if len(todos) != 6 {
		t.Fatalf("expected 6 fixed todos, got %d", len(todos))
	}
	if todos[0] != "Save article" {
		t.Errorf("got %q", todos[0])
	}
}

func TestTodosStripsBullets(t *testing.T) {
	gen := &cannedGenerator{response: "- Review notes\n• Make a plan\n1. Share summary"}
	svc := NewAssistantService(gen, GenerateOptions{}, zap.NewNop())

	todos, usedFallback := svc.Todos(context.Background(), sampleArticle, "English")
	if usedFallback {
		t.Error("did not expect fallback")
	}
	want := []string{"Review notes", "Make a plan", "Share summary"}
	if len(todos) != len(want) {
		t.Fatalf("got %v", todos)
	}
	for i := range want {
		if todos[i] != want[i] {
			t.Errorf("todos[%d] = %q, want %q", i, todos[i], want[i])
		}
	}
}

func TestTopicsSplitsDelimiters(t *testing.T) {
	gen := &cannedGenerator{response: "Thermodynamics, Phase changes; Gas laws\nMetallurgy"}
	svc := NewAssistantService(gen, GenerateOptions{}, zap.NewNop())

	topics, usedFallback := svc.Topics(context.Background(), sampleArticle, 6)
	if usedFallback {
		t.Error("did not expect fallback")
	}
	if len(topics) != 4 {
		t.Fatalf("got %v", topics)
	}
	if topics[2] != "Gas laws" {
		t.Errorf("got %q", topics[2])
	}
}

func TestTopicsFallbackTruncatesSentences(t *testing.T) {
	topics, usedFallback := newFailingAssistant().Topics(context.Background(), sampleArticle, 3)
	if !usedFallback {
		t.Error("expected fallback flag")
	}
	if len(topics) != 3 {
		t.Fatalf("got %v", topics)
	}
	for _, topic := range topics {
		if len(topic) > 40 {
			t.Errorf("fallback topic too long: %q", topic)
		}
	}
}

func TestTranslateFallbackReturnsOriginal(t *testing.T) {
	out, usedFallback := newFailingAssistant().Translate(context.Background(), sampleArticle, "Hindi")
	if !usedFallback {
		t.Error("expected fallback flag")
	}
	if out != sampleArticle {
		t.Errorf("fallback must return the original text, got %q", out)
	}
}

func TestSentiment(t *testing.T) {
	tests := []struct {
		response string
		want     string
	}{
		{"Positive", "positive"},
		{"The sentiment is negative.", "negative"},
		{"Neutral", "neutral"},
		{"mixed feelings", "neutral"},
	}
	for _, tt := range tests {
		gen := &cannedGenerator{response: tt.response}
		svc := NewAssistantService(gen, GenerateOptions{}, zap.NewNop())
		if got := svc.Sentiment(context.Background(), "some reply"); got != tt.want {
			t.Errorf("Sentiment(%q) = %q, want %q", tt.response, got, tt.want)
		}
	}
}

func TestSentimentFailureIsNeutral(t *testing.T) {
	if got := newFailingAssistant().Sentiment(context.Background(), "anything"); got != "neutral" {
		t.Errorf("got %q", got)
	}
}

func TestChatReplyFallback(t *testing.T) {
	reply, usedFallback := newFailingAssistant().ChatReply(context.Background(), "hello", "English", "anime", nil)
	if !usedFallback {
		t.Error("expected fallback flag")
	}
	if reply == "" {
		t.Error("fallback reply must be non-empty")
	}
}

func TestConfiguredDefaultsThreadThroughGeneration(t *testing.T) {
	gen := &cannedGenerator{response: "- Point one\n- Point two\n- Point three"}
	svc := NewAssistantService(gen, GenerateOptions{MaxOutputTokens: 256, Temperature: 0.7}, zap.NewNop())

	svc.Summarize(context.Background(), sampleArticle, "English", "anime")
	if gen.lastOpts.MaxOutputTokens != 256 {
		t.Errorf("summary MaxOutputTokens = %d, want 256", gen.lastOpts.MaxOutputTokens)
	}

	svc.ChatReply(context.Background(), "hello", "English", "anime", nil)
	if gen.lastOpts.Temperature != 0.7 {
		t.Errorf("chat temperature = %v, want 0.7", gen.lastOpts.Temperature)
	}
}

func TestFlashcardsStripFenceBeforeLineParse(t *testing.T) {
	gen := &cannedGenerator{response: "```\nQ: What expands metal?\nA: Heat\n```"}
	svc := NewAssistantService(gen, GenerateOptions{}, zap.NewNop())

	cards, usedFallback := svc.Flashcards(context.Background(), sampleArticle, 4, "English")
	if usedFallback {
		t.Error("did not expect fallback")
	}
	if len(cards) != 1 || cards[0].Answer != "Heat" {
		t.Fatalf("cards = %+v", cards)
	}
}

func TestModelNameReportsGenerator(t *testing.T) {
	svc := NewAssistantService(&cannedGenerator{response: "x"}, GenerateOptions{}, zap.NewNop())
	if got := svc.ModelName(); got != "canned-model" {
		t.Errorf("ModelName() = %q", got)
	}
	if got := (&AssistantService{}).ModelName(); got != "" {
		t.Errorf("nil generator ModelName() = %q", got)
	}
}

func TestStripCodeFence(t *testing.T) {
	in := "```json\n[1,2]\n```"
	if got := stripCodeFence(in); got != "[1,2]" {
		t.Errorf("got %q", got)
	}
}
