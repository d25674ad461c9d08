package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"pagebuddy-backend/internal/models"
	"pagebuddy-backend/internal/summarize"
)

// Prompt input caps, in characters. The model sees at most this much of the
// source text per call.
const (
	summarizeInputCap = 16000
	flashcardInputCap = 15000
	artifactInputCap  = 12000
	sentimentInputCap = 5000
)

const fallbackSummarySentences = 6

var (
	topicSplitPattern   = regexp.MustCompile(`[\n,;]+`)
	qaLinePattern       = regexp.MustCompile(`(?i)^\s*([QA])[:\-.)]\s*(.+)$`)
	bulletTrimCutset    = "-•*0123456789. \t\r"
	fallbackChatReply   = "My language model is not available right now. Try again in a moment."
	fallbackTodos       = []string{"Save article", "Summarize key points", "Make flashcards", "Find references", "Share with a peer", "Schedule review"}
)

// AssistantService builds prompts, calls the configured TextGenerator, and
// degrades to local heuristics whenever the model errors or returns unusable
// output. Every method returns a usable value; failures never escape.
type AssistantService struct {
	gen      TextGenerator
	defaults GenerateOptions
	logger   *zap.Logger
}

// NewAssistantService wires a generator with configured generation defaults.
// The default token ceiling applies to the long-form operations (summary,
// flashcards, chat); the default temperature applies to chat. Short
// deterministic operations keep their fixed budgets.
func NewAssistantService(gen TextGenerator, defaults GenerateOptions, logger *zap.Logger) *AssistantService {
	if defaults.MaxOutputTokens <= 0 {
		defaults.MaxOutputTokens = 420
	}
	if defaults.Temperature <= 0 {
		defaults.Temperature = 0.2
	}
	return &AssistantService{gen: gen, defaults: defaults, logger: logger}
}

// ModelName reports which model produced the artifacts, for history records.
func (a *AssistantService) ModelName() string {
	if a.gen == nil {
		return ""
	}
	return a.gen.Model()
}

func clampText(text string, limit int) string {
	if len(text) > limit {
		return text[:limit]
	}
	return text
}

// generate is the single funnel to the model. Empty string means the call
// failed or produced nothing usable.
func (a *AssistantService) generate(ctx context.Context, op, prompt string, maxTokens int, temperature float32) string {
	if a.gen == nil {
		return ""
	}
	out, err := a.gen.Generate(ctx, prompt, GenerateOptions{
		MaxOutputTokens: maxTokens,
		Temperature:     temperature,
	})
	if err != nil {
		a.logger.Warn("generation failed, using fallback",
			zap.String("op", op),
			zap.String("provider", a.gen.Name()),
			zap.Error(err))
		return ""
	}
	return strings.TrimSpace(out)
}

// Summarize asks the model for a bullet summary with action items and tags.
// Responses shorter than 10 characters count as failure and trigger the
// extractive fallback.
func (a *AssistantService) Summarize(ctx context.Context, text, language, style string) (string, bool) {
	if language == "" {
		language = "English"
	}
	prompt := fmt.Sprintf(
		"You are NOVA, a calm futuristic assistant. Summarize the article into 4 short bullets, "+
			"then 3 concise action items and 5 short tags. Language: %s. Style: %s.\n\nArticle:\n%s",
		language, style, clampText(text, summarizeInputCap))

	out := a.generate(ctx, "summarize", prompt, a.defaults.MaxOutputTokens, 0.12)
	if len(out) > 10 {
		return out, false
	}
	return summarize.Summary(text, fallbackSummarySentences), true
}

// ActionItems returns a short newline-delimited action list. The fallback is
// the first four sentences of the source, bulleted.
func (a *AssistantService) ActionItems(ctx context.Context, text, language string) (string, bool) {
	if language == "" {
		language = "English"
	}
	prompt := fmt.Sprintf("Create 4 concise action items from the text in %s:\n\n%s",
		language, clampText(text, artifactInputCap))

	out := a.generate(ctx, "action_items", prompt, 180, 0.18)
	if len(out) > 5 {
		return out, false
	}

	sents := summarize.SplitSentences(text)
	if len(sents) > 4 {
		sents = sents[:4]
	}
	lines := make([]string, len(sents))
	for i, s := range sents {
		lines[i] = "- " + s
	}
	return strings.Join(lines, "\n"), true
}

// Topics extracts up to topN short topic labels.
func (a *AssistantService) Topics(ctx context.Context, text string, topN int) ([]string, bool) {
	if topN <= 0 {
		topN = 6
	}
	prompt := fmt.Sprintf("Extract %d short topics/section headers from this article, comma-separated:\n\n%s",
		topN, clampText(text, artifactInputCap))

	if out := a.generate(ctx, "topics", prompt, 160, 0); out != "" {
		var topics []string
		for _, part := range topicSplitPattern.Split(out, -1) {
			if p := strings.TrimSpace(part); p != "" {
				topics = append(topics, p)
			}
		}
		if len(topics) > topN {
			topics = topics[:topN]
		}
		if len(topics) > 0 {
			return topics, false
		}
	}

	sents := summarize.SplitSentences(text)
	if len(sents) > topN {
		sents = sents[:topN]
	}
	topics := make([]string, len(sents))
	for i, s := range sents {
		if len(s) > 40 {
			s = s[:40]
		}
		topics[i] = s
	}
	return topics, true
}

// Flashcards asks the model for a JSON array of question/answer objects. Parse
// order: JSON blob, then Q:/A: line pairs, then pairing consecutive sentences
// of the source.
func (a *AssistantService) Flashcards(ctx context.Context, text string, count int, language string) ([]models.Flashcard, bool) {
	if count <= 0 {
		count = 8
	}
	if language == "" {
		language = "English"
	}
	prompt := fmt.Sprintf(
		"Create %d concise flashcards (Q -> A) from the article below. Provide them as a JSON list of objects "+
			`like [{"q":"...", "a":"..."}]. Language: %s.`+"\n\n%s",
		count, language, clampText(text, flashcardInputCap))

	if out := a.generate(ctx, "flashcards", prompt, a.defaults.MaxOutputTokens, 0.2); out != "" {
		out = stripCodeFence(out)
		if cards := parseFlashcardJSON(out, count); len(cards) > 0 {
			return cards, false
		}
		if cards := parseFlashcardLines(out, count); len(cards) > 0 {
			return cards, false
		}
	}

	return pairSentences(text, count), true
}

func parseFlashcardJSON(out string, count int) []models.Flashcard {
	start := strings.Index(out, "[")
	end := strings.LastIndex(out, "]")
	if start < 0 || end <= start {
		return nil
	}

	var cards []models.Flashcard
	if err := json.Unmarshal([]byte(out[start:end+1]), &cards); err != nil {
		return nil
	}

	valid := cards[:0]
	for _, c := range cards {
		if strings.TrimSpace(c.Question) != "" {
			valid = append(valid, c)
		}
	}
	if len(valid) > count {
		valid = valid[:count]
	}
	return valid
}

func parseFlashcardLines(out string, count int) []models.Flashcard {
	var cards []models.Flashcard
	var q, ans string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := qaLinePattern.FindStringSubmatch(line); m != nil {
			if strings.EqualFold(m[1], "Q") {
				q = strings.TrimSpace(m[2])
			} else {
				ans = strings.TrimSpace(m[2])
			}
		}
		if q != "" && ans != "" {
			cards = append(cards, models.Flashcard{Question: q, Answer: ans})
			q, ans = "", ""
		}
	}
	if len(cards) > count {
		cards = cards[:count]
	}
	return cards
}

// pairSentences builds cards from consecutive sentence pairs of the source.
func pairSentences(text string, count int) []models.Flashcard {
	sents := summarize.SplitSentences(text)
	cards := make([]models.Flashcard, count)
	for i := 0; i < count; i++ {
		q := fmt.Sprintf("Concept %d", i+1)
		ans := ""
		if i*2 < len(sents) {
			q = sents[i*2]
		}
		if i*2+1 < len(sents) {
			ans = sents[i*2+1]
		}
		cards[i] = models.Flashcard{Question: q, Answer: ans}
	}
	return cards
}

// Todos generates up to six actionable items, one per line. The fallback is a
// fixed list.
func (a *AssistantService) Todos(ctx context.Context, text, language string) ([]string, bool) {
	if language == "" {
		language = "English"
	}
	prompt := fmt.Sprintf("From the article, generate 6 actionable to-do items. Language: %s\n\n%s",
		language, clampText(text, artifactInputCap))

	if out := a.generate(ctx, "todos", prompt, 180, 0.15); out != "" {
		var todos []string
		for _, line := range strings.Split(out, "\n") {
			if t := strings.Trim(line, bulletTrimCutset); t != "" {
				todos = append(todos, t)
			}
		}
		if len(todos) > 6 {
			todos = todos[:6]
		}
		if len(todos) > 0 {
			return todos, false
		}
	}

	out := make([]string, len(fallbackTodos))
	copy(out, fallbackTodos)
	return out, true
}

// Translate returns the text in the target language, or the original text
// unchanged when translation is unavailable.
func (a *AssistantService) Translate(ctx context.Context, text, targetLanguage string) (string, bool) {
	if targetLanguage == "" {
		targetLanguage = "Hindi"
	}
	prompt := fmt.Sprintf("Translate to %s:\n\n%s", targetLanguage, clampText(text, artifactInputCap))

	if out := a.generate(ctx, "translate", prompt, 400, 0); out != "" {
		return out, false
	}
	return text, true
}

// Sentiment classifies text as positive, neutral, or negative. Any failure
// reads as neutral.
func (a *AssistantService) Sentiment(ctx context.Context, text string) string {
	prompt := fmt.Sprintf("Provide one-word sentiment (positive/neutral/negative) for the text:\n\n%s",
		clampText(text, sentimentInputCap))

	out := a.generate(ctx, "sentiment", prompt, 32, 0)
	if out != "" {
		first := strings.ToLower(strings.SplitN(out, "\n", 2)[0])
		if strings.Contains(first, "positive") {
			return "positive"
		}
		if strings.Contains(first, "negative") {
			return "negative"
		}
	}
	return "neutral"
}

// ChatReply answers a single chat turn in the NOVA persona. Preferences, when
// present, are serialized into the prompt.
func (a *AssistantService) ChatReply(ctx context.Context, message, language, style string, prefs map[string]string) (string, bool) {
	if language == "" {
		language = "English"
	}
	if style == "" {
		style = "anime"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are NOVA, a hologram anime assistant. Reply in %s and style %s. Keep concise.\n\nUser:\n%s",
		language, style, message)
	if len(prefs) > 0 {
		prefsJSON, _ := json.Marshal(prefs)
		fmt.Fprintf(&b, "\n\nUser preferences: %s", prefsJSON)
	}

	if out := a.generate(ctx, "chat", b.String(), a.defaults.MaxOutputTokens, a.defaults.Temperature); out != "" {
		return out, false
	}
	return fallbackChatReply, true
}
