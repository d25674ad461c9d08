package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pagebuddy-backend/internal/models"
	"pagebuddy-backend/internal/repository"
	"pagebuddy-backend/internal/session"
	"pagebuddy-backend/internal/worker"
)

type assistant interface {
	Summarize(ctx context.Context, text, language, style string) (string, bool)
	ActionItems(ctx context.Context, text, language string) (string, bool)
	Topics(ctx context.Context, text string, topN int) ([]string, bool)
	Flashcards(ctx context.Context, text string, count int, language string) ([]models.Flashcard, bool)
	Todos(ctx context.Context, text, language string) ([]string, bool)
	Translate(ctx context.Context, text, targetLanguage string) (string, bool)
	Sentiment(ctx context.Context, text string) string
	ChatReply(ctx context.Context, message, language, style string, prefs map[string]string) (string, bool)
	ModelName() string
}

// ArtifactHandler serves the synchronous generation endpoints: summary,
// flashcards, todos, topics, translation. Generation never fails outright;
// the assistant degrades to heuristics and the response carries a
// used_fallback flag.
type ArtifactHandler struct {
	assistant   assistant
	sessions    sessionStore
	summaryRepo *repository.SummaryRepo   // may be nil
	flashRepo   *repository.FlashcardRepo // may be nil
	redis       *redis.Client             // may be nil
	logger      *zap.Logger
}

func NewArtifactHandler(
	assistant assistant,
	sessions sessionStore,
	summaryRepo *repository.SummaryRepo,
	flashRepo *repository.FlashcardRepo,
	redisClient *redis.Client,
	logger *zap.Logger,
) *ArtifactHandler {
	return &ArtifactHandler{
		assistant:   assistant,
		sessions:    sessions,
		summaryRepo: summaryRepo,
		flashRepo:   flashRepo,
		redis:       redisClient,
		logger:      logger,
	}
}

// resolveContent takes inline content when present, otherwise the content
// cached on the session.
func (h *ArtifactHandler) resolveContent(ctx context.Context, inline, sessionID string) (string, error) {
	if strings.TrimSpace(inline) != "" {
		return inline, nil
	}
	if sessionID == "" || h.sessions == nil {
		return "", fmt.Errorf("no content provided")
	}
	sess, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("session not found")
	}
	if sess.Content == nil || sess.Content.Text == "" {
		return "", fmt.Errorf("session has no content")
	}
	if strings.HasPrefix(sess.Content.Text, models.ErrorFetchPrefix) {
		return "", fmt.Errorf("session content is a failed fetch")
	}
	return sess.Content.Text, nil
}

// setMood updates the session mood and pushes the change to websocket
// watchers. Both steps are best effort.
func (h *ArtifactHandler) setMood(ctx context.Context, sessionID string, mood models.Mood) {
	if sessionID == "" || h.sessions == nil {
		return
	}
	if _, err := h.sessions.SetMood(ctx, sessionID, mood); err != nil {
		h.logger.Warn("failed to set mood", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if h.redis != nil {
		worker.Publish(ctx, h.redis, sessionID, models.WSMessage{
			Type:    "mood",
			Payload: models.MoodEvent{SessionID: sessionID, Mood: mood},
		})
	}
}

func (h *ArtifactHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text, err := h.resolveContent(r.Context(), req.Content, req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	h.setMood(r.Context(), req.SessionID, session.OnRequestSubmitted(models.MoodIdle))

	summaryText, usedFallback := h.assistant.Summarize(r.Context(), text, req.Language, req.Style)
	actionItems, _ := h.assistant.ActionItems(r.Context(), text, req.Language)

	sentiment := h.assistant.Sentiment(r.Context(), summaryText)
	mood := session.MoodForSentiment(sentiment)
	h.setMood(r.Context(), req.SessionID, mood)

	if h.summaryRepo != nil && req.SessionID != "" {
		summary := &models.Summary{
			SessionID:    req.SessionID,
			Source:       "pasted",
			Language:     req.Language,
			Style:        req.Style,
			Model:        h.assistant.ModelName(),
			SummaryText:  summaryText,
			ActionItems:  actionItems,
			WordCount:    len(strings.Fields(summaryText)),
			UsedFallback: usedFallback,
		}
		if err := h.summaryRepo.Create(r.Context(), summary); err != nil {
			h.logger.Warn("failed to persist summary", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, models.SummarizeResponse{
		Summary:      summaryText,
		ActionItems:  actionItems,
		Mood:         mood,
		UsedFallback: usedFallback,
	})
}

func (h *ArtifactHandler) Flashcards(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateFlashcardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text, err := h.resolveContent(r.Context(), req.Content, req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	cards, usedFallback := h.assistant.Flashcards(r.Context(), text, req.Count, req.Language)
	writeJSON(w, http.StatusOK, models.GenerateFlashcardsResponse{
		Cards:        cards,
		UsedFallback: usedFallback,
	})
}

func (h *ArtifactHandler) Todos(w http.ResponseWriter, r *http.Request) {
	var req models.TodosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text, err := h.resolveContent(r.Context(), req.Content, req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	todos, _ := h.assistant.Todos(r.Context(), text, req.Language)
	writeJSON(w, http.StatusOK, models.TodosResponse{Todos: todos})
}

func (h *ArtifactHandler) Topics(w http.ResponseWriter, r *http.Request) {
	var req models.TopicsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text, err := h.resolveContent(r.Context(), req.Content, req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	topics, _ := h.assistant.Topics(r.Context(), text, req.Count)
	writeJSON(w, http.StatusOK, models.TopicsResponse{Topics: topics})
}

func (h *ArtifactHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req models.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text, err := h.resolveContent(r.Context(), req.Content, req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	translated, _ := h.assistant.Translate(r.Context(), text, req.TargetLanguage)
	writeJSON(w, http.StatusOK, models.TranslateResponse{Text: translated})
}

// history endpoints backed by the optional database

func (h *ArtifactHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	if h.summaryRepo == nil {
		writeJSON(w, http.StatusNotImplemented, errorResp("NOT_CONFIGURED", "Summary history requires a database", r))
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"session_id": "session_id is required"}, r))
		return
	}

	summaries, err := h.summaryRepo.ListBySession(r.Context(), sessionID, 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list summaries", r))
		return
	}
	if summaries == nil {
		summaries = []*models.Summary{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summaries":    summaries,
		"generated_at": time.Now(),
	})
}

func (h *ArtifactHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if h.summaryRepo == nil {
		writeJSON(w, http.StatusNotImplemented, errorResp("NOT_CONFIGURED", "Summary history requires a database", r))
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid summary id", r))
		return
	}

	summary, err := h.summaryRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Summary not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load summary", r))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *ArtifactHandler) DeleteSummary(w http.ResponseWriter, r *http.Request) {
	if h.summaryRepo == nil {
		writeJSON(w, http.StatusNotImplemented, errorResp("NOT_CONFIGURED", "Summary history requires a database", r))
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid summary id", r))
		return
	}

	if err := h.summaryRepo.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete summary", r))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ArtifactHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	if h.flashRepo == nil {
		writeJSON(w, http.StatusNotImplemented, errorResp("NOT_CONFIGURED", "Deck history requires a database", r))
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"session_id": "session_id is required"}, r))
		return
	}

	decks, err := h.flashRepo.ListBySession(r.Context(), sessionID, 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list decks", r))
		return
	}
	if decks == nil {
		decks = []*models.FlashcardDeck{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"decks":        decks,
		"generated_at": time.Now(),
	})
}

func (h *ArtifactHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	if h.flashRepo == nil {
		writeJSON(w, http.StatusNotImplemented, errorResp("NOT_CONFIGURED", "Deck history requires a database", r))
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck id", r))
		return
	}

	deck, err := h.flashRepo.GetDeck(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load deck", r))
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (h *ArtifactHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	if h.flashRepo == nil {
		writeJSON(w, http.StatusNotImplemented, errorResp("NOT_CONFIGURED", "Deck history requires a database", r))
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck id", r))
		return
	}

	if err := h.flashRepo.DeleteDeck(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete deck", r))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
