package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"pagebuddy-backend/internal/fetch"
	"pagebuddy-backend/internal/models"
)

type jobEnqueuer interface {
	Create(ctx context.Context, sessionID, jobType string, config interface{}) (*models.Job, error)
}

type extensionSessions interface {
	Create(ctx context.Context) (*models.Session, error)
	SetContent(ctx context.Context, id string, content *models.Content) (*models.Session, error)
}

// ExtensionHandler serves the companion browser extension. Requests arrive
// pre-authenticated by the shared-key middleware and run asynchronously, so
// the extension gets a job ID back immediately and follows progress over the
// websocket channel.
type ExtensionHandler struct {
	sessions   extensionSessions
	jobs       jobEnqueuer
	fetcher    contentFetcher
	speech     speechService
	charBudget int
	logger     *zap.Logger
}

func NewExtensionHandler(
	sessions extensionSessions,
	jobs jobEnqueuer,
	fetcher contentFetcher,
	speech speechService,
	charBudget int,
	logger *zap.Logger,
) *ExtensionHandler {
	if charBudget <= 0 {
		charBudget = 20000
	}
	return &ExtensionHandler{
		sessions:   sessions,
		jobs:       jobs,
		fetcher:    fetcher,
		speech:     speech,
		charBudget: charBudget,
		logger:     logger,
	}
}

type enqueueResponse struct {
	JobID       string `json:"job_id"`
	SessionID   string `json:"session_id"`
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
}

// PushContent accepts page text captured by the extension and queues a
// summary job. When the extension sends only a URL the server fetches the
// page itself.
func (h *ExtensionHandler) PushContent(w http.ResponseWriter, r *http.Request) {
	var req models.ExtensionContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Content) == "" && strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"content": "Either content or url is required"}, r))
		return
	}

	sessionID, err := h.resolveSession(r.Context(), req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create session", r))
		return
	}

	content := h.buildContent(r.Context(), &req)
	if _, err := h.sessions.SetContent(r.Context(), sessionID, content); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store content", r))
		return
	}

	job, err := h.jobs.Create(r.Context(), sessionID, "page-summary", map[string]string{
		"language": req.Language,
		"style":    req.Style,
	})
	if err != nil {
		h.logger.Error("failed to enqueue page summary", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to enqueue job", r))
		return
	}

	writeJSON(w, http.StatusAccepted, enqueueResponse{
		JobID:       job.ID.String(),
		SessionID:   sessionID,
		ReferenceID: job.ReferenceID.String(),
		Status:      job.Status,
	})
}

// PushFlashcards queues a flashcard deck job against the session's content.
func (h *ExtensionHandler) PushFlashcards(w http.ResponseWriter, r *http.Request) {
	var req models.ExtensionContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	sessionID, err := h.resolveSession(r.Context(), req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create session", r))
		return
	}

	if strings.TrimSpace(req.Content) != "" || strings.TrimSpace(req.URL) != "" {
		content := h.buildContent(r.Context(), &req)
		if _, err := h.sessions.SetContent(r.Context(), sessionID, content); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store content", r))
			return
		}
	}

	job, err := h.jobs.Create(r.Context(), sessionID, "flashcard-deck", map[string]string{
		"language": req.Language,
	})
	if err != nil {
		h.logger.Error("failed to enqueue flashcard deck", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to enqueue job", r))
		return
	}

	writeJSON(w, http.StatusAccepted, enqueueResponse{
		JobID:       job.ID.String(),
		SessionID:   sessionID,
		ReferenceID: job.ReferenceID.String(),
		Status:      job.Status,
	})
}

// PushAudio transcribes a voice clip recorded in the extension popup.
func (h *ExtensionHandler) PushAudio(w http.ResponseWriter, r *http.Request) {
	var req models.TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioB64)
	if err != nil || len(audio) == 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"audio_b64": "Valid base64 audio is required"}, r))
		return
	}

	text := h.speech.Transcribe(r.Context(), audio, req.Language)
	writeJSON(w, http.StatusOK, models.TranscribeResponse{Text: text})
}

func (h *ExtensionHandler) resolveSession(ctx context.Context, sessionID string) (string, error) {
	if sessionID != "" {
		return sessionID, nil
	}
	sess, err := h.sessions.Create(ctx)
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

func (h *ExtensionHandler) buildContent(ctx context.Context, req *models.ExtensionContentRequest) *models.Content {
	if strings.TrimSpace(req.Content) != "" {
		content := &models.Content{
			Source:    "extension",
			URL:       req.URL,
			FetchedAt: time.Now(),
		}
		content.Text, content.Truncated = fetch.Truncate(req.Content, h.charBudget)
		content.CharCount = len(content.Text)
		return content
	}
	content := h.fetcher.Fetch(ctx, req.URL)
	content.Source = "extension"
	return content
}
