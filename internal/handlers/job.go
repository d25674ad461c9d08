package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pagebuddy-backend/internal/models"
)

type jobReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetSummaryResult(ctx context.Context, id uuid.UUID) (*models.Summary, error)
	GetDeckResult(ctx context.Context, id uuid.UUID) (*models.FlashcardDeck, error)
}

type JobHandler struct {
	jobs   jobReader
	logger *zap.Logger
}

func NewJobHandler(jobs jobReader, logger *zap.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, logger: logger}
}

type jobStatusResponse struct {
	*models.Job
	Result interface{} `json:"result,omitempty"`
}

// Get reports job status for clients polling instead of holding a websocket.
// Completed jobs embed their result.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid job ID", r))
		return
	}

	job, err := h.jobs.Get(r.Context(), jobID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Job not found", r))
		return
	}

	resp := jobStatusResponse{Job: job}
	if job.Status == "completed" {
		switch job.Type {
		case "page-summary":
			if summary, err := h.jobs.GetSummaryResult(r.Context(), job.ReferenceID); err == nil {
				resp.Result = summary
			}
		case "flashcard-deck":
			if deck, err := h.jobs.GetDeckResult(r.Context(), job.ReferenceID); err == nil {
				resp.Result = deck
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
