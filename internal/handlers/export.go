package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"pagebuddy-backend/internal/models"
)

type deckExporter interface {
	Export(title string, bullets, actions []string) ([]byte, error)
}

type ExportHandler struct {
	slides deckExporter
	logger *zap.Logger
}

func NewExportHandler(slides deckExporter, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{slides: slides, logger: logger}
}

// PPTX builds a three slide deck from a title, bullet list and action list
// and streams it back as a download.
func (h *ExportHandler) PPTX(w http.ResponseWriter, r *http.Request) {
	var req models.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		req.Title = "PageBuddy export"
	}

	data, err := h.slides.Export(req.Title, req.Bullets, req.Actions)
	if err != nil {
		h.logger.Warn("deck export failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("EXPORT_FAILED", "Failed to build presentation", r))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
	w.Header().Set("Content-Disposition", `attachment; filename="pagebuddy_export.pptx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
