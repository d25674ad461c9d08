package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"pagebuddy-backend/internal/fetch"
	"pagebuddy-backend/internal/models"
	"pagebuddy-backend/internal/services"
)

const maxUploadBytes = 25 << 20 // 25MB

type contentFetcher interface {
	Fetch(ctx context.Context, url string) *models.Content
}

type transcriptSource interface {
	GetTranscript(videoID string) (string, error)
	GetVideoTitle(videoID string) (string, error)
	DownloadAudio(videoURL string) ([]byte, string, error)
}

type sessionStore interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	SetContent(ctx context.Context, id string, content *models.Content) (*models.Session, error)
	AppendMessage(ctx context.Context, id string, msg models.ChatMessage) (*models.Session, error)
	SetMood(ctx context.Context, id string, mood models.Mood) (*models.Session, error)
}

type ContentHandler struct {
	fetcher     contentFetcher
	youtube     transcriptSource
	fileExtract *services.FileExtractService
	sessions    sessionStore
	speech      speechService
	charBudget  int
	logger      *zap.Logger
}

func NewContentHandler(
	fetcher contentFetcher,
	youtube transcriptSource,
	fileExtract *services.FileExtractService,
	sessions sessionStore,
	speech speechService,
	charBudget int,
	logger *zap.Logger,
) *ContentHandler {
	if charBudget <= 0 {
		charBudget = 20000
	}
	return &ContentHandler{
		fetcher:     fetcher,
		youtube:     youtube,
		fileExtract: fileExtract,
		sessions:    sessions,
		speech:      speech,
		charBudget:  charBudget,
		logger:      logger,
	}
}

// Fetch acquires page text for a URL. YouTube links go through the caption
// track instead of the HTML scraper. Fetch failures come back as 200 with a
// sentinel-prefixed text, matching how the dashboard renders them inline.
func (h *ContentHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req models.FetchContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"url": "URL is required"}, r))
		return
	}

	var content *models.Content
	if videoID := services.ExtractVideoID(req.URL); videoID != "" {
		content = h.fetchYouTube(r.Context(), req.URL, videoID)
	} else {
		content = h.fetcher.Fetch(r.Context(), req.URL)
	}

	h.cacheOnSession(r.Context(), req.SessionID, content)
	writeJSON(w, http.StatusOK, content)
}

func (h *ContentHandler) fetchYouTube(ctx context.Context, url, videoID string) *models.Content {
	content := &models.Content{
		Source:    "youtube",
		URL:       url,
		FetchedAt: time.Now(),
	}

	transcript, err := h.youtube.GetTranscript(videoID)
	if err != nil {
		h.logger.Warn("youtube transcript failed, trying audio",
			zap.String("video_id", videoID), zap.Error(err))
		transcript = h.transcribeVideoAudio(ctx, url)
		if transcript == "" {
			content.Text = models.ErrorFetchPrefix + " no transcript available for " + url
			return content
		}
	}

	if title, err := h.youtube.GetVideoTitle(videoID); err == nil {
		content.Title = title
	}
	content.Text, content.Truncated = fetch.Truncate(transcript, h.charBudget)
	content.CharCount = len(content.Text)
	return content
}

// transcribeVideoAudio is the last resort for videos without captions: pull
// the audio stream and run it through speech recognition. Empty string means
// the fallback failed too.
func (h *ContentHandler) transcribeVideoAudio(ctx context.Context, url string) string {
	if h.speech == nil {
		return ""
	}
	audio, mimeType, err := h.youtube.DownloadAudio(url)
	if err != nil {
		h.logger.Warn("youtube audio download failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	h.logger.Info("transcribing video audio",
		zap.String("url", url), zap.String("mime_type", mimeType), zap.Int("bytes", len(audio)))

	text := h.speech.Transcribe(ctx, audio, "")
	if text == "" || strings.HasPrefix(text, models.ErrorSTTPrefix) {
		return ""
	}
	return text
}

// Paste accepts raw text as the session's content.
func (h *ContentHandler) Paste(w http.ResponseWriter, r *http.Request) {
	var req models.PasteContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"text": "Text is required"}, r))
		return
	}

	content := &models.Content{
		Source:    "pasted",
		FetchedAt: time.Now(),
	}
	content.Text, content.Truncated = fetch.Truncate(req.Text, h.charBudget)
	content.CharCount = len(content.Text)

	h.cacheOnSession(r.Context(), req.SessionID, content)
	writeJSON(w, http.StatusOK, content)
}

// Upload extracts text from a study file (.txt, .md, .pdf, .docx).
func (h *ContentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart form", r))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"file": "File is required"}, r))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to read upload", r))
		return
	}

	text, err := h.fileExtract.ExtractText(header.Filename, data)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("EXTRACTION_FAILED", err.Error(), r))
		return
	}

	content := &models.Content{
		Source:    "upload",
		Title:     header.Filename,
		FetchedAt: time.Now(),
	}
	content.Text, content.Truncated = fetch.Truncate(text, h.charBudget)
	content.CharCount = len(content.Text)

	h.cacheOnSession(r.Context(), r.FormValue("session_id"), content)
	writeJSON(w, http.StatusOK, content)
}

func (h *ContentHandler) cacheOnSession(ctx context.Context, sessionID string, content *models.Content) {
	if sessionID == "" || h.sessions == nil {
		return
	}
	if _, err := h.sessions.SetContent(ctx, sessionID, content); err != nil {
		h.logger.Warn("failed to cache content on session",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}
