package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"pagebuddy-backend/internal/models"
	"pagebuddy-backend/internal/services"
)

type speechService interface {
	Synthesize(ctx context.Context, text, languageCode, voiceName string) ([]byte, error)
	Transcribe(ctx context.Context, audio []byte, language string) string
}

type SpeechHandler struct {
	speech speechService
	logger *zap.Logger
}

func NewSpeechHandler(speech speechService, logger *zap.Logger) *SpeechHandler {
	return &SpeechHandler{speech: speech, logger: logger}
}

// Narrate converts text to MP3. The estimated spoken duration rides along in
// a response header for avatar lip-sync timing. 503 when no synthesis
// provider is configured.
func (h *SpeechHandler) Narrate(w http.ResponseWriter, r *http.Request) {
	var req models.NarrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"text": "Text is required"}, r))
		return
	}

	audio, err := h.speech.Synthesize(r.Context(), req.Text, req.LanguageCode, req.Voice)
	if err != nil {
		h.logger.Warn("synthesis failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResp("TTS_FAILED", "Speech synthesis failed", r))
		return
	}
	if audio == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("TTS_UNAVAILABLE", "No speech synthesis provider is configured", r))
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("X-Estimated-Duration-Seconds", fmt.Sprintf("%.1f", services.EstimateDuration(req.Text)))
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// Transcribe decodes base64 audio and returns its transcript. Recognition
// failures come back inside the text field with the ERROR_STT prefix.
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req models.TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.AudioB64 == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"audio_b64": "Audio payload is required"}, r))
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioB64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"audio_b64": "Audio payload is not valid base64"}, r))
		return
	}

	text := h.speech.Transcribe(r.Context(), audio, req.Language)
	writeJSON(w, http.StatusOK, models.TranscribeResponse{Text: text})
}
