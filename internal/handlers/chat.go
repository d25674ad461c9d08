package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pagebuddy-backend/internal/models"
	"pagebuddy-backend/internal/session"
	"pagebuddy-backend/internal/worker"
)

// ChatHandler runs one chat turn: append the user message, generate a reply,
// append it, recompute the avatar mood from the reply's sentiment.
type ChatHandler struct {
	assistant assistant
	sessions  sessionStore
	redis     *redis.Client // may be nil
	logger    *zap.Logger
}

func NewChatHandler(assistant assistant, sessions sessionStore, redisClient *redis.Client, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		assistant: assistant,
		sessions:  sessions,
		redis:     redisClient,
		logger:    logger,
	}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.SessionID == "" || strings.TrimSpace(req.Message) == "" {
		fields := map[string]string{}
		if req.SessionID == "" {
			fields["session_id"] = "session_id is required"
		}
		if strings.TrimSpace(req.Message) == "" {
			fields["message"] = "Message is required"
		}
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	sess, err := h.sessions.AppendMessage(r.Context(), req.SessionID, models.ChatMessage{
		Role: "user",
		Text: req.Message,
		At:   time.Now(),
	})
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	h.publishMood(r.Context(), req.SessionID, session.OnRequestSubmitted(sess.Mood))

	reply, usedFallback := h.assistant.ChatReply(r.Context(), req.Message, req.Language, req.Style, sess.Preferences)
	if usedFallback {
		h.logger.Info("chat reply used fallback", zap.String("session_id", req.SessionID))
	}

	if _, err := h.sessions.AppendMessage(r.Context(), req.SessionID, models.ChatMessage{
		Role: "assistant",
		Text: reply,
		At:   time.Now(),
	}); err != nil {
		h.logger.Warn("failed to append assistant reply", zap.String("session_id", req.SessionID), zap.Error(err))
	}

	sentiment := h.assistant.Sentiment(r.Context(), reply)
	mood := session.MoodForSentiment(sentiment)
	h.publishMood(r.Context(), req.SessionID, mood)

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Reply: reply,
		Mood:  mood,
	})
}

func (h *ChatHandler) publishMood(ctx context.Context, sessionID string, mood models.Mood) {
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
