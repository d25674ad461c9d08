package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pagebuddy-backend/internal/models"
	"pagebuddy-backend/internal/session"
)

type sessionManager interface {
	Create(ctx context.Context) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	SetPreference(ctx context.Context, id, key, value string) (*models.Session, error)
}

type SessionHandler struct {
	sessions sessionManager
	tokens   *session.TokenAuth
	logger   *zap.Logger
}

func NewSessionHandler(sessions sessionManager, tokens *session.TokenAuth, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, tokens: tokens, logger: logger}
}

// Create starts a session and returns its ID plus the signed token used for
// the websocket handshake.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Create(r.Context())
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create session", r))
		return
	}

	token, err := h.tokens.GenerateToken(sess.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to issue session token", r))
		return
	}

	writeJSON(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: sess.ID,
		Token:     token,
	})
}

// Get returns the full session state: transcript, mood, cached content.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// SetPreferences merges preference keys into the session. Preferences feed
// the chat prompt when memory mode is on.
func (h *SessionHandler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs map[string]string
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	id := chi.URLParam(r, "id")
	var sess *models.Session
	var err error
	for key, value := range prefs {
		sess, err = h.sessions.SetPreference(r.Context(), id, key, value)
		if err != nil {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
			return
		}
	}
	if sess == nil {
		sess, err = h.sessions.Get(r.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
			return
		}
	}

	writeJSON(w, http.StatusOK, sess)
}
