package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pagebuddy-backend/internal/models"
)

// Sessions live in redis for 24 hours, refreshed on every write. Each session
// holds the chat transcript, the current mood, cached page content, and a
// small preference map.
const sessionTTL = 24 * time.Hour

var ErrSessionNotFound = errors.New("session not found")

type Store struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewStore(rdb *redis.Client, logger *zap.Logger) *Store {
	return &Store{rdb: rdb, logger: logger}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Create starts a fresh session with an idle avatar and empty transcript.
func (s *Store) Create(ctx context.Context) (*models.Session, error) {
	now := time.Now()
	sess := &models.Session{
		ID:          uuid.New().String(),
		Mood:        models.MoodIdle,
		Transcript:  []models.ChatMessage{},
		Preferences: map[string]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("session created", zap.String("session_id", sess.ID))
	return sess, nil
}

// Get loads a session by ID.
func (s *Store) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

func (s *Store) save(ctx context.Context, sess *models.Session) error {
	sess.UpdatedAt = time.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.ID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// AppendMessage adds a transcript entry. The transcript is append-only.
func (s *Store) AppendMessage(ctx context.Context, id string, msg models.ChatMessage) (*models.Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.At.IsZero() {
		msg.At = time.Now()
	}
	sess.Transcript = append(sess.Transcript, msg)
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetMood updates the avatar mood, normalizing unknown values.
func (s *Store) SetMood(ctx context.Context, id string, mood models.Mood) (*models.Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Mood = Normalize(mood)
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetContent caches the acquired page content on the session.
func (s *Store) SetContent(ctx context.Context, id string, content *models.Content) (*models.Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Content = content
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetPreference records a single preference key used in chat prompts.
func (s *Store) SetPreference(ctx context.Context, id, key, value string) (*models.Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Preferences == nil {
		sess.Preferences = map[string]string{}
	}
	sess.Preferences[key] = value
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
