package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pagebuddy-backend/internal/models"
	"pagebuddy-backend/internal/repository"
)

// Queue names for jobs pushed by the companion extension.
const (
	QueuePageSummary   = "queue:page-summary"
	QueueFlashcardDeck = "queue:flashcard-deck"
)

// Job records and results live in redis with a 24h TTL so the API works
// without a database. When a JobRepo is configured the record is mirrored
// there as well.
const jobTTL = 24 * time.Hour

// JobStore tracks job state in redis and optionally in postgres.
type JobStore struct {
	rdb    *redis.Client
	repo   *repository.JobRepo // may be nil
	logger *zap.Logger
}

func NewJobStore(rdb *redis.Client, repo *repository.JobRepo, logger *zap.Logger) *JobStore {
	return &JobStore{rdb: rdb, repo: repo, logger: logger}
}

func jobKey(id uuid.UUID) string {
	return "job:" + id.String()
}

// Create registers a new pending job and pushes it onto its queue.
func (s *JobStore) Create(ctx context.Context, sessionID, jobType string, config interface{}) (*models.Job, error) {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job config: %w", err)
	}

	job := &models.Job{
		ID:          uuid.New(),
		SessionID:   sessionID,
		Type:        jobType,
		ReferenceID: uuid.New(),
		ConfigJSON:  configJSON,
		Status:      "pending",
		CreatedAt:   time.Now(),
	}

	if err := s.save(ctx, job); err != nil {
		return nil, err
	}
	if s.repo != nil {
		if err := s.repo.Create(ctx, job); err != nil {
			s.logger.Warn("failed to persist job", zap.String("job_id", job.ID.String()), zap.Error(err))
		}
	}

	jobBytes, _ := json.Marshal(job)
	if err := s.rdb.LPush(ctx, queueName(jobType), string(jobBytes)).Err(); err != nil {
		s.SetStatus(ctx, job, "failed")
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	return job, nil
}

func (s *JobStore) save(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := s.rdb.Set(ctx, jobKey(job.ID), data, jobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job: %w", err)
	}
	return nil
}

// Get loads a job record from redis.
func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	data, err := s.rdb.Get(ctx, jobKey(id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return &job, nil
}

// SetStatus moves a job through pending -> processing -> completed/failed.
func (s *JobStore) SetStatus(ctx context.Context, job *models.Job, status string) {
	job.Status = status
	if status == "completed" || status == "failed" {
		now := time.Now()
		job.CompletedAt = &now
	}
	if err := s.save(ctx, job); err != nil {
		s.logger.Warn("failed to update job status", zap.String("job_id", job.ID.String()), zap.Error(err))
	}
	if s.repo != nil {
		if err := s.repo.UpdateStatus(ctx, job.ID, status); err != nil {
			s.logger.Warn("failed to persist job status", zap.String("job_id", job.ID.String()), zap.Error(err))
		}
	}
}

// SetError records a failure message on the job.
func (s *JobStore) SetError(ctx context.Context, job *models.Job, errMsg string) {
	job.ErrorMessage = &errMsg
	if err := s.save(ctx, job); err != nil {
		s.logger.Warn("failed to record job error", zap.String("job_id", job.ID.String()), zap.Error(err))
	}
	if s.repo != nil {
		if err := s.repo.UpdateError(ctx, job.ID, errMsg); err != nil {
			s.logger.Warn("failed to persist job error", zap.String("job_id", job.ID.String()), zap.Error(err))
		}
	}
}

// SaveSummaryResult stores a finished summary under its reference ID.
func (s *JobStore) SaveSummaryResult(ctx context.Context, summary *models.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, "result:summary:"+summary.ID.String(), data, jobTTL).Err()
}

// GetSummaryResult loads a summary produced by a completed job.
func (s *JobStore) GetSummaryResult(ctx context.Context, id uuid.UUID) (*models.Summary, error) {
	data, err := s.rdb.Get(ctx, "result:summary:"+id.String()).Bytes()
	if err != nil {
		return nil, err
	}
	var summary models.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// SaveDeckResult stores a finished flashcard deck under its reference ID.
func (s *JobStore) SaveDeckResult(ctx context.Context, deck *models.FlashcardDeck) error {
	data, err := json.Marshal(deck)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, "result:deck:"+deck.ID.String(), data, jobTTL).Err()
}

// GetDeckResult loads a deck produced by a completed job.
func (s *JobStore) GetDeckResult(ctx context.Context, id uuid.UUID) (*models.FlashcardDeck, error) {
	data, err := s.rdb.Get(ctx, "result:deck:"+id.String()).Bytes()
	if err != nil {
		return nil, err
	}
	var deck models.FlashcardDeck
	if err := json.Unmarshal(data, &deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

func queueName(jobType string) string {
	switch jobType {
	case "page-summary":
		return QueuePageSummary
	case "flashcard-deck":
		return QueueFlashcardDeck
	default:
		return "queue:" + jobType
	}
}

// Publish sends a realtime event to everyone watching a session.
func Publish(ctx context.Context, rdb *redis.Client, sessionID string, msg models.WSMessage) {
	data, _ := json.Marshal(msg)
	rdb.Publish(ctx, fmt.Sprintf("session_updates:%s", sessionID), string(data))
}
