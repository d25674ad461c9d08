package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pagebuddy-backend/internal/models"
	"pagebuddy-backend/internal/repository"
	"pagebuddy-backend/internal/services"
	"pagebuddy-backend/internal/session"
)

// Pool drains the extension job queues. Each job is attempted exactly once:
// the assistant already degrades to local fallbacks internally, so a retry
// would re-run the same deterministic path.
type Pool struct {
	redis       *redis.Client
	assistant   *services.AssistantService
	sessions    *session.Store
	jobs        *JobStore
	summaryRepo *repository.SummaryRepo   // may be nil
	flashRepo   *repository.FlashcardRepo // may be nil
	workerCount int
	logger      *zap.Logger
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	assistant *services.AssistantService,
	sessions *session.Store,
	jobs *JobStore,
	summaryRepo *repository.SummaryRepo,
	flashRepo *repository.FlashcardRepo,
	workerCount int,
	logger *zap.Logger,
) *Pool {
	if workerCount <= 0 {
		workerCount = 2
	}
	return &Pool{
		redis:       redisClient,
		assistant:   assistant,
		sessions:    sessions,
		jobs:        jobs,
		summaryRepo: summaryRepo,
		flashRepo:   flashRepo,
		workerCount: workerCount,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	queues := []string{QueuePageSummary, QueueFlashcardDeck}

	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}

	p.logger.Info("started worker goroutines", zap.Int("count", p.workerCount))
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			p.logger.Info("worker shutting down", zap.Int("worker", id))
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, queues...).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			p.logger.Warn("failed to parse job", zap.Int("worker", id), zap.Error(err))
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		p.logger.Info("processing job",
			zap.Int("worker", id),
			zap.String("job_id", job.ID.String()),
			zap.String("type", job.Type))

		p.jobs.SetStatus(ctx, &job, "processing")
		Publish(ctx, p.redis, job.SessionID, models.WSMessage{
			Type: "status_update",
			Payload: models.StatusUpdate{
				JobID:    job.ID,
				Step:     1,
				StepName: "Reading page content",
			},
		})

		var processErr error
		switch job.Type {
		case "page-summary":
			processErr = p.processPageSummary(ctx, &job)
		case "flashcard-deck":
			processErr = p.processFlashcardDeck(ctx, &job)
		default:
			processErr = fmt.Errorf("unknown job type: %s", job.Type)
		}

		if processErr != nil {
			p.handleFailure(ctx, &job, processErr)
		} else {
			p.handleSuccess(ctx, &job)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) sessionContent(ctx context.Context, sessionID string) (*models.Content, error) {
	sess, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.Content == nil || sess.Content.Text == "" {
		return nil, fmt.Errorf("session has no content to work from")
	}
	if strings.HasPrefix(sess.Content.Text, models.ErrorFetchPrefix) {
		return nil, fmt.Errorf("session content is a failed fetch: %s", sess.Content.Text)
	}
	return sess.Content, nil
}

func (p *Pool) processPageSummary(ctx context.Context, job *models.Job) error {
	var config struct {
		Language string `json:"language"`
		Style    string `json:"style"`
	}
	json.Unmarshal(job.ConfigJSON, &config)

	content, err := p.sessionContent(ctx, job.SessionID)
	if err != nil {
		return err
	}

	Publish(ctx, p.redis, job.SessionID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID:    job.ID,
			Step:     2,
			StepName: "Generating summary",
		},
	})

	summaryText, summaryFallback := p.assistant.Summarize(ctx, content.Text, config.Language, config.Style)
	actionItems, _ := p.assistant.ActionItems(ctx, content.Text, config.Language)
	tags, _ := p.assistant.Topics(ctx, content.Text, 5)

	summary := &models.Summary{
		ID:           job.ReferenceID,
		SessionID:    job.SessionID,
		Source:       content.Source,
		Title:        summaryTitle(content),
		Language:     config.Language,
		Style:        config.Style,
		Model:        p.assistant.ModelName(),
		SummaryText:  summaryText,
		ActionItems:  actionItems,
		Tags:         tags,
		WordCount:    len(strings.Fields(summaryText)),
		UsedFallback: summaryFallback,
		CreatedAt:    time.Now(),
	}

	if err := p.jobs.SaveSummaryResult(ctx, summary); err != nil {
		return fmt.Errorf("failed to store summary result: %w", err)
	}
	if p.summaryRepo != nil {
		persisted := *summary
		if err := p.summaryRepo.Create(ctx, &persisted); err != nil {
			p.logger.Warn("failed to persist summary", zap.String("job_id", job.ID.String()), zap.Error(err))
		}
	}

	p.updateMood(ctx, job.SessionID, summaryText)
	return nil
}

func (p *Pool) processFlashcardDeck(ctx context.Context, job *models.Job) error {
	var config struct {
		Count    int    `json:"count"`
		Language string `json:"language"`
	}
	json.Unmarshal(job.ConfigJSON, &config)

	content, err := p.sessionContent(ctx, job.SessionID)
	if err != nil {
		return err
	}

	Publish(ctx, p.redis, job.SessionID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID:    job.ID,
			Step:     2,
			StepName: "Creating flashcards",
		},
	})

	cards, _ := p.assistant.Flashcards(ctx, content.Text, config.Count, config.Language)

	deck := &models.FlashcardDeck{
		ID:        job.ReferenceID,
		SessionID: job.SessionID,
		Title:     summaryTitle(content),
		Cards:     cards,
		CardCount: len(cards),
		CreatedAt: time.Now(),
	}

	if err := p.jobs.SaveDeckResult(ctx, deck); err != nil {
		return fmt.Errorf("failed to store deck result: %w", err)
	}
	if p.flashRepo != nil {
		persisted := *deck
		if err := p.flashRepo.CreateDeck(ctx, &persisted); err != nil {
			p.logger.Warn("failed to persist flashcard deck", zap.String("job_id", job.ID.String()), zap.Error(err))
		}
	}

	return nil
}

// updateMood recomputes the avatar mood from the generated reply and pushes
// it to the session's websocket watchers.
func (p *Pool) updateMood(ctx context.Context, sessionID, replyText string) {
	sentiment := p.assistant.Sentiment(ctx, replyText)
	mood := session.MoodForSentiment(sentiment)

	if _, err := p.sessions.SetMood(ctx, sessionID, mood); err != nil {
		p.logger.Warn("failed to update session mood", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	Publish(ctx, p.redis, sessionID, models.WSMessage{
		Type:    "mood",
		Payload: models.MoodEvent{SessionID: sessionID, Mood: mood},
	})
}

func summaryTitle(content *models.Content) string {
	if content.Title != "" {
		return content.Title
	}
	if content.URL != "" {
		return content.URL
	}
	title := strings.TrimSpace(content.Text)
	if len(title) > 60 {
		title = title[:60]
	}
	return title
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	p.jobs.SetStatus(ctx, job, "completed")

	Publish(ctx, p.redis, job.SessionID, models.WSMessage{
		Type: "completed",
		Payload: models.CompletedEvent{
			JobID:      job.ID,
			ResultID:   job.ReferenceID,
			ResultType: resultType(job.Type),
		},
	})

	p.logger.Info("job completed", zap.String("job_id", job.ID.String()))
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	errMsg := err.Error()
	p.logger.Warn("job failed", zap.String("job_id", job.ID.String()), zap.String("error", errMsg))

	p.jobs.SetStatus(ctx, job, "failed")
	p.jobs.SetError(ctx, job, errMsg)

	Publish(ctx, p.redis, job.SessionID, models.WSMessage{
		Type: "error",
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    "JOB_FAILED",
			ErrorMessage: errMsg,
		},
	})
}

func resultType(jobType string) string {
	switch jobType {
	case "page-summary":
		return "summary"
	case "flashcard-deck":
		return "deck"
	default:
		return jobType
	}
}
