package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pagebuddy-backend/internal/models"
)

// SummaryRepo persists generated summaries when a database is configured.
// All repositories are optional: a nil pool means persistence is off and
// callers skip the repo entirely.
type SummaryRepo struct {
	pool *pgxpool.Pool
}

func NewSummaryRepo(pool *pgxpool.Pool) *SummaryRepo {
	return &SummaryRepo{pool: pool}
}

func (r *SummaryRepo) Create(ctx context.Context, s *models.Summary) error {
	s.ID = uuid.New()

	query := `INSERT INTO summaries (id, session_id, source, title, language, style, model, summary_text, action_items, tags, word_count, used_fallback)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.SessionID, s.Source, s.Title, s.Language, s.Style, s.Model,
		s.SummaryText, s.ActionItems, s.Tags, s.WordCount, s.UsedFallback,
	).Scan(&s.CreatedAt)
}

func (r *SummaryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Summary, error) {
	s := &models.Summary{}
	query := `SELECT id, session_id, source, title, language, style, model, summary_text, action_items, tags, word_count, used_fallback, created_at, last_accessed_at
		FROM summaries WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.SessionID, &s.Source, &s.Title, &s.Language, &s.Style, &s.Model,
		&s.SummaryText, &s.ActionItems, &s.Tags, &s.WordCount, &s.UsedFallback,
		&s.CreatedAt, &s.LastAccessedAt,
	)
	if err != nil {
		return nil, err
	}

	// Update last_accessed_at
	r.pool.Exec(ctx, "UPDATE summaries SET last_accessed_at = NOW() WHERE id = $1", id)
	return s, nil
}

func (r *SummaryRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]*models.Summary, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	query := `SELECT id, session_id, source, title, language, style, model, summary_text, action_items, tags, word_count, used_fallback, created_at, last_accessed_at
		FROM summaries WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*models.Summary
	for rows.Next() {
		s := &models.Summary{}
		err := rows.Scan(
			&s.ID, &s.SessionID, &s.Source, &s.Title, &s.Language, &s.Style, &s.Model,
			&s.SummaryText, &s.ActionItems, &s.Tags, &s.WordCount, &s.UsedFallback,
			&s.CreatedAt, &s.LastAccessedAt,
		)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

func (r *SummaryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM summaries WHERE id = $1", id)
	return err
}
