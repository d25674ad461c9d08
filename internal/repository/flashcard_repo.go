package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pagebuddy-backend/internal/models"
)

type FlashcardRepo struct {
	pool *pgxpool.Pool
}

func NewFlashcardRepo(pool *pgxpool.Pool) *FlashcardRepo {
	return &FlashcardRepo{pool: pool}
}

func (r *FlashcardRepo) CreateDeck(ctx context.Context, d *models.FlashcardDeck) error {
	d.ID = uuid.New()
	d.CardCount = len(d.Cards)

	cardsJSON, err := json.Marshal(d.Cards)
	if err != nil {
		return err
	}

	query := `INSERT INTO flashcard_decks (id, session_id, title, cards_json, card_count)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		d.ID, d.SessionID, d.Title, cardsJSON, d.CardCount,
	).Scan(&d.CreatedAt)
}

func (r *FlashcardRepo) GetDeck(ctx context.Context, id uuid.UUID) (*models.FlashcardDeck, error) {
	d := &models.FlashcardDeck{}
	var cardsJSON []byte

	query := `SELECT id, session_id, title, cards_json, card_count, created_at
		FROM flashcard_decks WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.SessionID, &d.Title, &cardsJSON, &d.CardCount, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cardsJSON, &d.Cards); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *FlashcardRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]*models.FlashcardDeck, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	query := `SELECT id, session_id, title, cards_json, card_count, created_at
		FROM flashcard_decks WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []*models.FlashcardDeck
	for rows.Next() {
		d := &models.FlashcardDeck{}
		var cardsJSON []byte
		if err := rows.Scan(&d.ID, &d.SessionID, &d.Title, &cardsJSON, &d.CardCount, &d.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(cardsJSON, &d.Cards); err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}

	return decks, rows.Err()
}

func (r *FlashcardRepo) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM flashcard_decks WHERE id = $1", id)
	return err
}
