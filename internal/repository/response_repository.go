package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/whenfree-api/internal/models"
)

// ResponseRepository handles persistence for participant responses.
type ResponseRepository struct {
	db *sqlx.DB
}

// NewResponseRepository instantiates a response repository.
func NewResponseRepository(db *sqlx.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Upsert stores the response, replacing availability and plus-one of an
// existing (event_id, name) row in a single statement. Concurrent writes for
// the same name resolve to the last commit.
func (r *ResponseRepository) Upsert(ctx context.Context, resp *models.Response) error {
	const query = `INSERT INTO responses (event_id, name, plus_one, availability)
VALUES ($1, $2, $3, $4)
ON CONFLICT (event_id, name)
DO UPDATE SET plus_one = EXCLUDED.plus_one, availability = EXCLUDED.availability, updated_at = NOW()
RETURNING id, created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query, resp.EventID, resp.Name, resp.PlusOne, resp.Availability)
	if err := row.Scan(&resp.ID, &resp.CreatedAt, &resp.UpdatedAt); err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}
	return nil
}

// ListByEvent returns an event's responses in creation order.
func (r *ResponseRepository) ListByEvent(ctx context.Context, eventID string) ([]models.Response, error) {
	const query = `SELECT id, event_id, name, plus_one, availability, created_at, updated_at FROM responses WHERE event_id = $1 ORDER BY created_at ASC, id ASC`
	responses := []models.Response{}
	if err := r.db.SelectContext(ctx, &responses, query, eventID); err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return responses, nil
}

// DeleteByName removes the named response and reports how many rows went away.
func (r *ResponseRepository) DeleteByName(ctx context.Context, eventID, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM responses WHERE event_id = $1 AND name = $2`, eventID, name)
	if err != nil {
		return 0, fmt.Errorf("delete response: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete response rows: %w", err)
	}
	return affected, nil
}
