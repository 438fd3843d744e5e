package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/noah-isme/whenfree-api/internal/models"
)

// EventIDLength is the length of generated share identifiers.
const EventIDLength = 10

const eventColumns = "id, title, location, description, admin_code, host_dates, time_slots, created_at"

// EventRepository handles persistence for events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository instantiates an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event, assigning a random URL-safe identifier when none is set.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		id, err := gonanoid.New(EventIDLength)
		if err != nil {
			return fmt.Errorf("generate event id: %w", err)
		}
		event.ID = id
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO events (id, title, location, description, admin_code, host_dates, time_slots, created_at) VALUES (:id, :title, :location, :description, :admin_code, :host_dates, :time_slots, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// FindByID loads an event by identifier. Returns sql.ErrNoRows when missing.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE id = $1"
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// FindAdminCode returns only the stored admin code. Returns sql.ErrNoRows when missing.
func (r *EventRepository) FindAdminCode(ctx context.Context, id string) (string, error) {
	const query = `SELECT admin_code FROM events WHERE id = $1`
	var code string
	if err := r.db.GetContext(ctx, &code, query, id); err != nil {
		return "", err
	}
	return code, nil
}

// UpdateDetails rewrites the editable fields. Reports whether a row matched.
func (r *EventRepository) UpdateDetails(ctx context.Context, id string, details models.EventDetails) (bool, error) {
	const query = `UPDATE events SET title = $2, location = $3, description = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, details.Title, details.Location, details.Description)
	if err != nil {
		return false, fmt.Errorf("update event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update event rows: %w", err)
	}
	return affected > 0, nil
}
