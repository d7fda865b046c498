package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/models"
)

// EventRepository manages institution events and the academic calendar.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	const query = `INSERT INTO events (id, title, description, event_date, event_type, created_at, updated_at)
        VALUES (:id, :title, :description, :event_date, :event_type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// FindByID fetches an event by ID.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	const query = `SELECT id, title, description, event_date, event_type, created_at, updated_at FROM events WHERE id = $1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// List returns events matching the filter, soonest first.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	query := `SELECT id, title, description, event_date, event_type, created_at, updated_at FROM events WHERE 1=1`
	args := []interface{}{}

	if filter.Type != "" {
		query += fmt.Sprintf(" AND event_type = $%d", len(args)+1)
		args = append(args, filter.Type)
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND event_date >= $%d", len(args)+1)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND event_date <= $%d", len(args)+1)
		args = append(args, *filter.To)
	}
	query += " ORDER BY event_date ASC"

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListUpcoming returns the next events on or after the given instant.
func (r *EventRepository) ListUpcoming(ctx context.Context, after time.Time, limit int) ([]models.Event, error) {
	const query = `SELECT id, title, description, event_date, event_type, created_at, updated_at
        FROM events WHERE event_date >= $1 ORDER BY event_date ASC LIMIT $2`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, after, limit); err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}

// CountUpcoming reports how many events lie on or after the given instant.
func (r *EventRepository) CountUpcoming(ctx context.Context, after time.Time) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM events WHERE event_date >= $1", after); err != nil {
		return 0, fmt.Errorf("count upcoming events: %w", err)
	}
	return total, nil
}

// Update replaces the mutable fields of an event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	const query = `UPDATE events SET title = :title, description = :description, event_date = :event_date, event_type = :event_type, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ListCalendar returns academic-calendar entries in [from, to).
func (r *EventRepository) ListCalendar(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	const query = `SELECT id, title, date, event_type, description, color_tag, created_at
        FROM calendar_events WHERE date >= $1 AND date < $2 ORDER BY date ASC`
	var entries []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &entries, query, from, to); err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return entries, nil
}
