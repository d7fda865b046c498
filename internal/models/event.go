package models

import "time"

// Event is an institution-wide announcement shown on the dashboard.
type Event struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	EventDate   time.Time `db:"event_date" json:"date"`
	EventType   string    `db:"event_type" json:"eventType"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}

// EventFilter narrows event listings.
type EventFilter struct {
	Type string
	From *time.Time
	To   *time.Time
}

// CalendarEvent is an academic-calendar entry (exam window, holiday, ...).
type CalendarEvent struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Date        time.Time `db:"date" json:"date"`
	EventType   string    `db:"event_type" json:"eventType"`
	Description string    `db:"description" json:"description"`
	ColorTag    string    `db:"color_tag" json:"colorTag"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}
