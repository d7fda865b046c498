package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
)

type trackingEventRepo struct {
	fakeEventRepo
	created       *models.Event
	found         *models.Event
	updated       *models.Event
	deleted       string
	upcomingAfter time.Time
	upcomingLimit int
	calendarFrom  time.Time
	calendarTo    time.Time
}

func (f *trackingEventRepo) Create(_ context.Context, event *models.Event) error {
	f.created = event
	return nil
}

func (f *trackingEventRepo) FindByID(context.Context, string) (*models.Event, error) {
	return f.found, nil
}

func (f *trackingEventRepo) ListUpcoming(_ context.Context, after time.Time, limit int) ([]models.Event, error) {
	f.upcomingAfter = after
	f.upcomingLimit = limit
	return f.upcoming, nil
}

func (f *trackingEventRepo) Update(_ context.Context, event *models.Event) error {
	f.updated = event
	return nil
}

func (f *trackingEventRepo) Delete(_ context.Context, id string) error {
	f.deleted = id
	return nil
}

func (f *trackingEventRepo) ListCalendar(_ context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	f.calendarFrom = from
	f.calendarTo = to
	return f.calendar, nil
}

func TestCreateEvent(t *testing.T) {
	repo := &trackingEventRepo{}
	svc := NewEventService(repo, nil, nil)

	event, err := svc.Create(context.Background(), EventRequest{
		Title:     "Tech Fest",
		Date:      "2026-09-04",
		EventType: "Cultural",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC), event.EventDate)
	assert.NotEmpty(t, event.ID)
	assert.Same(t, event, repo.created)

	_, err = svc.Create(context.Background(), EventRequest{Title: "X", Date: "04-09-2026", EventType: "Cultural"})
	require.Error(t, err, "non ISO date is rejected")
}

func TestUpcomingEventsWindow(t *testing.T) {
	repo := &trackingEventRepo{}
	svc := NewEventService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC) }

	_, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), repo.upcomingAfter, "today's events still count as upcoming")
	assert.Equal(t, UpcomingEventLimit, repo.upcomingLimit)
}

func TestCalendarMonthWindow(t *testing.T) {
	repo := &trackingEventRepo{}
	svc := NewEventService(repo, nil, nil)

	_, err := svc.Calendar(context.Background(), time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), repo.calendarFrom)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), repo.calendarTo, "the window is half-open at the next month")
}

func TestUpdateEventReplacesMutableFields(t *testing.T) {
	repo := &trackingEventRepo{found: &models.Event{ID: "ev1", Title: "Old", EventType: "Sports"}}
	svc := NewEventService(repo, nil, nil)

	event, err := svc.Update(context.Background(), "ev1", EventRequest{Title: "New", Date: "2026-10-01", EventType: "Workshop"})
	require.NoError(t, err)
	assert.Equal(t, "New", event.Title)
	assert.Equal(t, "Workshop", event.EventType)
	assert.Same(t, event, repo.updated)
}

func TestDeleteEvent(t *testing.T) {
	repo := &trackingEventRepo{found: &models.Event{ID: "ev1"}}
	svc := NewEventService(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "ev1"))
	assert.Equal(t, "ev1", repo.deleted)
}
