package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
)

// DashboardService assembles the student landing page from the sibling
// services and caches the composed payload.
type DashboardService struct {
	students     *StudentService
	schedule     *ScheduleService
	attendance   *AttendanceService
	events       *EventService
	certificates *CertificateService
	cache        *CacheService
	cacheTTL     time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(
	students *StudentService,
	schedule *ScheduleService,
	attendance *AttendanceService,
	events *EventService,
	certificates *CertificateService,
	cache *CacheService,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:     students,
		schedule:     schedule,
		attendance:   attendance,
		events:       events,
		certificates: certificates,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
		now:          time.Now,
	}
}

// StudentDashboard composes the dashboard for the authenticated student.
func (s *DashboardService) StudentDashboard(ctx context.Context, userID string) (*dto.DashboardResponse, error) {
	student, err := s.students.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dash:%s", student.ID)
	var cached dto.DashboardResponse
	if hit, cacheErr := s.cache.Get(ctx, cacheKey, &cached); cacheErr == nil && hit {
		return &cached, nil
	}

	grid, err := s.schedule.WeeklyGrid(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	attendanceView, evaluation, err := s.attendance.Snapshot(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	calendar, err := s.events.Calendar(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}

	upcoming, err := s.events.Upcoming(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		Profile: dto.ProfileBlock{
			ID:        student.ID,
			StudentID: student.StudentID,
			Name:      student.Name,
			Course:    student.Course,
			CGPA:      dto.GPAOf(student.CGPA),
			Status:    string(student.Status),
		},
		Schedule:       grid,
		Attendance:     attendanceView,
		Alerts:         evaluation,
		CalendarEvents: calendarViews(calendar),
		UpcomingEvents: upcomingViews(upcoming),
	}

	if err := s.cache.Set(ctx, cacheKey, resp, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("student_id", student.ID), zap.Error(err))
	}

	return resp, nil
}

// AdminOverview returns the workload counters for the admin landing page.
func (s *DashboardService) AdminOverview(ctx context.Context) (*dto.AdminStats, error) {
	total, err := s.students.Count(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.certificates.CountPending(ctx)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.events.CountUpcoming(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.AdminStats{
		TotalStudents:       total,
		PendingCertificates: pending,
		UpcomingEvents:      upcoming,
	}, nil
}

func calendarViews(entries []models.CalendarEvent) []dto.CalendarEventView {
	views := make([]dto.CalendarEventView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, dto.CalendarEventView{
			ID:          entry.ID,
			Title:       entry.Title,
			Date:        entry.Date,
			EventType:   entry.EventType,
			Description: entry.Description,
			ColorTag:    entry.ColorTag,
		})
	}
	return views
}

func upcomingViews(events []models.Event) []dto.UpcomingEventView {
	views := make([]dto.UpcomingEventView, 0, len(events))
	for _, event := range events {
		views = append(views, dto.UpcomingEventView{
			ID:          event.ID,
			Title:       event.Title,
			EventType:   event.EventType,
			Date:        event.EventDate,
			Description: event.Description,
		})
	}
	return views
}
