package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/export"
)

// csvSlotHeaders are the fixed export column labels. They use en dashes
// while the stored slot labels use hyphens; the export contract is fixed
// and the two sets map index-wise.
var csvSlotHeaders = []string{"9–10 AM", "10–11 AM", "11–1 PM", "2–4 PM"}

// BuildWeeklyGrid expands sparse stored slots into the dense Mon-Fri grid.
// Every cell exists and defaults to the placeholder; slots stored for days
// or labels outside the canonical set are skipped, and a duplicate
// (day, slot) pair resolves last-write-wins instead of failing.
func BuildWeeklyGrid(slots []models.ScheduleSlot) models.WeeklyScheduleGrid {
	grid := make(models.WeeklyScheduleGrid, len(models.TeachingDays))
	for _, day := range models.TeachingDays {
		row := make(map[string]string, len(models.CanonicalTimeSlots))
		for _, label := range models.CanonicalTimeSlots {
			row[label] = models.SlotPlaceholder
		}
		grid[day] = row
	}
	for _, slot := range slots {
		if !models.IsTeachingDay(slot.Day) {
			continue
		}
		row := grid[slot.Day]
		if _, ok := row[slot.TimeSlot]; !ok {
			continue
		}
		row[slot.TimeSlot] = slot.Subject
	}
	return grid
}

// SlotsForDay converts one day's dense slot map back into sparse storage
// form. Placeholder and blank cells are omitted rather than stored as empty
// subjects, so BuildWeeklyGrid(SlotsForDay(...)) round-trips the
// non-placeholder cells.
func SlotsForDay(studentID, day string, dense map[string]string) []models.ScheduleSlot {
	slots := make([]models.ScheduleSlot, 0, len(dense))
	for _, label := range models.CanonicalTimeSlots {
		subject := strings.TrimSpace(dense[label])
		if subject == "" || subject == models.SlotPlaceholder {
			continue
		}
		slots = append(slots, models.ScheduleSlot{
			StudentID: studentID,
			Day:       day,
			TimeSlot:  label,
			Subject:   subject,
		})
	}
	return slots
}

type scheduleSlotRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ScheduleSlot, error)
	ReplaceDay(ctx context.Context, studentID, day string, slots []models.ScheduleSlot) error
	DeleteDay(ctx context.Context, studentID, day string) error
}

type studentDirectory interface {
	FindByIDOrStudentID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// UpsertScheduleRequest replaces one day's slot assignments for a student.
type UpsertScheduleRequest struct {
	StudentID string            `json:"studentId" validate:"required"`
	Day       string            `json:"day" validate:"required"`
	TimeSlots map[string]string `json:"timeSlots" validate:"required"`
}

// ScheduleService builds weekly grids and manages slot storage.
type ScheduleService struct {
	slots     scheduleSlotRepository
	students  studentDirectory
	cache     *CacheService
	csv       csvRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(slots scheduleSlotRepository, students studentDirectory, cache *CacheService, csv csvRenderer, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	return &ScheduleService{slots: slots, students: students, cache: cache, csv: csv, validator: validate, logger: logger}
}

// WeeklyGridForUser returns the dense grid for the authenticated student.
func (s *ScheduleService) WeeklyGridForUser(ctx context.Context, userID string) (models.WeeklyScheduleGrid, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	return s.gridFor(ctx, student.ID)
}

// WeeklyGrid returns the dense grid for an arbitrary student (admin path).
func (s *ScheduleService) WeeklyGrid(ctx context.Context, studentID string) (models.WeeklyScheduleGrid, error) {
	student, err := s.resolve(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.gridFor(ctx, student.ID)
}

// ListSlots returns the flattened sparse form for a student.
func (s *ScheduleService) ListSlots(ctx context.Context, studentID string) ([]models.ScheduleSlot, error) {
	student, err := s.resolve(ctx, studentID)
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule slots")
	}
	return slots, nil
}

// UpsertDay replaces the stored slots for one (student, day) pair with the
// non-placeholder entries of the provided dense map.
func (s *ScheduleService) UpsertDay(ctx context.Context, req UpsertScheduleRequest) ([]models.ScheduleSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if !models.IsStorableDay(req.Day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day must be one of Mon..Sun")
	}
	student, err := s.resolve(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	slots := SlotsForDay(student.ID, req.Day, req.TimeSlots)
	if err := s.slots.ReplaceDay(ctx, student.ID, req.Day, slots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store schedule")
	}
	s.invalidateDashboard(ctx, student.ID)
	return slots, nil
}

// DeleteDay removes every stored slot for one (student, day) pair.
func (s *ScheduleService) DeleteDay(ctx context.Context, studentID, day string) error {
	if !models.IsStorableDay(day) {
		return appErrors.Clone(appErrors.ErrValidation, "day must be one of Mon..Sun")
	}
	student, err := s.resolve(ctx, studentID)
	if err != nil {
		return err
	}
	if err := s.slots.DeleteDay(ctx, student.ID, day); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	s.invalidateDashboard(ctx, student.ID)
	return nil
}

func (s *ScheduleService) invalidateDashboard(ctx context.Context, studentID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dash:%s", studentID)); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

// ExportCSV renders the weekly grid, one row per canonical day.
func (s *ScheduleService) ExportCSV(ctx context.Context, studentID string) ([]byte, error) {
	grid, err := s.WeeklyGrid(ctx, studentID)
	if err != nil {
		return nil, err
	}
	headers := append([]string{"Day"}, csvSlotHeaders...)
	rows := make([]map[string]string, 0, len(models.TeachingDays))
	for _, day := range models.TeachingDays {
		row := map[string]string{"Day": day}
		for i, label := range models.CanonicalTimeSlots {
			row[csvSlotHeaders[i]] = grid[day][label]
		}
		rows = append(rows, row)
	}
	payload, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule csv")
	}
	return payload, nil
}

func (s *ScheduleService) gridFor(ctx context.Context, studentID string) (models.WeeklyScheduleGrid, error) {
	slots, err := s.slots.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule slots")
	}
	return BuildWeeklyGrid(slots), nil
}

func (s *ScheduleService) resolve(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByIDOrStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}
