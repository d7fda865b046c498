package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

// DefaultLowAttendanceThreshold is the percentage below which the overall
// alert fires.
const DefaultLowAttendanceThreshold = 75.0

// EvaluateAttendance derives the alert conditions from a snapshot. The
// overall threshold alert and the per-subject notice are independent
// conditions; both may be present at once.
func EvaluateAttendance(snapshot models.AttendanceSnapshot, threshold float64) dto.AttendanceEvaluation {
	if threshold <= 0 {
		threshold = DefaultLowAttendanceThreshold
	}
	eval := dto.AttendanceEvaluation{Percentage: snapshot.SemesterAttendance}
	if snapshot.SemesterAttendance < threshold {
		eval.Alert = true
		eval.AlertReason = fmt.Sprintf("attendance %.1f%% is below the required %.0f%%", snapshot.SemesterAttendance, threshold)
	}
	subjects := dedupeSubjects(snapshot.LowAttendanceSubjects)
	if len(subjects) > 0 {
		eval.FlaggedSubjects = subjects
		eval.LowAttendanceNotice = "low attendance in " + strings.Join(subjects, ", ")
	}
	return eval
}

// EventAttendancePercentage is the secondary, event-log derivation:
// present/total x 100, clamped to 0 when no events exist.
func EventAttendancePercentage(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(present) / float64(total) * 100
}

func dedupeSubjects(subjects []string) []string {
	seen := make(map[string]struct{}, len(subjects))
	unique := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		subject = strings.TrimSpace(subject)
		if subject == "" {
			continue
		}
		if _, ok := seen[subject]; ok {
			continue
		}
		seen[subject] = struct{}{}
		unique = append(unique, subject)
	}
	return unique
}

type attendanceRepository interface {
	GetSnapshot(ctx context.Context, studentID string) (*models.AttendanceSnapshot, error)
	PutSnapshot(ctx context.Context, snapshot *models.AttendanceSnapshot) error
	InsertEvent(ctx context.Context, event *models.AttendanceEvent) error
	ListEvents(ctx context.Context, filter models.AttendanceEventFilter) ([]models.AttendanceEvent, error)
	CountEvents(ctx context.Context, studentID string) (present int, total int, err error)
}

// UpdateSnapshotRequest overwrites a student's attendance snapshot.
type UpdateSnapshotRequest struct {
	StudentID             string   `json:"studentId" validate:"required"`
	SemesterAttendance    float64  `json:"semesterAttendance" validate:"min=0,max=100"`
	LowAttendanceSubjects []string `json:"lowAttendanceSubjects"`
}

// RecordAttendanceRequest appends one dated present/absent event.
type RecordAttendanceRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Status    string `json:"status" validate:"required"`
	Subject   string `json:"subject"`
}

// RecordAttendanceResult returns the event and the recomputed percentage.
type RecordAttendanceResult struct {
	Event      models.AttendanceEvent `json:"attendance"`
	Percentage float64                `json:"attendancePercentage"`
}

// AttendanceService manages snapshots, the event log, and alert derivation.
type AttendanceService struct {
	repo      attendanceRepository
	students  studentDirectory
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	threshold float64
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, students studentDirectory, cache *CacheService, validate *validator.Validate, logger *zap.Logger, threshold float64) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = DefaultLowAttendanceThreshold
	}
	return &AttendanceService{repo: repo, students: students, cache: cache, validator: validate, logger: logger, threshold: threshold}
}

// Snapshot returns the stored snapshot for a student, zero-valued (not an
// error) when none exists, together with its evaluation.
func (s *AttendanceService) Snapshot(ctx context.Context, studentID string) (dto.AttendanceView, dto.AttendanceEvaluation, error) {
	student, err := s.resolve(ctx, studentID)
	if err != nil {
		return dto.AttendanceView{}, dto.AttendanceEvaluation{}, err
	}
	return s.snapshotFor(ctx, student.ID)
}

// SnapshotForUser resolves the authenticated student first.
func (s *AttendanceService) SnapshotForUser(ctx context.Context, userID string) (dto.AttendanceView, dto.AttendanceEvaluation, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dto.AttendanceView{}, dto.AttendanceEvaluation{}, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return dto.AttendanceView{}, dto.AttendanceEvaluation{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	return s.snapshotFor(ctx, student.ID)
}

// UpdateSnapshot overwrites the per-student snapshot. No history is kept.
func (s *AttendanceService) UpdateSnapshot(ctx context.Context, req UpdateSnapshotRequest) (*models.AttendanceSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	student, err := s.resolve(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	snapshot := &models.AttendanceSnapshot{
		StudentID:             student.ID,
		SemesterAttendance:    req.SemesterAttendance,
		LowAttendanceSubjects: dedupeSubjects(req.LowAttendanceSubjects),
		UpdatedAt:             time.Now().UTC(),
	}
	if err := s.repo.PutSnapshot(ctx, snapshot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance snapshot")
	}
	s.invalidateDashboard(ctx, student.ID)
	return snapshot, nil
}

// RecordEvent appends one attendance event and folds the recomputed
// event-derived percentage back into the snapshot, preserving any flagged
// subjects already stored there.
func (s *AttendanceService) RecordEvent(ctx context.Context, req RecordAttendanceRequest) (*RecordAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Present or Absent")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	student, err := s.resolve(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	event := &models.AttendanceEvent{
		StudentID: student.ID,
		Date:      date,
		Status:    status,
		Subject:   strings.TrimSpace(req.Subject),
	}
	if err := s.repo.InsertEvent(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	present, total, err := s.repo.CountEvents(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendance events")
	}
	percentage := EventAttendancePercentage(present, total)

	snapshot, err := s.repo.GetSnapshot(ctx, student.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance snapshot")
	}
	updated := models.AttendanceSnapshot{StudentID: student.ID, SemesterAttendance: percentage, UpdatedAt: time.Now().UTC()}
	if snapshot != nil {
		updated.LowAttendanceSubjects = snapshot.LowAttendanceSubjects
	}
	if err := s.repo.PutSnapshot(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance snapshot")
	}
	s.invalidateDashboard(ctx, student.ID)

	return &RecordAttendanceResult{Event: *event, Percentage: percentage}, nil
}

// Events returns the dated event history, newest first.
func (s *AttendanceService) Events(ctx context.Context, studentID string, from, to *time.Time) ([]models.AttendanceEvent, error) {
	student, err := s.resolve(ctx, studentID)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx, models.AttendanceEventFilter{StudentID: student.ID, From: from, To: to})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance events")
	}
	return events, nil
}

func (s *AttendanceService) snapshotFor(ctx context.Context, studentID string) (dto.AttendanceView, dto.AttendanceEvaluation, error) {
	snapshot, err := s.repo.GetSnapshot(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Dashboards render a valid empty state instead of a 404.
			empty := models.AttendanceSnapshot{StudentID: studentID}
			return dto.AttendanceView{SemesterAttendance: 0, LowAttendanceSubjects: []string{}}, EvaluateAttendance(empty, s.threshold), nil
		}
		return dto.AttendanceView{}, dto.AttendanceEvaluation{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance snapshot")
	}
	subjects := dedupeSubjects(snapshot.LowAttendanceSubjects)
	view := dto.AttendanceView{SemesterAttendance: snapshot.SemesterAttendance, LowAttendanceSubjects: subjects}
	if view.LowAttendanceSubjects == nil {
		view.LowAttendanceSubjects = []string{}
	}
	return view, EvaluateAttendance(*snapshot, s.threshold), nil
}

func (s *AttendanceService) invalidateDashboard(ctx context.Context, studentID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dash:%s", studentID)); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (s *AttendanceService) resolve(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByIDOrStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}
