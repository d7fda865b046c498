package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter, page, pageSize int) ([]models.Student, int, error)
	FindByIDOrStudentID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	AddSemester(ctx context.Context, record *models.SemesterRecord) error
	ListSemesters(ctx context.Context, studentID string) ([]models.SemesterRecord, error)
	AddSkill(ctx context.Context, studentID string, skill models.Skill) error
	UpsertFeedback(ctx context.Context, studentID, text string, updatedAt time.Time) error
}

// CreateStudentRequest captures the payload for registering a student record.
type CreateStudentRequest struct {
	StudentID string   `json:"studentId" validate:"required"`
	Name      string   `json:"name" validate:"required"`
	Course    string   `json:"course" validate:"required"`
	CGPA      *float64 `json:"cgpa" validate:"omitempty,gte=0,lte=10"`
	Backlogs  int      `json:"backlogs" validate:"gte=0"`
	Status    string   `json:"status" validate:"omitempty,oneof=Active 'On Hold' Graduated"`
	Photo     string   `json:"photo"`
	UserID    *string  `json:"userId"`
}

// UpdateStudentRequest captures a partial update from an administrator.
type UpdateStudentRequest struct {
	Name     *string  `json:"name"`
	Course   *string  `json:"course"`
	CGPA     *float64 `json:"cgpa" validate:"omitempty,gte=0,lte=10"`
	Backlogs *int     `json:"backlogs" validate:"omitempty,gte=0"`
	Status   *string  `json:"status" validate:"omitempty,oneof=Active 'On Hold' Graduated"`
	Photo    *string  `json:"photo"`
}

// AddSemesterRequest appends one semester result to a student record.
// Subjects uses the compact "Subject:Grade, Subject:Grade" form.
type AddSemesterRequest struct {
	Name     string  `json:"name" validate:"required"`
	SGPA     float64 `json:"sgpa" validate:"gte=0,lte=10"`
	Subjects string  `json:"subjects"`
}

// AddSkillRequest appends a skill to a student record.
type AddSkillRequest struct {
	Name  string `json:"name" validate:"required"`
	Level int    `json:"level" validate:"gte=0,lte=100"`
}

// FeedbackRequest replaces the advisor feedback on a student record.
type FeedbackRequest struct {
	Text string `json:"text" validate:"required"`
}

// StudentService provides student record management use cases.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns students matching the filter with paging metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter, page, pageSize int) ([]models.Student, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	students, total, err := s.repo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	return students, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get resolves a student by internal ID or roll number.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByIDOrStudentID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// GetByUser resolves the student record linked to a portal account.
func (s *StudentService) GetByUser(ctx context.Context, userID string) (*models.Student, error) {
	student, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student record.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	status := models.StudentStatus(req.Status)
	if req.Status == "" {
		status = models.StudentStatusActive
	}

	now := time.Now().UTC()
	student := &models.Student{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		StudentID:   req.StudentID,
		Name:        req.Name,
		Course:      req.Course,
		CGPA:        req.CGPA,
		Backlogs:    req.Backlogs,
		Status:      status,
		Photo:       req.Photo,
		CreatedAt:   now,
		UpdatedAt:   now,
		LastUpdated: now,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	return student, nil
}

// Update applies a partial update and refreshes derived caches.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Course != nil {
		student.Course = *req.Course
	}
	if req.CGPA != nil {
		student.CGPA = req.CGPA
	}
	if req.Backlogs != nil {
		student.Backlogs = *req.Backlogs
	}
	if req.Status != nil {
		student.Status = models.StudentStatus(*req.Status)
	}
	if req.Photo != nil {
		student.Photo = *req.Photo
	}
	student.UpdatedAt = time.Now().UTC()
	student.LastUpdated = student.UpdatedAt

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.invalidateCaches(ctx, student.ID)
	return student, nil
}

// UpdatePhoto lets a student change their own photo without touching
// administrator-managed fields.
func (s *StudentService) UpdatePhoto(ctx context.Context, userID, photo string) (*models.Student, error) {
	student, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	student.Photo = photo
	student.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student photo")
	}

	s.invalidateCaches(ctx, student.ID)
	return student, nil
}

// Delete removes a student record.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	student, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, student.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}

	s.invalidateCaches(ctx, student.ID)
	return nil
}

// Count returns the total number of student records.
func (s *StudentService) Count(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	return total, nil
}

// AddSemester appends a semester result. The compact subject string is stored
// as-is and parsed when reports are composed.
func (s *StudentService) AddSemester(ctx context.Context, id string, req AddSemesterRequest) (*models.SemesterRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListSemesters(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semesters")
	}

	record := &models.SemesterRecord{
		ID:        uuid.NewString(),
		StudentID: student.ID,
		Name:      req.Name,
		SGPA:      req.SGPA,
		Subjects:  req.Subjects,
		Position:  len(existing),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.AddSemester(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store semester")
	}

	s.invalidateCaches(ctx, student.ID)
	return record, nil
}

// Semesters lists a student's semester records in stored order.
func (s *StudentService) Semesters(ctx context.Context, id string) ([]models.SemesterRecord, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	semesters, err := s.repo.ListSemesters(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semesters")
	}
	return semesters, nil
}

// AddSkill appends a skill entry to a student record.
func (s *StudentService) AddSkill(ctx context.Context, id string, req AddSkillRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid skill payload")
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.AddSkill(ctx, student.ID, models.Skill{Name: req.Name, Level: req.Level}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store skill")
	}

	s.invalidateCaches(ctx, student.ID)
	return nil
}

// UpsertFeedback replaces the advisor feedback on a student record.
func (s *StudentService) UpsertFeedback(ctx context.Context, id string, req FeedbackRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.UpsertFeedback(ctx, student.ID, req.Text, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store feedback")
	}

	s.invalidateCaches(ctx, student.ID)
	return nil
}

func (s *StudentService) invalidateCaches(ctx context.Context, studentID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("report:*:%s:*", studentID)); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dash:%s", studentID)); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
