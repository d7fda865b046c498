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

type certificateRepository interface {
	Create(ctx context.Context, cert *models.Certificate) error
	FindByID(ctx context.Context, id string) (*models.Certificate, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error)
	ListByStatus(ctx context.Context, status models.CertificateStatus) ([]models.Certificate, error)
	CountByStatus(ctx context.Context, status models.CertificateStatus) (int, error)
	UpdateReview(ctx context.Context, cert *models.Certificate) error
}

// SubmitCertificateRequest is the student-facing submission payload.
type SubmitCertificateRequest struct {
	Title     string `json:"title" validate:"required"`
	Issuer    string `json:"issuer" validate:"required"`
	IssueDate string `json:"issueDate" validate:"omitempty,datetime=2006-01-02"`
}

// ReviewCertificateRequest is the admin verdict payload.
type ReviewCertificateRequest struct {
	Status   string `json:"status" validate:"required,oneof=Approved Rejected"`
	Comments string `json:"comments"`
}

// CertificateService manages certificate submission and review.
type CertificateService struct {
	repo      certificateRepository
	students  studentDirectory
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCertificateService constructs a CertificateService.
func NewCertificateService(repo certificateRepository, students studentDirectory, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CertificateService{repo: repo, students: students, cache: cache, validator: validate, logger: logger}
}

// Submit records a new certificate for the caller's student profile.
// Submissions always start Pending; only a review moves them on.
func (s *CertificateService) Submit(ctx context.Context, userID string, req SubmitCertificateRequest) (*models.Certificate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid certificate payload")
	}

	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	var issueDate *time.Time
	if req.IssueDate != "" {
		parsed, parseErr := time.Parse("2006-01-02", req.IssueDate)
		if parseErr != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "issueDate must be YYYY-MM-DD")
		}
		issueDate = &parsed
	}

	now := time.Now().UTC()
	cert := &models.Certificate{
		ID:          uuid.NewString(),
		StudentID:   student.ID,
		Title:       req.Title,
		Issuer:      req.Issuer,
		IssueDate:   issueDate,
		Status:      models.CertificatePending,
		SubmittedOn: now,
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, cert); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store certificate")
	}

	s.invalidate(ctx, student.ID)
	return cert, nil
}

// ListForUser returns the caller's certificates.
func (s *CertificateService) ListForUser(ctx context.Context, userID string) ([]models.Certificate, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.listByStudent(ctx, student.ID)
}

// ListForStudent returns certificates for a student resolved by ID or roll number.
func (s *CertificateService) ListForStudent(ctx context.Context, id string) ([]models.Certificate, error) {
	student, err := s.students.FindByIDOrStudentID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.listByStudent(ctx, student.ID)
}

// Pending returns every certificate awaiting review.
func (s *CertificateService) Pending(ctx context.Context) ([]models.Certificate, error) {
	certs, err := s.repo.ListByStatus(ctx, models.CertificatePending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending certificates")
	}
	return certs, nil
}

// CountPending reports how many certificates await review.
func (s *CertificateService) CountPending(ctx context.Context) (int, error) {
	count, err := s.repo.CountByStatus(ctx, models.CertificatePending)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending certificates")
	}
	return count, nil
}

// Review records an admin verdict on a pending certificate.
func (s *CertificateService) Review(ctx context.Context, certID, reviewerID string, req ReviewCertificateRequest) (*models.Certificate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	cert, err := s.repo.FindByID(ctx, certID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}

	if cert.Status != models.CertificatePending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "certificate has already been reviewed")
	}

	now := time.Now().UTC()
	cert.Status = models.CertificateStatus(req.Status)
	cert.AdminComments = req.Comments
	cert.ReviewedBy = &reviewerID
	cert.ReviewedAt = &now

	if err := s.repo.UpdateReview(ctx, cert); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update certificate")
	}

	s.invalidate(ctx, cert.StudentID)
	return cert, nil
}

func (s *CertificateService) listByStudent(ctx context.Context, studentID string) ([]models.Certificate, error) {
	certs, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certificates")
	}
	return certs, nil
}

func (s *CertificateService) invalidate(ctx context.Context, studentID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("report:*:%s:*", studentID)); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
