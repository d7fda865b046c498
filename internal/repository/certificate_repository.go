package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/models"
)

// CertificateRepository manages certificate persistence.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository constructs a CertificateRepository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create inserts a new certificate.
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	if cert.ID == "" {
		cert.ID = uuid.NewString()
	}
	if cert.CreatedAt.IsZero() {
		cert.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO certificates (id, student_ref, title, issuer, issue_date, status, admin_comments, reviewed_by, reviewed_at, submitted_on, created_at)
        VALUES (:id, :student_ref, :title, :issuer, :issue_date, :status, :admin_comments, :reviewed_by, :reviewed_at, :submitted_on, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cert); err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}

// FindByID fetches a certificate by ID.
func (r *CertificateRepository) FindByID(ctx context.Context, id string) (*models.Certificate, error) {
	const query = `SELECT id, student_ref, title, issuer, issue_date, status, admin_comments, reviewed_by, reviewed_at, submitted_on, created_at
        FROM certificates WHERE id = $1`
	var cert models.Certificate
	if err := r.db.GetContext(ctx, &cert, query, id); err != nil {
		return nil, err
	}
	return &cert, nil
}

// ListByStudent returns a student's certificates newest first.
func (r *CertificateRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error) {
	const query = `SELECT id, student_ref, title, issuer, issue_date, status, admin_comments, reviewed_by, reviewed_at, submitted_on, created_at
        FROM certificates WHERE student_ref = $1 ORDER BY submitted_on DESC`
	var certs []models.Certificate
	if err := r.db.SelectContext(ctx, &certs, query, studentID); err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}

// ListByStatus returns every certificate in the given state, oldest first so
// reviewers work the backlog in submission order.
func (r *CertificateRepository) ListByStatus(ctx context.Context, status models.CertificateStatus) ([]models.Certificate, error) {
	const query = `SELECT id, student_ref, title, issuer, issue_date, status, admin_comments, reviewed_by, reviewed_at, submitted_on, created_at
        FROM certificates WHERE status = $1 ORDER BY submitted_on ASC`
	var certs []models.Certificate
	if err := r.db.SelectContext(ctx, &certs, query, status); err != nil {
		return nil, fmt.Errorf("list certificates by status: %w", err)
	}
	return certs, nil
}

// CountByStatus reports how many certificates sit in the given state.
func (r *CertificateRepository) CountByStatus(ctx context.Context, status models.CertificateStatus) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM certificates WHERE status = $1", status); err != nil {
		return 0, fmt.Errorf("count certificates: %w", err)
	}
	return total, nil
}

// UpdateReview stores an admin verdict.
func (r *CertificateRepository) UpdateReview(ctx context.Context, cert *models.Certificate) error {
	const query = `UPDATE certificates SET status = :status, admin_comments = :admin_comments, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, cert); err != nil {
		return fmt.Errorf("update certificate review: %w", err)
	}
	return nil
}
