package models

import "time"

// CertificateStatus tracks verification state.
type CertificateStatus string

const (
	CertificatePending  CertificateStatus = "Pending"
	CertificateApproved CertificateStatus = "Approved"
	CertificateRejected CertificateStatus = "Rejected"
)

// Valid reports whether the status is one of the known values.
func (s CertificateStatus) Valid() bool {
	return s == CertificatePending || s == CertificateApproved || s == CertificateRejected
}

// Certificate is a student-submitted credential awaiting admin review.
type Certificate struct {
	ID            string            `db:"id" json:"id"`
	StudentID     string            `db:"student_ref" json:"-"`
	Title         string            `db:"title" json:"title"`
	Issuer        string            `db:"issuer" json:"issuer"`
	IssueDate     *time.Time        `db:"issue_date" json:"issue_date,omitempty"`
	Status        CertificateStatus `db:"status" json:"status"`
	AdminComments string            `db:"admin_comments" json:"adminComments"`
	ReviewedBy    *string           `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time        `db:"reviewed_at" json:"reviewed_at,omitempty"`
	SubmittedOn   time.Time         `db:"submitted_on" json:"submitted_on"`
	CreatedAt     time.Time         `db:"created_at" json:"-"`
}
