package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/models"
)

// AttendanceRepository manages attendance snapshots and the event log.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// GetSnapshot returns the snapshot for a student, sql.ErrNoRows when none.
func (r *AttendanceRepository) GetSnapshot(ctx context.Context, studentID string) (*models.AttendanceSnapshot, error) {
	const query = `SELECT student_ref, semester_attendance, low_attendance_subjects, updated_at
        FROM attendance_snapshots WHERE student_ref = $1`
	var snapshot models.AttendanceSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query, studentID); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// PutSnapshot overwrites the single snapshot row kept per student.
func (r *AttendanceRepository) PutSnapshot(ctx context.Context, snapshot *models.AttendanceSnapshot) error {
	if snapshot.UpdatedAt.IsZero() {
		snapshot.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance_snapshots (student_ref, semester_attendance, low_attendance_subjects, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (student_ref) DO UPDATE SET
            semester_attendance = EXCLUDED.semester_attendance,
            low_attendance_subjects = EXCLUDED.low_attendance_subjects,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, snapshot.StudentID, snapshot.SemesterAttendance, snapshot.LowAttendanceSubjects, snapshot.UpdatedAt); err != nil {
		return fmt.Errorf("put attendance snapshot: %w", err)
	}
	return nil
}

// InsertEvent appends one dated attendance mark.
func (r *AttendanceRepository) InsertEvent(ctx context.Context, event *models.AttendanceEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance_events (id, student_ref, date, status, subject, created_at)
        VALUES (:id, :student_ref, :date, :status, :subject, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("insert attendance event: %w", err)
	}
	return nil
}

// ListEvents returns a student's events newest first, optionally bounded.
func (r *AttendanceRepository) ListEvents(ctx context.Context, filter models.AttendanceEventFilter) ([]models.AttendanceEvent, error) {
	query := `SELECT id, student_ref, date, status, subject, created_at
        FROM attendance_events WHERE student_ref = $1`
	args := []interface{}{filter.StudentID}

	if filter.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", len(args)+1)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND date <= $%d", len(args)+1)
		args = append(args, *filter.To)
	}
	query += " ORDER BY date DESC, created_at DESC"

	var events []models.AttendanceEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance events: %w", err)
	}
	return events, nil
}

// CountEvents returns the present and total event counts for a student.
func (r *AttendanceRepository) CountEvents(ctx context.Context, studentID string) (int, int, error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE status = $2) AS present,
        COUNT(*) AS total
        FROM attendance_events WHERE student_ref = $1`
	var counts struct {
		Present int `db:"present"`
		Total   int `db:"total"`
	}
	if err := r.db.GetContext(ctx, &counts, query, studentID, models.AttendancePresent); err != nil {
		return 0, 0, fmt.Errorf("count attendance events: %w", err)
	}
	return counts.Present, counts.Total, nil
}
