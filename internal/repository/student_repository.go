package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/models"
)

// StudentRepository manages persistence for student records and their
// child tables (semesters, skills, feedback).
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters with a total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter, page, pageSize int) ([]models.Student, int, error) {
	base := "FROM students s"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.name) LIKE $%d OR LOWER(s.student_id) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Course != "" {
		conditions = append(conditions, fmt.Sprintf("s.course = $%d", len(args)+1))
		args = append(args, filter.Course)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT s.id, s.user_id, s.student_id, s.name, s.course, s.cgpa, s.backlogs, s.status, s.photo, s.created_at, s.updated_at, s.last_updated
        %s ORDER BY s.name ASC LIMIT %d OFFSET %d`, base, pageSize, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByIDOrStudentID fetches a student by internal ID or roll number.
func (r *StudentRepository) FindByIDOrStudentID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, user_id, student_id, name, course, cgpa, backlogs, status, photo, created_at, updated_at, last_updated
        FROM students WHERE id = $1 OR student_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByUserID fetches the student record linked to a portal account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT id, user_id, student_id, name, course, cgpa, backlogs, status, photo, created_at, updated_at, last_updated
        FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, user_id, student_id, name, course, cgpa, backlogs, status, photo, created_at, updated_at, last_updated)
        VALUES (:id, :user_id, :student_id, :name, :course, :cgpa, :backlogs, :status, :photo, :created_at, :updated_at, :last_updated)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student record.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, course = :course, cgpa = :cgpa, backlogs = :backlogs, status = :status, photo = :photo, updated_at = :updated_at, last_updated = :last_updated WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student record; child rows cascade at the schema level.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// Count returns the total number of student records.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// AddSemester appends a semester row. A single INSERT keeps concurrent
// appends from clobbering each other.
func (r *StudentRepository) AddSemester(ctx context.Context, record *models.SemesterRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO semester_records (id, student_ref, name, sgpa, subjects, position, created_at)
        VALUES (:id, :student_ref, :name, :sgpa, :subjects, :position, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("add semester: %w", err)
	}
	return nil
}

// ListSemesters returns a student's semesters in stored order.
func (r *StudentRepository) ListSemesters(ctx context.Context, studentID string) ([]models.SemesterRecord, error) {
	const query = `SELECT id, student_ref, name, sgpa, subjects, position, created_at
        FROM semester_records WHERE student_ref = $1 ORDER BY position ASC, created_at ASC`
	var records []models.SemesterRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return records, nil
}

// AddSkill appends a skill row for a student.
func (r *StudentRepository) AddSkill(ctx context.Context, studentID string, skill models.Skill) error {
	skill.ID = uuid.NewString()
	skill.StudentID = studentID
	skill.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO skills (id, student_ref, name, level, created_at)
        VALUES (:id, :student_ref, :name, :level, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, skill); err != nil {
		return fmt.Errorf("add skill: %w", err)
	}
	return nil
}

// ListSkills returns a student's skills in insertion order.
func (r *StudentRepository) ListSkills(ctx context.Context, studentID string) ([]models.Skill, error) {
	const query = `SELECT id, student_ref, name, level, created_at
        FROM skills WHERE student_ref = $1 ORDER BY created_at ASC`
	var skills []models.Skill
	if err := r.db.SelectContext(ctx, &skills, query, studentID); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

// UpsertFeedback replaces the single feedback note kept per student.
func (r *StudentRepository) UpsertFeedback(ctx context.Context, studentID, text string, updatedAt time.Time) error {
	const query = `INSERT INTO feedback (student_ref, text, updated_at) VALUES ($1, $2, $3)
        ON CONFLICT (student_ref) DO UPDATE SET text = EXCLUDED.text, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, studentID, text, updatedAt); err != nil {
		return fmt.Errorf("upsert feedback: %w", err)
	}
	return nil
}

// GetFeedback returns the feedback note for a student, sql.ErrNoRows when none.
func (r *StudentRepository) GetFeedback(ctx context.Context, studentID string) (*models.Feedback, error) {
	const query = `SELECT student_ref, text, updated_at FROM feedback WHERE student_ref = $1`
	var feedback models.Feedback
	if err := r.db.GetContext(ctx, &feedback, query, studentID); err != nil {
		return nil, err
	}
	return &feedback, nil
}
