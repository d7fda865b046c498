package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/models"
)

// ScheduleRepository manages the sparse schedule slot table.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListByStudent returns every stored slot for a student.
func (r *ScheduleRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ScheduleSlot, error) {
	const query = `SELECT id, student_ref, day, time_slot, subject, created_at, updated_at
        FROM schedule_slots WHERE student_ref = $1 ORDER BY day ASC, time_slot ASC`
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, studentID); err != nil {
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	return slots, nil
}

// ReplaceDay swaps one day's slots for a student inside a transaction, so
// readers never observe a half-written day.
func (r *ScheduleRepository) ReplaceDay(ctx context.Context, studentID, day string, slots []models.ScheduleSlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace day: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM schedule_slots WHERE student_ref = $1 AND day = $2", studentID, day); err != nil {
		return fmt.Errorf("clear day slots: %w", err)
	}

	now := time.Now().UTC()
	const insert = `INSERT INTO schedule_slots (id, student_ref, day, time_slot, subject, created_at, updated_at)
        VALUES (:id, :student_ref, :day, :time_slot, :subject, :created_at, :updated_at)`
	for i := range slots {
		slot := slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		slot.StudentID = studentID
		slot.Day = day
		slot.CreatedAt = now
		slot.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insert, slot); err != nil {
			return fmt.Errorf("insert slot %s/%s: %w", day, slot.TimeSlot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace day: %w", err)
	}
	return nil
}

// DeleteDay removes every slot for one (student, day) pair.
func (r *ScheduleRepository) DeleteDay(ctx context.Context, studentID, day string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM schedule_slots WHERE student_ref = $1 AND day = $2", studentID, day); err != nil {
		return fmt.Errorf("delete day slots: %w", err)
	}
	return nil
}
