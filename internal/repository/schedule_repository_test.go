package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
)

func TestScheduleRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_ref", "day", "time_slot", "subject", "created_at", "updated_at"}).
		AddRow("sl1", "s1", "Mon", "9-10 AM", "Maths", now, now).
		AddRow("sl2", "s1", "Mon", "10-11 AM", "DBMS", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_slots WHERE student_ref = $1")).
		WithArgs("s1").
		WillReturnRows(rows)

	slots, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "Maths", slots[0].Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceDay(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_slots WHERE student_ref = $1 AND day = $2")).
		WithArgs("s1", "Mon").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("INSERT INTO schedule_slots").
		WithArgs(sqlmock.AnyArg(), "s1", "Mon", "9-10 AM", "Maths", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_slots").
		WithArgs(sqlmock.AnyArg(), "s1", "Mon", "11-1 PM", "OS", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	slots := []models.ScheduleSlot{
		{TimeSlot: "9-10 AM", Subject: "Maths"},
		{TimeSlot: "11-1 PM", Subject: "OS"},
	}
	err := repo.ReplaceDay(context.Background(), "s1", "Mon", slots)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceDayRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_slots WHERE student_ref = $1 AND day = $2")).
		WithArgs("s1", "Tue").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceDay(context.Background(), "s1", "Tue", nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteDay(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_slots WHERE student_ref = $1 AND day = $2")).
		WithArgs("s1", "Fri").
		WillReturnResult(sqlmock.NewResult(0, 4))

	err := repo.DeleteDay(context.Background(), "s1", "Fri")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
