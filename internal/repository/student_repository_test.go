package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentColumns() []string {
	return []string{"id", "user_id", "student_id", "name", "course", "cgpa", "backlogs", "status", "photo", "created_at", "updated_at", "last_updated"}
}

func TestStudentRepositoryFindByIDOrStudentID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentColumns()).
		AddRow("s1", nil, "CS101", "Asha Verma", "B.Tech CSE", 8.4, 1, "Active", "", now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 OR student_id = $1")).
		WithArgs("CS101").
		WillReturnRows(rows)

	student, err := repo.FindByIDOrStudentID(context.Background(), "CS101")
	require.NoError(t, err)
	assert.Equal(t, "s1", student.ID)
	assert.Equal(t, "CS101", student.StudentID)
	require.NotNil(t, student.CGPA)
	assert.Equal(t, 8.4, *student.CGPA)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 OR student_id = $1")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByIDOrStudentID(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListWithFilter(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentColumns()).
		AddRow("s1", nil, "CS101", "Asha Verma", "B.Tech CSE", 8.4, 0, "Active", "", now, now, now)
	mock.ExpectQuery("SELECT s.id, .* FROM students s WHERE 1=1 AND \\(LOWER\\(s.name\\) LIKE \\$1 OR LOWER\\(s.student_id\\) LIKE \\$1\\) AND s.status = \\$2").
		WithArgs("%asha%", "Active").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM students s WHERE 1=1").
		WithArgs("%asha%", "Active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "Asha", Status: "Active"}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryAddSemester(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO semester_records").
		WithArgs(sqlmock.AnyArg(), "s1", "Semester 3", 8.2, "Maths:A, DBMS:B+", 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.SemesterRecord{StudentID: "s1", Name: "Semester 3", SGPA: 8.2, Subjects: "Maths:A, DBMS:B+", Position: 2}
	err := repo.AddSemester(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID, "ID is generated on insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpsertFeedback(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO feedback .*ON CONFLICT \\(student_ref\\) DO UPDATE").
		WithArgs("s1", "Strong progress", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpsertFeedback(context.Background(), "s1", "Strong progress", now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListSemestersOrder(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_ref", "name", "sgpa", "subjects", "position", "created_at"}).
		AddRow("sem1", "s1", "Semester 1", 8.1, "Maths:A", 0, now).
		AddRow("sem2", "s1", "Semester 2", 8.7, "DBMS:O", 1, now)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY position ASC, created_at ASC")).
		WithArgs("s1").
		WillReturnRows(rows)

	semesters, err := repo.ListSemesters(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, semesters, 2)
	assert.Equal(t, "Semester 1", semesters[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
