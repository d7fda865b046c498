package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryFindLinkedStudentID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow("s1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM students WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(rows)

	studentID, err := repo.FindLinkedStudentID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", studentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindLinkedStudentIDUnlinked(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM students WHERE user_id = $1")).
		WithArgs("u2").
		WillReturnError(sql.ErrNoRows)

	studentID, err := repo.FindLinkedStudentID(context.Background(), "u2")
	require.NoError(t, err)
	assert.Empty(t, studentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
