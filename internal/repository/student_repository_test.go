package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cronograma-api/internal/models"
)

var studentColumns = []string{"id", "document", "full_name", "email", "state", "created_at"}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows(studentColumns).AddRow("stu-1", "12345", "Laura Gómez", nil, "activo", time.Now()))

	student, err := repo.FindByID(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "Laura Gómez", student.FullName)
	assert.Nil(t, student.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDMissing(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ghost")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestStudentRepositoryListActive(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE state = $1 ORDER BY full_name, id")).
		WithArgs(models.StudentStateActive).
		WillReturnRows(sqlmock.NewRows(studentColumns).
			AddRow("stu-1", "1", "Ana", nil, "activo", time.Now()).
			AddRow("stu-2", "2", "Bruno", "bruno@example.com", "activo", time.Now()))

	students, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, strPtr("bruno@example.com"), students[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
