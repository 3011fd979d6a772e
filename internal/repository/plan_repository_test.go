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

func TestPlanRepositoryFindOpenVersion(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPlanRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM plan_versions WHERE student_id = $1 AND valid_until IS NULL")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "name", "valid_from", "valid_until", "state", "created_at"}).
			AddRow("plan-2", "stu-1", "Plan 2025", now, nil, "abierta", now))

	version, err := repo.FindOpenVersion(context.Background(), "stu-1")
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, "plan-2", version.ID)
	assert.Nil(t, version.ValidUntil)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryFindOpenVersionNone(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM plan_versions")).WillReturnError(sql.ErrNoRows)

	version, err := repo.FindOpenVersion(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Nil(t, version)
}

func TestPlanRepositoryFindOpenVersionError(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM plan_versions")).WillReturnError(errors.New("boom"))

	_, err := repo.FindOpenVersion(context.Background(), "stu-1")
	assert.Error(t, err)
}

func TestPlanRepositoryListItems(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPlanRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "plan_version_id", "year", "state", "priority", "is_backup", "grade",
		"course_name", "course_materia_id", "course_subject_type"}).
		AddRow("item-1", "stu-1", "course-1", "plan-1", 2024, "COMPLETED", 1, false, "6.50", "Finanzas", "FIN-101", "Electiva").
		AddRow("item-2", "stu-1", "ghost", "plan-1", 2025, "PLANNED", 2, false, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN courses c ON c.id = i.course_id WHERE i.plan_version_id = $1")).
		WithArgs("plan-1").
		WillReturnRows(rows)

	items, err := repo.ListItems(context.Background(), "plan-1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, models.PlanItemCompleted, items[0].State)
	require.NotNil(t, items[0].Grade)
	assert.InDelta(t, 6.5, *items[0].Grade, 0.001)
	assert.True(t, items[0].HasCourse())

	assert.False(t, items[1].HasCourse())
	assert.Equal(t, "ID ghost", items[1].DisplayName())
	assert.NoError(t, mock.ExpectationsWereMet())
}
