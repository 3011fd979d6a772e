package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cronograma-api/internal/models"
)

const courseColumns = `id, materia_id, materia_key, name, program, year, subject_type, hours, state, created_at, updated_at`

// CourseRepository persists catalog courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByMateriaID fetches the course with the given external key. A missing course
// yields an error matching sql.ErrNoRows.
func (r *CourseRepository) FindByMateriaID(ctx context.Context, exec sqlx.ExtContext, materiaID string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE materia_id = $1`
	var course models.Course
	if err := sqlx.GetContext(ctx, r.exec(exec), &course, query, materiaID); err != nil {
		return nil, fmt.Errorf("find course %s: %w", materiaID, err)
	}
	return &course, nil
}

// Create inserts a new course, assigning its id and timestamps.
func (r *CourseRepository) Create(ctx context.Context, exec sqlx.ExtContext, course *models.Course) error {
	if course == nil {
		return fmt.Errorf("course payload is nil")
	}
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.State == "" {
		course.State = models.CatalogStateActive
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `
INSERT INTO courses (id, materia_id, materia_key, name, program, year, subject_type, hours, state, created_at, updated_at)
VALUES (:id, :materia_id, :materia_key, :name, :program, :year, :subject_type, :hours, :state, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, course); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

// Update writes the mutable catalog fields and touches updated_at.
func (r *CourseRepository) Update(ctx context.Context, exec sqlx.ExtContext, course *models.Course) error {
	if course == nil || course.ID == "" {
		return fmt.Errorf("course id is required")
	}
	course.UpdatedAt = time.Now().UTC()

	const query = `
UPDATE courses SET materia_key = :materia_key, name = :name, program = :program, year = :year,
    subject_type = :subject_type, hours = :hours, updated_at = :updated_at
WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}
