package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/cronograma-api/internal/models"
)

const courseSourceColumns = `id, course_id, sheet_tag, module, professor_1, professor_2, professor_3,
    start_date, end_date, day, schedule, format, orientation, comments, state, created_at, updated_at`

// CourseSourceRepository persists the scheduled offerings of courses.
type CourseSourceRepository struct {
	db *sqlx.DB
}

// NewCourseSourceRepository constructs a CourseSourceRepository.
func NewCourseSourceRepository(db *sqlx.DB) *CourseSourceRepository {
	return &CourseSourceRepository{db: db}
}

func (r *CourseSourceRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByKey fetches the source identified by (course, sheet tag, module). A missing
// source yields an error matching sql.ErrNoRows.
func (r *CourseSourceRepository) FindByKey(ctx context.Context, exec sqlx.ExtContext, courseID, sheetTag, module string) (*models.CourseSource, error) {
	query := `SELECT ` + courseSourceColumns + ` FROM course_sources WHERE course_id = $1 AND sheet_tag = $2 AND module = $3`
	var source models.CourseSource
	if err := sqlx.GetContext(ctx, r.exec(exec), &source, query, courseID, sheetTag, module); err != nil {
		return nil, fmt.Errorf("find course source: %w", err)
	}
	return &source, nil
}

// Create inserts a new source, assigning its id and timestamps.
func (r *CourseSourceRepository) Create(ctx context.Context, exec sqlx.ExtContext, source *models.CourseSource) error {
	if source == nil {
		return fmt.Errorf("course source payload is nil")
	}
	if source.CourseID == "" {
		return fmt.Errorf("course_id is required")
	}
	if source.ID == "" {
		source.ID = uuid.NewString()
	}
	if source.State == "" {
		source.State = models.CatalogStateActive
	}
	now := time.Now().UTC()
	source.CreatedAt = now
	source.UpdatedAt = now

	const query = `
INSERT INTO course_sources (id, course_id, sheet_tag, module, professor_1, professor_2, professor_3,
    start_date, end_date, day, schedule, format, orientation, comments, state, created_at, updated_at)
VALUES (:id, :course_id, :sheet_tag, :module, :professor_1, :professor_2, :professor_3,
    :start_date, :end_date, :day, :schedule, :format, :orientation, :comments, :state, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, source); err != nil {
		return fmt.Errorf("insert course source: %w", err)
	}
	return nil
}

// Update writes the descriptive fields of a source and touches updated_at.
func (r *CourseSourceRepository) Update(ctx context.Context, exec sqlx.ExtContext, source *models.CourseSource) error {
	if source == nil || source.ID == "" {
		return fmt.Errorf("course source id is required")
	}
	source.UpdatedAt = time.Now().UTC()

	const query = `
UPDATE course_sources SET professor_1 = :professor_1, professor_2 = :professor_2, professor_3 = :professor_3,
    start_date = :start_date, end_date = :end_date, day = :day, schedule = :schedule, format = :format,
    orientation = :orientation, comments = :comments, updated_at = :updated_at
WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, source); err != nil {
		return fmt.Errorf("update course source: %w", err)
	}
	return nil
}

// ListOrientations returns one row per source of the given courses with its orientation tag.
func (r *CourseSourceRepository) ListOrientations(ctx context.Context, courseIDs []string) ([]models.CourseOrientation, error) {
	if len(courseIDs) == 0 {
		return []models.CourseOrientation{}, nil
	}
	const query = `SELECT course_id, orientation FROM course_sources WHERE course_id = ANY($1) ORDER BY course_id`
	var rows []models.CourseOrientation
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(courseIDs)); err != nil {
		return nil, fmt.Errorf("list course orientations: %w", err)
	}
	return rows, nil
}
