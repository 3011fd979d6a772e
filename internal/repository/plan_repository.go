package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cronograma-api/internal/models"
)

// PlanRepository reads student plan versions and their items.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository constructs a PlanRepository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// FindOpenVersion returns the newest open plan version of the student, or nil when
// the student has none.
func (r *PlanRepository) FindOpenVersion(ctx context.Context, studentID string) (*models.PlanVersion, error) {
	const query = `SELECT id, student_id, name, valid_from, valid_until, state, created_at
FROM plan_versions WHERE student_id = $1 AND valid_until IS NULL
ORDER BY valid_from DESC, created_at DESC LIMIT 1`
	var version models.PlanVersion
	if err := r.db.GetContext(ctx, &version, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open plan version: %w", err)
	}
	return &version, nil
}

// ListItems returns the items of a plan version joined with their courses. Items whose
// course does not exist are kept with empty course fields.
func (r *PlanRepository) ListItems(ctx context.Context, planVersionID string) ([]models.PlanItemDetail, error) {
	const query = `SELECT i.id, i.student_id, i.course_id, i.plan_version_id, i.year, i.state, i.priority, i.is_backup, i.grade,
    c.name AS course_name, c.materia_id AS course_materia_id, c.subject_type AS course_subject_type
FROM student_plan_items i
LEFT JOIN courses c ON c.id = i.course_id
WHERE i.plan_version_id = $1
ORDER BY i.year, i.priority, i.created_at`
	var items []models.PlanItemDetail
	if err := r.db.SelectContext(ctx, &items, query, planVersionID); err != nil {
		return nil, fmt.Errorf("list plan items: %w", err)
	}
	return items, nil
}
