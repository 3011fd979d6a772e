package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cronograma-api/internal/models"
)

// EnrollmentRepository reads a student's registration history.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByStudent returns every enrollment of the student, oldest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.status, e.term, e.year, e.letter_grade, e.numeric_grade,
    c.name AS course_name
FROM enrollments e
LEFT JOIN courses c ON c.id = e.course_id
WHERE e.student_id = $1
ORDER BY e.year NULLS LAST, e.term NULLS LAST, e.id`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}
