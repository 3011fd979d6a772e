package models

import "time"

// Student is the subject of plan evaluation.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Document  string    `db:"document" json:"document"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	State     string    `db:"state" json:"state"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StudentStateActive marks students included in cohort reports.
const StudentStateActive = "activo"

// PlanVersion is a dated snapshot of a student's intended sequence. ValidUntil nil means open.
type PlanVersion struct {
	ID         string     `db:"id" json:"id"`
	StudentID  string     `db:"student_id" json:"student_id"`
	Name       string     `db:"name" json:"name"`
	ValidFrom  time.Time  `db:"valid_from" json:"valid_from"`
	ValidUntil *time.Time `db:"valid_until" json:"valid_until,omitempty"`
	State      string     `db:"state" json:"state"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// PlanItemState is the student-driven state of a plan item.
type PlanItemState string

// Plan item states.
const (
	PlanItemPlanned   PlanItemState = "PLANNED"
	PlanItemCompleted PlanItemState = "COMPLETED"
	PlanItemCancelled PlanItemState = "CANCELLED"
)

// Active reports whether the item still counts toward the plan.
func (s PlanItemState) Active() bool {
	return s == PlanItemPlanned || s == PlanItemCompleted
}

// StudentPlanItem associates a student with a course inside one plan version.
type StudentPlanItem struct {
	ID            string        `db:"id" json:"id"`
	StudentID     string        `db:"student_id" json:"student_id"`
	CourseID      string        `db:"course_id" json:"course_id"`
	PlanVersionID string        `db:"plan_version_id" json:"plan_version_id"`
	Year          int           `db:"year" json:"year"`
	State         PlanItemState `db:"state" json:"state"`
	Priority      int           `db:"priority" json:"priority"`
	IsBackup      bool          `db:"is_backup" json:"is_backup"`
	Grade         *float64      `db:"grade" json:"grade,omitempty"`
}

// PlanItemDetail is a plan item joined with its course. Course fields are nil when the
// item references a course that does not exist.
type PlanItemDetail struct {
	StudentPlanItem
	CourseName        *string `db:"course_name" json:"course_name,omitempty"`
	CourseMateriaID   *string `db:"course_materia_id" json:"course_materia_id,omitempty"`
	CourseSubjectType *string `db:"course_subject_type" json:"course_subject_type,omitempty"`
}

// HasCourse reports whether the referenced course resolved.
func (d PlanItemDetail) HasCourse() bool {
	return d.CourseName != nil
}

// DisplayName returns the course name or a placeholder built from the course id.
func (d PlanItemDetail) DisplayName() string {
	if d.CourseName != nil {
		return *d.CourseName
	}
	return "ID " + d.CourseID
}
