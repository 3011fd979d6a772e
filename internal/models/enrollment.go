package models

// EnrollmentStatus is the lifecycle of an actual registration.
type EnrollmentStatus string

// Enrollment statuses.
const (
	EnrollmentPlanned    EnrollmentStatus = "planned"
	EnrollmentInProgress EnrollmentStatus = "in_progress"
	EnrollmentCompleted  EnrollmentStatus = "completed"
	EnrollmentDropped    EnrollmentStatus = "dropped"
)

// Enrollment records a registration independent of the plan; it relates to plan items
// only through CourseID.
type Enrollment struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	CourseID     string           `db:"course_id" json:"course_id"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	Term         *int             `db:"term" json:"term,omitempty"`
	Year         *int             `db:"year" json:"year,omitempty"`
	LetterGrade  *string          `db:"letter_grade" json:"letter_grade,omitempty"`
	NumericGrade *float64         `db:"numeric_grade" json:"numeric_grade,omitempty"`
	CourseName   *string          `db:"course_name" json:"course_name,omitempty"`
}
