package models

import "time"

// CatalogState is the lifecycle state shared by courses and their sources.
type CatalogState string

// Catalog lifecycle states.
const (
	CatalogStateActive   CatalogState = "activo"
	CatalogStateInactive CatalogState = "inactivo"
)

// Course is a catalog entry for one subject, keyed by the schedule's MateriaID.
type Course struct {
	ID          string       `db:"id" json:"id"`
	MateriaID   string       `db:"materia_id" json:"materia_id"`
	MateriaKey  string       `db:"materia_key" json:"materia_key"`
	Name        string       `db:"name" json:"name"`
	Program     string       `db:"program" json:"program"`
	Year        int          `db:"year" json:"year"`
	SubjectType string       `db:"subject_type" json:"subject_type"`
	Hours       int          `db:"hours" json:"hours"`
	State       CatalogState `db:"state" json:"state"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseSource is one scheduled offering of a course, unique per (course, sheet tag, module).
type CourseSource struct {
	ID          string       `db:"id" json:"id"`
	CourseID    string       `db:"course_id" json:"course_id"`
	SheetTag    string       `db:"sheet_tag" json:"sheet_tag"`
	Module      string       `db:"module" json:"module"`
	Professor1  *string      `db:"professor_1" json:"professor_1,omitempty"`
	Professor2  *string      `db:"professor_2" json:"professor_2,omitempty"`
	Professor3  *string      `db:"professor_3" json:"professor_3,omitempty"`
	StartDate   *time.Time   `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time   `db:"end_date" json:"end_date,omitempty"`
	Day         *string      `db:"day" json:"day,omitempty"`
	Schedule    *string      `db:"schedule" json:"schedule,omitempty"`
	Format      *string      `db:"format" json:"format,omitempty"`
	Orientation *string      `db:"orientation" json:"orientation,omitempty"`
	Comments    *string      `db:"comments" json:"comments,omitempty"`
	State       CatalogState `db:"state" json:"state"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseOrientation is the orientation tag of one source of a course; Orientation is nil
// for sources without a tag, which still prove the course has at least one source.
type CourseOrientation struct {
	CourseID    string  `db:"course_id"`
	Orientation *string `db:"orientation"`
}
