package models

// ElectivesCount tallies a student's elective items in the open plan.
type ElectivesCount struct {
	Completed          int `json:"electivas_completadas"`
	PlannedOrCompleted int `json:"electivas_planeadas_o_completadas"`
}

// OrientationCounts maps an orientation tag to the number of completed electives carrying it.
type OrientationCounts struct {
	Orientations map[string]int `json:"orientaciones"`
}

// OrientationRule is the verdict of the concentration rule.
type OrientationRule struct {
	Satisfied            bool    `json:"cumple_regla"`
	MaxElectives         int     `json:"max_electivas"`
	PrincipalOrientation *string `json:"orientacion_principal"`
}

// PlanCoherence lists structural problems found in the open plan.
type PlanCoherence struct {
	Valid  bool     `json:"es_valido"`
	Errors []string `json:"errores"`
}

// RiskReport summarises the risk of not completing the program.
type RiskReport struct {
	AtRisk  bool     `json:"en_riesgo"`
	Summary string   `json:"resumen"`
	Factors []string `json:"factores_riesgo"`
}

// PlanReconciliation compares the plan with the actual enrollment history.
type PlanReconciliation struct {
	OutsidePlan     []Enrollment     `json:"fuera_del_plan"`
	NotEnrolled     []PlanItemDetail `json:"sin_inscripcion"`
	RepeatedCourses []RepeatedCourse `json:"materias_repetidas"`
}

// RepeatedCourse is a course completed more than once.
type RepeatedCourse struct {
	CourseID   string  `json:"course_id"`
	CourseName *string `json:"course_name,omitempty"`
	Times      int     `json:"veces"`
}

// AtRiskStudent is one entry of the cohort risk listing.
type AtRiskStudent struct {
	StudentID string     `json:"student_id"`
	FullName  string     `json:"full_name"`
	Report    RiskReport `json:"reporte"`
}
