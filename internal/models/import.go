package models

// ImportSummary reports the outcome of one schedule ingestion run.
type ImportSummary struct {
	CoursesCreated int      `json:"cursos_creados"`
	CoursesUpdated int      `json:"cursos_actualizados"`
	SourcesCreated int      `json:"sources_creados"`
	SourcesUpdated int      `json:"sources_actualizados"`
	ErrorCount     int      `json:"errores_count"`
	TotalRows      int      `json:"total_filas"`
	Errors         []string `json:"errores"`
}

// NewImportSummary returns a zeroed summary with an empty error list.
func NewImportSummary() *ImportSummary {
	return &ImportSummary{Errors: []string{}}
}

// AddError records a row-scoped failure.
func (s *ImportSummary) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
	s.ErrorCount = len(s.Errors)
}

// Changed reports whether the run created or updated anything.
func (s *ImportSummary) Changed() bool {
	return s.CoursesCreated+s.CoursesUpdated+s.SourcesCreated+s.SourcesUpdated > 0
}

// ErrorPreview returns at most limit errors and how many were left out.
func (s *ImportSummary) ErrorPreview(limit int) ([]string, int) {
	if limit <= 0 || len(s.Errors) <= limit {
		return s.Errors, 0
	}
	return s.Errors[:limit], len(s.Errors) - limit
}
