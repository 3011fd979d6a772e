package dto

// ImportScheduleRequest points the importer at a workbook inside the import directory.
type ImportScheduleRequest struct {
	Path string `json:"path" binding:"required"`
}

// ImportFilesResponse lists the workbooks available for import.
type ImportFilesResponse struct {
	BaseDir string   `json:"base_dir"`
	Files   []string `json:"files"`
}
