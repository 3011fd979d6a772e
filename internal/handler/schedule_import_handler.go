package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cronograma-api/internal/dto"
	"github.com/noah-isme/cronograma-api/internal/models"
	appErrors "github.com/noah-isme/cronograma-api/pkg/errors"
	"github.com/noah-isme/cronograma-api/pkg/response"
)

type scheduleImporter interface {
	ImportScheduleExcel(ctx context.Context, path string) (*models.ImportSummary, error)
}

type importFileLister interface {
	BaseDir() string
	List() ([]string, error)
}

// ScheduleImportHandler exposes master schedule ingestion.
type ScheduleImportHandler struct {
	service scheduleImporter
	files   importFileLister
}

// NewScheduleImportHandler constructs the handler.
func NewScheduleImportHandler(svc scheduleImporter, files importFileLister) *ScheduleImportHandler {
	return &ScheduleImportHandler{service: svc, files: files}
}

// Import godoc
// @Summary Import the consolidated schedule workbook
// @Description Reads the CronogramaConsolidado sheet and upserts courses and their sources. Row errors are reported in the summary.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ImportScheduleRequest true "Workbook path relative to the import directory"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schedule/imports [post]
func (h *ScheduleImportHandler) Import(c *gin.Context) {
	var req dto.ImportScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import payload"))
		return
	}

	summary, err := h.service.ImportScheduleExcel(c.Request.Context(), req.Path)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary)
}

// Files godoc
// @Summary List workbooks available for import
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/imports/files [get]
func (h *ScheduleImportHandler) Files(c *gin.Context) {
	files, err := h.files.List()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list import files"))
		return
	}
	response.JSON(c, http.StatusOK, dto.ImportFilesResponse{BaseDir: h.files.BaseDir(), Files: files})
}
