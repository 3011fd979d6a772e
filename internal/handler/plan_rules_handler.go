package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cronograma-api/internal/dto"
	"github.com/noah-isme/cronograma-api/internal/models"
	appErrors "github.com/noah-isme/cronograma-api/pkg/errors"
	"github.com/noah-isme/cronograma-api/pkg/response"
)

type planRules interface {
	CheckElectivesCount(ctx context.Context, studentID string) (*models.ElectivesCount, error)
	ComputeOrientationCounts(ctx context.Context, studentID string, year int) (*models.OrientationCounts, error)
	CheckOrientationRule(ctx context.Context, studentID string) (*models.OrientationRule, error)
	CheckStudentPlanCoherence(ctx context.Context, studentID string) (*models.PlanCoherence, error)
	GetStudentRiskReport(ctx context.Context, studentID string) (*models.RiskReport, error)
	ReconcileStudent(ctx context.Context, studentID string) (*models.PlanReconciliation, error)
	ListAtRisk(ctx context.Context) ([]models.AtRiskStudent, error)
}

// PlanRulesHandler exposes the plan compliance evaluators.
type PlanRulesHandler struct {
	service planRules
	now     func() time.Time
}

// NewPlanRulesHandler constructs the handler.
func NewPlanRulesHandler(svc planRules) *PlanRulesHandler {
	return &PlanRulesHandler{service: svc, now: time.Now}
}

// Electives godoc
// @Summary Count completed and planned electives
// @Tags Rules
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/electives [get]
func (h *PlanRulesHandler) Electives(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	respond(c, func() (interface{}, error) {
		return h.service.CheckElectivesCount(c.Request.Context(), studentID)
	})
}

// Orientations godoc
// @Summary Count completed electives per orientation for a year
// @Tags Rules
// @Produce json
// @Param id path string true "Student ID"
// @Param year query int false "Plan year, defaults to the current year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/orientations [get]
func (h *PlanRulesHandler) Orientations(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	var query dto.OrientationCountsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid year"))
		return
	}
	year := h.now().Year()
	if query.Year != nil {
		year = *query.Year
	}
	respond(c, func() (interface{}, error) {
		return h.service.ComputeOrientationCounts(c.Request.Context(), studentID, year)
	})
}

// OrientationRule godoc
// @Summary Check the orientation threshold rule
// @Tags Rules
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/orientation-rule [get]
func (h *PlanRulesHandler) OrientationRule(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	respond(c, func() (interface{}, error) {
		return h.service.CheckOrientationRule(c.Request.Context(), studentID)
	})
}

// Coherence godoc
// @Summary List structural problems of the open plan
// @Tags Rules
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/plan-coherence [get]
func (h *PlanRulesHandler) Coherence(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	respond(c, func() (interface{}, error) {
		return h.service.CheckStudentPlanCoherence(c.Request.Context(), studentID)
	})
}

// RiskReport godoc
// @Summary Summarise completion risk for a student
// @Tags Rules
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/risk-report [get]
func (h *PlanRulesHandler) RiskReport(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	respond(c, func() (interface{}, error) {
		return h.service.GetStudentRiskReport(c.Request.Context(), studentID)
	})
}

// Reconciliation godoc
// @Summary Compare the open plan with enrollments
// @Tags Rules
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/reconciliation [get]
func (h *PlanRulesHandler) Reconciliation(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	respond(c, func() (interface{}, error) {
		return h.service.ReconcileStudent(c.Request.Context(), studentID)
	})
}

// AtRisk godoc
// @Summary List active students at risk of not completing the program
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/at-risk [get]
func (h *PlanRulesHandler) AtRisk(c *gin.Context) {
	students, err := h.service.ListAtRisk(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"total": len(students)})
}

func studentParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student id is required"))
		return "", false
	}
	return id, true
}

func respond(c *gin.Context, fn func() (interface{}, error)) {
	result, err := fn()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
