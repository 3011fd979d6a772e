package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/cronograma-api/internal/models"
	"github.com/noah-isme/cronograma-api/pkg/config"
	appErrors "github.com/noah-isme/cronograma-api/pkg/errors"
)

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListActive(ctx context.Context) ([]models.Student, error)
}

type planReader interface {
	FindOpenVersion(ctx context.Context, studentID string) (*models.PlanVersion, error)
	ListItems(ctx context.Context, planVersionID string) ([]models.PlanItemDetail, error)
}

type enrollmentReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
}

type orientationReader interface {
	ListOrientations(ctx context.Context, courseIDs []string) ([]models.CourseOrientation, error)
}

// PlanRulesConfig holds the program completion rules.
type PlanRulesConfig struct {
	ElectiveTypes        []string
	RequiredTypes        []string
	ElectiveTarget       int
	OrientationThreshold int
	OrientationScope     string
	CacheTTL             time.Duration
	Now                  func() time.Time
}

// PlanRulesService evaluates students' open plans against the program rules. It never
// mutates storage.
type PlanRulesService struct {
	students     studentReader
	plans        planReader
	enrollments  enrollmentReader
	orientations orientationReader
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger
	cfg          PlanRulesConfig
	electives    typeSet
}

// NewPlanRulesService wires rule engine dependencies.
func NewPlanRulesService(
	students studentReader,
	plans planReader,
	enrollments enrollmentReader,
	orientations orientationReader,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg PlanRulesConfig,
) *PlanRulesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.ElectiveTypes) == 0 {
		cfg.ElectiveTypes = []string{"Electiva", "Elective"}
	}
	if cfg.RequiredTypes == nil {
		cfg.RequiredTypes = []string{"Plan de negocio", "Examen Inglés"}
	}
	if cfg.ElectiveTarget <= 0 {
		cfg.ElectiveTarget = 8
	}
	if cfg.OrientationThreshold <= 0 {
		cfg.OrientationThreshold = 5
	}
	if cfg.OrientationScope == "" {
		cfg.OrientationScope = config.OrientationScopeAll
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &PlanRulesService{
		students:     students,
		plans:        plans,
		enrollments:  enrollments,
		orientations: orientations,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		cfg:          cfg,
		electives:    newTypeSet(cfg.ElectiveTypes),
	}
}

// CheckElectivesCount counts completed and planned-or-completed electives.
func (s *PlanRulesService) CheckElectivesCount(ctx context.Context, studentID string) (*models.ElectivesCount, error) {
	return evaluate(ctx, s, "electives", studentID, nil, func(e *planEvaluator, p *planSnapshot) models.ElectivesCount {
		return e.electivesCount(p)
	})
}

// ComputeOrientationCounts counts completed electives of the given year per orientation.
func (s *PlanRulesService) ComputeOrientationCounts(ctx context.Context, studentID string, year int) (*models.OrientationCounts, error) {
	return evaluate(ctx, s, "orientations", studentID, []string{strconv.Itoa(year)}, func(e *planEvaluator, p *planSnapshot) models.OrientationCounts {
		return e.orientationCounts(p, &year)
	})
}

// CheckOrientationRule reports whether one orientation reaches the threshold.
func (s *PlanRulesService) CheckOrientationRule(ctx context.Context, studentID string) (*models.OrientationRule, error) {
	return evaluate(ctx, s, "orientation_rule", studentID, s.scopeKey(), func(e *planEvaluator, p *planSnapshot) models.OrientationRule {
		return e.orientationRule(p)
	})
}

// CheckStudentPlanCoherence lists structural problems of the open plan.
func (s *PlanRulesService) CheckStudentPlanCoherence(ctx context.Context, studentID string) (*models.PlanCoherence, error) {
	return evaluate(ctx, s, "coherence", studentID, nil, func(e *planEvaluator, p *planSnapshot) models.PlanCoherence {
		return e.coherence(p)
	})
}

// GetStudentRiskReport reports whether the student risks not completing the program.
func (s *PlanRulesService) GetStudentRiskReport(ctx context.Context, studentID string) (*models.RiskReport, error) {
	return evaluate(ctx, s, "risk_report", studentID, s.scopeKey(), func(e *planEvaluator, p *planSnapshot) models.RiskReport {
		return e.riskReport(p)
	})
}

// ReconcileStudent compares the open plan with the student's enrollments.
func (s *PlanRulesService) ReconcileStudent(ctx context.Context, studentID string) (*models.PlanReconciliation, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRule("reconciliation", time.Since(start)) }()

	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}
	items, err := s.openPlanItems(ctx, studentID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	result := ReconcilePlanEnrollments(items, enrollments)
	return &result, nil
}

// ListAtRisk evaluates every active student and returns those at risk.
func (s *PlanRulesService) ListAtRisk(ctx context.Context) ([]models.AtRiskStudent, error) {
	students, err := s.students.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	flagged := make([]models.AtRiskStudent, 0)
	for _, student := range students {
		if err := ctx.Err(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "risk listing interrupted")
		}
		report, err := s.GetStudentRiskReport(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		if report.AtRisk {
			flagged = append(flagged, models.AtRiskStudent{StudentID: student.ID, FullName: student.FullName, Report: *report})
		}
	}

	s.metrics.SetStudentsAtRisk(len(flagged))
	s.logger.Info("at-risk listing evaluated", zap.Int("students", len(students)), zap.Int("at_risk", len(flagged)))
	return flagged, nil
}

// evaluate loads the student's plan snapshot and applies fn, going through the verdict cache.
func evaluate[T any](ctx context.Context, s *PlanRulesService, rule, studentID string, extra []string, fn func(*planEvaluator, *planSnapshot) T) (*T, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRule(rule, time.Since(start)) }()

	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}

	result, err := cachedRule(ctx, s.cache, ruleCacheKey(rule, studentID, extra...), func() (T, error) {
		var zero T
		snap, err := s.snapshot(ctx, studentID)
		if err != nil {
			return zero, err
		}
		return fn(s.evaluator(), snap), nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *PlanRulesService) evaluator() *planEvaluator {
	return &planEvaluator{
		electives: s.electives,
		required:  s.cfg.RequiredTypes,
		target:    s.cfg.ElectiveTarget,
		threshold: s.cfg.OrientationThreshold,
		scope:     s.cfg.OrientationScope,
		now:       s.cfg.Now(),
	}
}

// scopeKey keeps cached verdicts of the current-year scope from outliving the year.
func (s *PlanRulesService) scopeKey() []string {
	if s.cfg.OrientationScope == config.OrientationScopeCurrent {
		return []string{s.cfg.OrientationScope, strconv.Itoa(s.cfg.Now().Year())}
	}
	return []string{s.cfg.OrientationScope}
}

func (s *PlanRulesService) ensureStudent(ctx context.Context, studentID string) error {
	if studentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	// students.id is a uuid column; a malformed id can never match a row.
	if _, err := uuid.Parse(studentID); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return nil
}

// openPlanItems returns the items of the student's open plan; no open plan yields none.
func (s *PlanRulesService) openPlanItems(ctx context.Context, studentID string) ([]models.PlanItemDetail, error) {
	version, err := s.plans.FindOpenVersion(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if version == nil {
		return []models.PlanItemDetail{}, nil
	}
	items, err := s.plans.ListItems(ctx, version.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan items")
	}
	return items, nil
}

func (s *PlanRulesService) snapshot(ctx context.Context, studentID string) (*planSnapshot, error) {
	items, err := s.openPlanItems(ctx, studentID)
	if err != nil {
		return nil, err
	}
	snap := newPlanSnapshot(items, nil)
	ids := snap.courseIDs()
	if len(ids) == 0 {
		return snap, nil
	}
	rows, err := s.orientations.ListOrientations(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course orientations")
	}
	return newPlanSnapshot(items, rows), nil
}
