package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/cronograma-api/internal/models"
	"github.com/noah-isme/cronograma-api/pkg/config"
)

const noRiskSummary = "Sin riesgo detectado"

// planSnapshot is the read-only view of a student's open plan that every rule works on.
type planSnapshot struct {
	items []models.PlanItemDetail
	// courseOrientations holds, per course with at least one source, its distinct
	// orientation tags keyed by folded spelling.
	courseOrientations map[string]map[string]struct{}
	// labels maps a folded tag to the spelling reported back to callers.
	labels map[string]string
}

func newPlanSnapshot(items []models.PlanItemDetail, rows []models.CourseOrientation) *planSnapshot {
	snap := &planSnapshot{
		items:              items,
		courseOrientations: make(map[string]map[string]struct{}),
		labels:             make(map[string]string),
	}
	for _, row := range rows {
		tags, ok := snap.courseOrientations[row.CourseID]
		if !ok {
			tags = make(map[string]struct{})
			snap.courseOrientations[row.CourseID] = tags
		}
		if row.Orientation == nil {
			continue
		}
		key := foldKey(*row.Orientation)
		if key == "" {
			continue
		}
		tags[key] = struct{}{}
		snap.addLabel(key, strings.TrimSpace(*row.Orientation))
	}
	return snap
}

// addLabel keeps one spelling per folded tag: the title-case form when stored,
// otherwise the lexically smallest.
func (p *planSnapshot) addLabel(key, spelling string) {
	current, ok := p.labels[key]
	switch {
	case !ok:
		p.labels[key] = spelling
	case current == titleOrientation(key):
	case spelling == titleOrientation(key) || spelling < current:
		p.labels[key] = spelling
	}
}

func (p *planSnapshot) courseIDs() []string {
	seen := make(map[string]struct{}, len(p.items))
	ids := make([]string, 0, len(p.items))
	for _, item := range p.items {
		if _, ok := seen[item.CourseID]; ok {
			continue
		}
		seen[item.CourseID] = struct{}{}
		ids = append(ids, item.CourseID)
	}
	return ids
}

func (p *planSnapshot) hasOrientation(courseID, orientation string) bool {
	_, ok := p.courseOrientations[courseID][foldKey(orientation)]
	return ok
}

// activeCourse reports whether the course has a planned or completed item, as after a retake.
func (p *planSnapshot) activeCourse(courseID string) bool {
	for _, item := range p.items {
		if item.CourseID == courseID && item.State.Active() {
			return true
		}
	}
	return false
}

// planEvaluator applies the program completion rules to a plan snapshot.
type planEvaluator struct {
	electives typeSet
	required  []string
	target    int
	threshold int
	scope     string
	now       time.Time
}

func (e *planEvaluator) isElective(item models.PlanItemDetail) bool {
	return item.HasCourse() && e.electives.Contains(item.CourseSubjectType)
}

func (e *planEvaluator) electivesCount(p *planSnapshot) models.ElectivesCount {
	var out models.ElectivesCount
	for _, item := range p.items {
		if !e.isElective(item) {
			continue
		}
		if item.State == models.PlanItemCompleted {
			out.Completed++
		}
		if item.State.Active() {
			out.PlannedOrCompleted++
		}
	}
	return out
}

// orientationCounts counts completed electives per orientation. A nil year counts every year.
func (e *planEvaluator) orientationCounts(p *planSnapshot, year *int) models.OrientationCounts {
	counts := make(map[string]int)
	for _, item := range p.items {
		if item.State != models.PlanItemCompleted || !e.isElective(item) {
			continue
		}
		if year != nil && item.Year != *year {
			continue
		}
		tags, ok := p.courseOrientations[item.CourseID]
		if !ok {
			continue
		}
		for key := range tags {
			counts[p.labels[key]]++
		}
	}
	return models.OrientationCounts{Orientations: counts}
}

func (e *planEvaluator) scopeYear() *int {
	if e.scope == config.OrientationScopeCurrent {
		year := e.now.Year()
		return &year
	}
	return nil
}

func (e *planEvaluator) orientationRule(p *planSnapshot) models.OrientationRule {
	counts := e.orientationCounts(p, e.scopeYear()).Orientations

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var rule models.OrientationRule
	for _, tag := range tags {
		if counts[tag] > rule.MaxElectives {
			rule.MaxElectives = counts[tag]
			rule.PrincipalOrientation = stringPtr(tag)
		}
	}
	rule.Satisfied = rule.MaxElectives >= e.threshold
	return rule
}

func (e *planEvaluator) coherence(p *planSnapshot) models.PlanCoherence {
	errs := make([]string, 0)

	courseCounts := make(map[string]int)
	var courseOrder []string
	typeCounts := make(map[string]int)
	for _, item := range p.items {
		if !item.State.Active() {
			continue
		}
		if courseCounts[item.CourseID] == 0 {
			courseOrder = append(courseOrder, item.CourseID)
		}
		courseCounts[item.CourseID]++
		if item.CourseSubjectType != nil {
			typeCounts[foldKey(*item.CourseSubjectType)]++
		}
	}

	names := make(map[string]string, len(p.items))
	for _, item := range p.items {
		if _, ok := names[item.CourseID]; !ok {
			names[item.CourseID] = item.DisplayName()
		}
	}
	for _, id := range courseOrder {
		if n := courseCounts[id]; n > 1 {
			errs = append(errs, fmt.Sprintf("La materia '%s' aparece %d veces en el plan", names[id], n))
		}
	}

	for _, required := range e.required {
		if n := typeCounts[foldKey(required)]; n > 1 {
			errs = append(errs, fmt.Sprintf("El tipo '%s' debe aparecer una sola vez y aparece %d veces", required, n))
		}
	}

	for _, item := range p.items {
		if !item.HasCourse() {
			errs = append(errs, fmt.Sprintf("El plan referencia una materia inexistente (ID %s)", item.CourseID))
		}
	}

	return models.PlanCoherence{Valid: len(errs) == 0, Errors: errs}
}

func (e *planEvaluator) riskReport(p *planSnapshot) models.RiskReport {
	rule := e.orientationRule(p)
	report := models.RiskReport{Summary: noRiskSummary, Factors: []string{}}
	if rule.Satisfied || rule.PrincipalOrientation == nil {
		return report
	}
	principal := *rule.PrincipalOrientation

	var critical []models.PlanItemDetail
	for _, item := range p.items {
		if item.State != models.PlanItemCancelled || !e.isElective(item) {
			continue
		}
		if p.hasOrientation(item.CourseID, principal) && !p.activeCourse(item.CourseID) {
			critical = append(critical, item)
		}
	}
	if len(critical) == 0 {
		return report
	}

	report.AtRisk = true
	for _, item := range critical {
		report.Factors = append(report.Factors, fmt.Sprintf("Electiva cancelada de la orientación %s: %s", principal, item.DisplayName()))
	}
	report.Factors = append(report.Factors, fmt.Sprintf("Faltan %d electivas de %s para cumplir la regla de orientación (%d/%d)",
		e.threshold-rule.MaxElectives, principal, rule.MaxElectives, e.threshold))

	count := e.electivesCount(p)
	if count.PlannedOrCompleted < e.target {
		report.Factors = append(report.Factors, fmt.Sprintf("El plan incluye %d de %d electivas requeridas", count.PlannedOrCompleted, e.target))
	}
	currentYear := e.now.Year()
	for _, item := range p.items {
		if item.State == models.PlanItemPlanned && e.isElective(item) && item.Year < currentYear {
			report.Factors = append(report.Factors, fmt.Sprintf("Electiva planificada para %d aún sin cursar: %s", item.Year, item.DisplayName()))
		}
	}

	report.Summary = fmt.Sprintf("En riesgo: %d electiva(s) cancelada(s) de la orientación principal %s", len(critical), principal)
	return report
}
