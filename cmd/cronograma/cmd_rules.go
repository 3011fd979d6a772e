package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/cronograma-api/internal/models"
	"github.com/noah-isme/cronograma-api/internal/service"
)

var (
	rulesYear   int
	currentYear = func() int { return time.Now().Year() }
)

var rulesCmd = &cobra.Command{
	Use:   "rules [student-id]",
	Short: "Evaluate every plan rule for one student",
	Long: `Prints the electives count, orientation counts, orientation rule, plan
coherence, risk report and enrollment reconciliation of the student's open plan.

Example:
  cronograma rules 3f1c2a9e-0000-4000-8000-000000000001 --year 2024`,
	Args: cobra.ExactArgs(1),
	RunE: runRules,
}

var atRiskCmd = &cobra.Command{
	Use:   "at-risk",
	Short: "List active students at risk of not completing the program",
	Args:  cobra.NoArgs,
	RunE:  runAtRisk,
}

func init() {
	rulesCmd.Flags().IntVar(&rulesYear, "year", 0, "Year for orientation counts (default: current year)")
}

// studentRules is the combined verdict printed by the rules command.
type studentRules struct {
	Electives      *models.ElectivesCount     `json:"electivas"`
	Orientations   *models.OrientationCounts  `json:"orientaciones"`
	Rule           *models.OrientationRule    `json:"regla_orientacion"`
	Coherence      *models.PlanCoherence      `json:"coherencia"`
	Risk           *models.RiskReport         `json:"riesgo"`
	Reconciliation *models.PlanReconciliation `json:"conciliacion"`
}

func runRules(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	a, err := openFn(cfg, logr)
	if err != nil {
		return fmt.Errorf("open dependencies: %w", err)
	}
	defer a.Close()

	result, err := evaluateStudent(ctx, a.Rules, args[0], rulesYear)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func evaluateStudent(ctx context.Context, rules *service.PlanRulesService, studentID string, year int) (*studentRules, error) {
	if year == 0 {
		year = currentYear()
	}
	var (
		out studentRules
		err error
	)
	if out.Electives, err = rules.CheckElectivesCount(ctx, studentID); err != nil {
		return nil, err
	}
	if out.Orientations, err = rules.ComputeOrientationCounts(ctx, studentID, year); err != nil {
		return nil, err
	}
	if out.Rule, err = rules.CheckOrientationRule(ctx, studentID); err != nil {
		return nil, err
	}
	if out.Coherence, err = rules.CheckStudentPlanCoherence(ctx, studentID); err != nil {
		return nil, err
	}
	if out.Risk, err = rules.GetStudentRiskReport(ctx, studentID); err != nil {
		return nil, err
	}
	if out.Reconciliation, err = rules.ReconcileStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return &out, nil
}

func runAtRisk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	a, err := openFn(cfg, logr)
	if err != nil {
		return fmt.Errorf("open dependencies: %w", err)
	}
	defer a.Close()

	students, err := a.Rules.ListAtRisk(ctx)
	if err != nil {
		return err
	}
	printAtRisk(cmd.OutOrStdout(), students)
	return nil
}

func printAtRisk(w io.Writer, students []models.AtRiskStudent) {
	if len(students) == 0 {
		fmt.Fprintln(w, "Ningún estudiante activo en riesgo")
		return
	}
	fmt.Fprintf(w, "Estudiantes en riesgo: %d\n", len(students))
	for _, s := range students {
		fmt.Fprintf(w, "%s (%s): %s\n", s.FullName, s.StudentID, s.Report.Summary)
		for _, factor := range s.Report.Factors {
			fmt.Fprintf(w, "  - %s\n", factor)
		}
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
