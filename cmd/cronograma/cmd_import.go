package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/noah-isme/cronograma-api/internal/models"
)

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import the consolidated schedule workbook",
	Long: `Reads the CronogramaConsolidado sheet of the workbook and upserts courses and
their sources. The path is relative to the import directory.

Example:
  cronograma import 2024/cronograma.xlsx
  cronograma --base-dir ./planillas import cronograma.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	a, err := openFn(cfg, logr)
	if err != nil {
		return fmt.Errorf("open dependencies: %w", err)
	}
	defer a.Close()

	summary, err := a.Importer.ImportScheduleExcel(ctx, args[0])
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), summary, cfg.Import.ErrorPreview)
	return nil
}

func printSummary(w io.Writer, summary *models.ImportSummary, preview int) {
	fmt.Fprintln(w, "Importación finalizada")
	fmt.Fprintf(w, "  Filas procesadas:      %d\n", summary.TotalRows)
	fmt.Fprintf(w, "  Cursos creados:        %d\n", summary.CoursesCreated)
	fmt.Fprintf(w, "  Cursos actualizados:   %d\n", summary.CoursesUpdated)
	fmt.Fprintf(w, "  Sources creados:       %d\n", summary.SourcesCreated)
	fmt.Fprintf(w, "  Sources actualizados:  %d\n", summary.SourcesUpdated)
	if summary.ErrorCount == 0 {
		return
	}

	fmt.Fprintf(w, "Errores (%d):\n", summary.ErrorCount)
	shown, rest := summary.ErrorPreview(preview)
	for _, msg := range shown {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
	if rest > 0 {
		fmt.Fprintf(w, "  ... y %d errores más\n", rest)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
