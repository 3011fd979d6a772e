package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/cronograma-api/internal/models"
	appErrors "github.com/noah-isme/cronograma-api/pkg/errors"
	"github.com/noah-isme/cronograma-api/pkg/spreadsheet"
	"github.com/noah-isme/cronograma-api/pkg/storage"
)

// DefaultScheduleSheet is the worksheet holding the consolidated schedule.
const DefaultScheduleSheet = "CronogramaConsolidado"

type courseStore interface {
	FindByMateriaID(ctx context.Context, exec sqlx.ExtContext, materiaID string) (*models.Course, error)
	Create(ctx context.Context, exec sqlx.ExtContext, course *models.Course) error
	Update(ctx context.Context, exec sqlx.ExtContext, course *models.Course) error
}

type courseSourceStore interface {
	FindByKey(ctx context.Context, exec sqlx.ExtContext, courseID, sheetTag, module string) (*models.CourseSource, error)
	Create(ctx context.Context, exec sqlx.ExtContext, source *models.CourseSource) error
	Update(ctx context.Context, exec sqlx.ExtContext, source *models.CourseSource) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type importFileOpener interface {
	Open(name string) (*os.File, error)
}

// ScheduleImportConfig governs ingestion behaviour.
type ScheduleImportConfig struct {
	SheetName           string
	AllowedOrientations []string
	ElectiveTypes       []string
}

// ScheduleImportService ingests the master schedule into the course catalog.
type ScheduleImportService struct {
	courses   courseStore
	sources   courseSourceStore
	tx        txProvider
	files     importFileOpener
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	builder   *scheduleRowBuilder
	sheet     string
}

// NewScheduleImportService wires ingestion dependencies. files may be nil, in which
// case paths are read from disk as given.
func NewScheduleImportService(
	courses courseStore,
	sources courseSourceStore,
	tx txProvider,
	files importFileOpener,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg ScheduleImportConfig,
) *ScheduleImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultScheduleSheet
	}
	return &ScheduleImportService{
		courses:   courses,
		sources:   sources,
		tx:        tx,
		files:     files,
		cache:     cache,
		metrics:   metrics,
		validator: newRowValidator(),
		logger:    logger,
		builder:   newScheduleRowBuilder(cfg.AllowedOrientations, cfg.ElectiveTypes),
		sheet:     cfg.SheetName,
	}
}

// ImportScheduleExcel reads the schedule sheet of the workbook at path and ingests it.
// Missing sheets or columns abort the run; row problems are reported in the summary.
func (s *ScheduleImportService) ImportScheduleExcel(ctx context.Context, path string) (*models.ImportSummary, error) {
	start := time.Now()
	table, err := s.readTable(path)
	if err != nil {
		s.metrics.RecordImport(nil, time.Since(start))
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		s.logger.Warn("schedule workbook rejected", zap.String("path", path), zap.Error(err))
		if errors.Is(err, spreadsheet.ErrSheetNotFound) {
			return nil, appErrors.Clone(appErrors.ErrInvalidSpreadsheet, fmt.Sprintf("la hoja '%s' no existe en el archivo", s.sheet))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidSpreadsheet.Code, appErrors.ErrInvalidSpreadsheet.Status, "no se pudo leer el archivo Excel")
	}

	return s.ImportDataset(ctx, table)
}

// ImportDataset ingests an already materialized schedule table.
func (s *ScheduleImportService) ImportDataset(ctx context.Context, table *spreadsheet.Table) (*models.ImportSummary, error) {
	start := time.Now()
	if table == nil {
		s.metrics.RecordImport(nil, time.Since(start))
		return nil, appErrors.Clone(appErrors.ErrInvalidSpreadsheet, "no se recibieron datos para importar")
	}
	if missing := table.MissingColumns(ScheduleColumns); len(missing) > 0 {
		s.metrics.RecordImport(nil, time.Since(start))
		return nil, appErrors.Clone(appErrors.ErrInvalidSpreadsheet, "faltan columnas requeridas: "+strings.Join(missing, ", "))
	}

	summary := models.NewImportSummary()
	run := newImportRun(summary)

	for _, raw := range table.Rows {
		if raw.Blank() {
			continue
		}
		if err := ctx.Err(); err != nil {
			s.metrics.RecordImport(nil, time.Since(start))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "importación interrumpida")
		}
		summary.TotalRows++

		row := s.builder.Build(table, raw)
		if ok, msg := validateScheduleRow(s.validator, row); !ok {
			summary.AddError(msg)
			continue
		}

		if err := s.upsertRow(ctx, row, run); err != nil {
			s.logger.Warn("schedule row failed",
				zap.Int("row", row.Number),
				zap.String("materia_id", *row.MateriaID),
				zap.Error(err),
			)
			summary.AddError(fmt.Sprintf("Fila %d: error al guardar MateriaID %s: %v", row.Number, *row.MateriaID, err))
		}
	}

	if summary.Changed() {
		if err := s.cache.InvalidateRules(ctx); err != nil {
			s.logger.Debug("rule cache not invalidated after import", zap.Error(err))
		}
	}
	duration := time.Since(start)
	s.metrics.RecordImport(summary, duration)
	s.logger.Info("schedule import finished",
		zap.String("sheet", table.Sheet),
		zap.Int("rows", summary.TotalRows),
		zap.Int("courses_created", summary.CoursesCreated),
		zap.Int("courses_updated", summary.CoursesUpdated),
		zap.Int("sources_created", summary.SourcesCreated),
		zap.Int("sources_updated", summary.SourcesUpdated),
		zap.Int("errors", summary.ErrorCount),
		zap.Duration("duration", duration),
	)
	return summary, nil
}

// readTable loads the schedule sheet, through the import directory when one is configured.
func (s *ScheduleImportService) readTable(path string) (*spreadsheet.Table, error) {
	if s.files == nil {
		return spreadsheet.ReadFile(path, s.sheet)
	}
	file, err := s.files.Open(path)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrOutsideBaseDir):
			return nil, appErrors.Clone(appErrors.ErrValidation, "la ruta del archivo debe estar dentro del directorio de importación")
		case errors.Is(err, storage.ErrNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "archivo de importación no encontrado")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo acceder al archivo")
		}
	}
	defer file.Close() //nolint:errcheck
	return spreadsheet.Read(file, s.sheet)
}

// upsertRow persists one validated row in its own transaction. Counters are only
// recorded once the transaction commits.
func (s *ScheduleImportService) upsertRow(ctx context.Context, row *ScheduleRow, run *importRun) (err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	course, courseChange, err := s.upsertCourse(ctx, tx, row)
	if err != nil {
		return err
	}
	sourceChange, err := s.upsertSource(ctx, tx, course.ID, row)
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	run.recordCourse(course.MateriaID, courseChange)
	run.recordSource(sourceKey{courseID: course.ID, sheetTag: *row.SheetTag, module: *row.Module}, sourceChange)
	return nil
}

func (s *ScheduleImportService) upsertCourse(ctx context.Context, tx *sqlx.Tx, row *ScheduleRow) (*models.Course, change, error) {
	incoming := courseFromRow(row)

	existing, err := s.courses.FindByMateriaID(ctx, tx, incoming.MateriaID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, unchanged, err
		}
		if err := s.courses.Create(ctx, tx, incoming); err != nil {
			return nil, unchanged, err
		}
		return incoming, created, nil
	}

	if !courseDiffers(existing, incoming) {
		return existing, unchanged, nil
	}
	existing.MateriaKey = incoming.MateriaKey
	existing.Name = incoming.Name
	existing.Program = incoming.Program
	existing.Year = incoming.Year
	existing.SubjectType = incoming.SubjectType
	existing.Hours = incoming.Hours
	if err := s.courses.Update(ctx, tx, existing); err != nil {
		return nil, unchanged, err
	}
	return existing, updated, nil
}

func (s *ScheduleImportService) upsertSource(ctx context.Context, tx *sqlx.Tx, courseID string, row *ScheduleRow) (change, error) {
	incoming := sourceFromRow(courseID, row)

	existing, err := s.sources.FindByKey(ctx, tx, courseID, incoming.SheetTag, incoming.Module)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return unchanged, err
		}
		if err := s.sources.Create(ctx, tx, incoming); err != nil {
			return unchanged, err
		}
		return created, nil
	}

	if !sourceDiffers(existing, incoming) {
		return unchanged, nil
	}
	incoming.ID = existing.ID
	incoming.State = existing.State
	incoming.CreatedAt = existing.CreatedAt
	if err := s.sources.Update(ctx, tx, incoming); err != nil {
		return unchanged, err
	}
	return updated, nil
}

func courseFromRow(row *ScheduleRow) *models.Course {
	return &models.Course{
		MateriaID:   *row.MateriaID,
		MateriaKey:  *row.MateriaKey,
		Name:        *row.Subject,
		Program:     *row.Program,
		Year:        *row.Year,
		SubjectType: *row.SubjectType,
		Hours:       *row.Hours,
		State:       models.CatalogStateActive,
	}
}

func sourceFromRow(courseID string, row *ScheduleRow) *models.CourseSource {
	return &models.CourseSource{
		CourseID:    courseID,
		SheetTag:    *row.SheetTag,
		Module:      *row.Module,
		Professor1:  row.Professor1,
		Professor2:  row.Professor2,
		Professor3:  row.Professor3,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
		Day:         row.Day,
		Schedule:    row.Schedule,
		Format:      row.Format,
		Orientation: row.Orientation,
		Comments:    row.Comments,
		State:       models.CatalogStateActive,
	}
}

func courseDiffers(a, b *models.Course) bool {
	return a.Name != b.Name ||
		a.Hours != b.Hours ||
		a.Program != b.Program ||
		a.Year != b.Year ||
		a.SubjectType != b.SubjectType ||
		a.MateriaKey != b.MateriaKey
}

func sourceDiffers(a, b *models.CourseSource) bool {
	return !sameString(a.Professor1, b.Professor1) ||
		!sameString(a.Professor2, b.Professor2) ||
		!sameString(a.Professor3, b.Professor3) ||
		!sameDate(a.StartDate, b.StartDate) ||
		!sameDate(a.EndDate, b.EndDate) ||
		!sameString(a.Day, b.Day) ||
		!sameString(a.Schedule, b.Schedule) ||
		!sameString(a.Format, b.Format) ||
		!sameString(a.Orientation, b.Orientation) ||
		!sameString(a.Comments, b.Comments)
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type change int

const (
	unchanged change = iota
	updated
	created
)

type sourceKey struct {
	courseID string
	sheetTag string
	module   string
}

// importRun counts each catalog key at most once per run. Creation dominates, and an
// unchanged key is promoted to updated when a later row changes it.
type importRun struct {
	summary *models.ImportSummary
	courses map[string]change
	sources map[sourceKey]change
}

func newImportRun(summary *models.ImportSummary) *importRun {
	return &importRun{
		summary: summary,
		courses: make(map[string]change),
		sources: make(map[sourceKey]change),
	}
}

func (r *importRun) recordCourse(key string, c change) {
	prev, seen := r.courses[key]
	if seen && prev >= c {
		return
	}
	r.courses[key] = c
	switch {
	case c == created:
		r.summary.CoursesCreated++
	case c == updated:
		r.summary.CoursesUpdated++
	}
}

func (r *importRun) recordSource(key sourceKey, c change) {
	prev, seen := r.sources[key]
	if seen && prev >= c {
		return
	}
	r.sources[key] = c
	switch {
	case c == created:
		r.summary.SourcesCreated++
	case c == updated:
		r.summary.SourcesUpdated++
	}
}
