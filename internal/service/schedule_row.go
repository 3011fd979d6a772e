package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/cronograma-api/pkg/spreadsheet"
)

// Schedule sheet column headers.
const (
	ColProgram     = "Programa"
	ColYear        = "Año"
	ColModule      = "Módulo"
	ColSubject     = "Materia"
	ColHours       = "Horas"
	ColProfessor1  = "Profesor 1"
	ColProfessor2  = "Profesor 2"
	ColProfessor3  = "Profesor 3"
	ColStart       = "Inicio"
	ColEnd         = "Final"
	ColDay         = "Día"
	ColSchedule    = "Horario"
	ColFormat      = "Formato"
	ColOrientation = "Orientación"
	ColComments    = "Comentarios"
	ColSubjectType = "TipoMateria"
	ColSheetTag    = "SolapaFuente"
	ColMateriaID   = "MateriaID"
	ColMateriaKey  = "MateriaKey"
)

// ScheduleColumns lists every column the schedule sheet must carry, in sheet order.
var ScheduleColumns = []string{
	ColProgram, ColYear, ColModule, ColSubject, ColHours,
	ColProfessor1, ColProfessor2, ColProfessor3,
	ColStart, ColEnd, ColDay, ColSchedule, ColFormat,
	ColOrientation, ColComments, ColSubjectType,
	ColSheetTag, ColMateriaID, ColMateriaKey,
}

// ScheduleRow is one normalized spreadsheet row. Field order follows the sheet so
// validation errors come out in column order.
type ScheduleRow struct {
	Number      int        `col:"-"`
	Program     *string    `col:"Programa" validate:"required"`
	Year        *int       `col:"Año" validate:"required"`
	Module      *string    `col:"Módulo" validate:"required"`
	Subject     *string    `col:"Materia" validate:"required"`
	Hours       *int       `col:"Horas" validate:"required"`
	Professor1  *string    `col:"Profesor 1"`
	Professor2  *string    `col:"Profesor 2"`
	Professor3  *string    `col:"Profesor 3"`
	StartDate   *time.Time `col:"Inicio" validate:"required"`
	EndDate     *time.Time `col:"Final" validate:"required"`
	Day         *string    `col:"Día" validate:"required"`
	Schedule    *string    `col:"Horario" validate:"required"`
	Format      *string    `col:"Formato" validate:"required"`
	Orientation *string    `col:"Orientación" validate:"required_if=Elective true"`
	Comments    *string    `col:"Comentarios"`
	SubjectType *string    `col:"TipoMateria" validate:"required"`
	SheetTag    *string    `col:"SolapaFuente" validate:"required"`
	MateriaID   *string    `col:"MateriaID" validate:"required"`
	MateriaKey  *string    `col:"MateriaKey" validate:"required"`
	Elective    bool       `col:"-"`
}

// scheduleRowBuilder turns raw table rows into normalized schedule rows.
type scheduleRowBuilder struct {
	orientations OrientationSet
	electives    typeSet
}

func newScheduleRowBuilder(allowedOrientations, electiveTypes []string) *scheduleRowBuilder {
	return &scheduleRowBuilder{
		orientations: NewOrientationSet(allowedOrientations),
		electives:    newTypeSet(electiveTypes),
	}
}

func (b *scheduleRowBuilder) Build(table *spreadsheet.Table, row spreadsheet.Row) *ScheduleRow {
	cell := func(column string) any { return table.Value(row, column) }

	out := &ScheduleRow{
		Number:      row.Number,
		Program:     NormalizeString(cell(ColProgram)),
		Year:        NormalizeInt(cell(ColYear)),
		Module:      NormalizeString(cell(ColModule)),
		Subject:     NormalizeString(cell(ColSubject)),
		Hours:       NormalizeInt(cell(ColHours)),
		Professor1:  NormalizeString(cell(ColProfessor1)),
		Professor2:  NormalizeString(cell(ColProfessor2)),
		Professor3:  NormalizeString(cell(ColProfessor3)),
		StartDate:   NormalizeDate(cell(ColStart)),
		EndDate:     NormalizeDate(cell(ColEnd)),
		Day:         NormalizeString(cell(ColDay)),
		Schedule:    NormalizeString(cell(ColSchedule)),
		Format:      NormalizeString(cell(ColFormat)),
		Orientation: NormalizeOrientation(cell(ColOrientation), b.orientations),
		Comments:    NormalizeString(cell(ColComments)),
		SubjectType: NormalizeString(cell(ColSubjectType)),
		SheetTag:    NormalizeString(cell(ColSheetTag)),
		MateriaID:   NormalizeString(cell(ColMateriaID)),
		MateriaKey:  NormalizeString(cell(ColMateriaKey)),
	}
	out.Elective = b.electives.Contains(out.SubjectType)
	return out
}

// newRowValidator returns a validator that reports fields by their sheet column name.
func newRowValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("col")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateScheduleRow reports whether every mandatory field is present. The message
// names each missing column in sheet order.
func validateScheduleRow(v *validator.Validate, row *ScheduleRow) (bool, string) {
	err := v.Struct(row)
	if err == nil {
		return true, ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false, fmt.Sprintf("Fila %d: %v", row.Number, err)
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return false, fmt.Sprintf("Fila %d: faltan campos obligatorios: %s", row.Number, strings.Join(missing, ", "))
}
