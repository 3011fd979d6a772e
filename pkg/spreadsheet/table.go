// Package spreadsheet materializes one worksheet of an .xlsx workbook as a header-indexed table.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned when the workbook has no sheet with the requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// Table is a tabular dataset keyed by header names. Values hold raw cell content:
// strings from workbooks, or any Go value when a caller builds the table in memory.
type Table struct {
	Sheet   string
	Columns []string
	Rows    []Row

	index map[string]int
}

// Row is one data row. Number is the 1-based row number in the source sheet.
type Row struct {
	Number int
	Values []any
}

// NewTable builds a table from headers and data rows; data rows are numbered from 2.
func NewTable(sheet string, columns []string, rows ...[]any) *Table {
	t := &Table{Sheet: sheet, Columns: make([]string, len(columns))}
	for i, c := range columns {
		t.Columns[i] = strings.TrimSpace(c)
	}
	for i, values := range rows {
		t.Rows = append(t.Rows, Row{Number: i + 2, Values: values})
	}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

// HasColumn reports whether the header row contains name.
func (t *Table) HasColumn(name string) bool {
	if t.index == nil {
		t.buildIndex()
	}
	_, ok := t.index[name]
	return ok
}

// MissingColumns returns the required headers absent from the table, in the given order.
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Value returns the raw cell of row under column, or nil when absent.
func (t *Table) Value(row Row, column string) any {
	if t.index == nil {
		t.buildIndex()
	}
	i, ok := t.index[column]
	if !ok || i >= len(row.Values) {
		return nil
	}
	return row.Values[i]
}

// Blank reports whether every cell of the row is empty.
func (r Row) Blank() bool {
	for _, v := range r.Values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return false
	}
	return true
}

// ReadFile opens the workbook at path and reads the named sheet.
func ReadFile(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return readSheet(f, sheet)
}

// Read reads the named sheet from a workbook stream.
func Read(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return readSheet(f, sheet)
}

func readSheet(f *excelize.File, sheet string) (*Table, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	// Raw values keep dates as serial numbers instead of locale-formatted text.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return NewTable(sheet, nil), nil
	}

	table := NewTable(sheet, rows[0])
	for i, raw := range rows[1:] {
		values := make([]any, len(table.Columns))
		for j := range values {
			if j < len(raw) {
				values[j] = raw[j]
			}
		}
		table.Rows = append(table.Rows, Row{Number: i + 2, Values: values})
	}
	return table, nil
}
