package spreadsheet

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "cronograma.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadFileMaterializesRows(t *testing.T) {
	path := writeWorkbook(t, "CronogramaConsolidado", [][]any{
		{" Programa ", "Año", "Horas"},
		{"MBA", 2024, 20},
		{},
		{"EMBA", 2025},
	})

	table, err := ReadFile(path, "CronogramaConsolidado")
	require.NoError(t, err)

	assert.Equal(t, []string{"Programa", "Año", "Horas"}, table.Columns)
	require.Len(t, table.Rows, 3)

	first := table.Rows[0]
	assert.Equal(t, 2, first.Number)
	assert.Equal(t, "MBA", table.Value(first, "Programa"))
	assert.Equal(t, "2024", table.Value(first, "Año"))
	assert.Equal(t, "20", table.Value(first, "Horas"))

	assert.True(t, table.Rows[1].Blank())
	assert.Equal(t, 4, table.Rows[2].Number)
	assert.Nil(t, table.Value(table.Rows[2], "Horas"))
	assert.Nil(t, table.Value(table.Rows[2], "Materia"))
}

func TestReadFileMissingSheet(t *testing.T) {
	path := writeWorkbook(t, "Otra", [][]any{{"Programa"}})

	_, err := ReadFile(path, "CronogramaConsolidado")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestReadFromStream(t *testing.T) {
	path := writeWorkbook(t, "CronogramaConsolidado", [][]any{{"MateriaID"}, {"M-1"}})
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	table, err := Read(bytes.NewReader(buf.Bytes()), "CronogramaConsolidado")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "M-1", table.Value(table.Rows[0], "MateriaID"))
}

func TestMissingColumnsKeepsRequiredOrder(t *testing.T) {
	table := NewTable("CronogramaConsolidado", []string{"Programa", "Materia"})
	assert.Equal(t, []string{"Año", "Horas"}, table.MissingColumns([]string{"Programa", "Año", "Materia", "Horas"}))
	assert.Empty(t, table.MissingColumns([]string{"Materia"}))
}
