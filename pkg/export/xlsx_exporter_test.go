package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXRenderLayout(t *testing.T) {
	exporter := NewXLSXExporter("Week")

	data, err := exporter.Render(Grid{
		Title:         "Group CS-101, week 3",
		ColumnHeaders: []string{"Monday 2024-09-16", "Tuesday 2024-09-17"},
		RowHeaders:    []string{"08:00-09:20", "09:30-10:50"},
		Cells: [][]string{
			{"Databases\nIvanov I.I.", ""},
			{"", "Algebra\nPetrov P.P."},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Week", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Group CS-101, week 3", title)

	corner, err := f.GetCellValue("Week", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Time", corner)

	header, err := f.GetCellValue("Week", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Monday 2024-09-16", header)

	cell, err := f.GetCellValue("Week", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Databases\nIvanov I.I.", cell)

	cell, err = f.GetCellValue("Week", "C4")
	require.NoError(t, err)
	assert.Equal(t, "Algebra\nPetrov P.P.", cell)
}

func TestXLSXRenderRequiresColumns(t *testing.T) {
	_, err := NewXLSXExporter("").Render(Grid{})
	assert.Error(t, err)
}
