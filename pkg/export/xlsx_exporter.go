package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Grid describes a weekday-by-slot timetable matrix for spreadsheet export.
type Grid struct {
	Title string
	// ColumnHeaders label the weekday columns, e.g. "Monday 2024-01-01".
	ColumnHeaders []string
	// RowHeaders label the time-slot rows, e.g. "08:00-09:20".
	RowHeaders []string
	// Cells[row][col] holds the rendered lesson text; empty string leaves the
	// cell blank. Multiple lessons in one cell are newline separated.
	Cells [][]string
}

// XLSXExporter renders timetable grids into xlsx workbooks.
type XLSXExporter struct {
	sheetName string
}

// NewXLSXExporter constructs an xlsx exporter writing into the named sheet.
func NewXLSXExporter(sheetName string) *XLSXExporter {
	if sheetName == "" {
		sheetName = "Schedule"
	}
	return &XLSXExporter{sheetName: sheetName}
}

// Render produces an xlsx workbook with the grid laid out as a
// slot-by-weekday matrix: title row, header row, one row per time slot.
func (e *XLSXExporter) Render(grid Grid) ([]byte, error) {
	if len(grid.ColumnHeaders) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one column")
	}

	f := excelize.NewFile()
	sheet := e.sheetName
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("drop default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E9F0FC"}},
		Border:    boxBorder(),
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
		Border:    boxBorder(),
	})
	if err != nil {
		return nil, fmt.Errorf("cell style: %w", err)
	}

	row := 1
	if grid.Title != "" {
		titleCell, _ := excelize.CoordinatesToCellName(1, row)
		endCell, _ := excelize.CoordinatesToCellName(len(grid.ColumnHeaders)+1, row)
		if err := f.MergeCell(sheet, titleCell, endCell); err != nil {
			return nil, fmt.Errorf("merge title: %w", err)
		}
		if err := f.SetCellStr(sheet, titleCell, grid.Title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
		_ = f.SetCellStyle(sheet, titleCell, endCell, headerStyle)
		row++
	}

	corner, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetCellStr(sheet, corner, "Time"); err != nil {
		return nil, fmt.Errorf("write corner: %w", err)
	}
	for i, header := range grid.ColumnHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+2, row)
		if err := f.SetCellStr(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(grid.ColumnHeaders)+1, row)
	_ = f.SetCellStyle(sheet, corner, last, headerStyle)
	row++

	for r, label := range grid.RowHeaders {
		labelCell, _ := excelize.CoordinatesToCellName(1, row+r)
		if err := f.SetCellStr(sheet, labelCell, label); err != nil {
			return nil, fmt.Errorf("write slot label: %w", err)
		}
		_ = f.SetCellStyle(sheet, labelCell, labelCell, headerStyle)
		if r >= len(grid.Cells) {
			continue
		}
		for c := range grid.ColumnHeaders {
			cell, _ := excelize.CoordinatesToCellName(c+2, row+r)
			value := ""
			if c < len(grid.Cells[r]) {
				value = grid.Cells[r][c]
			}
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
			_ = f.SetCellStyle(sheet, cell, cell, cellStyle)
		}
		_ = f.SetRowHeight(sheet, row+r, 48)
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	endCol, _ := excelize.ColumnNumberToName(len(grid.ColumnHeaders) + 1)
	_ = f.SetColWidth(sheet, "B", endCol, 32)

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func boxBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#999999", Style: 1},
		{Type: "right", Color: "#999999", Style: 1},
		{Type: "top", Color: "#999999", Style: 1},
		{Type: "bottom", Color: "#999999", Style: 1},
	}
}
