// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package export

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/chatstat/internal/models"
)

// SheetName is the worksheet holding the report table.
const SheetName = "Sheet1"

const maxColumnWidth = 80

// XLSX renders a single-sheet workbook with a bold header row.
type XLSX struct{}

func (XLSX) Format() string { return models.FormatXLSX }
func (XLSX) Folder() string { return "excel" }
func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Render writes the header at A1 and one row per report line below it.
func (XLSX) Render(rows []models.ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, body := table(rows)
	if err := writeRow(f, 1, header); err != nil {
		return nil, err
	}
	for i, r := range body {
		if err := writeRow(f, i+2, r); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for col, width := range columnLengths(header, body) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, name, name, float64(min(width+2, maxColumnWidth))); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

// ReadXLSX returns every row of the first sheet, header included.
func ReadXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

// columnLengths returns the longest cell per column in runes, header
// included.
func columnLengths(header []string, body [][]string) []int {
	lengths := make([]int, len(header))
	for i, h := range header {
		lengths[i] = utf8.RuneCountInString(h)
	}
	for _, r := range body {
		for i, v := range r {
			if n := utf8.RuneCountInString(v); i < len(lengths) && n > lengths[i] {
				lengths[i] = n
			}
		}
	}
	return lengths
}
