// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/tomtom215/chatstat/internal/models"
)

// Landscape A4 layout, in millimetres.
const (
	pdfPageWidth = 297.0
	pdfMargin    = 10.0
	pdfRowHeight = 6.0
	pdfFontSize  = 8.0
)

// PDF renders the report as a landscape table that repeats its header on
// every page.
type PDF struct{}

func (PDF) Format() string      { return models.FormatPDF }
func (PDF) Folder() string      { return "pdf" }
func (PDF) ContentType() string { return "application/pdf" }

// Render lays the table out with ColumnWidths across the printable width.
func (PDF) Render(rows []models.ReportRow) ([]byte, error) {
	header, body := table(rows)
	widths := ColumnWidths(header, body, pdfPageWidth-2*pdfMargin)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range header {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", pdfFontSize)
	})
	pdf.AddPage()

	for _, r := range body {
		for i, v := range r {
			text := fitText(pdf, tr(v), widths[i]-2)
			pdf.CellFormat(widths[i], pdfRowHeight, text, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ColumnWidths gives each column a share of total proportional to its
// longest cell, header included.
func ColumnWidths(header []string, body [][]string, total float64) []float64 {
	lengths := columnLengths(header, body)
	sum := 0
	for i, n := range lengths {
		if n == 0 {
			lengths[i] = 1
			n = 1
		}
		sum += n
	}
	widths := make([]float64, len(lengths))
	for i, n := range lengths {
		widths[i] = total * float64(n) / float64(sum)
	}
	return widths
}

// fitText truncates s with an ellipsis until it fits in width.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
