// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Package export renders report rows as xlsx or pdf documents.
package export

import (
	"errors"
	"fmt"

	"github.com/tomtom215/chatstat/internal/models"
)

// ErrUnknownFormat is returned by For for anything but xlsx and pdf.
var ErrUnknownFormat = errors.New("export: unknown format")

// Renderer encodes report rows into one document format.
type Renderer interface {
	Render(rows []models.ReportRow) ([]byte, error)

	// Format is the file extension without the dot.
	Format() string
	ContentType() string

	// Folder is the artifact key segment under report/.
	Folder() string
}

// For returns the renderer for a format name.
func For(format string) (Renderer, error) {
	switch format {
	case models.FormatXLSX:
		return XLSX{}, nil
	case models.FormatPDF:
		return PDF{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// table returns the header and the stringified rows.
func table(rows []models.ReportRow) (header []string, body [][]string) {
	body = make([][]string, len(rows))
	for i, r := range rows {
		body[i] = r.Values()
	}
	return models.ReportColumns, body
}
