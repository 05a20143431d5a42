// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package models

import (
	"time"
)

// Export formats accepted by report generation.
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ReportRequest is the payload a caller submits to preview or generate a
// report. It is never mutated after creation and is persisted verbatim as
// report metadata. JSON names follow the stored metadata documents.
type ReportRequest struct {
	Email       string   `json:"email" validate:"required"`
	Children    string   `json:"children" validate:"required,ne=all"`
	TimeRange   []string `json:"timerange" validate:"len=2,dive,datetime=2006-01-02"`
	Platform    []string `json:"platform" validate:"min=1,dive,required"`
	Alert       []string `json:"alert" validate:"min=1,dive,required"`
	ContentType []string `json:"contenttype" validate:"min=1,dive,required"`
	FileType    string   `json:"filetype,omitempty" validate:"omitempty,oneof=xlsx pdf"`
}

// ReportColumns is the column order of generated reports.
var ReportColumns = []string{"email", "name", "platform", "datetime", "alert", "type", "text"}

// ReportRow is one synthesized report line.
type ReportRow struct {
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Platform string    `json:"platform"`
	DateTime time.Time `json:"datetime"`
	Alert    string    `json:"alert"`
	Type     string    `json:"type"`
	Text     string    `json:"text"`
}

// DateTimeLayout renders ReportRow.DateTime in exports.
const DateTimeLayout = "2006-01-02 15:04:05"

// Values returns the row as strings in ReportColumns order.
func (r ReportRow) Values() []string {
	return []string{r.Email, r.Name, r.Platform, r.DateTime.Format(DateTimeLayout), r.Alert, r.Type, r.Text}
}

// ReportMetadata is a stored report request plus bookkeeping fields.
type ReportMetadata struct {
	ReportRequest
	CreatedAt    time.Time `json:"created_at"`
	ArtifactKey  string    `json:"artifact_key,omitempty"`
	URL          string    `json:"url,omitempty"`
	Key          string    `json:"-"`
	LastModified time.Time `json:"-"`
}
