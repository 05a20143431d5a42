// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package api

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/metadata"
	"github.com/tomtom215/chatstat/internal/models"
	"github.com/tomtom215/chatstat/internal/report"
)

// previewResponse is one page of report rows.
type previewResponse struct {
	NoData bool                `json:"no_data"`
	Rows   []*models.ReportRow `json:"rows"`
	Page   int                 `json:"page"`
	Pages  int                 `json:"pages"`
	Total  int                 `json:"total"`
}

func (h *Handler) previewPage(rows []models.ReportRow, page int) previewResponse {
	p := metadata.Paginate(rows, page, h.previewPageSize())
	return previewResponse{NoData: len(rows) == 0, Rows: p.Slots, Page: p.Page, Pages: p.Pages, Total: p.Total}
}

// readReportRequest decodes the body and binds the requester to the caller
// key, ignoring any email supplied in the body.
func readReportRequest(w http.ResponseWriter, r *http.Request) (models.ReportRequest, bool) {
	var req models.ReportRequest
	if !decodeJSON(w, r, &req) {
		return req, false
	}
	req.Email = logging.UserFromContext(r.Context())
	return req, true
}

// PreviewReport returns a page of the rows a report would contain.
func (h *Handler) PreviewReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := readReportRequest(w, r)
	if !ok {
		return
	}
	rows, err := h.reports.Preview(r.Context(), req)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, h.previewPage(rows, getIntParam(r, "page", 1)), time.Since(start), false)
}

// generateResponse is the JSON result of report generation.
type generateResponse struct {
	URL         string    `json:"url"`
	ArtifactKey string    `json:"artifact_key"`
	ReportID    string    `json:"report_id"`
	Format      string    `json:"format"`
	Rows        int       `json:"rows"`
	CreatedAt   time.Time `json:"created_at"`
}

// GenerateReport renders, stores and records a report and returns its link.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := readReportRequest(w, r)
	if !ok {
		return
	}
	res, err := h.reports.Generate(r.Context(), req)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	h.dropCachedHistory(req.Email)
	respondSuccess(w, generateResponse{
		URL:         res.URL,
		ArtifactKey: res.ArtifactKey,
		ReportID:    reportID(res.MetadataKey),
		Format:      res.Format,
		Rows:        len(res.Rows),
		CreatedAt:   res.CreatedAt,
	}, time.Since(start), false)
}

// DownloadReport generates a report and streams the document itself. The
// link and report id travel in response headers.
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	req, ok := readReportRequest(w, r)
	if !ok {
		return
	}
	res, err := h.reports.Generate(r.Context(), req)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	h.dropCachedHistory(req.Email)

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(res.ArtifactKey)))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-Report-URL", res.URL)
	w.Header().Set("X-Report-ID", reportID(res.MetadataKey))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Report download interrupted")
	}
}

// reportItem is one saved report in the history list.
type reportItem struct {
	ID string `json:"id"`
	models.ReportMetadata
	LastModified time.Time `json:"last_modified"`
}

// historyResponse is one page of the caller's saved reports. Slots holds
// exactly metadata.PageSize entries, padded with nulls.
type historyResponse struct {
	NoData bool          `json:"no_data"`
	Items  []*reportItem `json:"items"`
	Page   int           `json:"page"`
	Pages  int           `json:"pages"`
	Total  int           `json:"total"`
}

// ListReports returns a page of the caller's saved reports, newest first.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	records, err := h.data.GetReportIndex(r.Context())
	if err != nil {
		respondFailure(w, r, fmt.Errorf("%w: report index: %v", report.ErrDataUnavailable, err))
		return
	}

	mine := metadata.List(records, logging.UserFromContext(r.Context()))
	items := make([]reportItem, len(mine))
	for i, rec := range mine {
		items[i] = reportItem{ID: reportID(rec.Key), ReportMetadata: rec, LastModified: rec.LastModified}
	}

	p := metadata.Paginate(items, getIntParam(r, "page", 1), metadata.PageSize)
	respondSuccess(w, historyResponse{
		NoData: len(items) == 0,
		Items:  p.Slots,
		Page:   p.Page,
		Pages:  p.Pages,
		Total:  p.Total,
	}, time.Since(start), false)
}

// ReplayReport re-previews a saved report. Reports of other callers are
// reported as not found.
func (h *Handler) ReplayReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "key")
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid report id", nil, nil)
		return
	}

	records, err := h.data.GetReportIndex(r.Context())
	if err != nil {
		respondFailure(w, r, fmt.Errorf("%w: report index: %v", report.ErrDataUnavailable, err))
		return
	}

	user := logging.UserFromContext(r.Context())
	key := metadata.Prefix + strings.TrimSuffix(id, ".json") + ".json"
	for _, rec := range records {
		if rec.Key != key || rec.Email != user {
			continue
		}
		rows, err := h.reports.Replay(r.Context(), rec)
		if err != nil {
			respondFailure(w, r, err)
			return
		}
		respondSuccess(w, h.previewPage(rows, getIntParam(r, "page", 1)), time.Since(start), false)
		return
	}
	respondFailure(w, r, metadata.ErrNotFound)
}

// reportID strips the metadata prefix and extension from a record key.
func reportID(key string) string {
	return strings.TrimSuffix(strings.TrimPrefix(key, metadata.Prefix), ".json")
}

// dropCachedHistory clears a caller's cached responses after a write.
func (h *Handler) dropCachedHistory(user string) {
	if h.cache != nil {
		h.cache.DeletePrefix(user + ":")
	}
}
