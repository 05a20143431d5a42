// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package api

import (
	"net/http"
	"time"
)

// healthStatus is the /health payload.
type healthStatus struct {
	Status          string     `json:"status"`
	DatasetLoaded   bool       `json:"dataset_loaded"`
	DatasetLoadedAt *time.Time `json:"dataset_loaded_at,omitempty"`
	Uptime          float64    `json:"uptime"`
}

// Health reports whether a dataset snapshot is available. It never loads
// the dataset itself.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{
		Status: "degraded",
		Uptime: h.now().Sub(h.startTime).Seconds(),
	}
	if fetched := h.data.FetchedAt(); !fetched.IsZero() {
		status.Status = "healthy"
		status.DatasetLoaded = true
		status.DatasetLoadedAt = &fetched
	}
	respondSuccess(w, status, 0, false)
}
