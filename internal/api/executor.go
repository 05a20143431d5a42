// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/chatstat/internal/cache"
	"github.com/tomtom215/chatstat/internal/models"
	"github.com/tomtom215/chatstat/internal/report"
)

// QueryFunc computes one analytics view from the dataset snapshot.
type QueryFunc func(events []models.Event, c models.Criteria, now time.Time) interface{}

// execute runs the cache-first flow shared by the analytics handlers:
//
//  1. Parse criteria from the query string and the caller key
//  2. Return the cached payload if present
//  3. Read the dataset snapshot and run query
//  4. Cache and return the payload with its query time
//
// method names the view in the cache key; extra carries any view-specific
// parameters that change the result.
func (h *Handler) execute(w http.ResponseWriter, r *http.Request, method string, extra interface{}, query QueryFunc) {
	c, err := h.parseCriteria(r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	h.executeWith(w, r, c, method, extra, query)
}

func (h *Handler) executeWith(w http.ResponseWriter, r *http.Request, c models.Criteria, method string, extra interface{}, query QueryFunc) {
	start := time.Now()
	now := h.now()

	var key string
	if h.cache != nil {
		key = cache.GenerateKey(c.User, method, cacheParams{
			Criteria: c,
			Extra:    extra,
			Snapshot: h.data.FetchedAt(),
			Day:      now.Format(models.DateLayout),
		})
		if cached, ok := h.cache.Get(key); ok {
			respondSuccess(w, cached, 0, true)
			return
		}
	}

	events, err := h.data.GetDataset(r.Context())
	if err != nil {
		respondFailure(w, r, fmt.Errorf("%w: %v", report.ErrDataUnavailable, err))
		return
	}

	data := query(events, c, now)
	if h.cache != nil {
		h.cache.Set(key, data)
	}
	respondSuccess(w, data, time.Since(start), false)
}
