// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/models"
	"github.com/tomtom215/chatstat/internal/validation"
)

// maxSelectorLen bounds member, platform and alert query values.
const maxSelectorLen = 200

// parseCriteria builds the shared analytics selection from the query string
// and the caller key. time=custom (or its legacy alias all) requires start
// and end dates; other modes ignore them.
func (h *Handler) parseCriteria(r *http.Request) (models.Criteria, error) {
	q := r.URL.Query()
	c := models.Criteria{
		User:     logging.UserFromContext(r.Context()),
		Mode:     models.ParseTimeMode(q.Get("time")),
		Member:   selector(q.Get("member")),
		Platform: selector(q.Get("platform")),
		Alert:    selector(q.Get("alert")),
	}

	for name, v := range map[string]string{"member": c.Member, "platform": c.Platform, "alert": c.Alert} {
		if len(v) > maxSelectorLen {
			return c, validation.NewFieldError(name, "max", len(v), name+" is too long")
		}
	}

	start, end := q.Get("start"), q.Get("end")
	if c.Mode == models.ModeCustom {
		if start == "" || end == "" {
			return c, validation.NewFieldError("start", "required", start, "start and end are required for a custom range")
		}
	}
	if start != "" || end != "" {
		rng, err := models.ParseDateRange(start, end, h.now().Location())
		if err != nil {
			return c, validation.NewFieldError("start", "datetime", start, err.Error())
		}
		c.Range = rng
	}
	return c, nil
}

// selector normalizes an empty selector to "all".
func selector(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return models.SelectorAll
	}
	return v
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// cacheParams is hashed into response cache keys. The snapshot time and day
// make entries die with the dataset snapshot and at midnight.
type cacheParams struct {
	Criteria models.Criteria `json:"criteria"`
	Extra    interface{}     `json:"extra,omitempty"`
	Snapshot time.Time       `json:"snapshot"`
	Day      string          `json:"day"`
}
