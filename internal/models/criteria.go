// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package models

import (
	"fmt"
	"time"
)

// DateLayout is the ISO date layout used by date-range selectors.
const DateLayout = "2006-01-02"

// TimeMode selects the cadence of time-window filtering and KPI bucketing.
type TimeMode string

const (
	ModeDaily     TimeMode = "D"
	ModeWeekly    TimeMode = "W"
	ModeMonthly   TimeMode = "M"
	ModeQuarterly TimeMode = "Q"
	ModeYearly    TimeMode = "A"
	ModeCustom    TimeMode = "custom"
)

// ParseTimeMode maps a selector value to a TimeMode. The legacy value "all"
// is an alias of custom; anything unrecognized falls back to daily.
func ParseTimeMode(s string) TimeMode {
	switch TimeMode(s) {
	case ModeDaily, ModeWeekly, ModeMonthly, ModeQuarterly, ModeYearly, ModeCustom:
		return TimeMode(s)
	}
	if s == SelectorAll {
		return ModeCustom
	}
	return ModeDaily
}

// Periodic reports whether the mode has a calendar cadence.
func (m TimeMode) Periodic() bool {
	return m != ModeCustom
}

// Label is the human-readable cadence name.
func (m TimeMode) Label() string {
	switch m {
	case ModeWeekly:
		return "Weekly"
	case ModeMonthly:
		return "Monthly"
	case ModeQuarterly:
		return "Quarterly"
	case ModeYearly:
		return "Yearly"
	case ModeCustom:
		return "Custom Range"
	default:
		return "Daily"
	}
}

// ComparisonText describes what a delta in this mode is measured against.
func (m TimeMode) ComparisonText() string {
	switch m {
	case ModeWeekly:
		return "vs Last Week"
	case ModeMonthly:
		return "vs Last Month"
	case ModeQuarterly:
		return "vs Last Quarter"
	case ModeYearly:
		return "vs Last Year"
	case ModeCustom:
		return ""
	default:
		return "vs Last Day"
	}
}

// DateRange is an inclusive pair of calendar dates. Only the date part is
// significant; filters widen it to whole days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseDateRange parses two ISO dates in the given location.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	s, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return DateRange{Start: s, End: e}, nil
}

// Criteria is the request-scoped filter selection shared by every analytics
// view. User is the caller's opaque key.
type Criteria struct {
	User     string    `json:"user"`
	Mode     TimeMode  `json:"time"`
	Range    DateRange `json:"range"`
	Member   string    `json:"member"`
	Platform string    `json:"platform"`
	Alert    string    `json:"alert"`
}
