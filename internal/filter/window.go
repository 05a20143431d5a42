// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package filter

import (
	"time"

	"github.com/tomtom215/chatstat/internal/models"
)

// Window is an inclusive time interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies in [Start, End]. The zero time never matches.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// daysSinceMonday is the ISO weekday offset (Monday = 0, Sunday = 6).
func daysSinceMonday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// quarterStartMonth returns the first month of t's calendar quarter.
func quarterStartMonth(m time.Month) time.Month {
	quarter := (int(m)-1)/3 + 1
	return time.Month(3*quarter - 2)
}

// TimeWindow computes the filter interval for a mode.
//
// Custom mode spans whole days from rng.Start through rng.End. Every other
// mode ends at the end of now's day and starts at the start of the anchor
// day: today (D), this week's Monday (W), the 1st of the month (M), the 1st
// of the quarter's first month (Q) or January 1st (A).
func TimeWindow(mode models.TimeMode, rng models.DateRange, now time.Time) Window {
	if mode == models.ModeCustom {
		return Window{Start: StartOfDay(rng.Start), End: EndOfDay(rng.End)}
	}

	end := EndOfDay(now)
	y, m, d := now.Date()
	loc := now.Location()

	var anchor time.Time
	switch mode {
	case models.ModeWeekly:
		anchor = time.Date(y, m, d-daysSinceMonday(now), 0, 0, 0, 0, loc)
	case models.ModeMonthly:
		anchor = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case models.ModeQuarterly:
		anchor = time.Date(y, quarterStartMonth(m), 1, 0, 0, 0, 0, loc)
	case models.ModeYearly:
		anchor = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		anchor = now
	}
	return Window{Start: StartOfDay(anchor), End: end}
}
