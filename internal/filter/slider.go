// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package filter

import (
	"strconv"
	"time"

	"github.com/tomtom215/chatstat/internal/models"
)

// SliderIndex maps dense integer slider positions to consecutive calendar
// days. Position 0 is First; position Max is First + Max days.
//
// It is an immutable value. Callers build one per member selection and pass
// it along with the slider positions it was built for.
type SliderIndex struct {
	First time.Time `json:"first"`
	Max   int       `json:"max"`
}

// SliderMark labels a slider position that starts a calendar quarter.
type SliderMark struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// NewSliderIndex spans the comment dates of events that fall within the two
// years before now. With no such dates it falls back to the year ending today.
func NewSliderIndex(events []models.Event, now time.Time) SliderIndex {
	today := StartOfDay(now)
	floor := today.AddDate(-2, 0, 0)

	var first, last time.Time
	for i := range events {
		t := events[i].CommentedAt
		if t.IsZero() {
			continue
		}
		day := StartOfDay(t.In(now.Location()))
		if day.Before(floor) {
			continue
		}
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
	}

	if first.IsZero() {
		first = today.AddDate(-1, 0, 0)
		last = today
	}
	return SliderIndex{First: first, Max: daysBetween(first, last)}
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// Clamp forces a position into [0, Max].
func (s SliderIndex) Clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i > s.Max {
		return s.Max
	}
	return i
}

// Date resolves a position, clamped, to its calendar day.
func (s SliderIndex) Date(i int) time.Time {
	return s.First.AddDate(0, 0, s.Clamp(i))
}

// Last is the date at position Max.
func (s SliderIndex) Last() time.Time {
	return s.Date(s.Max)
}

// Range resolves a pair of positions to an ordered date range.
func (s SliderIndex) Range(lo, hi int) models.DateRange {
	lo, hi = s.Clamp(lo), s.Clamp(hi)
	if lo > hi {
		lo, hi = hi, lo
	}
	return models.DateRange{Start: s.Date(lo), End: s.Date(hi)}
}

// Dates renders the full position → ISO date map for clients.
func (s SliderIndex) Dates() map[string]string {
	out := make(map[string]string, s.Max+1)
	for i := 0; i <= s.Max; i++ {
		out[strconv.Itoa(i)] = s.Date(i).Format(models.DateLayout)
	}
	return out
}

// Marks labels every position that falls on January, April, July or
// October 1st, e.g. "Apr'25".
func (s SliderIndex) Marks() []SliderMark {
	var marks []SliderMark
	for i := 0; i <= s.Max; i++ {
		d := s.Date(i)
		if d.Day() != 1 {
			continue
		}
		switch d.Month() {
		case time.January, time.April, time.July, time.October:
			marks = append(marks, SliderMark{Index: i, Label: d.Format("Jan'06")})
		}
	}
	return marks
}
