// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package aggregate

import (
	"sort"
	"time"

	"github.com/tomtom215/chatstat/internal/filter"
	"github.com/tomtom215/chatstat/internal/models"
)

// Bucket is one cadence period, labelled by the calendar day the period ends.
// Delta is Count minus the previous period's count.
type Bucket struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
	Delta int       `json:"delta"`
}

// PeriodEnd returns the label day of the period containing t: the day itself
// (D), the following Sunday (W), the month end (M), the quarter end (Q) or
// December 31st (A). The result is at midnight in t's location.
func PeriodEnd(mode models.TimeMode, t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()

	switch mode {
	case models.ModeWeekly:
		return time.Date(y, m, d+(7-int(t.Weekday()))%7, 0, 0, 0, 0, loc)
	case models.ModeMonthly:
		return time.Date(y, m+1, 0, 0, 0, 0, 0, loc)
	case models.ModeQuarterly:
		qEnd := time.Month(((int(m)-1)/3 + 1) * 3)
		return time.Date(y, qEnd+1, 0, 0, 0, 0, 0, loc)
	case models.ModeYearly:
		return time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
	default:
		return filter.StartOfDay(t)
	}
}

// nextPeriodEnd returns the label of the period after the one labelled end.
func nextPeriodEnd(mode models.TimeMode, end time.Time) time.Time {
	return PeriodEnd(mode, end.AddDate(0, 0, 1))
}

// Resample counts distinct ids per cadence period. The series is contiguous
// from the earliest to the latest populated period, so empty periods in
// between appear with a zero count. Buckets are ordered oldest first.
//
// The first bucket's delta is zero unless it is the only bucket, in which
// case its delta is its own count.
func Resample(mode models.TimeMode, events []models.Event, at func(*models.Event) time.Time, id func(*models.Event) string) []Bucket {
	return ResampleIn(mode, events, at, id, nil)
}

// ResampleIn is Resample with every timestamp moved into loc before it is
// labelled, so the labels compare equal to PeriodEnd of a clock in loc.
// A nil loc keeps each timestamp's own location.
func ResampleIn(mode models.TimeMode, events []models.Event, at func(*models.Event) time.Time, id func(*models.Event) string, loc *time.Location) []Bucket {
	sets := make(map[time.Time]map[string]struct{})
	for i := range events {
		t := at(&events[i])
		if t.IsZero() {
			continue
		}
		if loc != nil {
			t = t.In(loc)
		}
		label := PeriodEnd(mode, t)
		set, ok := sets[label]
		if !ok {
			set = make(map[string]struct{})
			sets[label] = set
		}
		set[id(&events[i])] = struct{}{}
	}
	if len(sets) == 0 {
		return nil
	}

	labels := make([]time.Time, 0, len(sets))
	for label := range sets {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Before(labels[j]) })

	var buckets []Bucket
	last := labels[len(labels)-1]
	for label := labels[0]; !label.After(last); label = nextPeriodEnd(mode, label) {
		buckets = append(buckets, Bucket{Date: label, Count: len(sets[label])})
	}

	for i := range buckets {
		if i == 0 {
			if len(buckets) == 1 {
				buckets[i].Delta = buckets[i].Count
			}
			continue
		}
		buckets[i].Delta = buckets[i].Count - buckets[i-1].Count
	}
	return buckets
}

// contentCreated and contentID are the accessors for content-level series.
func contentCreated(e *models.Event) time.Time { return e.CreatedAt }
func contentID(e *models.Event) string         { return e.ContentID }
func commentID(e *models.Event) string         { return e.CommentID }
