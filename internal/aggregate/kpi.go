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

// AlertCount is the "Number of Alerts" KPI.
//
// For periodic modes Count is the current period's distinct alert count and
// Delta the change against the previous period. Custom mode carries no delta.
type AlertCount struct {
	NoData     bool            `json:"no_data"`
	Mode       models.TimeMode `json:"mode"`
	Count      int             `json:"count"`
	Delta      *int            `json:"delta,omitempty"`
	Comparison string          `json:"comparison,omitempty"`
	Window     *filter.Window  `json:"window,omitempty"`
}

// CountWithDelta resolves the KPI value for a resampled series. It reports
// false when the bucket for the current period (labelled by anchor) is absent.
func CountWithDelta(buckets []Bucket, anchor time.Time) (count, delta int, ok bool) {
	for i := len(buckets) - 1; i >= 0; i-- {
		if buckets[i].Date.Equal(anchor) {
			return buckets[i].Count, buckets[i].Delta, true
		}
	}
	return 0, 0, false
}

// AlertCounts computes the alert-count KPI for the caller's valid content
// alerts, scoped by member and alert selectors.
func AlertCounts(events []models.Event, c models.Criteria, now time.Time) AlertCount {
	rows := filter.Apply(events,
		filter.User(c.User),
		filter.ValidContentAlert(),
		filter.Member(c.Member),
		filter.Alert(c.Alert),
	)

	if c.Mode == models.ModeCustom {
		w := filter.TimeWindow(c.Mode, c.Range, now)
		rows = filter.Apply(rows, filter.Time(w))
		if len(rows) == 0 {
			return AlertCount{NoData: true, Mode: c.Mode, Window: &w}
		}
		return AlertCount{Mode: c.Mode, Count: distinct(rows, contentID), Window: &w}
	}

	buckets := ResampleIn(c.Mode, rows, contentCreated, contentID, now.Location())
	count, delta, ok := CountWithDelta(buckets, PeriodEnd(c.Mode, now))
	if !ok {
		return AlertCount{NoData: true, Mode: c.Mode}
	}
	return AlertCount{
		Mode:       c.Mode,
		Count:      count,
		Delta:      &delta,
		Comparison: c.Mode.ComparisonText(),
	}
}

// PlatformCard summarizes one platform's classified alerts.
type PlatformCard struct {
	Platform        string          `json:"platform"`
	Title           string          `json:"title"`
	Classifications []CategoryCount `json:"classifications"`
	Total           int             `json:"total"`
	Delta           *int            `json:"delta,omitempty"`
}

// PlatformCards is the card list behind the platform KPI carousel.
type PlatformCards struct {
	NoData bool           `json:"no_data"`
	Cards  []PlatformCard `json:"cards"`
}

// PlatformKPIs builds one card per platform with per-classification counts
// inside the time window. In periodic modes each card also carries the
// platform's latest period-over-period delta, computed over the full history
// rather than the windowed rows.
func PlatformKPIs(events []models.Event, c models.Criteria, now time.Time) PlatformCards {
	scoped := filter.Apply(events,
		filter.User(c.User),
		filter.ValidContentAlert(),
		filter.ValidContentResult(),
		filter.Member(c.Member),
		filter.Alert(c.Alert),
	)
	windowed := filter.Apply(scoped, filter.Time(filter.TimeWindow(c.Mode, c.Range, now)))
	if len(windowed) == 0 {
		return PlatformCards{NoData: true}
	}

	byPlatform := make(map[string][]models.Event)
	for _, e := range windowed {
		byPlatform[e.Platform] = append(byPlatform[e.Platform], e)
	}
	platforms := make([]string, 0, len(byPlatform))
	for p := range byPlatform {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	cards := make([]PlatformCard, 0, len(platforms))
	for _, p := range platforms {
		counts := CountDistinct(byPlatform[p], contentResult, contentID)
		sortByCountDesc(counts)

		card := PlatformCard{
			Platform:        p,
			Title:           p,
			Classifications: counts,
			Total:           sumCounts(counts),
		}
		if !models.IsAll(c.Alert) {
			card.Title = p + " - " + c.Alert + " Alerts"
		}
		if c.Mode.Periodic() {
			history := filter.Apply(scoped, filter.Platform(p))
			if buckets := ResampleIn(c.Mode, history, contentCreated, contentID, now.Location()); len(buckets) > 0 {
				d := buckets[len(buckets)-1].Delta
				card.Delta = &d
			}
		}
		cards = append(cards, card)
	}
	return PlatformCards{Cards: cards}
}
