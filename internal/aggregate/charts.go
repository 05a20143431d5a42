// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/chatstat/internal/filter"
	"github.com/tomtom215/chatstat/internal/models"
)

// RadialSweep is the arc, in degrees, that a 100% share spans on the radial chart.
const RadialSweep = 270

// RadialSlice is one classification arc.
type RadialSlice struct {
	Classification string  `json:"classification"`
	Count          int     `json:"count"`
	Radial         float64 `json:"radial"`
	TotalRadial    int     `json:"total_radial"`
}

// RadialChart is the content risk classification chart.
type RadialChart struct {
	NoData bool          `json:"no_data"`
	Title  string        `json:"title"`
	Slices []RadialSlice `json:"slices"`
}

// ContentClassification counts classified content alerts per classification
// and scales each count onto the radial sweep, smallest arc first.
func ContentClassification(events []models.Event, c models.Criteria, now time.Time) RadialChart {
	rows := filter.Apply(events,
		filter.User(c.User),
		filter.ValidContentResult(),
		filter.ValidContentAlert(),
		filter.Time(filter.TimeWindow(c.Mode, c.Range, now)),
		filter.Member(c.Member),
		filter.Platform(c.Platform),
		filter.Alert(c.Alert),
	)
	title := classificationTitle(c)
	if len(rows) == 0 {
		return RadialChart{NoData: true, Title: title}
	}

	counts := CountDistinct(rows, contentResult, contentID)
	total := sumCounts(counts)
	slices := make([]RadialSlice, len(counts))
	for i, cc := range counts {
		slices[i] = RadialSlice{
			Classification: cc.Category,
			Count:          cc.Count,
			Radial:         float64(cc.Count) / float64(total) * RadialSweep,
			TotalRadial:    RadialSweep,
		}
	}
	sort.SliceStable(slices, func(i, j int) bool { return slices[i].Radial < slices[j].Radial })
	return RadialChart{Title: title, Slices: slices}
}

func classificationTitle(c models.Criteria) string {
	switch {
	case !models.IsAll(c.Platform) && !models.IsAll(c.Alert):
		return "Comment Risk Classification - " + c.Platform + " & " + c.Alert + " Alerts"
	case !models.IsAll(c.Platform):
		return "Content Risk Classification - " + c.Platform
	case !models.IsAll(c.Alert):
		return "Content Risk Classification - " + c.Alert + " Alerts"
	default:
		return "Content Risk Classification"
	}
}

// RiskCategories backs the stacked progress bar and its legend. Bar holds the
// categories present, smallest share first; Legend adds the missing fixed
// categories at zero, largest share first.
type RiskCategories struct {
	NoData bool            `json:"no_data"`
	Bar    []CategoryShare `json:"bar"`
	Legend []CategoryShare `json:"legend"`
}

// Categories computes content category shares normalized to 100%.
func Categories(events []models.Event, c models.Criteria, now time.Time) RiskCategories {
	rows := filter.Apply(events,
		filter.User(c.User),
		filter.ValidContentResult(),
		filter.ValidContentAlert(),
		filter.Time(filter.TimeWindow(c.Mode, c.Range, now)),
		filter.Member(c.Member),
		filter.Platform(c.Platform),
	)
	if len(rows) == 0 {
		return RiskCategories{NoData: true}
	}

	shares := NormalizePercentages(CountDistinct(rows, contentResult, contentID))
	bar := append([]CategoryShare(nil), shares...)
	sortSharesByPercent(bar, false)

	legend := append([]CategoryShare(nil), shares...)
	present := make(map[string]struct{}, len(shares))
	for _, s := range shares {
		present[s.Category] = struct{}{}
	}
	for _, cat := range models.ContentCategories {
		if _, ok := present[cat]; !ok {
			legend = append(legend, CategoryShare{Category: cat})
		}
	}
	sortSharesByPercent(legend, true)

	return RiskCategories{Bar: bar, Legend: legend}
}

// RiskBar is one (severity, platform) column of the content risk chart.
type RiskBar struct {
	Alert          string `json:"alert"`
	Platform       string `json:"platform"`
	Count          int    `json:"count"`
	PercentOfAlert int    `json:"percentage_alert"`
	PercentOfTotal int    `json:"percentage_total"`
}

// ContentRisk is the severity-by-platform bar chart. Totals holds per-severity
// sums and is only set when a single platform is selected.
type ContentRisk struct {
	NoData bool            `json:"no_data"`
	Bars   []RiskBar       `json:"bars"`
	Totals []CategoryCount `json:"totals,omitempty"`
}

// ContentRiskBars counts distinct alerted content per severity and platform,
// zero-filling High, Medium and Low for every platform present.
func ContentRiskBars(events []models.Event, c models.Criteria, now time.Time) ContentRisk {
	rows := filter.Apply(events,
		filter.User(c.User),
		filter.ValidContentAlert(),
		filter.Time(filter.TimeWindow(c.Mode, c.Range, now)),
		filter.Member(c.Member),
		filter.Platform(c.Platform),
	)
	if len(rows) == 0 {
		return ContentRisk{NoData: true}
	}

	byPlatform := make(map[string][]models.Event)
	for _, e := range rows {
		byPlatform[e.Platform] = append(byPlatform[e.Platform], e)
	}

	var bars []RiskBar
	for p, group := range byPlatform {
		for _, cc := range ZeroFill(CountDistinct(group, contentAlert, contentID), models.Severities) {
			bars = append(bars, RiskBar{Alert: cc.Category, Platform: p, Count: cc.Count})
		}
	}

	perAlert := make(map[string]int)
	total := 0
	for _, b := range bars {
		perAlert[b.Alert] += b.Count
		total += b.Count
	}
	for i := range bars {
		bars[i].PercentOfAlert = percentOf(bars[i].Count, perAlert[bars[i].Alert])
		bars[i].PercentOfTotal = percentOf(bars[i].Count, total)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		ri, rj := models.SeverityRank(bars[i].Alert), models.SeverityRank(bars[j].Alert)
		if ri != rj {
			return ri < rj
		}
		return bars[i].Platform < bars[j].Platform
	})

	out := ContentRisk{Bars: bars}
	if !models.IsAll(c.Platform) {
		sums := make(map[string]int)
		for _, b := range bars {
			sums[b.Alert] += b.Count
		}
		for _, sev := range models.Severities {
			out.Totals = append(out.Totals, CategoryCount{Category: sev, Count: sums[sev]})
		}
	}
	return out
}

func percentOf(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(n) / float64(total) * 100))
}

// TrendPoint is one platform's distinct alerted comment count for a month.
type TrendPoint struct {
	Month    time.Time `json:"month"`
	Platform string    `json:"platform"`
	Count    int       `json:"count"`
}

// CommentTrend is the monthly alerted-comment line chart. PeakMonth marks the
// earliest month holding the maximum count.
type CommentTrend struct {
	NoData    bool         `json:"no_data"`
	Points    []TrendPoint `json:"points"`
	PeakMonth *time.Time   `json:"peak_month,omitempty"`
}

// CommentTrends counts alerted comments per month and comment platform over
// the slider-selected range. The slider index must be built for the same
// caller and member selection.
func CommentTrends(events []models.Event, c models.Criteria, idx filter.SliderIndex, lo, hi int) CommentTrend {
	rows := filter.Apply(events,
		filter.User(c.User),
		filter.ValidCommentAlert(),
		filter.Member(c.Member),
		filter.Alert(c.Alert),
		filter.Slider(idx, lo, hi),
	)
	if len(rows) == 0 {
		return CommentTrend{NoData: true}
	}

	type key struct {
		month    time.Time
		platform string
	}
	sets := make(map[key]map[string]struct{})
	for _, e := range rows {
		k := key{month: monthStart(e.CommentedAt), platform: e.CommentPlatform}
		set, ok := sets[k]
		if !ok {
			set = make(map[string]struct{})
			sets[k] = set
		}
		set[e.CommentID] = struct{}{}
	}

	points := make([]TrendPoint, 0, len(sets))
	for k, set := range sets {
		points = append(points, TrendPoint{Month: k.month, Platform: k.platform, Count: len(set)})
	}
	sort.Slice(points, func(i, j int) bool {
		if !points[i].Month.Equal(points[j].Month) {
			return points[i].Month.Before(points[j].Month)
		}
		return points[i].Platform < points[j].Platform
	})

	peak := 0
	for i := range points {
		if points[i].Count > points[peak].Count {
			peak = i
		}
	}
	month := points[peak].Month
	return CommentTrend{Points: points, PeakMonth: &month}
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// CommentPie is the comment classification chart.
type CommentPie struct {
	NoData bool            `json:"no_data"`
	Slices []CategoryCount `json:"slices"`
	Total  int             `json:"total"`
}

// CommentClassification counts classified, alerted comments per
// classification, smallest first.
func CommentClassification(events []models.Event, c models.Criteria, now time.Time) CommentPie {
	rows := filter.Apply(events,
		filter.User(c.User),
		filter.ValidCommentResult(),
		filter.ValidCommentAlert(),
		filter.Time(filter.TimeWindow(c.Mode, c.Range, now)),
		filter.Member(c.Member),
		filter.Platform(c.Platform),
		filter.Alert(c.Alert),
	)
	if len(rows) == 0 {
		return CommentPie{NoData: true}
	}

	counts := CountDistinct(rows, commentResult, commentID)
	sortByCountAsc(counts)
	return CommentPie{Slices: counts, Total: sumCounts(counts)}
}
