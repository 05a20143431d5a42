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

// AreaPoint is one month × classification cell of the comment area chart.
type AreaPoint struct {
	Month   time.Time `json:"month"`
	Result  string    `json:"result"`
	Count   int       `json:"count"`
	Percent float64   `json:"percent"`
}

// ChildOverview is the per-child summary card. Each section has its own
// no-data flag because they are filtered differently.
type ChildOverview struct {
	NoData bool   `json:"no_data"`
	Title  string `json:"title"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	ID     string `json:"id"`

	PlatformsNoData bool            `json:"platforms_no_data"`
	Platforms       []CategoryShare `json:"platforms"`
	TotalPosts      int             `json:"total_posts"`

	Alerts []CategoryCount `json:"alerts"`

	ClassificationsNoData bool            `json:"classifications_no_data"`
	Classifications       []CategoryCount `json:"classifications"`

	CommentsNoData bool        `json:"comments_no_data"`
	Comments       []AreaPoint `json:"comments"`
}

// Overview summarizes one child: platform distribution, severity counts and
// content classifications inside the time window, plus a monthly comment
// classification series over the last year regardless of the window.
func Overview(events []models.Event, c models.Criteria, now time.Time) ChildOverview {
	member := filter.Apply(events, filter.User(c.User), filter.Member(c.Member))
	out := ChildOverview{Name: c.Member, Title: c.Member + " Overview - " + c.Mode.Label()}
	if len(member) == 0 || models.IsAll(c.Member) {
		out.NoData = true
		return out
	}
	out.Email = member[0].ChildEmail
	out.ID = member[0].ChildID

	windowed := filter.Apply(member, filter.Time(filter.TimeWindow(c.Mode, c.Range, now)))

	classified := filter.Apply(windowed, filter.ValidContentAlert(), filter.ValidContentResult())
	if len(classified) == 0 {
		out.PlatformsNoData = true
		out.ClassificationsNoData = true
	} else {
		platforms := NormalizePercentages(CountDistinct(classified, platform, contentID))
		sortSharesByPercent(platforms, true)
		out.Platforms = platforms
		for _, p := range platforms {
			out.TotalPosts += p.Count
		}

		counts := CountDistinct(classified, contentResult, contentID)
		sortByCountDesc(counts)
		out.Classifications = ZeroFill(counts, models.ContentCategories)
	}

	alerted := filter.Apply(windowed, filter.ValidContentAlert())
	bySeverity := make(map[string]int)
	for _, cc := range CountDistinct(alerted, contentAlert, contentID) {
		bySeverity[cc.Category] = cc.Count
	}
	for _, sev := range models.Severities {
		out.Alerts = append(out.Alerts, CategoryCount{Category: sev, Count: bySeverity[sev]})
	}

	out.Comments = commentArea(member, now)
	out.CommentsNoData = len(out.Comments) == 0
	return out
}

// commentArea builds the monthly comment classification series over the
// year before now, zero-filled across every month and classification seen.
func commentArea(events []models.Event, now time.Time) []AreaPoint {
	rows := filter.Apply(events,
		filter.ValidCommentAlert(),
		filter.ValidCommentResult(),
		filter.CommentsSince(now.AddDate(-1, 0, 0)),
	)
	if len(rows) == 0 {
		return nil
	}

	type key struct {
		month  time.Time
		result string
	}
	sets := make(map[key]map[string]struct{})
	months := make(map[time.Time]struct{})
	results := make(map[string]struct{})
	for _, e := range rows {
		k := key{month: monthStart(e.CommentedAt), result: e.CommentResult}
		set, ok := sets[k]
		if !ok {
			set = make(map[string]struct{})
			sets[k] = set
		}
		set[e.CommentID] = struct{}{}
		months[k.month] = struct{}{}
		results[k.result] = struct{}{}
	}

	monthTotals := make(map[time.Time]int)
	for k, set := range sets {
		monthTotals[k.month] += len(set)
	}

	points := make([]AreaPoint, 0, len(months)*len(results))
	for m := range months {
		for r := range results {
			n := len(sets[key{month: m, result: r}])
			p := AreaPoint{Month: m, Result: r, Count: n}
			if total := monthTotals[m]; total > 0 {
				p.Percent = float64(n) / float64(total) * 100
			}
			points = append(points, p)
		}
	}
	sort.Slice(points, func(i, j int) bool {
		if !points[i].Month.Equal(points[j].Month) {
			return points[i].Month.Before(points[j].Month)
		}
		if points[i].Count != points[j].Count {
			return points[i].Count < points[j].Count
		}
		return points[i].Result < points[j].Result
	})
	return points
}
