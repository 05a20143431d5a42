// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package aggregate

import (
	"math"
	"sort"

	"github.com/tomtom215/chatstat/internal/models"
)

// CategoryCount is a distinct-id count for one category value.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryShare adds an integer percentage to a CategoryCount.
type CategoryShare struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Percent  int    `json:"percent"`
}

func contentResult(e *models.Event) string { return e.ContentResult }
func contentAlert(e *models.Event) string  { return e.ContentAlert }
func commentResult(e *models.Event) string { return e.CommentResult }
func platform(e *models.Event) string      { return e.Platform }

// distinct counts unique ids across events.
func distinct(events []models.Event, id func(*models.Event) string) int {
	seen := make(map[string]struct{}, len(events))
	for i := range events {
		seen[id(&events[i])] = struct{}{}
	}
	return len(seen)
}

// CountDistinct groups events by key and counts unique ids per group.
// Groups are returned in ascending key order.
func CountDistinct(events []models.Event, key, id func(*models.Event) string) []CategoryCount {
	groups := make(map[string]map[string]struct{})
	for i := range events {
		k := key(&events[i])
		set, ok := groups[k]
		if !ok {
			set = make(map[string]struct{})
			groups[k] = set
		}
		set[id(&events[i])] = struct{}{}
	}

	out := make([]CategoryCount, 0, len(groups))
	for k, set := range groups {
		out = append(out, CategoryCount{Category: k, Count: len(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// ZeroFill appends every category of the known set that is missing from
// counts, with a zero count, in the order the set lists them.
func ZeroFill(counts []CategoryCount, categories []string) []CategoryCount {
	present := make(map[string]struct{}, len(counts))
	for _, c := range counts {
		present[c.Category] = struct{}{}
	}
	out := append([]CategoryCount(nil), counts...)
	for _, cat := range categories {
		if _, ok := present[cat]; !ok {
			out = append(out, CategoryCount{Category: cat})
		}
	}
	return out
}

// NormalizePercentages converts counts to integer percentages that sum to
// exactly 100 whenever the total is positive.
//
// Each share is rounded half-to-even, then the difference between 100 and the
// rounded sum is added to the largest rounded share. Among equal largest
// shares the one with the smallest category key absorbs the difference.
// Input order is preserved. A zero total yields all-zero percentages.
func NormalizePercentages(counts []CategoryCount) []CategoryShare {
	out := make([]CategoryShare, len(counts))
	total := sumCounts(counts)
	for i, c := range counts {
		out[i] = CategoryShare{Category: c.Category, Count: c.Count}
	}
	if total == 0 {
		return out
	}

	sum := 0
	for i := range out {
		out[i].Percent = int(math.RoundToEven(float64(out[i].Count) / float64(total) * 100))
		sum += out[i].Percent
	}

	largest := 0
	for i := 1; i < len(out); i++ {
		if out[i].Percent > out[largest].Percent ||
			(out[i].Percent == out[largest].Percent && out[i].Category < out[largest].Category) {
			largest = i
		}
	}
	out[largest].Percent += 100 - sum
	return out
}

func sumCounts(counts []CategoryCount) int {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total
}

// sortByCountDesc orders by count descending, then category ascending.
func sortByCountDesc(counts []CategoryCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Category < counts[j].Category
	})
}

// sortByCountAsc orders by count ascending, then category ascending.
func sortByCountAsc(counts []CategoryCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count < counts[j].Count
		}
		return counts[i].Category < counts[j].Category
	})
}

// sortSharesByPercent orders shares by percent, then category ascending.
func sortSharesByPercent(shares []CategoryShare, desc bool) {
	sort.SliceStable(shares, func(i, j int) bool {
		if shares[i].Percent != shares[j].Percent {
			if desc {
				return shares[i].Percent > shares[j].Percent
			}
			return shares[i].Percent < shares[j].Percent
		}
		return shares[i].Category < shares[j].Category
	})
}
