// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/chatstat/internal/filter"
	"github.com/tomtom215/chatstat/internal/models"
)

const caller = "parent@chatstat.com"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// contentEvents builds n distinct alerted content events created at t.
func contentEvents(prefix string, n int, t time.Time, alert string) []models.Event {
	out := make([]models.Event, n)
	for i := range out {
		out[i] = models.Event{
			UserEmail:     caller,
			ChildName:     "Ana",
			Platform:      "Instagram",
			ContentID:     fmt.Sprintf("%s-%d", prefix, i),
			CreatedAt:     t,
			ContentAlert:  alert,
			ContentResult: "Violence & Threats",
		}
	}
	return out
}

// ===================================================================================================
// Resample Tests
// ===================================================================================================

func TestPeriodEnd(t *testing.T) {
	thu := time.Date(2025, time.August, 14, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		mode models.TimeMode
		want time.Time
	}{
		{models.ModeDaily, day(2025, time.August, 14)},
		{models.ModeWeekly, day(2025, time.August, 17)},
		{models.ModeMonthly, day(2025, time.August, 31)},
		{models.ModeQuarterly, day(2025, time.September, 30)},
		{models.ModeYearly, day(2025, time.December, 31)},
	}
	for _, tt := range tests {
		if got := PeriodEnd(tt.mode, thu); !got.Equal(tt.want) {
			t.Errorf("PeriodEnd(%s) = %v, want %v", tt.mode, got, tt.want)
		}
	}

	sunday := day(2025, time.August, 17)
	if got := PeriodEnd(models.ModeWeekly, sunday); !got.Equal(sunday) {
		t.Errorf("a Sunday ends its own week, got %v", got)
	}
	if got := PeriodEnd(models.ModeQuarterly, day(2024, time.February, 10)); !got.Equal(day(2024, time.March, 31)) {
		t.Errorf("Q1 end = %v", got)
	}
}

func TestResample_SingleBucketDeltaIsItsOwnCount(t *testing.T) {
	events := contentEvents("a", 4, time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC), "High")
	buckets := Resample(models.ModeMonthly, events, contentCreated, contentID)

	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}
	if buckets[0].Count != 4 || buckets[0].Delta != 4 {
		t.Errorf("bucket = %+v, want count 4 delta 4", buckets[0])
	}
}

func TestResample_TwoBucketDelta(t *testing.T) {
	// Most recent first the series reads [5, 8].
	events := append(
		contentEvents("old", 8, time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC), "High"),
		contentEvents("new", 5, time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC), "High")...,
	)
	buckets := Resample(models.ModeDaily, events, contentCreated, contentID)

	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(buckets))
	}
	if got := buckets[1].Delta; got != -3 {
		t.Errorf("latest delta = %d, want -3", got)
	}
	if got := buckets[0].Delta; got != 0 {
		t.Errorf("oldest delta = %d, want 0", got)
	}
}

func TestResample_FillsEmptyPeriods(t *testing.T) {
	events := append(
		contentEvents("jan", 2, day(2025, time.January, 15), "Low"),
		contentEvents("apr", 3, day(2025, time.April, 2), "Low")...,
	)
	buckets := Resample(models.ModeMonthly, events, contentCreated, contentID)

	want := []int{2, 0, 0, 3}
	if len(buckets) != len(want) {
		t.Fatalf("got %d buckets, want %d", len(buckets), len(want))
	}
	for i, n := range want {
		if buckets[i].Count != n {
			t.Errorf("bucket %d count = %d, want %d", i, buckets[i].Count, n)
		}
	}
	if !buckets[1].Date.Equal(day(2025, time.February, 28)) {
		t.Errorf("february label = %v", buckets[1].Date)
	}
	if buckets[3].Delta != 3 {
		t.Errorf("april delta = %d, want 3", buckets[3].Delta)
	}
}

func TestResample_CountsDistinctIDs(t *testing.T) {
	events := contentEvents("dup", 1, day(2025, time.May, 1), "High")
	events = append(events, events[0], events[0])
	buckets := Resample(models.ModeDaily, events, contentCreated, contentID)
	if buckets[0].Count != 1 {
		t.Errorf("count = %d, want 1", buckets[0].Count)
	}
}

// ===================================================================================================
// AlertCounts Tests
// ===================================================================================================

func TestAlertCounts_CurrentPeriod(t *testing.T) {
	now := time.Date(2025, time.August, 14, 9, 0, 0, 0, time.UTC)
	events := append(
		contentEvents("jul", 6, day(2025, time.July, 20), "High"),
		contentEvents("aug", 9, day(2025, time.August, 2), "Medium")...,
	)
	events = append(events, models.Event{UserEmail: caller, ContentID: "x", CreatedAt: now, ContentAlert: "No"})

	got := AlertCounts(events, models.Criteria{User: caller, Mode: models.ModeMonthly}, now)
	if got.NoData {
		t.Fatal("expected data")
	}
	if got.Count != 9 || got.Delta == nil || *got.Delta != 3 {
		t.Errorf("got count %d delta %v, want 9 and 3", got.Count, got.Delta)
	}
	if got.Comparison != "vs Last Month" {
		t.Errorf("comparison = %q", got.Comparison)
	}
}

func TestAlertCounts_NoCurrentPeriodIsNoData(t *testing.T) {
	now := time.Date(2025, time.August, 14, 9, 0, 0, 0, time.UTC)
	events := contentEvents("jul", 6, day(2025, time.July, 20), "High")

	got := AlertCounts(events, models.Criteria{User: caller, Mode: models.ModeMonthly}, now)
	if !got.NoData {
		t.Errorf("expected no data, got %+v", got)
	}
}

func TestAlertCounts_ClockOutsideUTC(t *testing.T) {
	created := time.Date(2025, time.August, 14, 10, 0, 0, 0, time.UTC)
	events := contentEvents("aug", 1, created, "High")

	for _, name := range []string{"America/New_York", "Asia/Kolkata"} {
		loc, err := time.LoadLocation(name)
		if err != nil {
			t.Skipf("tzdata unavailable: %v", err)
		}
		now := time.Date(2025, time.August, 14, 15, 0, 0, 0, loc)
		for _, mode := range []models.TimeMode{models.ModeDaily, models.ModeMonthly, models.ModeYearly} {
			got := AlertCounts(events, models.Criteria{User: caller, Mode: mode}, now)
			if got.NoData || got.Count != 1 {
				t.Errorf("%s %s: got %+v, want count 1", name, mode, got)
			}
		}
	}
}

func TestResampleIn_LabelsInTargetLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on the 15th is still the 14th five hours west.
	events := contentEvents("late", 1, time.Date(2025, time.August, 15, 2, 0, 0, 0, time.UTC), "High")

	buckets := ResampleIn(models.ModeDaily, events, contentCreated, contentID, loc)
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}
	want := time.Date(2025, time.August, 14, 0, 0, 0, 0, loc)
	if !buckets[0].Date.Equal(want) {
		t.Errorf("label = %v, want %v", buckets[0].Date, want)
	}
}

func TestAlertCounts_Custom(t *testing.T) {
	now := time.Date(2025, time.August, 14, 9, 0, 0, 0, time.UTC)
	events := append(
		contentEvents("in", 4, day(2025, time.June, 10), "High"),
		contentEvents("out", 2, day(2025, time.June, 20), "High")...,
	)
	c := models.Criteria{
		User:  caller,
		Mode:  models.ModeCustom,
		Range: models.DateRange{Start: day(2025, time.June, 1), End: day(2025, time.June, 15)},
	}

	got := AlertCounts(events, c, now)
	if got.NoData || got.Count != 4 {
		t.Errorf("got %+v, want count 4", got)
	}
	if got.Delta != nil {
		t.Error("custom mode must not report a delta")
	}

	c.Range = models.DateRange{Start: day(2024, time.June, 1), End: day(2024, time.June, 15)}
	if got := AlertCounts(events, c, now); !got.NoData {
		t.Error("expected no data for an empty custom range")
	}
}

func TestAlertCounts_ScopedToCaller(t *testing.T) {
	now := day(2025, time.August, 14)
	events := contentEvents("a", 3, now, "High")
	for i := range events {
		events[i].UserEmail = "someone-else@chatstat.com"
	}
	if got := AlertCounts(events, models.Criteria{User: caller, Mode: models.ModeDaily}, now); !got.NoData {
		t.Errorf("other users' events leaked into the KPI: %+v", got)
	}
}

// ===================================================================================================
// PlatformKPIs Tests
// ===================================================================================================

func TestPlatformKPIs(t *testing.T) {
	now := time.Date(2025, time.August, 14, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		{UserEmail: caller, Platform: "Tiktok", ContentID: "1", CreatedAt: now, ContentAlert: "High", ContentResult: "Other Toxic Content"},
		{UserEmail: caller, Platform: "Tiktok", ContentID: "2", CreatedAt: now, ContentAlert: "Low", ContentResult: "Violence & Threats"},
		{UserEmail: caller, Platform: "Tiktok", ContentID: "3", CreatedAt: now, ContentAlert: "Low", ContentResult: "Violence & Threats"},
		{UserEmail: caller, Platform: "Facebook", ContentID: "4", CreatedAt: now.AddDate(0, 0, -1), ContentAlert: "High", ContentResult: "Self Harm & Death"},
		{UserEmail: caller, Platform: "Facebook", ContentID: "5", CreatedAt: now, ContentAlert: "High", ContentResult: "Self Harm & Death"},
		{UserEmail: caller, Platform: "Facebook", ContentID: "6", CreatedAt: now, ContentAlert: "High", ContentResult: "No"},
	}

	got := PlatformKPIs(events, models.Criteria{User: caller, Mode: models.ModeDaily}, now)
	if got.NoData || len(got.Cards) != 2 {
		t.Fatalf("got %+v", got)
	}

	fb, tt := got.Cards[0], got.Cards[1]
	if fb.Platform != "Facebook" || tt.Platform != "Tiktok" {
		t.Fatalf("cards not sorted by platform: %s, %s", fb.Platform, tt.Platform)
	}
	if fb.Total != 1 || fb.Delta == nil || *fb.Delta != 0 {
		t.Errorf("facebook card = %+v", fb)
	}
	if tt.Total != 3 || tt.Classifications[0].Category != "Violence & Threats" || tt.Classifications[0].Count != 2 {
		t.Errorf("tiktok card = %+v", tt)
	}
	if tt.Delta == nil || *tt.Delta != 3 {
		t.Errorf("tiktok delta = %v, want 3", tt.Delta)
	}
}

func TestPlatformKPIs_AlertTitle(t *testing.T) {
	now := day(2025, time.August, 14)
	events := contentEvents("a", 1, now, "High")
	got := PlatformKPIs(events, models.Criteria{User: caller, Mode: models.ModeCustom, Alert: "High",
		Range: models.DateRange{Start: now, End: now}}, now)

	if len(got.Cards) != 1 {
		t.Fatalf("got %d cards", len(got.Cards))
	}
	if got.Cards[0].Title != "Instagram - High Alerts" {
		t.Errorf("title = %q", got.Cards[0].Title)
	}
	if got.Cards[0].Delta != nil {
		t.Error("custom mode cards must not carry a delta")
	}
}

func TestPlatformKPIs_Empty(t *testing.T) {
	if got := PlatformKPIs(nil, models.Criteria{User: caller, Mode: models.ModeDaily}, time.Now()); !got.NoData {
		t.Error("expected no data")
	}
}

// ===================================================================================================
// Percentage and Zero-Fill Tests
// ===================================================================================================

func TestNormalizePercentages_SumsToHundred(t *testing.T) {
	vectors := [][]int{
		{1, 1, 1},
		{1, 2},
		{3, 3, 3, 1},
		{7},
		{1, 1, 1, 1, 1, 1},
		{5, 0, 0},
		{13, 29, 41, 2, 9},
		{1, 1, 1, 1, 1, 1, 1},
	}
	for seed := 1; seed < 60; seed++ {
		vectors = append(vectors, []int{seed % 7, seed%11 + 1, seed % 5, seed%3 + 2})
	}

	for _, v := range vectors {
		counts := make([]CategoryCount, len(v))
		for i, n := range v {
			counts[i] = CategoryCount{Category: fmt.Sprintf("c%02d", i), Count: n}
		}
		shares := NormalizePercentages(counts)
		sum := 0
		for _, s := range shares {
			sum += s.Percent
		}
		if sum != 100 {
			t.Errorf("%v: percentages sum to %d", v, sum)
		}
	}
}

func TestNormalizePercentages_TieBreakSmallestKey(t *testing.T) {
	counts := []CategoryCount{
		{Category: "Violence & Threats", Count: 1},
		{Category: "Other Toxic Content", Count: 1},
		{Category: "Self Harm & Death", Count: 1},
	}
	shares := NormalizePercentages(counts)

	want := map[string]int{"Other Toxic Content": 34, "Self Harm & Death": 33, "Violence & Threats": 33}
	for _, s := range shares {
		if s.Percent != want[s.Category] {
			t.Errorf("%s = %d, want %d", s.Category, s.Percent, want[s.Category])
		}
	}
	if shares[0].Category != "Violence & Threats" {
		t.Error("input order must be preserved")
	}
}

func TestNormalizePercentages_ZeroTotal(t *testing.T) {
	shares := NormalizePercentages([]CategoryCount{{Category: "a"}, {Category: "b"}})
	for _, s := range shares {
		if s.Percent != 0 {
			t.Errorf("%s = %d, want 0", s.Category, s.Percent)
		}
	}
}

func TestZeroFill_Severities(t *testing.T) {
	now := day(2025, time.August, 14)
	events := []models.Event{
		{UserEmail: caller, ChildName: "Ana", Platform: "Instagram", ContentID: "1", CreatedAt: now, ContentAlert: "High"},
		{UserEmail: caller, ChildName: "Ana", Platform: "Instagram", ContentID: "2", CreatedAt: now, ContentAlert: "Medium"},
		{UserEmail: caller, ChildName: "Ana", Platform: "Instagram", ContentID: "3", CreatedAt: now, ContentAlert: "High"},
	}

	got := ContentRiskBars(events, models.Criteria{User: caller, Mode: models.ModeDaily, Member: "Ana"}, now)
	counts := map[string]int{}
	for _, b := range got.Bars {
		counts[b.Alert] = b.Count
	}
	if counts["High"] != 2 || counts["Medium"] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if n, ok := counts["Low"]; !ok || n != 0 {
		t.Errorf("Low must be zero-filled, got %v (present %v)", n, ok)
	}
	if got.Bars[0].Alert != "High" || got.Bars[2].Alert != "Low" {
		t.Errorf("bars not in severity order: %+v", got.Bars)
	}
}

func TestZeroFill_KeepsExistingOrder(t *testing.T) {
	got := ZeroFill([]CategoryCount{{Category: "Low", Count: 4}}, models.Severities)
	if len(got) != 3 || got[0].Category != "Low" || got[1].Category != "High" || got[2].Category != "Medium" {
		t.Errorf("got %+v", got)
	}
}

// ===================================================================================================
// Chart Tests
// ===================================================================================================

func TestCategories_LegendHasEveryCategory(t *testing.T) {
	now := day(2025, time.August, 14)
	events := contentEvents("v", 3, now, "High")
	events = append(events, models.Event{UserEmail: caller, ContentID: "s", CreatedAt: now, ContentAlert: "Low", ContentResult: "Self Harm & Death"})

	got := Categories(events, models.Criteria{User: caller, Mode: models.ModeDaily}, now)
	if got.NoData {
		t.Fatal("expected data")
	}
	if len(got.Bar) != 2 {
		t.Errorf("bar has %d sections, want 2", len(got.Bar))
	}
	if len(got.Legend) != len(models.ContentCategories) {
		t.Errorf("legend has %d entries, want %d", len(got.Legend), len(models.ContentCategories))
	}
	if got.Legend[0].Category != "Violence & Threats" || got.Legend[0].Percent != 75 {
		t.Errorf("legend head = %+v", got.Legend[0])
	}
	if got.Bar[0].Percent > got.Bar[1].Percent {
		t.Error("bar must be sorted ascending")
	}
}

func TestContentClassification_Radial(t *testing.T) {
	now := day(2025, time.August, 14)
	events := contentEvents("v", 3, now, "High")
	events = append(events, models.Event{UserEmail: caller, ContentID: "s", CreatedAt: now, ContentAlert: "Low", ContentResult: "Self Harm & Death"})

	got := ContentClassification(events, models.Criteria{User: caller, Mode: models.ModeDaily, Platform: "Instagram"}, now)
	if got.NoData || len(got.Slices) != 1 {
		t.Fatalf("got %+v", got)
	}
	if got.Slices[0].Radial != 270 {
		t.Errorf("radial = %v, want 270", got.Slices[0].Radial)
	}
	if got.Title != "Content Risk Classification - Instagram" {
		t.Errorf("title = %q", got.Title)
	}

	all := ContentClassification(events, models.Criteria{User: caller, Mode: models.ModeDaily}, now)
	if len(all.Slices) != 2 || all.Slices[0].Radial != 67.5 || all.Slices[1].Radial != 202.5 {
		t.Errorf("slices = %+v", all.Slices)
	}
}

func TestCommentTrends(t *testing.T) {
	idx := filter.SliderIndex{First: day(2025, time.January, 1), Max: 180}
	mk := func(id string, at time.Time, platform, alert string) models.Event {
		return models.Event{UserEmail: caller, CommentID: id, CommentedAt: at, CommentPlatform: platform, CommentAlert: alert}
	}
	events := []models.Event{
		mk("1", day(2025, time.January, 3), "Tiktok", "High"),
		mk("2", day(2025, time.February, 3), "Tiktok", "High"),
		mk("3", day(2025, time.February, 9), "Tiktok", "Low"),
		mk("4", day(2025, time.February, 9), "Youtube", "Low"),
		mk("5", day(2025, time.March, 9), "Youtube", ""),
		mk("6", day(2024, time.December, 9), "Youtube", "High"),
	}

	got := CommentTrends(events, models.Criteria{User: caller}, idx, 0, idx.Max)
	if got.NoData || len(got.Points) != 3 {
		t.Fatalf("got %+v", got)
	}
	if got.PeakMonth == nil || !got.PeakMonth.Equal(day(2025, time.February, 1)) {
		t.Errorf("peak month = %v", got.PeakMonth)
	}

	narrowed := CommentTrends(events, models.Criteria{User: caller}, idx, 0, 5)
	if len(narrowed.Points) != 1 {
		t.Errorf("slider range not applied: %+v", narrowed.Points)
	}
}

func TestCommentClassification(t *testing.T) {
	now := day(2025, time.August, 14)
	events := []models.Event{
		{UserEmail: caller, CreatedAt: now, CommentID: "1", CommentAlert: "High", CommentResult: "Offensive"},
		{UserEmail: caller, CreatedAt: now, CommentID: "2", CommentAlert: "High", CommentResult: "Offensive"},
		{UserEmail: caller, CreatedAt: now, CommentID: "3", CommentAlert: "Low", CommentResult: "Cyberbullying"},
		{UserEmail: caller, CreatedAt: now, CommentID: "4", CommentAlert: "No", CommentResult: "Cyberbullying"},
	}
	got := CommentClassification(events, models.Criteria{User: caller, Mode: models.ModeDaily}, now)
	if got.Total != 3 || got.Slices[0].Category != "Cyberbullying" {
		t.Errorf("got %+v", got)
	}
}

func TestOverview(t *testing.T) {
	now := time.Date(2025, time.August, 14, 12, 0, 0, 0, time.UTC)
	events := []models.Event{
		{UserEmail: caller, ChildName: "Ana", ChildID: "c1", ChildEmail: "ana@chatstat.com", Platform: "Tiktok", ContentID: "1",
			CreatedAt: now, ContentAlert: "High", ContentResult: "Violence & Threats",
			CommentID: "k1", CommentedAt: day(2025, time.July, 2), CommentAlert: "Low", CommentResult: "Offensive"},
		{UserEmail: caller, ChildName: "Ana", Platform: "Youtube", ContentID: "2",
			CreatedAt: now, ContentAlert: "Low", ContentResult: "Violence & Threats",
			CommentID: "k2", CommentedAt: day(2025, time.June, 2), CommentAlert: "High", CommentResult: "Cyberbullying"},
	}

	got := Overview(events, models.Criteria{User: caller, Mode: models.ModeDaily, Member: "Ana"}, now)
	if got.NoData {
		t.Fatal("expected data")
	}
	if got.Email != "ana@chatstat.com" || got.Title != "Ana Overview - Daily" {
		t.Errorf("header = %q %q", got.Email, got.Title)
	}
	if got.TotalPosts != 2 || got.Platforms[0].Percent+got.Platforms[1].Percent != 100 {
		t.Errorf("platforms = %+v", got.Platforms)
	}
	if len(got.Alerts) != 3 || got.Alerts[2].Category != "Low" || got.Alerts[2].Count != 1 {
		t.Errorf("alerts = %+v", got.Alerts)
	}
	if len(got.Classifications) != len(models.ContentCategories) {
		t.Errorf("classifications not zero-filled: %+v", got.Classifications)
	}
	// 2 months x 2 results
	if len(got.Comments) != 4 {
		t.Errorf("comment area = %+v", got.Comments)
	}

	if none := Overview(events, models.Criteria{User: caller, Member: "Zed"}, now); !none.NoData {
		t.Error("unknown member must be no data")
	}
}

func TestOptions(t *testing.T) {
	events := []models.Event{
		{UserEmail: caller, UserName: "Pat Parent", UserPlan: "premium", ChildName: "Ben", Platform: "Youtube", ContentAlert: "Low"},
		{UserEmail: caller, ChildName: "Ana", Platform: "Tiktok", ContentAlert: "High"},
		{UserEmail: caller, ChildName: "no", Platform: "Tiktok", ContentAlert: "No"},
		{UserEmail: "x@y.z", ChildName: "Cid", Platform: "Snapchat", ContentAlert: "Medium"},
	}

	if got := Members(events, caller); len(got) != 2 || got[0] != "Ana" {
		t.Errorf("members = %v", got)
	}
	if got := PlatformOptions(events, caller, "Ben"); len(got) != 1 || got[0] != "Youtube" {
		t.Errorf("platforms = %v", got)
	}
	if got := AlertOptions(events, caller); len(got) != 2 || got[0] != "High" || got[1] != "Low" {
		t.Errorf("alerts = %v", got)
	}
	p, ok := UserProfile(events, caller)
	if !ok || p.Plan != "premium" {
		t.Errorf("profile = %+v %v", p, ok)
	}
}
