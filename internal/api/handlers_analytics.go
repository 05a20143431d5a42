// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/chatstat/internal/aggregate"
	"github.com/tomtom215/chatstat/internal/carousel"
	"github.com/tomtom215/chatstat/internal/filter"
	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/models"
)

// noData is the payload of views with nothing to show.
type noData struct {
	NoData bool `json:"no_data"`
}

// Profile returns the caller's account details.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, "Profile", nil, func(events []models.Event, c models.Criteria, _ time.Time) interface{} {
		p, ok := aggregate.UserProfile(events, c.User)
		if !ok {
			return noData{NoData: true}
		}
		return p
	})
}

// MemberOptions lists the caller's children.
func (h *Handler) MemberOptions(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, "MemberOptions", nil, func(events []models.Event, c models.Criteria, _ time.Time) interface{} {
		return aggregate.Members(events, c.User)
	})
}

// PlatformOptions lists platforms, optionally for one member.
func (h *Handler) PlatformOptions(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, "PlatformOptions", nil, func(events []models.Event, c models.Criteria, _ time.Time) interface{} {
		return aggregate.PlatformOptions(events, c.User, c.Member)
	})
}

// AlertOptions lists alert severities, most severe first.
func (h *Handler) AlertOptions(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, "AlertOptions", nil, func(events []models.Event, c models.Criteria, _ time.Time) interface{} {
		return aggregate.AlertOptions(events, c.User)
	})
}

// AlertKPI returns the number-of-alerts card.
func (h *Handler) AlertKPI(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, "AlertKPI", nil, func(events []models.Event, c models.Criteria, now time.Time) interface{} {
		return aggregate.AlertCounts(events, c, now)
	})
}

// platformSlot is one carousel position: a platform card or the trailing
// "add more" card.
type platformSlot struct {
	Card    *aggregate.PlatformCard `json:"card,omitempty"`
	AddMore bool                    `json:"add_more,omitempty"`
}

// platformCarousel is the windowed platform KPI response.
type platformCarousel struct {
	NoData bool           `json:"no_data"`
	Index  int            `json:"index"`
	Count  int            `json:"count"`
	Items  []platformSlot `json:"items"`
}

// PlatformKPI returns one carousel window of platform cards. index is the
// client's current position and nav moves it backward or forward.
func (h *Handler) PlatformKPI(w http.ResponseWriter, r *http.Request) {
	index := getIntParam(r, "index", 0)
	dir := carousel.ParseDirection(r.URL.Query().Get("nav"))
	extra := map[string]interface{}{"index": index, "nav": dir}

	h.execute(w, r, "PlatformKPI", extra, func(events []models.Event, c models.Criteria, now time.Time) interface{} {
		cards := aggregate.PlatformKPIs(events, c, now)
		if cards.NoData {
			return platformCarousel{NoData: true, Items: []platformSlot{}}
		}

		slots := make([]platformSlot, 0, len(cards.Cards)+1)
		for i := range cards.Cards {
			slots = append(slots, platformSlot{Card: &cards.Cards[i]})
		}
		slots = append(slots, platformSlot{AddMore: true})

		page := carousel.Window(slots, carousel.DefaultWindow, index, dir)
		return platformCarousel{Index: page.Index, Count: page.Count, Items: page.Items}
	})
}

// ClassificationChart returns the radial content classification chart.
func (h *Handler) ClassificationChart(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, "ClassificationChart", nil, func(events []models.Event, c models.Criteria, now time.Time) interface{} {
		return aggregate.ContentClassification(events, c, now)
	})
}

// CategoriesChart returns risk category shares.
func (h *Handler) CategoriesChart(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, "CategoriesChart", nil, func(events []models.Event, c models.Criteria, now time.Time) interface{} {
		return aggregate.Categories(events, c, now)
	})
}

// ContentRiskChart returns severity bars per platform.
func (h *Handler) ContentRiskChart(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, "ContentRiskChart", nil, func(events []models.Event, c models.Criteria, now time.Time) interface{} {
		return aggregate.ContentRiskBars(events, c, now)
	})
}

// CommentClassificationChart returns the comment classification pie.
func (h *Handler) CommentClassificationChart(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, "CommentClassificationChart", nil, func(events []models.Event, c models.Criteria, now time.Time) interface{} {
		return aggregate.CommentClassification(events, c, now)
	})
}

// sliderFor builds the slider index from the caller's alerted comments for
// the member selection.
func sliderFor(events []models.Event, c models.Criteria, now time.Time) filter.SliderIndex {
	return filter.NewSliderIndex(filter.Apply(events,
		filter.User(c.User),
		filter.ValidCommentAlert(),
		filter.Member(c.Member),
	), now)
}

// CommentTrendChart returns the monthly comment trend between slider
// positions start and end. Missing positions select the full range.
func (h *Handler) CommentTrendChart(w http.ResponseWriter, r *http.Request) {
	c := sliderCriteria(r)
	lo := getIntParam(r, "start", 0)
	hi := getIntParam(r, "end", -1)
	extra := map[string]int{"start": lo, "end": hi}

	h.executeWith(w, r, c, "CommentTrendChart", extra, func(events []models.Event, c models.Criteria, now time.Time) interface{} {
		idx := sliderFor(events, c, now)
		end := hi
		if end < 0 {
			end = idx.Max
		}
		return aggregate.CommentTrends(events, c, idx, lo, end)
	})
}

// sliderResponse describes the slider for clients.
type sliderResponse struct {
	filter.SliderIndex
	Dates map[string]string   `json:"dates"`
	Marks []filter.SliderMark `json:"marks"`
}

// Slider returns the slider index for a member.
func (h *Handler) Slider(w http.ResponseWriter, r *http.Request) {
	c := sliderCriteria(r)
	h.executeWith(w, r, c, "Slider", nil, func(events []models.Event, c models.Criteria, now time.Time) interface{} {
		idx := sliderFor(events, c, now)
		return sliderResponse{SliderIndex: idx, Dates: idx.Dates(), Marks: idx.Marks()}
	})
}

// sliderCriteria reads criteria for slider views, where start and end
// are slider positions rather than dates.
func sliderCriteria(r *http.Request) models.Criteria {
	q := r.URL.Query()
	return models.Criteria{
		User:     logging.UserFromContext(r.Context()),
		Mode:     models.ParseTimeMode(q.Get("time")),
		Member:   selector(q.Get("member")),
		Platform: selector(q.Get("platform")),
		Alert:    selector(q.Get("alert")),
	}
}

// Overview returns the per-child summary.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, "Overview", nil, func(events []models.Event, c models.Criteria, now time.Time) interface{} {
		return aggregate.Overview(events, c, now)
	})
}
