// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Package filter provides the pure event predicates used by every analytics
// view and by report generation.
//
// Predicates are conjunctive and independent, so the order they are passed to
// Apply does not change the result. Apply never mutates its input slice.
//
//	rows := filter.Apply(events,
//	    filter.User(caller),
//	    filter.ValidContentAlert(),
//	    filter.Time(filter.TimeWindow(mode, rng, now)),
//	    filter.Member(member),
//	)
package filter

import (
	"strings"
	"time"

	"github.com/tomtom215/chatstat/internal/models"
)

// Predicate reports whether an event is kept.
type Predicate func(e *models.Event) bool

// Apply returns the events matching every predicate, in input order.
func Apply(events []models.Event, preds ...Predicate) []models.Event {
	out := make([]models.Event, 0, len(events))
	for i := range events {
		keep := true
		for _, p := range preds {
			if !p(&events[i]) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, events[i])
		}
	}
	return out
}

// All is the identity predicate.
func All() Predicate {
	return func(*models.Event) bool { return true }
}

// User keeps events owned by the given caller key.
func User(key string) Predicate {
	return func(e *models.Event) bool { return e.UserEmail == key }
}

// Time keeps events whose content creation time lies in w.
func Time(w Window) Predicate {
	return func(e *models.Event) bool { return w.Contains(e.CreatedAt) }
}

// CommentTime keeps events whose comment time lies in w.
func CommentTime(w Window) Predicate {
	return func(e *models.Event) bool { return w.Contains(e.CommentedAt) }
}

// CommentsSince keeps events commented at or after t.
func CommentsSince(t time.Time) Predicate {
	return func(e *models.Event) bool {
		return !e.CommentedAt.IsZero() && !e.CommentedAt.Before(t)
	}
}

// Member keeps events for one child. Empty or "all" disables the filter.
func Member(name string) Predicate {
	if models.IsAll(name) {
		return All()
	}
	return func(e *models.Event) bool { return e.ChildName == name }
}

// Platform keeps events from one platform. Empty or "all" disables the filter.
func Platform(platform string) Predicate {
	if models.IsAll(platform) {
		return All()
	}
	return func(e *models.Event) bool { return e.Platform == platform }
}

// Alert keeps events with one content alert severity. Empty or "all"
// disables the filter.
func Alert(alert string) Predicate {
	if models.IsAll(alert) {
		return All()
	}
	return func(e *models.Event) bool { return e.ContentAlert == alert }
}

// PlatformIn keeps events whose lower-cased platform is in the set.
func PlatformIn(platforms []string) Predicate {
	set := lowerSet(platforms)
	return func(e *models.Event) bool {
		_, ok := set[strings.ToLower(e.Platform)]
		return ok
	}
}

// AlertIn keeps events whose lower-cased content alert is in the set.
func AlertIn(alerts []string) Predicate {
	set := lowerSet(alerts)
	return func(e *models.Event) bool {
		_, ok := set[strings.ToLower(e.ContentAlert)]
		return ok
	}
}

// ValidContentAlert keeps events with a real content alert.
func ValidContentAlert() Predicate {
	return func(e *models.Event) bool { return models.IsValid(e.ContentAlert) }
}

// ValidContentResult keeps events with a real content classification.
func ValidContentResult() Predicate {
	return func(e *models.Event) bool { return models.IsValid(e.ContentResult) }
}

// ValidCommentAlert keeps events with a real comment alert.
func ValidCommentAlert() Predicate {
	return func(e *models.Event) bool { return models.IsValid(e.CommentAlert) }
}

// ValidCommentResult keeps events with a real comment classification.
func ValidCommentResult() Predicate {
	return func(e *models.Event) bool { return models.IsValid(e.CommentResult) }
}

// Slider keeps events whose comment date falls between the dates that the
// two slider positions resolve to, inclusive.
func Slider(idx SliderIndex, lo, hi int) Predicate {
	rng := idx.Range(lo, hi)
	return CommentTime(Window{Start: StartOfDay(rng.Start), End: EndOfDay(rng.End)})
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}
