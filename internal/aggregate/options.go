// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package aggregate

import (
	"sort"

	"github.com/tomtom215/chatstat/internal/filter"
	"github.com/tomtom215/chatstat/internal/models"
)

// Profile identifies the account owning a caller key.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Plan  string `json:"plan"`
}

// UserProfile returns the caller's profile from the first matching event.
func UserProfile(events []models.Event, user string) (Profile, bool) {
	for i := range events {
		if events[i].UserEmail == user {
			return Profile{Name: events[i].UserName, Email: events[i].UserEmail, Plan: events[i].UserPlan}, true
		}
	}
	return Profile{}, false
}

// Members lists the caller's children, sorted.
func Members(events []models.Event, user string) []string {
	return distinctValues(filter.Apply(events, filter.User(user)), func(e *models.Event) string { return e.ChildName })
}

// PlatformOptions lists the platforms seen for the caller and member, sorted.
func PlatformOptions(events []models.Event, user, member string) []string {
	return distinctValues(filter.Apply(events, filter.User(user), filter.Member(member)), platform)
}

// AlertOptions lists the caller's valid content alert severities, most severe first.
func AlertOptions(events []models.Event, user string) []string {
	alerts := distinctValues(filter.Apply(events, filter.User(user)), contentAlert)
	sort.SliceStable(alerts, func(i, j int) bool {
		return models.SeverityRank(alerts[i]) < models.SeverityRank(alerts[j])
	})
	return alerts
}

func distinctValues(events []models.Event, value func(*models.Event) string) []string {
	seen := make(map[string]struct{})
	for i := range events {
		v := value(&events[i])
		if !models.IsValid(v) {
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
