// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package models

import (
	"strings"
	"time"
)

// Selector value meaning "do not filter on this dimension".
const SelectorAll = "all"

// Alert severities as they appear in the dataset.
const (
	AlertHigh   = "High"
	AlertMedium = "Medium"
	AlertLow    = "Low"
	AlertNone   = "No"
)

// Severities is the fixed, ordered severity set used for zero-fill and ordering.
var Severities = []string{AlertHigh, AlertMedium, AlertLow}

// ContentCategories is the fixed set of content risk classifications.
var ContentCategories = []string{
	"Mental & Emotional Health",
	"Other Toxic Content",
	"Violence & Threats",
	"Self Harm & Death",
	"Sexual & Inappropriate Content",
}

// CommentClassifications lists the comment risk labels the generator emits.
var CommentClassifications = []string{
	"Cyberbullying",
	"Offensive",
	"Sexually Suggestive",
	"Sexually Explicit",
	"Other",
}

// Platforms supported by the monitoring agent.
var Platforms = []string{"Facebook", "Instagram", "Tiktok", "Twitter", "Youtube", "Snapchat"}

// Event is one row of the monitoring dataset: a content item and, optionally,
// one comment on it. Column names match the CSV export of the dataset source.
type Event struct {
	UserEmail string `json:"email_users"`
	UserName  string `json:"name_users"`
	UserPlan  string `json:"plan_users"`

	ChildID    string `json:"id_childrens"`
	ChildName  string `json:"name_childrens"`
	ChildEmail string `json:"email_childrens"`

	Platform      string    `json:"platform_contents"`
	ContentID     string    `json:"id_contents"`
	CreatedAt     time.Time `json:"createTime_contents"`
	ContentAlert  string    `json:"alert_contents"`
	ContentResult string    `json:"result_contents"`

	CommentID       string    `json:"id_comments"`
	CommentedAt     time.Time `json:"commentTime_comments"`
	CommentPlatform string    `json:"platform_comments"`
	CommentAlert    string    `json:"alert_comments"`
	CommentResult   string    `json:"result_comments"`
}

// IsValid reports whether an alert or classification value carries a real
// signal. Empty values, the "no" sentinel and the "nan" rendering of a
// missing cell are all invalid, case-insensitively.
func IsValid(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "no", "nan":
		return false
	}
	return true
}

// IsAll reports whether a selector disables its filter.
func IsAll(selector string) bool {
	return selector == "" || selector == SelectorAll
}

// SeverityRank orders severities High < Medium < Low; unknown values sort last.
func SeverityRank(alert string) int {
	for i, s := range Severities {
		if strings.EqualFold(s, alert) {
			return i
		}
	}
	return len(Severities)
}
