// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Package seed generates a synthetic monitoring dataset for development
// and demos. The distributions follow the production alert mix: most
// content does not alert, and high severity alerts are rare.
package seed

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/tomtom215/chatstat/internal/models"
)

// Child is a monitored child account.
type Child struct {
	ID    string
	Name  string
	Email string
}

// Account is a parent account. Share is its fraction of generated rows.
type Account struct {
	Name     string
	Email    string
	Plan     string
	Share    float64
	Children []Child
}

// DefaultAccounts are the demo parents.
func DefaultAccounts() []Account {
	return []Account{
		{
			Name: "Kris Lubiniecki", Email: "klubiniecki@chatstat.com", Plan: "AI Guardian", Share: 0.25,
			Children: []Child{
				{ID: "c-emma", Name: "Emma", Email: "Emma@chatstat.com"},
				{ID: "c-oliver", Name: "Oliver", Email: "Oliver@chatstat.com"},
			},
		},
		{
			Name: "Jaskeerat Singh", Email: "jaskeerat.nonu@chatstat.com", Plan: "Privacy Protector", Share: 0.40,
			Children: []Child{
				{ID: "c-naman", Name: "Naman", Email: "Naman@chatstat.com"},
				{ID: "c-aparna", Name: "Aparna", Email: "Aparna@chatstat.com"},
				{ID: "c-kiran", Name: "Kiran", Email: "Kiran@chatstat.com"},
			},
		},
		{
			Name: "Teng", Email: "j.teng@chatstat.com", Plan: "Essential Safety", Share: 0.35,
			Children: []Child{
				{ID: "c-liwei", Name: "Li Wei", Email: "Li.Wei@chatstat.com"},
				{ID: "c-chenjie", Name: "Chen Jie", Email: "Chen.Jie@chatstat.com"},
				{ID: "c-wangfang", Name: "Wang Fang", Email: "Wang.Fang@chatstat.com"},
				{ID: "c-zhangwei", Name: "Zhang Wei", Email: "Zhang.Wei@chatstat.com"},
			},
		},
	}
}

type weighted struct {
	value  string
	weight float64
}

var (
	alertWeights = []weighted{
		{models.AlertNone, 0.70}, {models.AlertLow, 0.20}, {models.AlertMedium, 0.08}, {models.AlertHigh, 0.02},
	}
	contentWeights = []weighted{
		{"Mental & Emotional Health", 0.45},
		{"Sexual & Inappropriate Content", 0.25},
		{"Other Toxic Content", 0.15},
		{"Violence & Threats", 0.09},
		{"Self Harm & Death", 0.06},
	}
	commentWeights = []weighted{
		{"No", 0.35},
		{"Cyberbullying", 0.20},
		{"Offensive", 0.15},
		{"Sexually Suggestive", 0.12},
		{"Sexually Explicit", 0.10},
		{"Other", 0.08},
	}
)

// Options configures Generate. Zero values take defaults.
type Options struct {
	Rows     int
	Start    time.Time
	End      time.Time
	Seed     uint64
	Accounts []Account

	// Location is the zone event timestamps are expressed in. Default UTC.
	Location *time.Location
}

// Generator produces events from a seeded faker.
type Generator struct {
	faker *gofakeit.Faker
	opts  Options
}

// New creates a generator. Seed 0 picks a random seed.
func New(opts Options) *Generator {
	if opts.Rows <= 0 {
		opts.Rows = 20000
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.End.IsZero() {
		now := time.Now().In(opts.Location)
		opts.End = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	}
	if opts.Start.IsZero() {
		opts.Start = opts.End.AddDate(-2, 0, 0)
	}
	if len(opts.Accounts) == 0 {
		opts.Accounts = DefaultAccounts()
	}
	return &Generator{faker: gofakeit.New(opts.Seed), opts: opts}
}

// Generate returns opts.Rows events split across accounts by Share, sorted
// by content creation time. Content times are uniform in [Start, End] and
// each comment follows its content by up to one day.
func (g *Generator) Generate() []models.Event {
	var total float64
	for _, a := range g.opts.Accounts {
		total += a.Share
	}

	events := make([]models.Event, 0, g.opts.Rows)
	for i, a := range g.opts.Accounts {
		n := int(math.Round(float64(g.opts.Rows) * a.Share / total))
		if i == len(g.opts.Accounts)-1 {
			n = g.opts.Rows - len(events)
		}
		for j := 0; j < n; j++ {
			events = append(events, g.event(a))
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	return events
}

func (g *Generator) event(a Account) models.Event {
	f := g.faker
	child := a.Children[f.IntRange(0, len(a.Children)-1)]
	platform := f.RandomString(models.Platforms)

	created := f.DateRange(g.opts.Start, g.opts.End).Truncate(time.Second).In(g.opts.Location)
	commented := created.Add(time.Duration(f.IntRange(0, 1440)) * time.Minute)

	commentAlert := g.pick(alertWeights)
	if f.Float64() < 0.2 {
		commentAlert = ""
	}

	return models.Event{
		UserEmail:       a.Email,
		UserName:        a.Name,
		UserPlan:        a.Plan,
		ChildID:         child.ID,
		ChildName:       child.Name,
		ChildEmail:      child.Email,
		Platform:        platform,
		ContentID:       f.UUID(),
		CreatedAt:       created,
		ContentAlert:    g.pick(alertWeights),
		ContentResult:   g.pick(contentWeights),
		CommentID:       f.UUID(),
		CommentedAt:     commented,
		CommentPlatform: platform,
		CommentAlert:    commentAlert,
		CommentResult:   g.pick(commentWeights),
	}
}

// pick draws one value by cumulative weight.
func (g *Generator) pick(ws []weighted) string {
	var total float64
	for _, w := range ws {
		total += w.weight
	}
	r := g.faker.Float64() * total
	for _, w := range ws {
		if r < w.weight {
			return w.value
		}
		r -= w.weight
	}
	return ws[len(ws)-1].value
}

// SampleRequest builds a plausible report request for one of the
// account's children, covering the last 30 days of end.
func (g *Generator) SampleRequest(a Account, end time.Time) models.ReportRequest {
	f := g.faker
	child := a.Children[f.IntRange(0, len(a.Children)-1)]

	platforms := make([]string, 0, 2)
	for _, p := range []string{f.RandomString(models.Platforms), f.RandomString(models.Platforms)} {
		p = strings.ToLower(p)
		if len(platforms) == 0 || platforms[0] != p {
			platforms = append(platforms, p)
		}
	}

	format := models.FormatXLSX
	if f.Bool() {
		format = models.FormatPDF
	}
	return models.ReportRequest{
		Email:       a.Email,
		Children:    child.Name,
		TimeRange:   []string{end.AddDate(0, 0, -30).Format(models.DateLayout), end.Format(models.DateLayout)},
		Platform:    platforms,
		Alert:       []string{"high", "medium"},
		ContentType: []string{"text", "image"},
		FileType:    format,
	}
}

// Accounts returns the configured accounts.
func (g *Generator) Accounts() []Account {
	return g.opts.Accounts
}
