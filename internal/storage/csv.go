// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tomtom215/chatstat/internal/models"
)

// EventTimeLayout is the timestamp format of dataset cells.
const EventTimeLayout = "2006-01-02 15:04:05"

// EventColumns is the dataset header, in export order.
var EventColumns = []string{
	"email_users", "name_users", "plan_users",
	"id_childrens", "name_childrens", "email_childrens",
	"platform_contents", "id_contents", "createTime_contents", "alert_contents", "result_contents",
	"id_comments", "commentTime_comments", "platform_comments", "alert_comments", "result_comments",
}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("dataset: missing column")

// CSVSource reads the dataset from one CSV object.
type CSVSource struct {
	store ObjectStore
	key   string
	loc   *time.Location
}

// NewCSVSource reads key from store on every ReadAll. Timestamps are read
// as UTC wall clock until In sets the dataset's location.
func NewCSVSource(store ObjectStore, key string) *CSVSource {
	return &CSVSource{store: store, key: key, loc: time.UTC}
}

// In sets the location of the dataset's wall-clock timestamps.
func (s *CSVSource) In(loc *time.Location) *CSVSource {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// ReadAll downloads and parses the dataset.
func (s *CSVSource) ReadAll(ctx context.Context) ([]models.Event, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %s: %w", s.key, err)
	}
	return ParseEventsIn(bytes.NewReader(data), s.loc)
}

// ParseEvents decodes a dataset CSV with UTC timestamps.
func ParseEvents(r io.Reader) ([]models.Event, error) {
	return ParseEventsIn(r, time.UTC)
}

// ParseEventsIn decodes a dataset CSV whose timestamps are wall clock in
// loc. Columns are matched by header name and unknown columns are ignored.
// A content row must carry a creation time; an empty comment time leaves
// CommentedAt zero.
func ParseEventsIn(r io.Reader, loc *time.Location) ([]models.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []models.Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range EventColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var events []models.Event
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		cell := func(col string) string {
			if i := idx[col]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		ev, err := eventFromCells(cell, loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

func eventFromCells(cell func(string) string, loc *time.Location) (models.Event, error) {
	created, err := parseEventTime(cell("createTime_contents"), loc)
	if err != nil {
		return models.Event{}, fmt.Errorf("createTime_contents: %w", err)
	}
	if created.IsZero() {
		return models.Event{}, fmt.Errorf("createTime_contents is empty")
	}
	commented, err := parseEventTime(cell("commentTime_comments"), loc)
	if err != nil {
		return models.Event{}, fmt.Errorf("commentTime_comments: %w", err)
	}

	return models.Event{
		UserEmail:       cell("email_users"),
		UserName:        cell("name_users"),
		UserPlan:        cell("plan_users"),
		ChildID:         cell("id_childrens"),
		ChildName:       cell("name_childrens"),
		ChildEmail:      cell("email_childrens"),
		Platform:        cell("platform_contents"),
		ContentID:       cell("id_contents"),
		CreatedAt:       created,
		ContentAlert:    cell("alert_contents"),
		ContentResult:   cell("result_contents"),
		CommentID:       cell("id_comments"),
		CommentedAt:     commented,
		CommentPlatform: cell("platform_comments"),
		CommentAlert:    cell("alert_comments"),
		CommentResult:   cell("result_comments"),
	}, nil
}

var eventTimeLayouts = []string{
	EventTimeLayout,
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.DateOnly,
}

// parseEventTime parses a dataset timestamp as wall clock in loc (UTC when
// nil). Empty and "nan" cells yield the zero time.
func parseEventTime(v string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if v == "" || strings.EqualFold(v, "nan") || strings.EqualFold(v, "nat") {
		return time.Time{}, nil
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}

// WriteEvents encodes events as a dataset CSV with the EventColumns header.
// Timestamps are written as wall clock in their own location.
func WriteEvents(w io.Writer, events []models.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EventColumns); err != nil {
		return err
	}
	for _, e := range events {
		if err := cw.Write([]string{
			e.UserEmail, e.UserName, e.UserPlan,
			e.ChildID, e.ChildName, e.ChildEmail,
			e.Platform, e.ContentID, formatEventTime(e.CreatedAt), e.ContentAlert, e.ContentResult,
			e.CommentID, formatEventTime(e.CommentedAt), e.CommentPlatform, e.CommentAlert, e.CommentResult,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatEventTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(EventTimeLayout)
}
