// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

//go:build integration

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/chatstat/internal/models"
)

func TestDuckDBSource_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Event{
		{UserEmail: "p@x.io", ChildName: "Sam", Platform: "Tiktok", CreatedAt: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC), ContentAlert: "High"},
		{UserEmail: "p@x.io", ChildName: "Ana", Platform: "Youtube", CreatedAt: time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC), CommentedAt: time.Date(2024, 2, 3, 1, 0, 0, 0, time.UTC)},
	}
	if err := WriteEvents(f, want); err != nil {
		t.Fatal(err)
	}
	f.Close()

	src, err := NewDuckDBSource(path)
	if err != nil {
		t.Fatalf("NewDuckDBSource() error = %v", err)
	}
	defer src.Close()

	got, err := src.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ReadAll() = %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNewDuckDBSource_MissingFile(t *testing.T) {
	if _, err := NewDuckDBSource(filepath.Join(t.TempDir(), "none.csv")); err == nil {
		t.Error("expected error for a missing file")
	}
}
