// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/chatstat/internal/models"
)

// DuckDBSource reads the dataset from a local CSV or Parquet file through an
// in-memory DuckDB connection.
type DuckDBSource struct {
	conn *sql.DB
	path string
	loc  *time.Location
}

// NewDuckDBSource opens an in-memory DuckDB. The file is read on every
// ReadAll so an updated export is picked up on the next reload.
func NewDuckDBSource(path string) (*DuckDBSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("dataset file %s: %w", path, err)
	}

	// Disable auto-install/auto-load; read_csv and read_parquet are built in.
	conn, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	conn.SetMaxOpenConns(1)

	return &DuckDBSource{conn: conn, path: path, loc: time.UTC}, nil
}

// In sets the location of the file's wall-clock timestamps.
func (s *DuckDBSource) In(loc *time.Location) *DuckDBSource {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// scanQuery selects every dataset column as text.
func (s *DuckDBSource) scanQuery() string {
	literal := "'" + strings.ReplaceAll(s.path, "'", "''") + "'"
	from := fmt.Sprintf("read_csv(%s, header = true, all_varchar = true)", literal)
	if ext := strings.ToLower(filepath.Ext(s.path)); ext == ".parquet" || ext == ".pq" {
		from = fmt.Sprintf("read_parquet(%s)", literal)
	}

	cols := make([]string, len(EventColumns))
	for i, c := range EventColumns {
		cols[i] = fmt.Sprintf(`COALESCE(CAST("%s" AS VARCHAR), '')`, c)
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + from
}

// ReadAll runs the scan and converts each row into an Event.
func (s *DuckDBSource) ReadAll(ctx context.Context) ([]models.Event, error) {
	rows, err := s.conn.QueryContext(ctx, s.scanQuery())
	if err != nil {
		return nil, fmt.Errorf("query dataset %s: %w", s.path, err)
	}
	defer rows.Close()

	events := []models.Event{}
	vals := make([]string, len(EventColumns))
	ptrs := make([]any, len(vals))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	index := make(map[string]int, len(EventColumns))
	for i, c := range EventColumns {
		index[c] = i
	}
	cell := func(col string) string {
		return strings.TrimSpace(vals[index[col]])
	}

	for line := 1; rows.Next(); line++ {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", line, err)
		}
		ev, err := eventFromCells(cell, s.loc)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dataset: %w", err)
	}
	return events, nil
}

// Close releases the connection.
func (s *DuckDBSource) Close() error {
	return s.conn.Close()
}
