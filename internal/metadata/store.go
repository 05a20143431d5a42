// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Package metadata persists one JSON record per generated report and lists
// them newest-first for the saved-reports view. Records are append-only.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/models"
	"github.com/tomtom215/chatstat/internal/storage"
)

// Prefix is the key prefix of every metadata record.
const Prefix = "metadata/"

// PageSize is the number of records per saved-reports page.
const PageSize = 5

// ErrNotFound is returned by Get for an unknown record key.
var ErrNotFound = errors.New("metadata: record not found")

// fetchConcurrency bounds parallel record downloads in ListAll.
const fetchConcurrency = 8

// Timestamp renders ts as 2006_01_02_15_04_05_<microseconds>, the identifier
// shared by a report's artifact and metadata keys.
func Timestamp(ts time.Time) string {
	// UTC keeps keys ordered across DST changes in the dataset zone.
	ts = ts.UTC()
	return ts.Format("2006_01_02_15_04_05") + fmt.Sprintf("_%06d", ts.Nanosecond()/1000)
}

// KeyFor returns the metadata key for ts.
func KeyFor(ts time.Time) string {
	return Prefix + Timestamp(ts) + ".json"
}

// Store reads and writes metadata records in an object store.
type Store struct {
	objects storage.ObjectStore
}

// New returns a Store over objects.
func New(objects storage.ObjectStore) *Store {
	return &Store{objects: objects}
}

// Post writes rec under the key derived from ts and returns that key.
func (s *Store) Post(ctx context.Context, rec models.ReportMetadata, ts time.Time) (string, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = ts.UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	key := KeyFor(ts)
	if err := s.objects.Put(ctx, key, data, "application/json"); err != nil {
		return "", fmt.Errorf("write metadata %s: %w", key, err)
	}
	return key, nil
}

// Get reads one record by key, with or without the Prefix.
func (s *Store) Get(ctx context.Context, key string) (*models.ReportMetadata, error) {
	if !strings.HasPrefix(key, Prefix) {
		key = Prefix + key
	}
	data, err := s.objects.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata %s: %w", key, err)
	}
	var rec models.ReportMetadata
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", key, err)
	}
	rec.Key = key
	return &rec, nil
}

// ListAll reads every record, stamps LastModified from storage and sorts
// newest first (ties by key, descending). Undecodable objects are skipped
// and logged.
func (s *Store) ListAll(ctx context.Context) ([]models.ReportMetadata, error) {
	infos, err := s.objects.List(ctx, Prefix)
	if err != nil {
		return nil, fmt.Errorf("list metadata: %w", err)
	}

	records := make([]*models.ReportMetadata, len(infos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, info := range infos {
		if !strings.HasSuffix(info.Key, ".json") {
			continue
		}
		g.Go(func() error {
			data, err := s.objects.Get(gctx, info.Key)
			if err != nil {
				return fmt.Errorf("read metadata %s: %w", info.Key, err)
			}
			var rec models.ReportMetadata
			if err := json.Unmarshal(data, &rec); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("key", info.Key).Msg("Skipping undecodable metadata record")
				return nil
			}
			rec.Key = info.Key
			rec.LastModified = info.LastModified
			records[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.ReportMetadata, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, *r)
		}
	}
	SortNewestFirst(out)
	return out, nil
}

// SortNewestFirst orders records by LastModified descending, then key
// descending.
func SortNewestFirst(records []models.ReportMetadata) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.LastModified.Equal(b.LastModified) {
			return a.LastModified.After(b.LastModified)
		}
		return a.Key > b.Key
	})
}

// List keeps the records posted by requester, preserving order.
func List(records []models.ReportMetadata, requester string) []models.ReportMetadata {
	out := make([]models.ReportMetadata, 0)
	for _, r := range records {
		if r.Email == requester {
			out = append(out, r)
		}
	}
	return out
}
