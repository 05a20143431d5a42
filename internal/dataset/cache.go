// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Package dataset memoizes the monitoring event table and the report index
// for a configurable TTL.
//
// Reads never block on a reload once a snapshot exists: an expired snapshot
// is served while one background reload runs. Concurrent first loads collapse
// into a single fetch. A failed reload keeps the last good snapshot.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/metrics"
	"github.com/tomtom215/chatstat/internal/models"
)

// Dataset names, used as singleflight keys and metric labels.
const (
	NameEvents  = "events"
	NameReports = "reports"
)

// DefaultTTL is how long a snapshot is trusted.
const DefaultTTL = 12 * time.Hour

// ErrNoSource is returned when a Cache is built without a source.
var ErrNoSource = errors.New("dataset: source is nil")

// Source loads the full event table.
type Source interface {
	ReadAll(ctx context.Context) ([]models.Event, error)
}

// IndexSource loads every stored report metadata record.
type IndexSource interface {
	ListAll(ctx context.Context) ([]models.ReportMetadata, error)
}

// Options configures a Cache. Zero values take defaults.
type Options struct {
	TTL time.Duration

	// LoadTimeout bounds every fetch, including background ones.
	LoadTimeout time.Duration

	// RetryBackoff is the minimum gap between background reload attempts
	// after a failure.
	RetryBackoff time.Duration

	// OnReload runs after a snapshot is replaced.
	OnReload func(name string)

	// Now is the clock; tests inject a fake.
	Now func() time.Time
}

// Cache holds the event and report-index snapshots. It is safe for
// concurrent use.
type Cache struct {
	events  *loader[models.Event]
	reports *loader[models.ReportMetadata]

	// refreshMu serializes RefreshReportIndex; losers skip the refresh.
	refreshMu sync.Mutex
}

// New builds a Cache over the two sources.
func New(events Source, index IndexSource, opts Options) (*Cache, error) {
	if events == nil || index == nil {
		return nil, ErrNoSource
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 2 * time.Minute
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	group := &singleflight.Group{}
	return &Cache{
		events:  newLoader(NameEvents, events.ReadAll, group, opts),
		reports: newLoader(NameReports, index.ListAll, group, opts),
	}, nil
}

// GetDataset returns the event snapshot, loading it on first use.
func (c *Cache) GetDataset(ctx context.Context) ([]models.Event, error) {
	return c.events.get(ctx)
}

// GetReportIndex returns the report-index snapshot, loading it on first use.
func (c *Cache) GetReportIndex(ctx context.Context) ([]models.ReportMetadata, error) {
	return c.reports.get(ctx)
}

// WarmUp loads both snapshots concurrently and returns the first error.
func (c *Cache) WarmUp(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := c.events.load(gctx); err != nil {
			return fmt.Errorf("warm up %s: %w", NameEvents, err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := c.reports.load(gctx); err != nil {
			return fmt.Errorf("warm up %s: %w", NameReports, err)
		}
		return nil
	})
	return g.Wait()
}

// RefreshReportIndex re-fetches the report index unless another refresh is
// already running, in which case it returns at once. Failures are logged.
func (c *Cache) RefreshReportIndex(ctx context.Context) {
	if !c.refreshMu.TryLock() {
		logging.Ctx(ctx).Debug().Msg("Report index refresh already running, skipping")
		return
	}
	defer c.refreshMu.Unlock()

	// Drop any in-flight fetch so the index includes the write that
	// triggered this refresh.
	c.reports.group.Forget(NameReports)
	if _, err := c.reports.load(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Report index refresh failed, keeping current snapshot")
	}
}

// RefreshExpired synchronously reloads every snapshot past its TTL. The
// supervised refresher calls it on a ticker.
func (c *Cache) RefreshExpired(ctx context.Context) error {
	var errs []error
	if c.events.expired() {
		if _, err := c.events.load(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.reports.expired() {
		if _, err := c.reports.load(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Invalidate marks both snapshots stale. The next read serves them once more
// and triggers a background reload.
func (c *Cache) Invalidate() {
	c.events.invalidate()
	c.reports.invalidate()
}

// FetchedAt reports when the event snapshot was last loaded.
func (c *Cache) FetchedAt() time.Time {
	return c.events.fetchedAt()
}

type snapshot[T any] struct {
	items     []T
	fetchedAt time.Time
	stale     bool

	// seq is the sequence number of the fetch that produced the snapshot.
	seq uint64
}

type loader[T any] struct {
	name  string
	fetch func(ctx context.Context) ([]T, error)
	group *singleflight.Group
	opts  Options

	mu       sync.RWMutex
	snap     *snapshot[T]
	failedAt time.Time

	// fetches numbers fetches in start order.
	fetches uint64
}

func newLoader[T any](name string, fetch func(context.Context) ([]T, error), group *singleflight.Group, opts Options) *loader[T] {
	return &loader[T]{name: name, fetch: fetch, group: group, opts: opts}
}

func (l *loader[T]) current() *snapshot[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

func (l *loader[T]) isExpired(s *snapshot[T]) bool {
	return s == nil || s.stale || l.opts.Now().Sub(s.fetchedAt) >= l.opts.TTL
}

func (l *loader[T]) expired() bool {
	return l.isExpired(l.current())
}

func (l *loader[T]) fetchedAt() time.Time {
	if s := l.current(); s != nil {
		return s.fetchedAt
	}
	return time.Time{}
}

func (l *loader[T]) invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.snap != nil {
		cp := *l.snap
		cp.stale = true
		l.snap = &cp
	}
}

func (l *loader[T]) get(ctx context.Context) ([]T, error) {
	s := l.current()
	if s == nil {
		return l.load(ctx)
	}
	if l.isExpired(s) {
		l.mu.RLock()
		backingOff := !l.failedAt.IsZero() && l.opts.Now().Sub(l.failedAt) < l.opts.RetryBackoff
		l.mu.RUnlock()
		if backingOff {
			return s.items, nil
		}
		metrics.DatasetStaleServes.WithLabelValues(l.name).Inc()
		// DoChan shares the in-flight reload if one is already running.
		l.group.DoChan(l.name, func() (interface{}, error) {
			return l.fetchAndSwap(context.WithoutCancel(ctx))
		})
	}
	return s.items, nil
}

// load fetches through the singleflight group and waits for the result.
// With a snapshot present a fetch error yields the old snapshot and the
// error.
func (l *loader[T]) load(ctx context.Context) ([]T, error) {
	ch := l.group.DoChan(l.name, func() (interface{}, error) {
		return l.fetchAndSwap(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			if s := l.current(); s != nil {
				return s.items, res.Err
			}
			return nil, res.Err
		}
		return res.Val.([]T), nil
	case <-ctx.Done():
		if s := l.current(); s != nil {
			return s.items, nil
		}
		return nil, ctx.Err()
	}
}

func (l *loader[T]) fetchAndSwap(ctx context.Context) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.LoadTimeout)
	defer cancel()

	l.mu.Lock()
	l.fetches++
	seq := l.fetches
	l.mu.Unlock()

	start := time.Now()
	items, err := l.fetch(ctx)
	metrics.RecordDatasetLoad(l.name, len(items), time.Since(start), err)
	if err != nil {
		l.mu.Lock()
		l.failedAt = l.opts.Now()
		l.mu.Unlock()
		logging.Ctx(ctx).Error().Err(err).Str("dataset", l.name).Msg("Dataset load failed")
		return nil, fmt.Errorf("load %s: %w", l.name, err)
	}
	if items == nil {
		items = []T{}
	}

	l.mu.Lock()
	// A fetch that started after this one has already landed; a forgotten
	// singleflight call must not roll the snapshot back.
	if cur := l.snap; cur != nil && cur.seq > seq {
		l.mu.Unlock()
		logging.Ctx(ctx).Debug().Str("dataset", l.name).Msg("Discarding superseded dataset fetch")
		return cur.items, nil
	}
	l.snap = &snapshot[T]{items: items, fetchedAt: l.opts.Now(), seq: seq}
	l.failedAt = time.Time{}
	l.mu.Unlock()

	logging.Ctx(ctx).Info().
		Str("dataset", l.name).
		Int("rows", len(items)).
		Dur("took", time.Since(start)).
		Msg("Dataset snapshot loaded")

	if l.opts.OnReload != nil {
		l.opts.OnReload(l.name)
	}
	return items, nil
}
