// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package services

import (
	"context"
	"time"

	"github.com/tomtom215/chatstat/internal/logging"
)

// ExpiringCache reloads whatever snapshots have outlived their TTL.
// Satisfied by *dataset.Cache.
type ExpiringCache interface {
	RefreshExpired(ctx context.Context) error
}

// CacheRefreshService checks the dataset cache on a fixed interval and
// reloads expired snapshots off the request path. Reload failures are
// logged and retried on the next tick; the cache keeps its last good
// snapshot meanwhile.
type CacheRefreshService struct {
	cache    ExpiringCache
	interval time.Duration
	name     string
}

// NewCacheRefreshService creates the refresher. A non-positive interval
// means one minute.
func NewCacheRefreshService(cache ExpiringCache, interval time.Duration) *CacheRefreshService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheRefreshService{
		cache:    cache,
		interval: interval,
		name:     "dataset-refresher",
	}
}

// Serve implements suture.Service.
func (s *CacheRefreshService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.cache.RefreshExpired(ctx); err != nil {
				logging.Warn().Err(err).Msg("Scheduled dataset refresh failed")
			}
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (s *CacheRefreshService) String() string {
	return s.name
}
