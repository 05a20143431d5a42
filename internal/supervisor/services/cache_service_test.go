// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeExpiringCache struct {
	calls atomic.Int32
	err   error
}

func (f *fakeExpiringCache) RefreshExpired(ctx context.Context) error {
	f.calls.Add(1)
	return f.err
}

func TestCacheRefreshService_Ticks(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"successful refresh", nil},
		{"failures do not stop the loop", errors.New("bucket unreachable")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &fakeExpiringCache{err: tt.err}
			svc := NewCacheRefreshService(cache, 10*time.Millisecond)

			ctx, cancel := context.WithTimeout(context.Background(), 75*time.Millisecond)
			defer cancel()

			err := svc.Serve(ctx)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() = %v, want deadline exceeded", err)
			}
			if got := cache.calls.Load(); got < 3 {
				t.Errorf("RefreshExpired called %d times, want at least 3", got)
			}
		})
	}
}

func TestNewCacheRefreshService_Defaults(t *testing.T) {
	svc := NewCacheRefreshService(&fakeExpiringCache{}, 0)
	if svc.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", svc.interval)
	}
	if svc.String() != "dataset-refresher" {
		t.Errorf("String() = %q", svc.String())
	}
}
