// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package shortener

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/chatstat/internal/config"
)

func testConfig(endpoint string) config.ShortenerConfig {
	return config.ShortenerConfig{
		Enabled:  true,
		Endpoint: endpoint,
		Timeout:  time.Second,
		Attempts: 2,
		Backoff:  time.Millisecond,
	}
}

func TestNoop(t *testing.T) {
	got, err := New(config.ShortenerConfig{Enabled: false}).Shorten(context.Background(), "https://long.test/x")
	if err != nil || got != "https://long.test/x" {
		t.Errorf("Noop.Shorten() = %q, %v", got, err)
	}
}

func TestTinyURL_Success(t *testing.T) {
	var gotURL atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL.Store(r.URL.Query().Get("url"))
		fmt.Fprint(w, "https://tinyurl.com/abc\n")
	}))
	defer srv.Close()

	long := "https://bucket.test/report/pdf/export.pdf?X-Amz-Signature=a&b=c"
	short, err := NewTinyURL(testConfig(srv.URL), srv.Client()).Shorten(context.Background(), long)
	if err != nil {
		t.Fatalf("Shorten() error = %v", err)
	}
	if short != "https://tinyurl.com/abc" {
		t.Errorf("Shorten() = %q", short)
	}
	if gotURL.Load() != long {
		t.Errorf("server saw url=%v, want %q", gotURL.Load(), long)
	}
}

func TestTinyURL_RetriesOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "https://tinyurl.com/ok")
	}))
	defer srv.Close()

	short, err := NewTinyURL(testConfig(srv.URL), srv.Client()).Shorten(context.Background(), "https://x.test")
	if err != nil || short != "https://tinyurl.com/ok" {
		t.Errorf("Shorten() = %q, %v", short, err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestTinyURL_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK) // empty body
	}))
	defer srv.Close()

	_, err := NewTinyURL(testConfig(srv.URL), srv.Client()).Shorten(context.Background(), "https://x.test")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Shorten() error = %v, want ErrEmptyResponse", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestTinyURL_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Attempts = 1
	s := NewTinyURL(cfg, srv.Client())
	for i := 0; i < 5; i++ {
		s.Shorten(context.Background(), "https://x.test")
	}
	if s.State() != gobreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", s.State())
	}

	before := calls.Load()
	if _, err := s.Shorten(context.Background(), "https://x.test"); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Shorten() error = %v, want ErrOpenState", err)
	}
	if calls.Load() != before {
		t.Error("open breaker should not reach the endpoint")
	}
}

func TestTinyURL_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "https://tinyurl.com/abc")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewTinyURL(testConfig(srv.URL), srv.Client()).Shorten(ctx, "https://x.test"); !errors.Is(err, context.Canceled) {
		t.Errorf("Shorten() error = %v, want context.Canceled", err)
	}
}
