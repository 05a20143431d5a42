// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Package shortener turns presigned download links into short URLs through
// the TinyURL create endpoint, with bounded retry behind a circuit breaker.
package shortener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/chatstat/internal/config"
	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/metrics"
)

// BreakerName labels the circuit breaker in logs and metrics.
const BreakerName = "tinyurl"

// ErrEmptyResponse is returned when the endpoint answers 200 with no URL.
var ErrEmptyResponse = errors.New("shortener: empty response")

// Shortener shortens one URL.
type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// Noop returns links unchanged. It is used when shortening is disabled.
type Noop struct{}

// Shorten returns longURL.
func (Noop) Shorten(_ context.Context, longURL string) (string, error) {
	return longURL, nil
}

// New returns the configured shortener.
func New(cfg config.ShortenerConfig) Shortener {
	if !cfg.Enabled {
		return Noop{}
	}
	return NewTinyURL(cfg, nil)
}

// TinyURL calls a TinyURL-compatible api-create endpoint.
type TinyURL struct {
	endpoint string
	client   *http.Client
	attempts int
	backoff  time.Duration
	cb       *gobreaker.CircuitBreaker[string]
}

// NewTinyURL builds a client. A nil httpClient gets one bounded by
// cfg.Timeout.
func NewTinyURL(cfg config.ShortenerConfig, httpClient *http.Client) *TinyURL {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &TinyURL{
		endpoint: cfg.Endpoint,
		client:   httpClient,
		attempts: attempts,
		backoff:  cfg.Backoff,
		cb:       cb,
	}
}

// Shorten tries up to the configured attempts, doubling the wait between
// them. An open breaker fails at once.
func (t *TinyURL) Shorten(ctx context.Context, longURL string) (string, error) {
	var err error
	delay := t.backoff

	for attempt := 0; attempt < t.attempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		var short string
		short, err = t.cb.Execute(func() (string, error) {
			return t.call(ctx, longURL)
		})
		if err == nil {
			metrics.RecordShortener("success")
			return short, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordShortener("rejected")
			return "", err
		}

		if attempt < t.attempts-1 {
			logging.Ctx(ctx).Warn().Err(err).
				Int("attempt", attempt+1).
				Int("max_attempts", t.attempts).
				Dur("delay", delay).
				Msg("Shorten attempt failed, retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			delay *= 2
		}
	}

	metrics.RecordShortener("failure")
	return "", fmt.Errorf("shorten after %d attempts: %w", t.attempts, err)
}

func (t *TinyURL) call(ctx context.Context, longURL string) (string, error) {
	u := t.endpoint + "?" + url.Values{"url": {longURL}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("shortener request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read shortener response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shortener returned status %d", resp.StatusCode)
	}
	short := strings.TrimSpace(string(body))
	if short == "" {
		return "", ErrEmptyResponse
	}
	return short, nil
}

// State reports the breaker state.
func (t *TinyURL) State() gobreaker.State {
	return t.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
