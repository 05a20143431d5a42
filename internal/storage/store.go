// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/chatstat/internal/config"
	"github.com/tomtom215/chatstat/internal/metrics"
)

// Sentinel errors shared by every backend.
var (
	ErrNotFound   = errors.New("storage: object not found")
	ErrInvalidKey = errors.New("storage: invalid object key")
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// ObjectStore is a flat key/value blob store with presigned reads.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Backend is an ObjectStore that owns resources.
type Backend interface {
	ObjectStore
	Close() error
}

// Open builds the configured backend, wrapped with per-call timeouts and
// metrics. publicURL is the base of local download links.
func Open(ctx context.Context, cfg config.StorageConfig, publicURL string) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch cfg.Backend {
	case "s3":
		b, err = NewS3Store(ctx, cfg.S3)
	case "badger":
		b, err = NewBadgerStore(cfg.Badger, publicURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(cfg.Backend, b, cfg.Timeout), nil
}

// validateKey rejects empty, absolute and traversing keys.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}

// instrumented bounds each call with a timeout and records its duration.
type instrumented struct {
	name    string
	inner   Backend
	timeout time.Duration
}

// Instrument wraps b so every call is bounded by timeout (when positive) and
// reported under the backend name.
func Instrument(name string, b Backend, timeout time.Duration) Backend {
	return &instrumented{name: name, inner: b, timeout: timeout}
}

func (s *instrumented) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *instrumented) Put(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	start := time.Now()
	err := s.inner.Put(ctx, key, data, contentType)
	metrics.RecordStorageOp(s.name, "put", time.Since(start), err)
	return err
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	start := time.Now()
	data, err := s.inner.Get(ctx, key)
	metrics.RecordStorageOp(s.name, "get", time.Since(start), err)
	return data, err
}

func (s *instrumented) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	start := time.Now()
	infos, err := s.inner.List(ctx, prefix)
	metrics.RecordStorageOp(s.name, "list", time.Since(start), err)
	return infos, err
}

func (s *instrumented) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	start := time.Now()
	url, err := s.inner.Presign(ctx, key, ttl)
	metrics.RecordStorageOp(s.name, "presign", time.Since(start), err)
	return url, err
}

func (s *instrumented) Close() error {
	return s.inner.Close()
}

// Unwrap returns the wrapped backend.
func (s *instrumented) Unwrap() Backend {
	return s.inner
}
