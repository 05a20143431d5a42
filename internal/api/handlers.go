// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package api

import (
	"context"
	"time"

	"github.com/tomtom215/chatstat/internal/cache"
	"github.com/tomtom215/chatstat/internal/config"
	"github.com/tomtom215/chatstat/internal/models"
	"github.com/tomtom215/chatstat/internal/report"
	"github.com/tomtom215/chatstat/internal/storage"
)

// DataSource is the read side of the dataset cache.
type DataSource interface {
	GetDataset(ctx context.Context) ([]models.Event, error)
	GetReportIndex(ctx context.Context) ([]models.ReportMetadata, error)
	FetchedAt() time.Time
}

// Reports previews and generates report documents.
type Reports interface {
	Preview(ctx context.Context, req models.ReportRequest) ([]models.ReportRow, error)
	Generate(ctx context.Context, req models.ReportRequest) (*report.Result, error)
	Replay(ctx context.Context, rec models.ReportMetadata) ([]models.ReportRow, error)
}

// Downloads serves presigned links of the embedded backend.
type Downloads interface {
	Download(ctx context.Context, key, expires, signature string) ([]byte, storage.ObjectInfo, error)
}

// Handler holds the dependencies of every HTTP handler.
type Handler struct {
	data      DataSource
	reports   Reports
	downloads Downloads
	cache     *cache.Cache
	cfg       *config.Config
	now       func() time.Time
	startTime time.Time
}

// Deps are the collaborators of a Handler. Downloads and Cache may be nil.
type Deps struct {
	Data      DataSource
	Reports   Reports
	Downloads Downloads
	Cache     *cache.Cache
	Now       func() time.Time
}

// NewHandler creates a handler set.
func NewHandler(cfg *config.Config, deps Deps) *Handler {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		data:      deps.Data,
		reports:   deps.Reports,
		downloads: deps.Downloads,
		cache:     deps.Cache,
		cfg:       cfg,
		now:       now,
		startTime: now(),
	}
}

// previewPageSize is the configured preview page size.
func (h *Handler) previewPageSize() int {
	if h.cfg != nil && h.cfg.Report.PreviewPageSize > 0 {
		return h.cfg.Report.PreviewPageSize
	}
	return report.PreviewPageSize
}
