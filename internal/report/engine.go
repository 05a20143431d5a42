// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package report

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tomtom215/chatstat/internal/export"
	"github.com/tomtom215/chatstat/internal/filter"
	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/metadata"
	"github.com/tomtom215/chatstat/internal/metrics"
	"github.com/tomtom215/chatstat/internal/models"
	"github.com/tomtom215/chatstat/internal/shortener"
	"github.com/tomtom215/chatstat/internal/storage"
	"github.com/tomtom215/chatstat/internal/validation"
)

// PreviewPageSize is the number of rows per preview page.
const PreviewPageSize = 4

// ArtifactPrefix is the key prefix of generated documents.
const ArtifactPrefix = "report/"

// Engine failure classes. Validation failures are returned as
// *validation.RequestValidationError instead.
var (
	ErrDataUnavailable = errors.New("report: dataset unavailable")
	ErrRender          = errors.New("report: render failed")
	ErrStorage         = errors.New("report: storage failure")
)

// DatasetReader supplies the event snapshot.
type DatasetReader interface {
	GetDataset(ctx context.Context) ([]models.Event, error)
}

// MetadataWriter persists the record of a generated report.
type MetadataWriter interface {
	Post(ctx context.Context, rec models.ReportMetadata, ts time.Time) (string, error)
}

// Notifier is told about every stored report.
type Notifier interface {
	ReportGenerated(ctx context.Context, rec models.ReportMetadata) error
}

// Deps are the collaborators of an Engine. Notifier may be nil.
type Deps struct {
	Dataset   DatasetReader
	Objects   storage.ObjectStore
	Metadata  MetadataWriter
	Shortener shortener.Shortener
	Notifier  Notifier
}

// Options tunes an Engine. Zero values take defaults.
type Options struct {
	// PresignTTL is the lifetime of download links.
	PresignTTL time.Duration

	// Timeout bounds Generate once the request is accepted; client
	// cancellation does not stop it.
	Timeout time.Duration

	DefaultFormat string

	Now  func() time.Time
	Rand *rand.Rand
	Text TextGenerator
}

// Result is the outcome of Generate.
type Result struct {
	Rows        []models.ReportRow `json:"rows"`
	URL         string             `json:"url"`
	ArtifactKey string             `json:"artifact_key"`
	MetadataKey string             `json:"metadata_key"`
	Format      string             `json:"format"`
	ContentType string             `json:"-"`
	Data        []byte             `json:"-"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Engine filters the dataset for one child and synthesizes, renders and
// stores report documents.
type Engine struct {
	deps Deps
	opts Options
	rng  *lockedRand
}

// NewEngine wires an Engine.
func NewEngine(deps Deps, opts Options) *Engine {
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 15 * time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = models.FormatXLSX
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Text == nil {
		opts.Text = NewFakerText(0)
	}
	if deps.Shortener == nil {
		deps.Shortener = shortener.Noop{}
	}
	return &Engine{deps: deps, opts: opts, rng: &lockedRand{r: opts.Rand}}
}

// Validate checks a request before any data is touched.
func Validate(req *models.ReportRequest) error {
	if verr := validation.ValidateStruct(req); verr != nil {
		return verr
	}
	if _, err := models.ParseDateRange(req.TimeRange[0], req.TimeRange[1], time.UTC); err != nil {
		return validation.NewFieldError("timerange", "order", req.TimeRange, "timerange end must not be before start")
	}
	return nil
}

// Preview returns the rows a report would contain. It has no side effects.
func (e *Engine) Preview(ctx context.Context, req models.ReportRequest) ([]models.ReportRow, error) {
	if err := Validate(&req); err != nil {
		return nil, err
	}
	return e.rows(ctx, req)
}

// Replay re-previews a saved report from its stored request.
func (e *Engine) Replay(ctx context.Context, rec models.ReportMetadata) ([]models.ReportRow, error) {
	return e.Preview(ctx, rec.ReportRequest)
}

// PreviewPage returns 1-based page of rows, PreviewPageSize per page.
func PreviewPage(rows []models.ReportRow, page int) metadata.Page[models.ReportRow] {
	return metadata.Paginate(rows, page, PreviewPageSize)
}

// Generate renders and stores the report, presigns and shortens its link,
// then records its metadata. Metadata is written only after the artifact is
// stored.
func (e *Engine) Generate(ctx context.Context, req models.ReportRequest) (*Result, error) {
	if err := Validate(&req); err != nil {
		return nil, err
	}
	if req.FileType == "" {
		req.FileType = e.opts.DefaultFormat
	}
	renderer, err := export.For(req.FileType)
	if err != nil {
		return nil, validation.NewFieldError("filetype", "oneof", req.FileType, err.Error())
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.opts.Timeout)
	defer cancel()
	log := logging.Ctx(ctx)
	start := time.Now()

	rows, err := e.rows(ctx, req)
	if err != nil {
		metrics.RecordReportError("dataset")
		return nil, err
	}

	data, err := renderer.Render(rows)
	if err != nil {
		metrics.RecordReportError("render")
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	ts := e.opts.Now()
	artifactKey := ArtifactPath(renderer, ts)
	ctx = logging.ContextWithReportKey(ctx, artifactKey)
	log = logging.Ctx(ctx)
	if err := e.deps.Objects.Put(ctx, artifactKey, data, renderer.ContentType()); err != nil {
		metrics.RecordReportError("upload")
		return nil, fmt.Errorf("%w: upload %s: %v", ErrStorage, artifactKey, err)
	}

	longURL, err := e.deps.Objects.Presign(ctx, artifactKey, e.opts.PresignTTL)
	if err != nil {
		metrics.RecordReportError("presign")
		return nil, fmt.Errorf("%w: presign %s: %v", ErrStorage, artifactKey, err)
	}

	url, err := e.deps.Shortener.Shorten(ctx, longURL)
	if err != nil {
		metrics.RecordShortener("fallback")
		log.Warn().Err(err).Str("artifact", artifactKey).Msg("Shortening failed, returning presigned link")
		url = longURL
	}

	rec := models.ReportMetadata{
		ReportRequest: req,
		CreatedAt:     ts.UTC(),
		ArtifactKey:   artifactKey,
		URL:           url,
	}
	metaKey, err := e.deps.Metadata.Post(ctx, rec, ts)
	if err != nil {
		metrics.RecordReportError("metadata")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	rec.Key = metaKey

	if e.deps.Notifier != nil {
		if err := e.deps.Notifier.ReportGenerated(ctx, rec); err != nil {
			log.Warn().Err(err).Str("metadata", metaKey).Msg("Report event not published")
		}
	}

	metrics.RecordReport(renderer.Format(), len(rows), time.Since(start))
	log.Info().
		Str("artifact", artifactKey).
		Str("format", renderer.Format()).
		Int("rows", len(rows)).
		Dur("took", time.Since(start)).
		Msg("Report generated")

	return &Result{
		Rows:        rows,
		URL:         url,
		ArtifactKey: artifactKey,
		MetadataKey: metaKey,
		Format:      renderer.Format(),
		ContentType: renderer.ContentType(),
		Data:        data,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

// ArtifactPath returns report/<folder>/export_<ts>.<ext>.
func ArtifactPath(r export.Renderer, ts time.Time) string {
	return ArtifactPrefix + r.Folder() + "/export_" + metadata.Timestamp(ts) + "." + r.Format()
}

// rows filters the snapshot and synthesizes one row per kept event.
func (e *Engine) rows(ctx context.Context, req models.ReportRequest) ([]models.ReportRow, error) {
	events, err := e.deps.Dataset.GetDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	// Validate has already checked the range.
	rng, _ := models.ParseDateRange(req.TimeRange[0], req.TimeRange[1], e.opts.Now().Location())
	window := filter.Window{Start: filter.StartOfDay(rng.Start), End: filter.EndOfDay(rng.End)}

	kept := filter.Apply(events,
		filter.User(req.Email),
		filter.Member(req.Children),
		filter.Time(window),
		filter.PlatformIn(req.Platform),
		filter.AlertIn(req.Alert),
	)

	rows := make([]models.ReportRow, len(kept))
	for i, ev := range kept {
		rows[i] = models.ReportRow{
			Email:    ev.UserEmail,
			Name:     ev.ChildName,
			Platform: ev.Platform,
			DateTime: ev.CreatedAt,
			Alert:    ev.ContentAlert,
			Type:     req.ContentType[e.rng.IntN(len(req.ContentType))],
			Text:     e.opts.Text.Sentence(),
		}
	}
	return rows, nil
}
