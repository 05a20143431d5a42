// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package report

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/chatstat/internal/export"
	"github.com/tomtom215/chatstat/internal/models"
	"github.com/tomtom215/chatstat/internal/storage"
	"github.com/tomtom215/chatstat/internal/validation"
)

// ============================================================================
// Fakes
// ============================================================================

// recorder logs the order of side effects across fakes.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.calls = append(r.calls, s)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeDataset struct {
	events []models.Event
	err    error
	calls  atomic.Int32
}

func (f *fakeDataset) GetDataset(context.Context) ([]models.Event, error) {
	f.calls.Add(1)
	return f.events, f.err
}

type fakeObjects struct {
	rec        *recorder
	putErr     error
	presignErr error
	puts       map[string][]byte
}

func (f *fakeObjects) Put(_ context.Context, key string, data []byte, _ string) error {
	f.rec.add("put:" + key)
	if f.putErr != nil {
		return f.putErr
	}
	f.puts[key] = data
	return nil
}

func (f *fakeObjects) Get(context.Context, string) ([]byte, error) {
	f.rec.add("get")
	return nil, storage.ErrNotFound
}

func (f *fakeObjects) List(context.Context, string) ([]storage.ObjectInfo, error) {
	f.rec.add("list")
	return nil, nil
}

func (f *fakeObjects) Presign(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.rec.add("presign")
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://bucket.test/" + key + "?ttl=" + ttl.String(), nil
}

type fakeMeta struct {
	rec     *recorder
	err     error
	records []models.ReportMetadata
}

func (f *fakeMeta) Post(_ context.Context, m models.ReportMetadata, ts time.Time) (string, error) {
	f.rec.add("metadata")
	if f.err != nil {
		return "", f.err
	}
	f.records = append(f.records, m)
	return "metadata/" + ts.Format("2006") + ".json", nil
}

type fakeShortener struct {
	rec *recorder
	err error
}

func (f *fakeShortener) Shorten(_ context.Context, long string) (string, error) {
	f.rec.add("shorten")
	if f.err != nil {
		return "", f.err
	}
	return "https://tiny.test/x", nil
}

type fakeNotifier struct {
	rec *recorder
	err error
}

func (f *fakeNotifier) ReportGenerated(context.Context, models.ReportMetadata) error {
	f.rec.add("notify")
	return f.err
}

type fixedText struct{}

func (fixedText) Sentence() string { return "Lorem ipsum dolor." }

type harness struct {
	rec      *recorder
	dataset  *fakeDataset
	objects  *fakeObjects
	meta     *fakeMeta
	short    *fakeShortener
	notifier *fakeNotifier
	engine   *Engine
	now      time.Time
}

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	rec := &recorder{}
	h := &harness{
		rec: rec,
		dataset: &fakeDataset{events: []models.Event{
			{UserEmail: "p@x.io", ChildName: "Sam", Platform: "Tiktok", CreatedAt: at(2024, 1, 10, 9), ContentAlert: "High"},
			{UserEmail: "p@x.io", ChildName: "Sam", Platform: "Youtube", CreatedAt: at(2024, 1, 31, 23), ContentAlert: "Low"},
			{UserEmail: "p@x.io", ChildName: "Sam", Platform: "Tiktok", CreatedAt: at(2024, 2, 1, 0), ContentAlert: "High"},
			{UserEmail: "p@x.io", ChildName: "Ana", Platform: "Tiktok", CreatedAt: at(2024, 1, 12, 9), ContentAlert: "High"},
			{UserEmail: "q@x.io", ChildName: "Sam", Platform: "Tiktok", CreatedAt: at(2024, 1, 12, 9), ContentAlert: "High"},
			{UserEmail: "p@x.io", ChildName: "Sam", Platform: "Twitter", CreatedAt: at(2024, 1, 15, 9), ContentAlert: "High"},
			{UserEmail: "p@x.io", ChildName: "Sam", Platform: "Tiktok", CreatedAt: at(2024, 1, 16, 9), ContentAlert: "Medium"},
		}},
		objects:  &fakeObjects{rec: rec, puts: map[string][]byte{}},
		meta:     &fakeMeta{rec: rec},
		short:    &fakeShortener{rec: rec},
		notifier: &fakeNotifier{rec: rec},
		now:      time.Date(2024, 3, 9, 7, 5, 3, 123456000, time.UTC),
	}
	h.engine = NewEngine(Deps{
		Dataset:   h.dataset,
		Objects:   h.objects,
		Metadata:  h.meta,
		Shortener: h.short,
		Notifier:  h.notifier,
	}, Options{
		PresignTTL: 900 * time.Second,
		Now:        func() time.Time { return h.now },
		Rand:       rand.New(rand.NewPCG(1, 2)),
		Text:       fixedText{},
	})
	return h
}

func validRequest() models.ReportRequest {
	return models.ReportRequest{
		Email:       "p@x.io",
		Children:    "Sam",
		TimeRange:   []string{"2024-01-01", "2024-01-31"},
		Platform:    []string{"tiktok", "youtube"},
		Alert:       []string{"high", "low"},
		ContentType: []string{"Cyberbullying", "Offensive"},
		FileType:    models.FormatXLSX,
	}
}

// ============================================================================
// Validation
// ============================================================================

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.ReportRequest)
		field  string
	}{
		{"member all", func(r *models.ReportRequest) { r.Children = "all" }, "children"},
		{"member empty", func(r *models.ReportRequest) { r.Children = "" }, "children"},
		{"one date", func(r *models.ReportRequest) { r.TimeRange = r.TimeRange[:1] }, "timerange"},
		{"end before start", func(r *models.ReportRequest) { r.TimeRange = []string{"2024-02-01", "2024-01-01"} }, "timerange"},
		{"empty platform", func(r *models.ReportRequest) { r.Platform = nil }, "platform"},
		{"empty alert", func(r *models.ReportRequest) { r.Alert = []string{} }, "alert"},
		{"empty content type", func(r *models.ReportRequest) { r.ContentType = nil }, "contenttype"},
		{"bad file type", func(r *models.ReportRequest) { r.FileType = "docx" }, "filetype"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := Validate(&req)
			var verr *validation.RequestValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want RequestValidationError", err)
			}
			if fields := verr.Fields(); len(fields) == 0 || fields[0] != tt.field {
				t.Errorf("fields = %v, want %s", fields, tt.field)
			}
		})
	}
}

func TestGenerate_MemberAllTouchesNothing(t *testing.T) {
	h := newHarness(t)
	req := validRequest()
	req.Children = "all"

	if _, err := h.engine.Generate(context.Background(), req); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := h.engine.Preview(context.Background(), req); err == nil {
		t.Fatal("expected validation error")
	}
	if calls := h.rec.list(); len(calls) != 0 {
		t.Errorf("side effects = %v, want none", calls)
	}
	if h.dataset.calls.Load() != 0 {
		t.Error("dataset should not be read")
	}
}

// ============================================================================
// Preview
// ============================================================================

func TestPreview_Filters(t *testing.T) {
	h := newHarness(t)
	rows, err := h.engine.Preview(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	// Sam's Tiktok/Youtube High/Low events for p@x.io within January; the
	// 23:00 event on the 31st is included by the end-of-day bound.
	if len(rows) != 2 {
		t.Fatalf("Preview() = %d rows, want 2: %+v", len(rows), rows)
	}
	if rows[0].Platform != "Tiktok" || rows[1].Platform != "Youtube" {
		t.Errorf("platforms = %s, %s", rows[0].Platform, rows[1].Platform)
	}
	for _, r := range rows {
		if r.Email != "p@x.io" || r.Name != "Sam" || r.Text != "Lorem ipsum dolor." {
			t.Errorf("row = %+v", r)
		}
		if r.Type != "Cyberbullying" && r.Type != "Offensive" {
			t.Errorf("type %q not from the requested set", r.Type)
		}
	}
	if calls := h.rec.list(); len(calls) != 0 {
		t.Errorf("Preview side effects = %v", calls)
	}
}

func TestPreview_RangeFollowsClockZone(t *testing.T) {
	h := newHarness(t)
	west := time.FixedZone("UTC-5", -5*3600)
	h.now = h.now.In(west)

	rows, err := h.engine.Preview(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	// Midnight UTC on Feb 1st is still January 31st five hours west.
	if len(rows) != 3 {
		t.Fatalf("Preview() = %d rows, want 3: %+v", len(rows), rows)
	}
}

func TestPreview_DatasetUnavailable(t *testing.T) {
	h := newHarness(t)
	h.dataset.err = errors.New("s3 down")
	if _, err := h.engine.Preview(context.Background(), validRequest()); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("Preview() error = %v, want ErrDataUnavailable", err)
	}
}

func TestPreviewPage(t *testing.T) {
	rows := make([]models.ReportRow, 9)
	p := PreviewPage(rows, 3)
	if p.Pages != 3 || p.Page != 3 || len(p.Slots) != PreviewPageSize || len(p.Items()) != 1 {
		t.Errorf("PreviewPage() = page %d/%d, %d items", p.Page, p.Pages, len(p.Items()))
	}
}

func TestReplay(t *testing.T) {
	h := newHarness(t)
	rows, err := h.engine.Replay(context.Background(), models.ReportMetadata{ReportRequest: validRequest()})
	if err != nil || len(rows) != 2 {
		t.Errorf("Replay() = %d rows, %v", len(rows), err)
	}
}

// ============================================================================
// Generate
// ============================================================================

func TestGenerate_XLSX(t *testing.T) {
	h := newHarness(t)
	res, err := h.engine.Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	wantKey := "report/excel/export_2024_03_09_07_05_03_123456.xlsx"
	if res.ArtifactKey != wantKey {
		t.Errorf("ArtifactKey = %q, want %q", res.ArtifactKey, wantKey)
	}
	if res.URL != "https://tiny.test/x" {
		t.Errorf("URL = %q", res.URL)
	}

	want := []string{"put:" + wantKey, "presign", "shorten", "metadata", "notify"}
	got := h.rec.list()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("call order = %v, want %v", got, want)
	}

	table, err := export.ReadXLSX(h.objects.puts[wantKey])
	if err != nil {
		t.Fatalf("ReadXLSX() error = %v", err)
	}
	if len(table) != len(res.Rows)+1 {
		t.Errorf("stored workbook has %d rows, want %d", len(table), len(res.Rows)+1)
	}

	if len(h.meta.records) != 1 {
		t.Fatalf("metadata records = %d", len(h.meta.records))
	}
	m := h.meta.records[0]
	if m.ArtifactKey != wantKey || m.URL != res.URL || m.Children != "Sam" || !m.CreatedAt.Equal(h.now) {
		t.Errorf("metadata = %+v", m)
	}
}

func TestGenerate_PDFDefaultsAndPresignTTL(t *testing.T) {
	h := newHarness(t)
	req := validRequest()
	req.FileType = models.FormatPDF

	res, err := h.engine.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasPrefix(res.ArtifactKey, "report/pdf/export_") || !strings.HasSuffix(res.ArtifactKey, ".pdf") {
		t.Errorf("ArtifactKey = %q", res.ArtifactKey)
	}
	if res.ContentType != "application/pdf" || !strings.HasPrefix(string(res.Data), "%PDF") {
		t.Errorf("ContentType = %q", res.ContentType)
	}

	req.FileType = ""
	res, err = h.engine.Generate(context.Background(), req)
	if err != nil || res.Format != models.FormatXLSX {
		t.Errorf("default format = %v, %v", res, err)
	}
}

func TestGenerate_UploadFailureWritesNoMetadata(t *testing.T) {
	h := newHarness(t)
	h.objects.putErr = errors.New("access denied")

	if _, err := h.engine.Generate(context.Background(), validRequest()); !errors.Is(err, ErrStorage) {
		t.Fatalf("Generate() error = %v, want ErrStorage", err)
	}
	for _, c := range h.rec.list() {
		if c == "metadata" || c == "notify" {
			t.Errorf("unexpected %s after failed upload", c)
		}
	}
}

func TestGenerate_PresignFailure(t *testing.T) {
	h := newHarness(t)
	h.objects.presignErr = errors.New("no credentials")
	if _, err := h.engine.Generate(context.Background(), validRequest()); !errors.Is(err, ErrStorage) {
		t.Fatalf("Generate() error = %v, want ErrStorage", err)
	}
	if len(h.meta.records) != 0 {
		t.Error("metadata written after presign failure")
	}
}

func TestGenerate_ShortenerFallback(t *testing.T) {
	h := newHarness(t)
	h.short.err = errors.New("tinyurl timeout")

	res, err := h.engine.Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasPrefix(res.URL, "https://bucket.test/report/excel/") || !strings.Contains(res.URL, "ttl=15m0s") {
		t.Errorf("URL = %q, want the presigned link", res.URL)
	}
	if h.meta.records[0].URL != res.URL {
		t.Error("metadata should store the fallback link")
	}
}

func TestGenerate_MetadataFailure(t *testing.T) {
	h := newHarness(t)
	h.meta.err = errors.New("write failed")
	if _, err := h.engine.Generate(context.Background(), validRequest()); !errors.Is(err, ErrStorage) {
		t.Errorf("Generate() error = %v, want ErrStorage", err)
	}
}

func TestGenerate_NotifierFailureIgnored(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("bus closed")
	if _, err := h.engine.Generate(context.Background(), validRequest()); err != nil {
		t.Errorf("Generate() error = %v", err)
	}
}

func TestGenerate_SurvivesClientCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.engine.Generate(ctx, validRequest()); err != nil {
		t.Errorf("Generate() on a cancelled request context error = %v", err)
	}
	if len(h.meta.records) != 1 {
		t.Error("report should still be recorded")
	}
}

func TestFakerText(t *testing.T) {
	s := NewFakerText(42).Sentence()
	if !strings.HasSuffix(s, ".") || len(strings.Fields(s)) < 6 {
		t.Errorf("Sentence() = %q", s)
	}
}
