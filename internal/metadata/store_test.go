// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package metadata

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/chatstat/internal/models"
	"github.com/tomtom215/chatstat/internal/storage"
)

// memStore is an in-memory ObjectStore with controllable modification times.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	mtimes  map[string]time.Time
	clock   time.Time
	listErr error
}

func newMemStore() *memStore {
	return &memStore{
		objects: map[string][]byte{},
		mtimes:  map[string]time.Time{},
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Minute)
	m.objects[key] = append([]byte(nil), data...)
	m.mtimes[key] = m.clock
	return nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (m *memStore) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []storage.ObjectInfo
	for k, v := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v)), LastModified: m.mtimes[k]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memStore) Presign(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://example.test/" + key, nil
}

func request(email, child string) models.ReportRequest {
	return models.ReportRequest{
		Email:       email,
		Children:    child,
		TimeRange:   []string{"2024-01-01", "2024-01-31"},
		Platform:    []string{"tiktok"},
		Alert:       []string{"high"},
		ContentType: []string{"Cyberbullying"},
		FileType:    models.FormatPDF,
	}
}

// ============================================================================
// Keys
// ============================================================================

func TestTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 3, 123456789, time.UTC)
	if got, want := Timestamp(ts), "2024_03_09_07_05_03_123456"; got != want {
		t.Errorf("Timestamp() = %q, want %q", got, want)
	}
	if got, want := KeyFor(ts), "metadata/2024_03_09_07_05_03_123456.json"; got != want {
		t.Errorf("KeyFor() = %q, want %q", got, want)
	}
	if got, want := Timestamp(ts.In(time.FixedZone("UTC-5", -5*3600))), "2024_03_09_07_05_03_123456"; got != want {
		t.Errorf("Timestamp() of a zoned time = %q, want %q", got, want)
	}
}

// ============================================================================
// Store
// ============================================================================

func TestStore_PostAndGet(t *testing.T) {
	mem := newMemStore()
	s := New(mem)
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	key, err := s.Post(context.Background(), models.ReportMetadata{
		ReportRequest: request("p@x.io", "Sam"),
		ArtifactKey:   "report/pdf/export_x.pdf",
		URL:           "https://tiny.test/abc",
	}, ts)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if key != KeyFor(ts) {
		t.Errorf("Post() key = %q", key)
	}

	raw, _ := mem.Get(context.Background(), key)
	for _, field := range []string{`"email":"p@x.io"`, `"children":"Sam"`, `"timerange":["2024-01-01","2024-01-31"]`, `"contenttype":["Cyberbullying"]`} {
		if !strings.Contains(string(raw), field) {
			t.Errorf("stored JSON %s missing %s", raw, field)
		}
	}

	rec, err := s.Get(context.Background(), strings.TrimPrefix(key, Prefix))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Children != "Sam" || rec.URL != "https://tiny.test/abc" || !rec.CreatedAt.Equal(ts) || rec.Key != key {
		t.Errorf("Get() = %+v", rec)
	}

	if _, err := s.Get(context.Background(), "missing.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListAll_NewestFirst(t *testing.T) {
	mem := newMemStore()
	s := New(mem)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, child := range []string{"A", "B", "C"} {
		if _, err := s.Post(ctx, models.ReportMetadata{ReportRequest: request("p@x.io", child)}, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatal(err)
		}
	}
	mem.Put(ctx, Prefix+"broken.json", []byte("{not json"), "")
	mem.Put(ctx, Prefix+"notes.txt", []byte("ignored"), "")

	records, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("ListAll() = %d records, want 3", len(records))
	}
	for i, want := range []string{"C", "B", "A"} {
		if records[i].Children != want {
			t.Errorf("records[%d] = %s, want %s", i, records[i].Children, want)
		}
		if records[i].LastModified.IsZero() || records[i].Key == "" {
			t.Errorf("records[%d] missing storage fields: %+v", i, records[i])
		}
	}
}

func TestStore_ListAll_Error(t *testing.T) {
	mem := newMemStore()
	mem.listErr = errors.New("boom")
	if _, err := New(mem).ListAll(context.Background()); err == nil {
		t.Error("expected list error")
	}
}

func TestSortNewestFirst_TieBreak(t *testing.T) {
	same := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []models.ReportMetadata{
		{Key: "metadata/a.json", LastModified: same},
		{Key: "metadata/c.json", LastModified: same},
		{Key: "metadata/b.json", LastModified: same.Add(-time.Hour)},
	}
	SortNewestFirst(records)
	got := []string{records[0].Key, records[1].Key, records[2].Key}
	want := []string{"metadata/c.json", "metadata/a.json", "metadata/b.json"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order = %v, want %v", got, want)
			break
		}
	}
}

func TestList_FiltersByRequester(t *testing.T) {
	records := []models.ReportMetadata{
		{ReportRequest: request("a@x.io", "1")},
		{ReportRequest: request("b@x.io", "2")},
		{ReportRequest: request("a@x.io", "3")},
	}
	got := List(records, "a@x.io")
	if len(got) != 2 || got[0].Children != "1" || got[1].Children != "3" {
		t.Errorf("List() = %+v", got)
	}
	if none := List(records, "z@x.io"); none == nil || len(none) != 0 {
		t.Errorf("List(unknown) = %v, want empty non-nil", none)
	}
}

// ============================================================================
// Pagination
// ============================================================================

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name      string
		items     []int
		page      int
		wantPage  int
		wantPages int
		wantItems []int
	}{
		{"first page", items, 1, 1, 2, []int{1, 2, 3, 4, 5}},
		{"last page padded", items, 2, 2, 2, []int{6, 7}},
		{"past end clamps", items, 9, 2, 2, []int{6, 7}},
		{"zero clamps", items, 0, 1, 2, []int{1, 2, 3, 4, 5}},
		{"empty", nil, 1, 1, 1, []int{}},
		{"exact multiple", items[:5], 2, 1, 1, []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.items, tt.page, PageSize)
			if len(p.Slots) != PageSize {
				t.Errorf("slots = %d, want %d", len(p.Slots), PageSize)
			}
			if p.Page != tt.wantPage || p.Pages != tt.wantPages {
				t.Errorf("page %d/%d, want %d/%d", p.Page, p.Pages, tt.wantPage, tt.wantPages)
			}
			got := p.Items()
			if len(got) != len(tt.wantItems) {
				t.Fatalf("items = %v, want %v", got, tt.wantItems)
			}
			for i := range got {
				if got[i] != tt.wantItems[i] {
					t.Errorf("items = %v, want %v", got, tt.wantItems)
				}
			}
			for i := len(got); i < PageSize; i++ {
				if p.Slots[i] != nil {
					t.Errorf("slot %d should be nil padding", i)
				}
			}
		})
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct{ n, size, want int }{
		{0, 5, 1}, {1, 5, 1}, {5, 5, 1}, {6, 5, 2}, {11, 5, 3}, {9, 4, 3},
	}
	for _, tt := range tests {
		if got := PageCount(tt.n, tt.size); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}
