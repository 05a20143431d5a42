// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/models"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) RefreshReportIndex(context.Context) { c.calls.Add(1) }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// skipReadiness hides readiness messages from h.
func skipReadiness(h Handler) Handler {
	return func(ctx context.Context, evt ReportGenerated) error {
		if evt.EventID == "readiness" {
			return nil
		}
		return h(ctx, evt)
	}
}

// startSubscriber runs s and returns once its subscription is live.
// gochannel drops messages published before Subscribe, so a marker is
// published until the subscriber sees one.
func startSubscriber(t *testing.T, bus *Bus, s *Subscriber) (context.CancelFunc, <-chan error) {
	t.Helper()
	ready := make(chan struct{}, 1)
	s.handlers = append([]Handler{func(_ context.Context, evt ReportGenerated) error {
		if evt.EventID == "readiness" {
			select {
			case ready <- struct{}{}:
			default:
			}
		}
		return nil
	}}, s.handlers...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	payload := []byte(`{"event_id":"readiness"}`)
	deadline := time.After(2 * time.Second)
	for {
		if err := bus.Publish(TopicReportGenerated, message.NewMessage("readiness", payload)); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		select {
		case <-ready:
			return cancel, done
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			cancel()
			t.Fatal("subscriber never started")
		}
	}
}

// ============================================================================
// Bus
// ============================================================================

func TestBus_ReportGeneratedRoundTrip(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	got := make(chan ReportGenerated, 4)
	s := NewSubscriber(bus, func(_ context.Context, evt ReportGenerated) error {
		if evt.EventID != "readiness" {
			got <- evt
		}
		return nil
	})
	cancel, _ := startSubscriber(t, bus, s)
	defer cancel()

	created := time.Date(2024, 3, 9, 7, 5, 3, 0, time.UTC)
	rec := models.ReportMetadata{
		ReportRequest: models.ReportRequest{Email: "p@x.io", Children: "Sam", FileType: "pdf"},
		CreatedAt:     created,
		ArtifactKey:   "report/pdf/export_x.pdf",
		Key:           "metadata/x.json",
	}
	ctx := logging.ContextWithRequestID(context.Background(), "req-1")
	if err := bus.ReportGenerated(ctx, rec); err != nil {
		t.Fatalf("ReportGenerated() error = %v", err)
	}

	select {
	case evt := <-got:
		if evt.EventID == "" || evt.Email != "p@x.io" || evt.Children != "Sam" || evt.Format != "pdf" {
			t.Errorf("event = %+v", evt)
		}
		if evt.MetadataKey != "metadata/x.json" || evt.ArtifactKey != "report/pdf/export_x.pdf" || !evt.CreatedAt.Equal(created) {
			t.Errorf("event keys = %+v", evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := NewBus(0)
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	err := bus.ReportGenerated(context.Background(), models.ReportMetadata{})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("ReportGenerated() error = %v, want ErrClosed", err)
	}
}

func TestDecodeReportGenerated_Invalid(t *testing.T) {
	if _, err := DecodeReportGenerated([]byte("{not json")); err == nil {
		t.Error("expected error")
	}
}

// ============================================================================
// Subscriber
// ============================================================================

func TestSubscriber_RefreshesIndex(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	r := &countingRefresher{}
	cancel, done := startSubscriber(t, bus, NewSubscriber(bus, skipReadiness(RefreshIndex(r))))

	if err := bus.ReportGenerated(context.Background(), models.ReportMetadata{Key: "metadata/a.json"}); err != nil {
		t.Fatalf("ReportGenerated() error = %v", err)
	}
	waitFor(t, func() bool { return r.calls.Load() == 1 })

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestSubscriber_HandlerErrorStopsChain(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	var first, second atomic.Int32
	failing := func(context.Context, ReportGenerated) error {
		first.Add(1)
		return errors.New("boom")
	}
	counting := func(context.Context, ReportGenerated) error {
		second.Add(1)
		return nil
	}
	cancel, _ := startSubscriber(t, bus, NewSubscriber(bus, skipReadiness(failing), skipReadiness(counting)))
	defer cancel()

	if err := bus.ReportGenerated(context.Background(), models.ReportMetadata{}); err != nil {
		t.Fatalf("ReportGenerated() error = %v", err)
	}
	waitFor(t, func() bool { return first.Load() == 1 })
	time.Sleep(20 * time.Millisecond)
	if second.Load() != 0 {
		t.Errorf("handler after a failure ran %d times", second.Load())
	}
}

func TestSubscriber_DropsUndecodable(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	r := &countingRefresher{}
	cancel, _ := startSubscriber(t, bus, NewSubscriber(bus, skipReadiness(RefreshIndex(r))))
	defer cancel()

	if err := bus.Publish(TopicReportGenerated, message.NewMessage("bad", []byte("garbage"))); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := bus.ReportGenerated(context.Background(), models.ReportMetadata{}); err != nil {
		t.Fatalf("ReportGenerated() error = %v", err)
	}
	waitFor(t, func() bool { return r.calls.Load() == 1 })
	time.Sleep(20 * time.Millisecond)
	if r.calls.Load() != 1 {
		t.Errorf("refreshes = %d, want 1", r.calls.Load())
	}
}
