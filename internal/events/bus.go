// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Package events carries report lifecycle events over an in-process
// Watermill bus. Report generation publishes a ReportGenerated event after
// metadata is stored; the index subscriber refreshes the cached report
// index so the history view picks the new record up without waiting for
// the next TTL expiry.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/metrics"
	"github.com/tomtom215/chatstat/internal/models"
)

// TopicReportGenerated is published once per stored report.
const TopicReportGenerated = "report.generated"

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("events: bus closed")

// ReportGenerated is the payload of TopicReportGenerated.
type ReportGenerated struct {
	EventID     string    `json:"event_id"`
	Email       string    `json:"email"`
	Children    string    `json:"children"`
	Format      string    `json:"filetype"`
	MetadataKey string    `json:"metadata_key"`
	ArtifactKey string    `json:"artifact_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// Bus is a publisher and subscriber pair over one gochannel pub/sub.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// NewBus creates an in-process bus. buffer sizes each subscriber's output
// channel.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	logger := logging.NewWatermillAdapter()
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: int64(buffer),
		}, logger),
		logger: logger,
	}
}

// Publish sends msg to topic.
func (b *Bus) Publish(topic string, msg *message.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// Subscribe returns the message channel for topic. It closes when ctx is
// cancelled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// ReportGenerated implements report.Notifier.
func (b *Bus) ReportGenerated(ctx context.Context, rec models.ReportMetadata) error {
	evt := ReportGenerated{
		EventID:     uuid.NewString(),
		Email:       rec.Email,
		Children:    rec.Children,
		Format:      rec.FileType,
		MetadataKey: rec.Key,
		ArtifactKey: rec.ArtifactKey,
		CreatedAt:   rec.CreatedAt,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal report event: %w", err)
	}

	msg := message.NewMessage(evt.EventID, payload)
	msg.Metadata.Set("email", rec.Email)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}
	return b.Publish(TopicReportGenerated, msg)
}

// Close shuts the pub/sub down. Further publishes fail with ErrClosed.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}

// DecodeReportGenerated parses a TopicReportGenerated payload.
func DecodeReportGenerated(payload []byte) (ReportGenerated, error) {
	var evt ReportGenerated
	if err := json.Unmarshal(payload, &evt); err != nil {
		return ReportGenerated{}, fmt.Errorf("unmarshal report event: %w", err)
	}
	return evt, nil
}
