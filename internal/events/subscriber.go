// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/metrics"
)

// Handler processes one decoded report event.
type Handler func(ctx context.Context, evt ReportGenerated) error

// IndexRefresher reloads the cached report index.
type IndexRefresher interface {
	RefreshReportIndex(ctx context.Context)
}

// RefreshIndex returns a Handler that reloads the report index.
func RefreshIndex(r IndexRefresher) Handler {
	return func(ctx context.Context, _ ReportGenerated) error {
		r.RefreshReportIndex(ctx)
		return nil
	}
}

// Subscriber consumes TopicReportGenerated and fans each event out to its
// handlers. It runs as a supervised service.
type Subscriber struct {
	bus      *Bus
	handlers []Handler
}

// NewSubscriber returns a subscriber running handlers in order.
func NewSubscriber(bus *Bus, handlers ...Handler) *Subscriber {
	return &Subscriber{bus: bus, handlers: handlers}
}

// Serve consumes until ctx is cancelled or the bus closes.
func (s *Subscriber) Serve(ctx context.Context) error {
	messages, err := s.bus.Subscribe(ctx, TopicReportGenerated)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", TopicReportGenerated, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			s.process(ctx, msg)
		}
	}
}

// process acks every message; a poison payload is logged and dropped
// rather than redelivered forever.
func (s *Subscriber) process(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	evt, err := DecodeReportGenerated(msg.Payload)
	if err != nil {
		metrics.EventsHandled.WithLabelValues(TopicReportGenerated, "invalid").Inc()
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable report event")
		return
	}

	ctx = logging.ContextWithRequestID(ctx, msg.Metadata.Get("request_id"))
	for _, h := range s.handlers {
		if err := h(ctx, evt); err != nil {
			metrics.EventsHandled.WithLabelValues(TopicReportGenerated, "error").Inc()
			logging.Ctx(ctx).Error().Err(err).
				Str("message_uuid", msg.UUID).
				Str("metadata", evt.MetadataKey).
				Msg("Report event handler failed")
			return
		}
	}
	metrics.EventsHandled.WithLabelValues(TopicReportGenerated, "ok").Inc()
	logging.Ctx(ctx).Debug().Str("metadata", evt.MetadataKey).Msg("Report event handled")
}

func (s *Subscriber) String() string { return "report-event-subscriber" }
