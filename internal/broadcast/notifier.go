// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package broadcast

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"

	"github.com/frontlinehq/frontline/internal/logging"
	"github.com/frontlinehq/frontline/internal/models"
)

// TopicEventsNew carries canonical events from the ingestion pipeline to
// the WebSocket fan-out.
const TopicEventsNew = "events.new"

// Notifier decouples the ingestion pipeline from WebSocket delivery via an
// in-process pub/sub channel. The pipeline publishes each accepted event
// exactly once; the notifier's drain loop forwards them to the hub.
//
// Keeping a broker between ingest and fan-out means a stalled hub can never
// block an adapter mid-batch, and gives the event stream a single seam to
// swap for an external broker later.
type Notifier struct {
	pubSub *gochannel.GoChannel
	hub    *Hub
}

// NewNotifier creates a notifier that forwards published events to hub.
func NewNotifier(hub *Hub) *Notifier {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		newWatermillLogger(),
	)
	return &Notifier{
		pubSub: pubSub,
		hub:    hub,
	}
}

// PublishEvent publishes one canonical event to the events topic.
func (n *Notifier) PublishEvent(event *models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := n.pubSub.Publish(TopicEventsNew, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}

// Serve implements suture.Service: it drains the events topic into the hub
// until the context is canceled.
func (n *Notifier) Serve(ctx context.Context) error {
	messages, err := n.pubSub.Subscribe(ctx, TopicEventsNew)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicEventsNew, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return ctx.Err()
			}
			var event models.Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping malformed event message")
				msg.Ack()
				continue
			}
			n.hub.BroadcastEvent(&event)
			msg.Ack()
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (n *Notifier) String() string {
	return "event-notifier"
}

// Close shuts down the underlying pub/sub channel.
func (n *Notifier) Close() error {
	return n.pubSub.Close()
}

// watermillLogger adapts zerolog to watermill's LoggerAdapter.
type watermillLogger struct {
	fields watermill.LogFields
}

func newWatermillLogger() watermill.LoggerAdapter {
	return &watermillLogger{}
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	logging.Error().Err(err).Fields(map[string]interface{}(l.fields.Add(fields))).Msg(msg)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	logging.Info().Fields(map[string]interface{}(l.fields.Add(fields))).Msg(msg)
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]interface{}(l.fields.Add(fields))).Msg(msg)
}

func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	logging.Trace().Fields(map[string]interface{}(l.fields.Add(fields))).Msg(msg)
}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{fields: l.fields.Add(fields)}
}
