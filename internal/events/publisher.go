package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/serenityspa/spa-platform/pkg/logging"
)

// Publisher serializes events onto the notification queue.
type Publisher struct {
	queue  QueueClient
	logger *logging.Logger
}

// NewPublisher creates a publisher over the given queue.
func NewPublisher(queue QueueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("events: queue client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// PublishBookingConfirmed enqueues a confirmation event.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, evt BookingConfirmedV1) error {
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	return p.publish(ctx, Envelope{ID: evt.EventID, Kind: KindBookingConfirmed, Confirmed: &evt})
}

// PublishBookingCancelled enqueues a cancellation event.
func (p *Publisher) PublishBookingCancelled(ctx context.Context, evt BookingCancelledV1) error {
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	return p.publish(ctx, Envelope{ID: evt.EventID, Kind: KindBookingCancelled, Cancelled: &evt})
}

func (p *Publisher) publish(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: failed to encode %s envelope: %w", env.Kind, err)
	}
	if err := p.queue.Send(ctx, string(body)); err != nil {
		return err
	}
	p.logger.Debug("event published", "kind", env.Kind, "event_id", env.ID)
	return nil
}

// DecodeEnvelope parses a queue message body back into an Envelope.
func DecodeEnvelope(body string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return Envelope{}, fmt.Errorf("events: failed to decode envelope: %w", err)
	}
	switch env.Kind {
	case KindBookingConfirmed:
		if env.Confirmed == nil {
			return Envelope{}, fmt.Errorf("events: %s envelope missing payload", env.Kind)
		}
	case KindBookingCancelled:
		if env.Cancelled == nil {
			return Envelope{}, fmt.Errorf("events: %s envelope missing payload", env.Kind)
		}
	default:
		return Envelope{}, fmt.Errorf("events: unknown envelope kind %q", env.Kind)
	}
	return env, nil
}
