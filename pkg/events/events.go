package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for every message published by the dashboard.
//
// Event types carry their version: "portfolio.holding.added.v1". Breaking
// payload changes get a new version; consumers ignore unknown fields.
type Event struct {
	EventID string `json:"event_id"`

	EventType string `json:"event_type"`

	// OccurredAt is when the write was confirmed, not when it was published
	OccurredAt time.Time `json:"occurred_at"`

	CorrelationID string `json:"correlation_id,omitempty"`

	// Source identifies the producing process, e.g. "dashboard-service/3f2a"
	Source string `json:"source"`

	Payload any `json:"payload"`
}

// NewEvent creates a new event with auto-generated ID and timestamp
func NewEvent(eventType, source string, payload any) *Event {
	return &Event{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Source:     source,
		Payload:    payload,
	}
}

// WithCorrelationID sets the correlation ID for request tracing
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// TopicDashboardWrites carries every confirmed dashboard write.
// Payload: HoldingAddedPayload or BalanceUpdatedPayload, keyed by event type.
const TopicDashboardWrites = "equishare.dashboard.writes"

const (
	EventTypeHoldingAdded   = "portfolio.holding.added.v1"
	EventTypeBalanceUpdated = "portfolio.balance.updated.v1"
)

// Publisher publishes events to Kafka topics
type Publisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// Subscriber consumes events from Kafka topics
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(*Event) error) error
	Close() error
}

// NoopPublisher drops every event. It is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, *Event) error { return nil }
func (NoopPublisher) Close() error                                 { return nil }
