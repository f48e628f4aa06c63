package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/Rohianon/equishare-dashboard/pkg/metrics"
	"github.com/Rohianon/equishare-dashboard/pkg/telemetry"
)

type KafkaPublisher struct {
	mu      sync.Mutex
	writers map[string]*kafka.Writer
	brokers []string
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writers: make(map[string]*kafka.Writer),
		brokers: brokers,
	}
}

func (p *KafkaPublisher) getWriter(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	p.writers[topic] = w
	return w
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	ctx, span, headers := telemetry.StartPublishSpan(ctx, topic, event.EventType)
	defer span.End()
	telemetry.TagEvent(span, event.EventID)

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.getWriter(topic).WriteMessages(ctx, kafka.Message{
		Key:     []byte(event.EventID),
		Value:   data,
		Headers: headers,
	})
	metrics.RecordKafkaMessageProduced(topic, err)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, w := range p.writers {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

type KafkaSubscriber struct {
	brokers []string
	groupID string

	mu      sync.Mutex
	readers []*kafka.Reader
}

func NewKafkaSubscriber(brokers []string, groupID string) *KafkaSubscriber {
	return &KafkaSubscriber{
		brokers: brokers,
		groupID: groupID,
		readers: make([]*kafka.Reader, 0),
	}
}

// Subscribe starts a reader goroutine for topic. It returns immediately;
// the goroutine stops when ctx is cancelled or the subscriber is closed.
func (s *KafkaSubscriber) Subscribe(ctx context.Context, topic string, handler func(*Event) error) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  s.brokers,
		Topic:    topic,
		GroupID:  s.groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	s.mu.Lock()
	s.readers = append(s.readers, reader)
	s.mu.Unlock()

	go consume(ctx, reader, topic, handler)

	return nil
}

const (
	minReadBackoff = 100 * time.Millisecond
	maxReadBackoff = 5 * time.Second
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// consume reads until ctx is cancelled or the reader is closed. Read errors
// back off exponentially up to maxReadBackoff.
func consume(ctx context.Context, reader messageReader, topic string, handler func(*Event) error) {
	backoff := minReadBackoff
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxReadBackoff)
			continue
		}
		backoff = minReadBackoff

		_, span := telemetry.StartReceiveSpan(ctx, topic, msg)

		event, err := Decode(msg.Value)
		if err != nil {
			span.RecordError(err)
			span.End()
			continue
		}
		telemetry.TagEvent(span, event.EventID)

		if err := handler(event); err != nil {
			span.RecordError(err)
		}
		span.End()
	}
}

func (s *KafkaSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.readers {
		if err := r.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Decode parses an event envelope. The payload is left as generic JSON.
func Decode(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	if event.EventType == "" {
		return nil, fmt.Errorf("event has no type")
	}
	return &event, nil
}
