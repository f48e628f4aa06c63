package telemetry

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Write events carry the trace context of the write in their headers, so a
// peer instance's reload shows up under the request that changed the data.

const eventsTracer = "dashboard-events"

// headerCarrier lets the global propagator read and write Kafka headers
type headerCarrier struct {
	headers *[]kafka.Header
}

func (c headerCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Set replaces an existing header with the same key
func (c headerCarrier) Set(key, value string) {
	kept := (*c.headers)[:0]
	for _, h := range *c.headers {
		if h.Key != key {
			kept = append(kept, h)
		}
	}
	*c.headers = append(kept, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

// StartPublishSpan starts a producer span for one event and returns the
// headers to send with it.
func StartPublishSpan(ctx context.Context, topic, eventType string) (context.Context, trace.Span, []kafka.Header) {
	ctx, span := startEventSpan(ctx, topic, "publish", trace.SpanKindProducer,
		attribute.String("dashboard.event.type", eventType),
	)

	var headers []kafka.Header
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{headers: &headers})
	return ctx, span, headers
}

// StartReceiveSpan starts a consumer span that continues the trace carried
// in msg's headers.
func StartReceiveSpan(ctx context.Context, topic string, msg kafka.Message) (context.Context, trace.Span) {
	headers := msg.Headers
	ctx = otel.GetTextMapPropagator().Extract(ctx, headerCarrier{headers: &headers})

	return startEventSpan(ctx, topic, "receive", trace.SpanKindConsumer,
		attribute.Int("messaging.kafka.partition", msg.Partition),
		attribute.Int64("messaging.kafka.message.offset", msg.Offset),
		attribute.Int("messaging.message.body.size", len(msg.Value)),
	)
}

// TagEvent records which event a messaging span handled
func TagEvent(span trace.Span, eventID string) {
	span.SetAttributes(attribute.String("messaging.message.id", eventID))
}

func startEventSpan(ctx context.Context, topic, op string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.name", topic),
		attribute.String("messaging.operation", op),
	)
	return otel.Tracer(eventsTracer).Start(ctx, topic+" "+op,
		trace.WithSpanKind(kind),
		trace.WithAttributes(attrs...),
	)
}
