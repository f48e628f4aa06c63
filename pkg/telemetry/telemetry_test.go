package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		tp.Shutdown(context.Background())
	})
	return rec
}

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()
	provider, err := Init(ctx, &Config{ServiceName: "dashboard-service", Enabled: false})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := provider.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "AlwaysOnSampler"},
		{1, "AlwaysOnSampler"},
		{0.25, "ParentBased{root:TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		got := sampler(tt.ratio).Description()
		if len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
			t.Errorf("sampler(%v) = %q, want prefix %q", tt.ratio, got, tt.want)
		}
	}
}

func TestStartSpan_TraceID(t *testing.T) {
	withRecorder(t)

	ctx, span := StartSpan(context.Background(), "session.load")
	defer span.End()

	if !span.SpanContext().IsValid() {
		t.Error("span context should be valid")
	}
	if id := TraceID(ctx); len(id) != 32 {
		t.Errorf("trace ID should be 32 chars, got %q", id)
	}
	if TraceID(context.Background()) != "" {
		t.Error("trace ID should be empty without a span")
	}
}

func TestRecordError(t *testing.T) {
	rec := withRecorder(t)

	ctx, span := StartSpan(context.Background(), "session.add_holding")
	RecordError(ctx, errors.New("backend down"))
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(ended))
	}
	if len(ended[0].Events()) == 0 {
		t.Error("error event should be recorded")
	}
	if ended[0].Status().Description != "backend down" {
		t.Errorf("status = %+v", ended[0].Status())
	}
}

func TestWrapHTTPClient(t *testing.T) {
	rec := withRecorder(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	original := &http.Client{}
	client := WrapHTTPClient(original)
	if client != original {
		t.Error("should return the same client instance")
	}

	resp, err := client.Get(srv.URL + "/portfolio")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	ended := rec.Ended()
	if len(ended) == 0 {
		t.Fatal("expected a client span")
	}
	if ended[0].Name() != "GET /portfolio" {
		t.Errorf("span name = %q, want GET /portfolio", ended[0].Name())
	}

	if WrapHTTPClient(nil).Transport == nil {
		t.Error("transport should not be nil")
	}
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "traceparent", Value: []byte("old")}}
	carrier := headerCarrier{headers: &headers}

	if v := carrier.Get("traceparent"); v != "old" {
		t.Errorf("Get = %q, want old", v)
	}
	if v := carrier.Get("missing"); v != "" {
		t.Errorf("Get(missing) = %q, want empty", v)
	}

	carrier.Set("traceparent", "new")
	carrier.Set("tracestate", "x=1")
	if v := carrier.Get("traceparent"); v != "new" {
		t.Errorf("Get after Set = %q, want new", v)
	}
	if keys := carrier.Keys(); len(keys) != 2 {
		t.Errorf("Keys = %v, want 2 keys", keys)
	}
}

func TestPublishReceiveSpans(t *testing.T) {
	rec := withRecorder(t)
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	ctx, span, headers := StartPublishSpan(context.Background(), "equishare.dashboard.writes", "portfolio.holding.added.v1")
	TagEvent(span, "evt-1")
	span.End()
	if len(headers) == 0 {
		t.Fatal("publish span should produce trace headers")
	}

	msg := kafka.Message{Headers: headers, Partition: 2, Offset: 42, Value: []byte("{}")}
	receiveCtx, receiveSpan := StartReceiveSpan(context.Background(), "equishare.dashboard.writes", msg)
	receiveSpan.End()

	if TraceID(receiveCtx) != TraceID(ctx) {
		t.Errorf("trace ID should be preserved: %s vs %s", TraceID(ctx), TraceID(receiveCtx))
	}

	ended := rec.Ended()
	if len(ended) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(ended))
	}
	if ended[0].Name() != "equishare.dashboard.writes publish" || ended[1].Name() != "equishare.dashboard.writes receive" {
		t.Errorf("span names = %q, %q", ended[0].Name(), ended[1].Name())
	}
}
