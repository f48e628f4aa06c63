package events

import (
	"context"
	"encoding/json"
	"testing"
)

func TestNewEvent(t *testing.T) {
	payload := HoldingAddedPayload{Name: "Alpha", Symbol: "A", Shares: 10, AverageCost: 5, SnapshotVersion: 2}
	event := NewEvent(EventTypeHoldingAdded, "dashboard-service", payload).
		WithCorrelationID("req-1")

	if event.EventID == "" {
		t.Error("EventID should be generated")
	}
	if event.OccurredAt.IsZero() {
		t.Error("OccurredAt should be set")
	}
	if event.CorrelationID != "req-1" {
		t.Errorf("CorrelationID = %q", event.CorrelationID)
	}
}

func TestPayloadEncoding(t *testing.T) {
	data, err := json.Marshal(HoldingAddedPayload{Name: "Alpha", Symbol: "A", Shares: 1, AverageCost: 2})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	json.Unmarshal(data, &m)
	if _, ok := m["current_price"]; ok {
		t.Error("current_price should be omitted when not supplied")
	}
}

func TestDecode(t *testing.T) {
	event := NewEvent(EventTypeBalanceUpdated, "dashboard-service", BalanceUpdatedPayload{Balance: 100, SnapshotVersion: 3})
	data, _ := json.Marshal(event)

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.EventID != event.EventID || got.EventType != EventTypeBalanceUpdated {
		t.Errorf("Decode() = %+v", got)
	}

	if _, err := Decode([]byte(`{"event_id":"x"}`)); err == nil {
		t.Error("Decode should reject an event without a type")
	}
	if _, err := Decode([]byte(`nope`)); err == nil {
		t.Error("Decode should reject invalid JSON")
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	if err := p.Publish(context.Background(), TopicDashboardWrites, NewEvent(EventTypeHoldingAdded, "test", nil)); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
