package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/Rohianon/equishare-dashboard/pkg/events"
	"github.com/Rohianon/equishare-dashboard/pkg/portfolio"
)

type countingLoader struct {
	calls int
	err   error
}

func (l *countingLoader) Load(ctx context.Context) (*portfolio.ViewModel, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return &portfolio.ViewModel{Version: uint64(l.calls)}, nil
}

func TestReloader_Handle(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		source    string
		wantLoads int
	}{
		{"peer holding added", events.EventTypeHoldingAdded, "dashboard-service/b", 1},
		{"peer balance updated", events.EventTypeBalanceUpdated, "dashboard-service/b", 1},
		{"own write is skipped", events.EventTypeHoldingAdded, "dashboard-service/a", 0},
		{"unknown type is ignored", "portfolio.something.v1", "dashboard-service/b", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &countingLoader{}
			r := NewReloader(loader, "dashboard-service/a")

			if err := r.Handle(events.NewEvent(tt.eventType, tt.source, nil)); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if loader.calls != tt.wantLoads {
				t.Errorf("loads = %d, want %d", loader.calls, tt.wantLoads)
			}
		})
	}
}

func TestReloader_LoadError(t *testing.T) {
	loader := &countingLoader{err: errors.New("down")}
	r := NewReloader(loader, "a")

	if err := r.Handle(events.NewEvent(events.EventTypeBalanceUpdated, "b", nil)); err == nil {
		t.Error("Handle() should return the load error")
	}
}
