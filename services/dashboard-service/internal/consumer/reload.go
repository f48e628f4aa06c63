// Package consumer reacts to dashboard writes made by other instances
package consumer

import (
	"context"
	"time"

	"github.com/Rohianon/equishare-dashboard/pkg/events"
	"github.com/Rohianon/equishare-dashboard/pkg/logger"
	"github.com/Rohianon/equishare-dashboard/pkg/portfolio"
)

const reloadTimeout = 10 * time.Second

// Loader reloads the current snapshot
type Loader interface {
	Load(ctx context.Context) (*portfolio.ViewModel, error)
}

// Reloader reloads the snapshot whenever another instance reports a write.
// Events from its own source are skipped since the write already reloaded.
type Reloader struct {
	loader Loader
	source string
}

// NewReloader creates a Reloader for the instance identified by source
func NewReloader(loader Loader, source string) *Reloader {
	return &Reloader{loader: loader, source: source}
}

// Handle is an events.Subscriber handler
func (r *Reloader) Handle(event *events.Event) error {
	switch event.EventType {
	case events.EventTypeHoldingAdded, events.EventTypeBalanceUpdated:
	default:
		return nil
	}
	if event.Source == r.source {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	view, err := r.loader.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("event_id", event.EventID).Msg("Failed to reload after peer write")
		return err
	}

	logger.Debug().
		Str("event_type", event.EventType).
		Str("source", event.Source).
		Uint64("version", view.Version).
		Msg("Reloaded after peer write")
	return nil
}
