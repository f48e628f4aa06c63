// Package dashboard holds the live state of one dashboard view: the current
// snapshot and its derived view model, plus the two write operations that go
// through the backend and then reload the snapshot.
package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Rohianon/equishare-dashboard/pkg/access"
	"github.com/Rohianon/equishare-dashboard/pkg/backend"
	apperrors "github.com/Rohianon/equishare-dashboard/pkg/errors"
	"github.com/Rohianon/equishare-dashboard/pkg/events"
	"github.com/Rohianon/equishare-dashboard/pkg/logger"
	"github.com/Rohianon/equishare-dashboard/pkg/metrics"
	"github.com/Rohianon/equishare-dashboard/pkg/portfolio"
	"github.com/Rohianon/equishare-dashboard/pkg/telemetry"
)

const (
	OpAddHolding    = "add_holding"
	OpUpdateBalance = "update_balance"
)

const publishTimeout = 5 * time.Second

// Backend is the remote side of the dashboard
type Backend interface {
	FetchSnapshot(ctx context.Context) (*portfolio.Snapshot, error)
	CreateHolding(ctx context.Context, req backend.CreateHoldingRequest) error
	UpdateBalance(ctx context.Context, req backend.UpdateBalanceRequest) error
}

// Options configures a Session
type Options struct {
	FallbackPrices portfolio.Prices
	// Identity is the host the view is reached through; DevHosts is the
	// allow-set it is checked against once, in NewSession.
	Identity string
	DevHosts []string

	Publisher events.Publisher
	Topic     string
	// Source is stamped on published events
	Source string
}

type memo struct {
	snap *portfolio.Snapshot
	view *portfolio.ViewModel
}

// Session is safe for concurrent use
type Session struct {
	backend  Backend
	opts     Options
	writable bool

	snap    atomic.Pointer[portfolio.Snapshot]
	memo    atomic.Pointer[memo]
	version atomic.Uint64
	loading atomic.Int32

	// fetchSeq orders fetches by start time; current is the sequence of the
	// fetch that produced snap. A fetch older than current is dropped.
	fetchSeq atomic.Uint64
	swapMu   sync.Mutex
	current  uint64

	addBusy     atomic.Bool
	balanceBusy atomic.Bool

	mu         sync.Mutex
	listeners  []func(*portfolio.ViewModel)
	publishing sync.WaitGroup
}

// NewSession creates a session with no snapshot loaded yet
func NewSession(b Backend, opts Options) *Session {
	if opts.Publisher == nil {
		opts.Publisher = events.NoopPublisher{}
	}
	if opts.Topic == "" {
		opts.Topic = events.TopicDashboardWrites
	}
	if opts.FallbackPrices == nil {
		opts.FallbackPrices = portfolio.Prices{}
	}

	return &Session{
		backend:  b,
		opts:     opts,
		writable: access.NewGate(opts.DevHosts).Allows(opts.Identity),
	}
}

// Writable reports whether write controls are offered. It is fixed for the
// lifetime of the session.
func (s *Session) Writable() bool {
	return s.writable
}

// Loading reports whether a snapshot fetch is in flight
func (s *Session) Loading() bool {
	return s.loading.Load() > 0
}

// Busy reports whether op is in flight
func (s *Session) Busy(op string) bool {
	switch op {
	case OpAddHolding:
		return s.addBusy.Load()
	case OpUpdateBalance:
		return s.balanceBusy.Load()
	}
	return false
}

// OnSwap registers fn to be called with the new view model every time a
// snapshot replaces the current one.
func (s *Session) OnSwap(fn func(*portfolio.ViewModel)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns the current snapshot, or nil before the first load
func (s *Session) Snapshot() *portfolio.Snapshot {
	return s.snap.Load()
}

// View returns the view model of the current snapshot, or nil before the
// first successful load. It is computed once per snapshot.
func (s *Session) View() *portfolio.ViewModel {
	snap := s.snap.Load()
	if snap == nil {
		return nil
	}
	if m := s.memo.Load(); m != nil && m.snap == snap {
		return m.view
	}

	view := portfolio.Build(snap, s.opts.FallbackPrices)
	s.memo.Store(&memo{snap: snap, view: view})
	return view
}

// Load fetches the snapshot and replaces the current one. On failure the
// current snapshot is kept and a LOAD_FAILED error is returned. A fetch that
// completes after a later-started one has already been applied is discarded
// and the newer view is returned.
func (s *Session) Load(ctx context.Context) (*portfolio.ViewModel, error) {
	ctx, span := telemetry.StartSpan(ctx, "dashboard.load")
	defer span.End()

	s.loading.Add(1)
	defer s.loading.Add(-1)

	seq := s.fetchSeq.Add(1)
	start := time.Now()
	snap, err := s.backend.FetchSnapshot(ctx)
	metrics.RecordSnapshotLoad(err, time.Since(start))
	if err != nil {
		telemetry.RecordError(ctx, err)
		log := logger.WithContext(ctx)
		log.Warn().Err(err).Msg("Failed to load snapshot")
		return nil, apperrors.ErrLoad.WithError(err)
	}

	view := s.swap(snap, seq)
	span.SetAttributes(
		attribute.Int64("dashboard.snapshot.version", int64(view.Version)),
		attribute.Int("dashboard.holdings", len(view.Holdings)),
	)
	return view, nil
}

func (s *Session) swap(snap *portfolio.Snapshot, seq uint64) *portfolio.ViewModel {
	s.swapMu.Lock()
	if current := s.current; seq < current {
		s.swapMu.Unlock()
		logger.Debug().
			Uint64("fetch", seq).
			Uint64("current", current).
			Msg("Dropped stale snapshot")
		return s.View()
	}
	s.current = seq
	snap = snap.WithVersion(s.version.Add(1))
	view := portfolio.Build(snap, s.opts.FallbackPrices)

	s.memo.Store(&memo{snap: snap, view: view})
	s.snap.Store(snap)
	s.swapMu.Unlock()
	metrics.SetSnapshotVersion(snap.Version)

	logger.Debug().
		Uint64("version", snap.Version).
		Int("holdings", len(view.Holdings)).
		Str("balance_source", string(view.BalanceSource)).
		Msg("Snapshot replaced")

	s.mu.Lock()
	listeners := append([]func(*portfolio.ViewModel){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(view)
	}
	return view
}

// AddHolding creates a holding and then reloads the snapshot. The returned
// view model is the reloaded one. Errors are AppErrors:
//
//   - WRITES_DISABLED when the session is not writable
//   - VALIDATION_ERROR when a required field is empty; no call is made
//   - WRITE_IN_FLIGHT while a previous AddHolding is running
//   - WRITE_FAILED when the create call fails; the snapshot is untouched
//   - LOAD_FAILED when the create succeeded but the reload did not
func (s *Session) AddHolding(ctx context.Context, draft HoldingDraft) (*portfolio.ViewModel, error) {
	if !s.writable {
		return nil, apperrors.ErrWritesDisabled
	}
	if missing := draft.Missing(); len(missing) > 0 {
		metrics.RecordWrite(OpAddHolding, "invalid")
		return nil, apperrors.ErrValidation.
			WithMessage("Please fill in all required fields").
			WithDetails(map[string]any{"missing": missing})
	}
	if !s.addBusy.CompareAndSwap(false, true) {
		metrics.RecordWrite(OpAddHolding, "busy")
		return nil, apperrors.ErrBusy
	}
	defer s.addBusy.Store(false)

	ctx, span := telemetry.StartSpan(ctx, "dashboard.add_holding")
	defer span.End()

	req := draft.Request()
	span.SetAttributes(attribute.String("holding.symbol", req.Symbol))

	start := time.Now()
	err := s.backend.CreateHolding(ctx, req)
	metrics.RecordBackendCall(OpAddHolding, time.Since(start))
	if err != nil {
		return nil, s.writeFailed(ctx, OpAddHolding, err)
	}

	view, err := s.Load(ctx)
	if err != nil {
		metrics.RecordWrite(OpAddHolding, "reload_failed")
		return nil, err
	}
	metrics.RecordWrite(OpAddHolding, "success")

	log := logger.WithContext(ctx)
	log.Info().
		Str("symbol", req.Symbol).
		Float64("shares", req.Shares).
		Uint64("version", view.Version).
		Msg("Holding added")

	s.goPublish(ctx, events.EventTypeHoldingAdded, events.HoldingAddedPayload{
		Name:            req.Name,
		Symbol:          req.Symbol,
		Shares:          req.Shares,
		AverageCost:     req.AverageCost,
		CurrentPrice:    req.CurrentPrice,
		SnapshotVersion: view.Version,
	})
	return view, nil
}

// UpdateBalance sets the account balance and then reloads the snapshot.
// Errors follow AddHolding; a missing or non-numeric amount is a
// VALIDATION_ERROR.
func (s *Session) UpdateBalance(ctx context.Context, draft BalanceDraft) (*portfolio.ViewModel, error) {
	if !s.writable {
		return nil, apperrors.ErrWritesDisabled
	}
	amount, ok := draft.Parse()
	if !ok {
		metrics.RecordWrite(OpUpdateBalance, "invalid")
		return nil, apperrors.ErrValidation.
			WithMessage("Please enter a valid amount").
			WithDetails(map[string]any{"missing": []string{"amount"}})
	}
	if !s.balanceBusy.CompareAndSwap(false, true) {
		metrics.RecordWrite(OpUpdateBalance, "busy")
		return nil, apperrors.ErrBusy
	}
	defer s.balanceBusy.Store(false)

	ctx, span := telemetry.StartSpan(ctx, "dashboard.update_balance")
	defer span.End()

	start := time.Now()
	err := s.backend.UpdateBalance(ctx, backend.UpdateBalanceRequest{Balance: amount})
	metrics.RecordBackendCall(OpUpdateBalance, time.Since(start))
	if err != nil {
		return nil, s.writeFailed(ctx, OpUpdateBalance, err)
	}

	view, err := s.Load(ctx)
	if err != nil {
		metrics.RecordWrite(OpUpdateBalance, "reload_failed")
		return nil, err
	}
	metrics.RecordWrite(OpUpdateBalance, "success")

	log := logger.WithContext(ctx)
	log.Info().
		Float64("balance", amount).
		Uint64("version", view.Version).
		Msg("Balance updated")

	s.goPublish(ctx, events.EventTypeBalanceUpdated, events.BalanceUpdatedPayload{
		Balance:         amount,
		SnapshotVersion: view.Version,
	})
	return view, nil
}

func (s *Session) writeFailed(ctx context.Context, op string, err error) error {
	metrics.RecordWrite(op, "error")
	telemetry.RecordError(ctx, err)
	log := logger.WithContext(ctx)
	log.Error().Err(err).Str("operation", op).Msg("Write failed")
	return apperrors.ErrWrite.WithError(err)
}

// Flush waits until the events of completed writes have been handed to the
// publisher. Short-lived callers use it before exiting.
func (s *Session) Flush() {
	s.publishing.Wait()
}

func (s *Session) goPublish(ctx context.Context, eventType string, payload any) {
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		s.publish(ctx, eventType, payload)
	}()
}

// publish runs after the write has been confirmed and never fails it
func (s *Session) publish(ctx context.Context, eventType string, payload any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := events.NewEvent(eventType, s.opts.Source, payload)
	if id := telemetry.TraceID(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	if err := s.opts.Publisher.Publish(ctx, s.opts.Topic, event); err != nil {
		log := logger.WithContext(ctx)
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish event")
	}
}
