// Package gateway turns coordinated order intents into executions via
// a pluggable venue. Every intent produces exactly one execution: venue
// errors become rejections rather than silent drops, preserving the
// tick to execution lineage in the durable store.
package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tickforge/tickforge/internal/metrics"
	"github.com/tickforge/tickforge/internal/model"
)

// Stats contains runtime statistics.
type Stats struct {
	IntentsReceived int64
	Filled          int64
	Rejected        int64
	VenueErrors     int64
}

// Gateway is the order execution stage.
type Gateway struct {
	venue  Venue
	logger *slog.Logger

	// Input from the coordinator
	input <-chan model.OrderIntent

	// Output to the recorder
	recOut chan<- model.OrderExecution

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	stats Stats
}

// NewGateway creates a gateway around a venue.
func NewGateway(venue Venue, input <-chan model.OrderIntent, recOut chan<- model.OrderExecution, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		venue:  venue,
		input:  input,
		recOut: recOut,
		logger: logger.With("venue", venue.Name()),
	}
}

// Start begins executing intents.
func (g *Gateway) Start(ctx context.Context) error {
	g.ctx, g.cancel = context.WithCancel(ctx)

	g.wg.Add(1)
	go g.run()

	g.logger.Info("gateway started")
	return nil
}

// Stop gracefully shuts down the gateway.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.cancel != nil {
		g.cancel()
	}

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		g.logger.Info("gateway stopped")
	case <-ctx.Done():
		g.logger.Warn("gateway stop timed out")
	}
	return nil
}

// Stats returns current statistics.
func (g *Gateway) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.stats
}

func (g *Gateway) run() {
	defer g.wg.Done()

	for {
		select {
		case <-g.ctx.Done():
			return
		case intent, ok := <-g.input:
			if !ok {
				g.logger.Info("input channel closed")
				return
			}
			g.execute(intent)
		}
	}
}

func (g *Gateway) execute(intent model.OrderIntent) {
	g.count(func(s *Stats) { s.IntentsReceived++ })

	exec, err := g.venue.Execute(g.ctx, intent)
	if err != nil {
		g.count(func(s *Stats) { s.VenueErrors++ })
		g.logger.Error("venue execution failed",
			"intent_id", intent.ID,
			"error", err,
		)
		exec = model.OrderExecution{
			IntentID:     intent.ID,
			InstrumentID: intent.InstrumentID,
			Venue:        g.venue.Name(),
			Status:       model.ExecRejected,
			Reason:       err.Error(),
			ExecutedAt:   time.Now().UTC(),
		}
	}

	switch exec.Status {
	case model.ExecRejected:
		g.count(func(s *Stats) { s.Rejected++ })
		g.logger.Warn("intent rejected",
			"intent_id", intent.ID,
			"reason", exec.Reason,
		)
	default:
		g.count(func(s *Stats) { s.Filled++ })
	}
	metrics.Executions.WithLabelValues(string(exec.Status)).Inc()

	select {
	case g.recOut <- exec:
	case <-g.ctx.Done():
	}
}

func (g *Gateway) count(f func(*Stats)) {
	g.mu.Lock()
	f(&g.stats)
	g.mu.Unlock()
}
