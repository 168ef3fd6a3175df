// Package coordinator merges strategy decisions into order intents.
// Decisions accumulate per instrument inside a fixed merge window;
// within a window a strategy's newer decision supersedes its older one.
// At the window boundary each instrument's surviving decisions are
// merged deterministically into at most one intent, then cleared.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tickforge/tickforge/internal/metrics"
	"github.com/tickforge/tickforge/internal/model"
)

// Config holds coordinator settings.
type Config struct {
	Window time.Duration
}

// Stats contains runtime statistics.
type Stats struct {
	DecisionsReceived int64
	Superseded        int64
	IntentsEmitted    int64
	NettedOut         int64 // Windows where buys and sells cancelled exactly
}

// Coordinator is the decision merge stage.
type Coordinator struct {
	cfg    Config
	logger *slog.Logger

	// Input from engine shards
	input <-chan model.StrategyDecision

	// Outputs: intents to the gateway and to the recorder.
	out    chan<- model.OrderIntent
	recOut chan<- model.OrderIntent

	// pending holds the window's surviving decision per
	// (instrument, strategy). Only the run goroutine touches it.
	pending map[int64]map[string]model.StrategyDecision

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	stats Stats
}

// NewCoordinator creates a coordinator.
func NewCoordinator(cfg Config, input <-chan model.StrategyDecision, out, recOut chan<- model.OrderIntent, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		cfg:     cfg,
		input:   input,
		out:     out,
		recOut:  recOut,
		pending: make(map[int64]map[string]model.StrategyDecision),
		logger:  logger,
	}
}

// Start begins accumulating and merging decisions.
func (c *Coordinator) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.run()

	c.logger.Info("coordinator started", "window", c.cfg.Window)
	return nil
}

// Stop gracefully shuts down the coordinator.
func (c *Coordinator) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("coordinator stopped")
	case <-ctx.Done():
		c.logger.Warn("coordinator stop timed out")
	}
	return nil
}

// Stats returns current statistics.
func (c *Coordinator) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *Coordinator) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.Window)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case d, ok := <-c.input:
			if !ok {
				// Drain the final partial window before exiting.
				c.mergeAll()
				c.logger.Info("input channel closed")
				return
			}
			c.accept(d)
		case <-ticker.C:
			c.mergeAll()
		}
	}
}

func (c *Coordinator) accept(d model.StrategyDecision) {
	c.count(func(s *Stats) { s.DecisionsReceived++ })

	byStrategy, ok := c.pending[d.InstrumentID]
	if !ok {
		byStrategy = make(map[string]model.StrategyDecision)
		c.pending[d.InstrumentID] = byStrategy
	}
	if _, dup := byStrategy[d.Strategy]; dup {
		c.count(func(s *Stats) { s.Superseded++ })
	}
	byStrategy[d.Strategy] = d
}

func (c *Coordinator) mergeAll() {
	for instrumentID, byStrategy := range c.pending {
		decisions := make([]model.StrategyDecision, 0, len(byStrategy))
		for _, d := range byStrategy {
			decisions = append(decisions, d)
		}

		intent, ok := Merge(instrumentID, decisions, time.Now().UTC())
		if !ok {
			c.count(func(s *Stats) { s.NettedOut++ })
			c.logger.Debug("window netted to zero", "instrument_id", instrumentID)
			continue
		}
		c.emit(intent)
	}
	// Window boundary: everything merged or netted out is done.
	clear(c.pending)
}

func (c *Coordinator) emit(intent model.OrderIntent) {
	select {
	case c.out <- intent:
	case <-c.ctx.Done():
		return
	}
	select {
	case c.recOut <- intent:
	case <-c.ctx.Done():
		return
	}

	c.count(func(s *Stats) { s.IntentsEmitted++ })
	metrics.Intents.Inc()

	c.logger.Debug("intent emitted",
		"instrument_id", intent.InstrumentID,
		"side", string(intent.Side),
		"quantity", intent.Quantity.String(),
		"decisions", len(intent.DecisionIDs),
	)
}

func (c *Coordinator) count(f func(*Stats)) {
	c.mu.Lock()
	f(&c.stats)
	c.mu.Unlock()
}

// Merge deterministically folds one instrument's surviving decisions
// into an intent. The order of the input slice does not matter:
// decisions are sorted by priority (highest first), then trigger time
// (newest first), then strategy name. The net quantity is the signed
// sum; a zero net means no intent. Calling Merge with no decisions is
// a lineage violation and panics.
func Merge(instrumentID int64, decisions []model.StrategyDecision, now time.Time) (model.OrderIntent, bool) {
	if len(decisions) == 0 {
		panic(fmt.Sprintf("coordinator: merge with no decisions for instrument %d", instrumentID))
	}

	sort.Slice(decisions, func(i, j int) bool {
		a, b := decisions[i], decisions[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.TriggerTS.Equal(b.TriggerTS) {
			return a.TriggerTS.After(b.TriggerTS)
		}
		return a.Strategy < b.Strategy
	})

	net := decimal.Zero
	for _, d := range decisions {
		switch d.Signal {
		case model.Buy:
			net = net.Add(d.Quantity)
		case model.Sell:
			net = net.Sub(d.Quantity)
		}
	}
	if net.IsZero() {
		return model.OrderIntent{}, false
	}

	side := model.SideBuy
	if net.IsNegative() {
		side = model.SideSell
	}

	ids := make([]uuid.UUID, len(decisions))
	for i, d := range decisions {
		ids[i] = d.ID
	}

	top := decisions[0]
	return model.OrderIntent{
		ID:           uuid.New(),
		InstrumentID: instrumentID,
		Side:         side,
		Quantity:     net.Abs(),
		LimitPrice:   top.LimitPrice,
		RefPrice:     top.TriggerPrice,
		DecisionIDs:  ids,
		CreatedAt:    now,
	}, true
}
