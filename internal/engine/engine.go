// Package engine runs the sharded decision core. Each shard owns a
// disjoint set of instruments, consumes that shard's queues from the
// router, folds ticks into per-instrument state, and dispatches the
// registered strategies. A panicking strategy loses only that one
// evaluation, never the shard.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tickforge/tickforge/internal/metrics"
	"github.com/tickforge/tickforge/internal/model"
	"github.com/tickforge/tickforge/internal/router"
	"github.com/tickforge/tickforge/internal/strategy"
)

// Stats contains runtime statistics for one shard.
type Stats struct {
	TicksProcessed int64
	Decisions      int64
	StrategyErrors int64
	Warming        int
	Active         int
}

// Shard is one engine shard. It is the sole owner of its instrument
// states; nothing here needs a lock except the stats snapshot.
type Shard struct {
	id         int
	strategies []strategy.Strategy
	window     int
	logger     *slog.Logger

	// Input queues from the router, consumed FAST first.
	queues router.ShardQueues

	// Outputs: decisions to the coordinator and to the recorder.
	out    chan<- model.StrategyDecision
	recOut chan<- model.StrategyDecision

	states map[int64]*InstrumentState

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	stats Stats
}

// NewShard creates an engine shard.
func NewShard(
	id int,
	strategies []strategy.Strategy,
	queues router.ShardQueues,
	out, recOut chan<- model.StrategyDecision,
	logger *slog.Logger,
) *Shard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shard{
		id:         id,
		strategies: strategies,
		window:     strategy.MaxLookback(strategies),
		queues:     queues,
		out:        out,
		recOut:     recOut,
		states:     make(map[int64]*InstrumentState),
		logger:     logger.With("shard", id),
	}
}

// Start begins consuming ticks.
func (s *Shard) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.logger.Info("engine shard started",
		"strategies", len(s.strategies),
		"window", s.window,
	)
	return nil
}

// Stop gracefully shuts down the shard.
func (s *Shard) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("engine shard stopped")
	case <-ctx.Done():
		s.logger.Warn("engine shard stop timed out")
	}
	return nil
}

// Stats returns current statistics.
func (s *Shard) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// run drains the FAST ring ahead of the backpressured queues: every
// iteration empties the ring before touching WARM or COLD, so a FAST
// tick is never stuck behind lower-priority work.
func (s *Shard) run() {
	defer s.wg.Done()

	for {
		if tick, ok := s.queues.Fast.TryPop(); ok {
			s.process(tick)
			continue
		}

		select {
		case <-s.ctx.Done():
			return
		case <-s.queues.Fast.Notify():
		case tick := <-s.queues.Warm:
			s.process(tick)
		case tick := <-s.queues.Cold:
			s.process(tick)
		}
	}
}

func (s *Shard) process(tick model.Tick) {
	s.count(func(st *Stats) { st.TicksProcessed++ })

	state, ok := s.states[tick.InstrumentID]
	if !ok {
		state = NewInstrumentState(s.window)
		s.states[tick.InstrumentID] = state
		s.count(func(st *Stats) { st.Warming++ })
	}

	prev := state.Lifecycle()
	if state.Apply(tick) != Active {
		return
	}
	if prev != Active {
		s.count(func(st *Stats) { st.Warming--; st.Active++ })
		s.logger.Debug("instrument active", "instrument_id", tick.InstrumentID)
	}

	in := state.Input(tick)
	for _, strat := range s.strategies {
		advice, err := s.evaluate(strat, in)
		if err != nil {
			s.count(func(st *Stats) { st.StrategyErrors++ })
			metrics.StrategyErrors.WithLabelValues(strat.Name()).Inc()
			s.logger.Warn("strategy evaluation failed",
				"strategy", strat.Name(),
				"instrument_id", tick.InstrumentID,
				"error", err,
			)
			continue
		}
		if advice.Signal == model.Hold {
			continue
		}
		s.emit(strat, advice, tick, state)
	}
}

// evaluate runs one strategy with panic isolation.
func (s *Shard) evaluate(strat strategy.Strategy, in strategy.Input) (advice strategy.Advice, err error) {
	defer func() {
		if r := recover(); r != nil {
			advice = strategy.Hold
			err = fmt.Errorf("strategy %s panicked: %v", strat.Name(), r)
		}
	}()
	return strat.Evaluate(in)
}

func (s *Shard) emit(strat strategy.Strategy, advice strategy.Advice, tick model.Tick, state *InstrumentState) {
	decision := model.StrategyDecision{
		ID:           uuid.New(),
		InstrumentID: tick.InstrumentID,
		Shard:        s.id,
		Strategy:     strat.Name(),
		Priority:     strat.Priority(),
		Signal:       advice.Signal,
		Quantity:     advice.Quantity,
		LimitPrice:   advice.LimitPrice,
		Reason:       advice.Reason,
		TriggerSeq:   tick.VenueSeq,
		TriggerTS:    tick.EventTS,
		TriggerPrice: tick.Price,
		CreatedAt:    time.Now().UTC(),
	}

	select {
	case s.out <- decision:
	case <-s.ctx.Done():
		return
	}
	select {
	case s.recOut <- decision:
	case <-s.ctx.Done():
		return
	}

	state.RecordSignal(advice.Signal, advice.Quantity)
	s.count(func(st *Stats) { st.Decisions++ })
	metrics.Decisions.WithLabelValues(strat.Name(), advice.Signal.String()).Inc()

	s.logger.Debug("decision emitted",
		"strategy", strat.Name(),
		"instrument_id", tick.InstrumentID,
		"signal", advice.Signal.String(),
		"quantity", advice.Quantity.String(),
	)
}

func (s *Shard) count(f func(*Stats)) {
	s.mu.Lock()
	f(&s.stats)
	s.mu.Unlock()
}
