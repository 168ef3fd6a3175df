// Package router assigns each normalized Tick a priority class and
// resolves its owning shard, then delivers it to that shard's queues.
// FAST traffic is delivered drop-oldest-on-overflow; WARM and COLD
// traffic blocks the producer instead, because correctness for
// lower-priority signals matters more than freshness.
package router

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/tickforge/tickforge/internal/metrics"
	"github.com/tickforge/tickforge/internal/model"
)

// Config holds router settings, resolved from the top-level config.
type Config struct {
	Shards         int
	FastRingSize   int
	WarmBufferSize int
	ColdBufferSize int
	Rules          Rules
}

// ShardQueues are one shard's inbound tick queues, consumed by exactly
// one engine shard.
type ShardQueues struct {
	Fast *Ring[model.Tick]
	Warm chan model.Tick
	Cold chan model.Tick
}

// Stats contains runtime statistics.
type Stats struct {
	Received   int64
	RoutedFast int64
	RoutedWarm int64
	RoutedCold int64
	FastDrops  int64
}

// Router is the priority router stage.
type Router struct {
	cfg        Config
	assignment *Assignment
	logger     *slog.Logger

	// Input from Normalizer
	input <-chan model.Tick

	// Output to engine shards
	queues []ShardQueues

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	stats Stats
}

// NewRouter creates a router and its per-shard queues.
func NewRouter(cfg Config, assignment *Assignment, input <-chan model.Tick, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	queues := make([]ShardQueues, assignment.Shards())
	for i := range queues {
		queues[i] = ShardQueues{
			Fast: NewRing[model.Tick](cfg.FastRingSize),
			Warm: make(chan model.Tick, cfg.WarmBufferSize),
			Cold: make(chan model.Tick, cfg.ColdBufferSize),
		}
	}

	return &Router{
		cfg:        cfg,
		assignment: assignment,
		input:      input,
		queues:     queues,
		logger:     logger,
	}
}

// Start begins routing ticks.
func (r *Router) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.routeLoop()

	r.logger.Info("router started",
		"shards", r.assignment.Shards(),
		"fast_ring", r.cfg.FastRingSize,
		"warm_buffer", r.cfg.WarmBufferSize,
		"cold_buffer", r.cfg.ColdBufferSize,
	)
	return nil
}

// Stop gracefully shuts down the router.
func (r *Router) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("router stopped")
	case <-ctx.Done():
		r.logger.Warn("router stop timed out")
	}
	return nil
}

// Queues returns the queues for one shard.
func (r *Router) Queues(shard int) ShardQueues {
	return r.queues[shard]
}

// Stats returns current statistics, including per-ring drop counts.
func (r *Router) Stats() Stats {
	r.mu.RLock()
	stats := r.stats
	r.mu.RUnlock()

	for _, q := range r.queues {
		stats.FastDrops += q.Fast.Stats().Dropped
	}
	return stats
}

func (r *Router) routeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case tick, ok := <-r.input:
			if !ok {
				r.logger.Info("input channel closed")
				return
			}
			r.route(tick)
		}
	}
}

func (r *Router) route(tick model.Tick) {
	r.count(func(s *Stats) { s.Received++ })

	priority := Classify(tick, r.cfg.Rules)
	shard := r.assignment.Resolve(tick.InstrumentID)
	q := r.queues[shard]

	metrics.TicksRouted.WithLabelValues(priority.String()).Inc()

	switch priority {
	case Fast:
		if q.Fast.Push(tick) {
			metrics.FastDrops.WithLabelValues(strconv.Itoa(shard)).Inc()
			r.logger.Debug("fast ring overflow, dropped oldest", "shard", shard)
		}
		r.count(func(s *Stats) { s.RoutedFast++ })
	case Warm:
		select {
		case q.Warm <- tick:
			r.count(func(s *Stats) { s.RoutedWarm++ })
		case <-r.ctx.Done():
		}
	case Cold:
		select {
		case q.Cold <- tick:
			r.count(func(s *Stats) { s.RoutedCold++ })
		case <-r.ctx.Done():
		}
	}
}

func (r *Router) count(f func(*Stats)) {
	r.mu.Lock()
	f(&r.stats)
	r.mu.Unlock()
}
