// Package recorder persists the full lineage of the pipeline: every
// instrument, tick, decision, intent and execution, batched into
// Postgres. Inserts are idempotent; replaying a batch after a crash or
// reconnect overlap lands on the natural keys and does nothing.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tickforge/tickforge/internal/metrics"
	"github.com/tickforge/tickforge/internal/model"
)

// Config holds batching settings.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
}

// Inputs are the recorder's upstream channels, one per relation.
type Inputs struct {
	Instruments <-chan model.Instrument
	Ticks       <-chan model.Tick
	Decisions   <-chan model.StrategyDecision
	Intents     <-chan model.OrderIntent
	Executions  <-chan model.OrderExecution
}

// Stats contains runtime statistics.
type Stats struct {
	Inserts   int64
	Conflicts int64
	Flushes   int64
	Errors    int64
}

// Recorder is the persistence stage.
type Recorder struct {
	cfg    Config
	logger *slog.Logger

	inputs Inputs

	// Database; nil in tests, which exercises batching only.
	db *pgxpool.Pool

	// Batches, one per relation
	batchMu     sync.Mutex
	instruments []instrumentRow
	ticks       []tickRow
	decisions   []decisionRow
	intents     []intentRow
	executions  []executionRow
	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stats Stats
}

// NewRecorder creates a recorder.
func NewRecorder(cfg Config, inputs Inputs, db *pgxpool.Pool, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		cfg:    cfg,
		inputs: inputs,
		db:     db,
		logger: logger,
	}
}

// Start begins consuming and persisting records.
func (r *Recorder) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.flushTicker = time.NewTicker(r.cfg.FlushInterval)

	r.wg.Add(1)
	go r.consumeLoop()

	r.wg.Add(1)
	go r.flushLoop()

	r.logger.Info("recorder started",
		"batch_size", r.cfg.BatchSize,
		"flush_interval", r.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the recorder, flushing whatever is
// batched. The recorder stops last in the pipeline so lineage written
// by upstream stages is never lost.
func (r *Recorder) Stop(ctx context.Context) error {
	r.logger.Info("stopping recorder")

	if r.cancel != nil {
		r.cancel()
	}
	if r.flushTicker != nil {
		r.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("recorder stopped")
	case <-ctx.Done():
		r.logger.Warn("recorder stop timed out")
	}

	// Final flush
	r.flush()

	return nil
}

// Stats returns current statistics.
func (r *Recorder) Stats() Stats {
	r.batchMu.Lock()
	defer r.batchMu.Unlock()
	return r.stats
}

func (r *Recorder) consumeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case in, ok := <-r.inputs.Instruments:
			if !ok {
				r.inputs.Instruments = nil
				continue
			}
			r.add(func() { r.instruments = append(r.instruments, transformInstrument(in)) })
		case t, ok := <-r.inputs.Ticks:
			if !ok {
				r.inputs.Ticks = nil
				continue
			}
			r.add(func() { r.ticks = append(r.ticks, transformTick(t)) })
		case d, ok := <-r.inputs.Decisions:
			if !ok {
				r.inputs.Decisions = nil
				continue
			}
			r.add(func() { r.decisions = append(r.decisions, transformDecision(d)) })
		case i, ok := <-r.inputs.Intents:
			if !ok {
				r.inputs.Intents = nil
				continue
			}
			r.add(func() { r.intents = append(r.intents, transformIntent(i)) })
		case e, ok := <-r.inputs.Executions:
			if !ok {
				r.inputs.Executions = nil
				continue
			}
			r.add(func() { r.executions = append(r.executions, transformExecution(e)) })
		}
	}
}

func (r *Recorder) flushLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.flushTicker.C:
			r.flush()
		}
	}
}

// add appends a row under the batch lock and flushes when the combined
// batch reaches the configured size.
func (r *Recorder) add(fn func()) {
	r.batchMu.Lock()
	fn()
	shouldFlush := r.pendingLocked() >= r.cfg.BatchSize
	r.batchMu.Unlock()

	if shouldFlush {
		r.flush()
	}
}

func (r *Recorder) pendingLocked() int {
	return len(r.instruments) + len(r.ticks) + len(r.decisions) + len(r.intents) + len(r.executions)
}

// flush writes all batched rows in one database round trip.
func (r *Recorder) flush() {
	r.batchMu.Lock()
	if r.pendingLocked() == 0 {
		r.batchMu.Unlock()
		return
	}

	instruments := r.instruments
	ticks := r.ticks
	decisions := r.decisions
	intents := r.intents
	executions := r.executions
	r.instruments = nil
	r.ticks = nil
	r.decisions = nil
	r.intents = nil
	r.executions = nil
	r.batchMu.Unlock()

	total := len(instruments) + len(ticks) + len(decisions) + len(intents) + len(executions)

	if r.db == nil {
		r.batchMu.Lock()
		r.stats.Flushes++
		r.batchMu.Unlock()
		return
	}

	start := time.Now()

	batch := &pgx.Batch{}
	for _, row := range instruments {
		batch.Queue(`
			INSERT INTO instruments (id, symbol, venue, asset_class, status, first_seen)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (venue, symbol) DO NOTHING
		`, row.ID, row.Symbol, row.Venue, row.AssetClass, row.Status, row.FirstSeen)
	}
	for _, row := range ticks {
		batch.Queue(`
			INSERT INTO ticks (instrument_id, symbol, venue, event_type, price, size, venue_seq, event_ts, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (instrument_id, venue, venue_seq, event_ts) DO NOTHING
		`, row.InstrumentID, row.Symbol, row.Venue, row.EventType, row.Price, row.Size, row.VenueSeq, row.EventTS, row.ReceivedAt)
	}
	for _, row := range decisions {
		batch.Queue(`
			INSERT INTO strategy_decisions (id, instrument_id, shard, strategy, priority, signal, quantity, limit_price, reason, trigger_seq, trigger_ts, trigger_price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id) DO NOTHING
		`, row.ID, row.InstrumentID, row.Shard, row.Strategy, row.Priority, row.Signal, row.Quantity, row.LimitPrice, row.Reason, row.TriggerSeq, row.TriggerTS, row.TriggerPrice, row.CreatedAt)
	}
	for _, row := range intents {
		batch.Queue(`
			INSERT INTO order_intents (id, instrument_id, side, quantity, limit_price, ref_price, decision_ids, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING
		`, row.ID, row.InstrumentID, row.Side, row.Quantity, row.LimitPrice, row.RefPrice, row.DecisionIDs, row.CreatedAt)
	}
	for _, row := range executions {
		batch.Queue(`
			INSERT INTO order_executions (intent_id, instrument_id, venue, venue_ref, fill_price, fill_qty, status, reason, executed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (intent_id) DO NOTHING
		`, row.IntentID, row.InstrumentID, row.Venue, row.VenueRef, row.FillPrice, row.FillQty, row.Status, row.Reason, row.ExecutedAt)
	}

	conflicts, err := r.sendBatch(batch, total)
	if err != nil {
		r.logger.Error("batch insert failed", "error", err, "count", total)
		r.batchMu.Lock()
		r.stats.Errors++
		r.batchMu.Unlock()
		return
	}

	r.batchMu.Lock()
	r.stats.Inserts += int64(total - conflicts)
	r.stats.Conflicts += int64(conflicts)
	r.stats.Flushes++
	r.batchMu.Unlock()

	metrics.RecorderFlushRows.WithLabelValues("instruments").Add(float64(len(instruments)))
	metrics.RecorderFlushRows.WithLabelValues("ticks").Add(float64(len(ticks)))
	metrics.RecorderFlushRows.WithLabelValues("strategy_decisions").Add(float64(len(decisions)))
	metrics.RecorderFlushRows.WithLabelValues("order_intents").Add(float64(len(intents)))
	metrics.RecorderFlushRows.WithLabelValues("order_executions").Add(float64(len(executions)))

	r.logger.Debug("flushed batch",
		"count", total,
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

func (r *Recorder) sendBatch(batch *pgx.Batch, count int) (conflicts int, err error) {
	results := r.db.SendBatch(context.Background(), batch)
	defer results.Close()

	for i := 0; i < count; i++ {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}
	return conflicts, nil
}
