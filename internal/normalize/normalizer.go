package normalize

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tickforge/tickforge/internal/ingest"
	"github.com/tickforge/tickforge/internal/instrument"
	"github.com/tickforge/tickforge/internal/metrics"
	"github.com/tickforge/tickforge/internal/model"
)

// Stats contains runtime statistics.
type Stats struct {
	Received           int64
	Normalized         int64
	ParseErrors        int64
	Skipped            int64
	InstrumentsCreated int64
}

// Normalizer consumes raw venue messages, decodes them through the
// venue's codec, resolves (auto-creating) the instrument and emits
// Ticks to the router and the recorder.
type Normalizer struct {
	codecs   map[string]Codec
	registry *instrument.Registry
	logger   *slog.Logger

	// Input from ingest supervisors
	input <-chan ingest.RawMessage

	// Outputs
	ticks    chan<- model.Tick       // to router
	recTicks chan<- model.Tick       // to recorder
	recInsts chan<- model.Instrument // to recorder, auto-created instruments

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	stats Stats
}

// NewNormalizer creates a normalizer for the given venue codecs.
func NewNormalizer(
	codecs []Codec,
	registry *instrument.Registry,
	input <-chan ingest.RawMessage,
	ticks chan<- model.Tick,
	recTicks chan<- model.Tick,
	recInsts chan<- model.Instrument,
	logger *slog.Logger,
) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}

	byVenue := make(map[string]Codec, len(codecs))
	for _, c := range codecs {
		byVenue[c.Venue()] = c
	}

	return &Normalizer{
		codecs:   byVenue,
		registry: registry,
		input:    input,
		ticks:    ticks,
		recTicks: recTicks,
		recInsts: recInsts,
		logger:   logger,
	}
}

// Start begins normalizing messages.
func (n *Normalizer) Start(ctx context.Context) error {
	n.ctx, n.cancel = context.WithCancel(ctx)

	n.wg.Add(1)
	go n.loop()

	n.logger.Info("normalizer started", "venues", len(n.codecs))
	return nil
}

// Stop gracefully shuts down the normalizer.
func (n *Normalizer) Stop(ctx context.Context) error {
	if n.cancel != nil {
		n.cancel()
	}

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		n.logger.Info("normalizer stopped")
	case <-ctx.Done():
		n.logger.Warn("normalizer stop timed out")
	}
	return nil
}

// Stats returns current statistics.
func (n *Normalizer) Stats() Stats {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.stats
}

func (n *Normalizer) loop() {
	defer n.wg.Done()

	for {
		select {
		case <-n.ctx.Done():
			return
		case raw, ok := <-n.input:
			if !ok {
				n.logger.Info("input channel closed")
				return
			}
			n.handle(raw)
		}
	}
}

func (n *Normalizer) handle(raw ingest.RawMessage) {
	n.count(func(s *Stats) { s.Received++ })

	codec, ok := n.codecs[raw.Venue]
	if !ok {
		n.logger.Warn("no codec for venue", "venue", raw.Venue)
		n.count(func(s *Stats) { s.ParseErrors++ })
		metrics.ParseErrors.WithLabelValues(raw.Venue).Inc()
		return
	}

	wire, err := codec.Decode(raw.Data)
	if err != nil {
		if errors.Is(err, ErrSkip) {
			n.count(func(s *Stats) { s.Skipped++ })
			return
		}
		n.logger.Debug("dropping unparseable message", "venue", raw.Venue, "error", err)
		n.count(func(s *Stats) { s.ParseErrors++ })
		metrics.ParseErrors.WithLabelValues(raw.Venue).Inc()
		return
	}

	inst, created := n.registry.LookupOrCreate(raw.Venue, wire.Symbol, codec.AssetClass())
	if created {
		n.count(func(s *Stats) { s.InstrumentsCreated++ })
		metrics.InstrumentsCreated.Inc()
		n.logger.Info("instrument auto-created",
			"venue", raw.Venue,
			"symbol", wire.Symbol,
			"id", inst.ID,
		)
		select {
		case n.recInsts <- inst:
		case <-n.ctx.Done():
			return
		}
	}

	tick := model.Tick{
		InstrumentID: inst.ID,
		Symbol:       inst.Symbol,
		Venue:        raw.Venue,
		EventType:    wire.EventType,
		Price:        wire.Price,
		Size:         wire.Size,
		VenueSeq:     wire.VenueSeq,
		EventTS:      wire.EventTS,
		ReceivedAt:   raw.ReceivedAt,
	}

	// Tee by value: router first, then recorder.
	select {
	case n.ticks <- tick:
	case <-n.ctx.Done():
		return
	}
	select {
	case n.recTicks <- tick:
	case <-n.ctx.Done():
		return
	}

	n.count(func(s *Stats) { s.Normalized++ })
	metrics.TicksNormalized.WithLabelValues(raw.Venue).Inc()
}

func (n *Normalizer) count(f func(*Stats)) {
	n.mu.Lock()
	f(&n.stats)
	n.mu.Unlock()
}
