package engine

import (
	"github.com/shopspring/decimal"

	"github.com/tickforge/tickforge/internal/model"
	"github.com/tickforge/tickforge/internal/strategy"
)

// Lifecycle is the evaluation readiness of one instrument's state.
type Lifecycle int

const (
	// Uninitialized means no tick has been applied yet.
	Uninitialized Lifecycle = iota
	// Warming means the price window is still filling; strategies are
	// not evaluated.
	Warming
	// Active means the window is full and every strategy's lookback is
	// satisfied.
	Active
)

func (l Lifecycle) String() string {
	switch l {
	case Warming:
		return "warming"
	case Active:
		return "active"
	}
	return "uninitialized"
}

// InstrumentState is one instrument's rolling view, owned by exactly
// one shard and never shared, so it needs no locking.
type InstrumentState struct {
	lifecycle Lifecycle
	prices    []float64
	window    int
	lastPrice float64
	tickCount int64
	position  decimal.Decimal
}

// NewInstrumentState creates state with the given price window size,
// the largest lookback across registered strategies.
func NewInstrumentState(window int) *InstrumentState {
	if window < 1 {
		window = 1
	}
	return &InstrumentState{
		window: window,
		prices: make([]float64, 0, window),
	}
}

// Apply folds one tick into the state and returns the resulting
// lifecycle. Ticks without a price advance the count but not the
// window.
func (s *InstrumentState) Apply(tick model.Tick) Lifecycle {
	s.tickCount++

	if !tick.Price.IsZero() {
		price := tick.Price.InexactFloat64()
		s.lastPrice = price
		if len(s.prices) == s.window {
			copy(s.prices, s.prices[1:])
			s.prices[len(s.prices)-1] = price
		} else {
			s.prices = append(s.prices, price)
		}
	}

	if len(s.prices) >= s.window {
		s.lifecycle = Active
	} else {
		s.lifecycle = Warming
	}
	return s.lifecycle
}

// Input builds the strategy view for the tick just applied.
func (s *InstrumentState) Input(tick model.Tick) strategy.Input {
	return strategy.Input{
		Tick:      tick,
		Prices:    s.prices,
		Position:  s.position,
		TickCount: s.tickCount,
	}
}

// RecordSignal adjusts the locally tracked net position for an emitted
// decision, keeping later no-pyramid checks honest.
func (s *InstrumentState) RecordSignal(signal model.Signal, quantity decimal.Decimal) {
	switch signal {
	case model.Buy:
		s.position = s.position.Add(quantity)
	case model.Sell:
		s.position = s.position.Sub(quantity)
	}
}

// Lifecycle returns the current readiness.
func (s *InstrumentState) Lifecycle() Lifecycle { return s.lifecycle }

// Position returns the locally tracked net position.
func (s *InstrumentState) Position() decimal.Decimal { return s.position }

// TickCount returns how many ticks have been applied.
func (s *InstrumentState) TickCount() int64 { return s.tickCount }
