// Package strategy defines the trading strategy contract and the
// built-in strategies evaluated by engine shards. Strategies are pure
// with respect to engine state: they see an Input snapshot and return
// an Advice, never mutating anything they are handed.
package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tickforge/tickforge/internal/config"
	"github.com/tickforge/tickforge/internal/model"
)

// Input is the per-instrument view a strategy evaluates against. Prices
// is the rolling close window, oldest first, with the triggering tick's
// price last.
type Input struct {
	Tick      model.Tick
	Prices    []float64
	Position  decimal.Decimal // Net simulated position, signed
	TickCount int64           // Ticks seen for this instrument
}

// Last returns the most recent price in the window.
func (in Input) Last() float64 {
	if len(in.Prices) == 0 {
		return 0
	}
	return in.Prices[len(in.Prices)-1]
}

// Advice is a strategy's output for one evaluation. A Hold signal means
// no decision is emitted.
type Advice struct {
	Signal     model.Signal
	Quantity   decimal.Decimal
	LimitPrice decimal.Decimal // Zero means unconstrained
	Reason     string
}

// Hold is the no-action advice.
var Hold = Advice{Signal: model.Hold}

// Strategy evaluates normalized ticks for one instrument.
type Strategy interface {
	// Name is the stable identifier recorded on decisions.
	Name() string

	// Priority orders this strategy's decisions in coordinator merges.
	Priority() int

	// Lookback is the price window length the strategy needs before it
	// produces non-Hold advice. The engine warms each instrument until
	// the largest registered lookback is satisfied.
	Lookback() int

	// Evaluate inspects the input and returns an advice. Returning an
	// error skips the decision without tearing down the shard.
	Evaluate(in Input) (Advice, error)
}

// Builder constructs a strategy from its config block.
type Builder func(cfg config.StrategyConfig) (Strategy, error)

var (
	buildersMu sync.RWMutex
	builders   = make(map[string]Builder)
)

// Register makes a strategy constructor available by name. Built-in
// strategies register from init; callers may add their own before
// Build runs.
func Register(name string, b Builder) {
	buildersMu.Lock()
	defer buildersMu.Unlock()
	if _, dup := builders[name]; dup {
		panic(fmt.Sprintf("strategy: duplicate registration for %q", name))
	}
	builders[name] = b
}

// Names returns the registered strategy names, sorted.
func Names() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()

	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs all configured strategies. Unknown names and
// invalid parameters are configuration errors.
func Build(cfgs []config.StrategyConfig) ([]Strategy, error) {
	buildersMu.RLock()
	defer buildersMu.RUnlock()

	strategies := make([]Strategy, 0, len(cfgs))
	for _, cfg := range cfgs {
		b, ok := builders[cfg.Name]
		if !ok {
			return nil, fmt.Errorf("unknown strategy %q (registered: %v)", cfg.Name, Names())
		}
		s, err := b(cfg)
		if err != nil {
			return nil, fmt.Errorf("building strategy %q: %w", cfg.Name, err)
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}

// MaxLookback returns the largest lookback across strategies, the
// warm-up bar for engine instrument state.
func MaxLookback(strategies []Strategy) int {
	max := 0
	for _, s := range strategies {
		if lb := s.Lookback(); lb > max {
			max = lb
		}
	}
	return max
}
