package strategy

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"

	"github.com/tickforge/tickforge/internal/config"
	"github.com/tickforge/tickforge/internal/model"
)

func init() {
	Register("momentum", NewMomentum)
}

// Momentum signals when the last price deviates from its simple moving
// average by more than a configured fraction: above the band is a buy,
// below is a sell. It will not pyramid: a buy while already long, or a
// sell while already short, becomes a hold.
type Momentum struct {
	name      string
	priority  int
	quantity  decimal.Decimal
	lookback  int
	threshold float64
}

// NewMomentum builds a momentum strategy from config.
func NewMomentum(cfg config.StrategyConfig) (Strategy, error) {
	if cfg.Lookback < 2 {
		return nil, fmt.Errorf("lookback must be >= 2, got %d", cfg.Lookback)
	}
	if cfg.Threshold <= 0 {
		return nil, fmt.Errorf("threshold must be positive, got %v", cfg.Threshold)
	}
	if cfg.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %v", cfg.Quantity)
	}
	return &Momentum{
		name:      cfg.Name,
		priority:  cfg.Priority,
		quantity:  decimal.NewFromFloat(cfg.Quantity),
		lookback:  cfg.Lookback,
		threshold: cfg.Threshold,
	}, nil
}

func (m *Momentum) Name() string  { return m.name }
func (m *Momentum) Priority() int { return m.priority }
func (m *Momentum) Lookback() int { return m.lookback }

func (m *Momentum) Evaluate(in Input) (Advice, error) {
	if len(in.Prices) < m.lookback {
		return Hold, nil
	}

	sma := talib.Sma(in.Prices, m.lookback)
	mean := sma[len(sma)-1]
	if mean == 0 {
		return Hold, fmt.Errorf("zero moving average for instrument %d", in.Tick.InstrumentID)
	}

	last := in.Last()
	dev := (last - mean) / mean

	switch {
	case dev > m.threshold:
		if in.Position.IsPositive() {
			return Hold, nil
		}
		return Advice{
			Signal:   model.Buy,
			Quantity: m.quantity,
			Reason:   fmt.Sprintf("price %.4f is %.2f%% above sma %.4f", last, dev*100, mean),
		}, nil
	case dev < -m.threshold:
		if in.Position.IsNegative() {
			return Hold, nil
		}
		return Advice{
			Signal:   model.Sell,
			Quantity: m.quantity,
			Reason:   fmt.Sprintf("price %.4f is %.2f%% below sma %.4f", last, -dev*100, mean),
		}, nil
	}
	return Hold, nil
}
