package strategy

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"

	"github.com/tickforge/tickforge/internal/config"
	"github.com/tickforge/tickforge/internal/model"
)

func init() {
	Register("sma_cross", NewSMACross)
}

// SMACross signals on the crossing of a fast and a slow simple moving
// average: fast crossing above slow is a buy, fast crossing below slow
// is a sell. Between crossings it holds.
type SMACross struct {
	name     string
	priority int
	quantity decimal.Decimal
	fast     int
	slow     int
}

// NewSMACross builds an SMA crossover strategy from config.
func NewSMACross(cfg config.StrategyConfig) (Strategy, error) {
	if cfg.Fast < 2 {
		return nil, fmt.Errorf("fast period must be >= 2, got %d", cfg.Fast)
	}
	if cfg.Slow <= cfg.Fast {
		return nil, fmt.Errorf("slow period must exceed fast period, got fast=%d slow=%d", cfg.Fast, cfg.Slow)
	}
	if cfg.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %v", cfg.Quantity)
	}
	return &SMACross{
		name:     cfg.Name,
		priority: cfg.Priority,
		quantity: decimal.NewFromFloat(cfg.Quantity),
		fast:     cfg.Fast,
		slow:     cfg.Slow,
	}, nil
}

func (s *SMACross) Name() string  { return s.name }
func (s *SMACross) Priority() int { return s.priority }

// Lookback needs one bar beyond the slow period to observe a crossing.
func (s *SMACross) Lookback() int { return s.slow + 1 }

func (s *SMACross) Evaluate(in Input) (Advice, error) {
	if len(in.Prices) < s.Lookback() {
		return Hold, nil
	}

	fast := talib.Sma(in.Prices, s.fast)
	slow := talib.Sma(in.Prices, s.slow)
	n := len(in.Prices)

	prev := fast[n-2] - slow[n-2]
	curr := fast[n-1] - slow[n-1]

	switch {
	case prev <= 0 && curr > 0:
		return Advice{
			Signal:   model.Buy,
			Quantity: s.quantity,
			Reason:   fmt.Sprintf("fast sma %.4f crossed above slow sma %.4f", fast[n-1], slow[n-1]),
		}, nil
	case prev >= 0 && curr < 0:
		return Advice{
			Signal:   model.Sell,
			Quantity: s.quantity,
			Reason:   fmt.Sprintf("fast sma %.4f crossed below slow sma %.4f", fast[n-1], slow[n-1]),
		}, nil
	}
	return Hold, nil
}
