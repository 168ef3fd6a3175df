package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickforge/tickforge/internal/config"
	"github.com/tickforge/tickforge/internal/model"
)

func TestBuild(t *testing.T) {
	strategies, err := Build([]config.StrategyConfig{
		{Name: "sma_cross", Priority: 10, Quantity: 5, Fast: 3, Slow: 8},
		{Name: "momentum", Priority: 5, Quantity: 2, Lookback: 20, Threshold: 0.02},
	})
	require.NoError(t, err)
	require.Len(t, strategies, 2)

	assert.Equal(t, "sma_cross", strategies[0].Name())
	assert.Equal(t, 10, strategies[0].Priority())
	assert.Equal(t, "momentum", strategies[1].Name())
	assert.Equal(t, 20, strategies[1].Lookback())
}

func TestBuildUnknownName(t *testing.T) {
	_, err := Build([]config.StrategyConfig{{Name: "no_such_strategy"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_strategy")
}

func TestBuildInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StrategyConfig
	}{
		{"sma fast too small", config.StrategyConfig{Name: "sma_cross", Quantity: 1, Fast: 1, Slow: 5}},
		{"sma slow not above fast", config.StrategyConfig{Name: "sma_cross", Quantity: 1, Fast: 5, Slow: 5}},
		{"sma zero quantity", config.StrategyConfig{Name: "sma_cross", Quantity: 0, Fast: 3, Slow: 8}},
		{"momentum short lookback", config.StrategyConfig{Name: "momentum", Quantity: 1, Lookback: 1, Threshold: 0.02}},
		{"momentum zero threshold", config.StrategyConfig{Name: "momentum", Quantity: 1, Lookback: 10, Threshold: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build([]config.StrategyConfig{tt.cfg})
			assert.Error(t, err)
		})
	}
}

func TestNamesIncludesBuiltins(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "sma_cross")
	assert.Contains(t, names, "momentum")
}

func TestMaxLookback(t *testing.T) {
	strategies, err := Build([]config.StrategyConfig{
		{Name: "sma_cross", Priority: 10, Quantity: 5, Fast: 3, Slow: 8},
		{Name: "momentum", Priority: 5, Quantity: 2, Lookback: 20, Threshold: 0.02},
	})
	require.NoError(t, err)

	assert.Equal(t, 20, MaxLookback(strategies))
	assert.Equal(t, 0, MaxLookback(nil))
}

func TestInputLast(t *testing.T) {
	assert.Equal(t, 0.0, Input{}.Last())
	assert.Equal(t, 3.0, Input{Prices: []float64{1, 2, 3}}.Last())
}

func TestHoldAdvice(t *testing.T) {
	assert.Equal(t, model.Hold, Hold.Signal)
	assert.True(t, Hold.Quantity.IsZero())
}
