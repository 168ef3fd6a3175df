package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSignalString(t *testing.T) {
	cases := []struct {
		sig  Signal
		want string
	}{
		{Buy, "buy"},
		{Sell, "sell"},
		{Hold, "hold"},
		{Signal(99), "hold"},
	}
	for _, c := range cases {
		if got := c.sig.String(); got != c.want {
			t.Errorf("Signal(%d).String() = %q, want %q", c.sig, got, c.want)
		}
	}
}

func TestDecisionLimited(t *testing.T) {
	d := StrategyDecision{}
	if d.Limited() {
		t.Error("zero limit price should be unconstrained")
	}
	d.LimitPrice = decimal.NewFromFloat(0.52)
	if !d.Limited() {
		t.Error("non-zero limit price should be constrained")
	}
}

func TestIntentLimited(t *testing.T) {
	i := OrderIntent{}
	if i.Limited() {
		t.Error("zero limit price should be unconstrained")
	}
	i.LimitPrice = decimal.NewFromInt(100)
	if !i.Limited() {
		t.Error("non-zero limit price should be constrained")
	}
}
