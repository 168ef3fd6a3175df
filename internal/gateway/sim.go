package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tickforge/tickforge/internal/model"
)

// SimVenue fills intents deterministically without touching a real
// venue: limit orders fill at their limit price, unconstrained orders
// fill at the intent's reference price. Orders above the configured
// size cap are rejected.
type SimVenue struct {
	maxOrderSize decimal.Decimal
}

// NewSimVenue creates a simulation venue with the given order size cap.
// A non-positive cap disables the check.
func NewSimVenue(maxOrderSize float64) *SimVenue {
	return &SimVenue{maxOrderSize: decimal.NewFromFloat(maxOrderSize)}
}

func (v *SimVenue) Name() string { return "simulation" }

// Execute fills or rejects the intent. It never returns an error: the
// simulation has no transport to fail.
func (v *SimVenue) Execute(_ context.Context, intent model.OrderIntent) (model.OrderExecution, error) {
	exec := model.OrderExecution{
		IntentID:     intent.ID,
		InstrumentID: intent.InstrumentID,
		Venue:        v.Name(),
		VenueRef:     fmt.Sprintf("SIM-%s", intent.ID),
		ExecutedAt:   time.Now().UTC(),
	}

	if v.maxOrderSize.IsPositive() && intent.Quantity.GreaterThan(v.maxOrderSize) {
		exec.Status = model.ExecRejected
		exec.Reason = fmt.Sprintf("quantity %s exceeds max order size %s", intent.Quantity, v.maxOrderSize)
		return exec, nil
	}

	price := intent.RefPrice
	if intent.Limited() {
		price = intent.LimitPrice
	}
	if price.IsZero() {
		exec.Status = model.ExecRejected
		exec.Reason = "no limit or reference price to fill against"
		return exec, nil
	}

	exec.Status = model.ExecFilled
	exec.FillPrice = price
	exec.FillQty = intent.Quantity
	return exec, nil
}
