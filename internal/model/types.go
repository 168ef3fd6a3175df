package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Enums
// -----------------------------------------------------------------------------

// EventType classifies the venue event a Tick was derived from.
type EventType string

const (
	EventTrade EventType = "trade"
	EventQuote EventType = "quote"
	EventBook  EventType = "book"
	EventOther EventType = "other"
)

// InstrumentStatus is the lifecycle status of an instrument.
type InstrumentStatus string

const (
	InstrumentActive   InstrumentStatus = "active"
	InstrumentInactive InstrumentStatus = "inactive"
)

// Signal is a strategy's directional output.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "hold"
	}
}

// Side is the direction of an order intent.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ExecutionStatus is the terminal state of an order execution.
type ExecutionStatus string

const (
	ExecFilled   ExecutionStatus = "filled"
	ExecPartial  ExecutionStatus = "partial"
	ExecRejected ExecutionStatus = "rejected"
)

// -----------------------------------------------------------------------------
// Records
// -----------------------------------------------------------------------------

// Instrument is a tradeable symbol known to the pipeline. Instruments
// are created on first sight of an unknown symbol or pre-seeded from
// config; only Status ever changes after creation.
type Instrument struct {
	ID         int64            // Registry-assigned, stable for process life
	Symbol     string           // Venue-native ticker
	Venue      string           // Source venue name
	AssetClass string           // e.g. "event_contract", "equity"
	Status     InstrumentStatus
	FirstSeen  time.Time
}

// Tick is one canonical normalized market event.
type Tick struct {
	InstrumentID int64
	Symbol       string
	Venue        string
	EventType    EventType
	Price        decimal.Decimal
	Size         decimal.Decimal // Zero when the venue reports none
	VenueSeq     int64           // Venue sequence number, 0 if not provided
	EventTS      time.Time       // Venue event timestamp
	ReceivedAt   time.Time       // Local ingest timestamp
}

// StrategyDecision is a strategy's signal for one instrument at one
// point in time, carrying the tick that triggered it.
type StrategyDecision struct {
	ID           uuid.UUID
	InstrumentID int64
	Shard        int
	Strategy     string
	Priority     int // Higher wins in coordinator merges
	Signal       Signal
	Quantity     decimal.Decimal
	LimitPrice   decimal.Decimal // Zero means unconstrained
	Reason       string

	// Trigger tick lineage
	TriggerSeq   int64
	TriggerTS    time.Time
	TriggerPrice decimal.Decimal

	CreatedAt time.Time
}

// Limited reports whether the decision carries a price constraint.
func (d StrategyDecision) Limited() bool {
	return !d.LimitPrice.IsZero()
}

// OrderIntent is a coordinated, de-duplicated trading instruction
// derived from one or more decisions.
type OrderIntent struct {
	ID           uuid.UUID
	InstrumentID int64
	Side         Side
	Quantity     decimal.Decimal
	LimitPrice   decimal.Decimal // Zero means unconstrained
	RefPrice     decimal.Decimal // Last trigger price, sim fill fallback
	DecisionIDs  []uuid.UUID     // Contributing decisions, never empty
	CreatedAt    time.Time
}

// Limited reports whether the intent carries a price constraint.
func (i OrderIntent) Limited() bool {
	return !i.LimitPrice.IsZero()
}

// OrderExecution is the realized (or rejected) outcome of an
// OrderIntent. Exactly one execution exists per intent.
type OrderExecution struct {
	IntentID     uuid.UUID
	InstrumentID int64
	Venue        string // "simulation" in simulation mode
	VenueRef     string // Venue order reference, synthetic in simulation
	FillPrice    decimal.Decimal
	FillQty      decimal.Decimal
	Status       ExecutionStatus
	Reason       string // Populated on rejection
	ExecutedAt   time.Time
}
