package recorder

import (
	"time"

	"github.com/tickforge/tickforge/internal/model"
)

// Row types mirror the durable schema. Prices and quantities travel as
// strings so pgx encodes them into NUMERIC without float rounding.

type instrumentRow struct {
	ID         int64
	Symbol     string
	Venue      string
	AssetClass string
	Status     string
	FirstSeen  time.Time
}

type tickRow struct {
	InstrumentID int64
	Symbol       string
	Venue        string
	EventType    string
	Price        string
	Size         string
	VenueSeq     int64
	EventTS      time.Time
	ReceivedAt   time.Time
}

type decisionRow struct {
	ID           string
	InstrumentID int64
	Shard        int
	Strategy     string
	Priority     int
	Signal       string
	Quantity     string
	LimitPrice   string
	Reason       string
	TriggerSeq   int64
	TriggerTS    time.Time
	TriggerPrice string
	CreatedAt    time.Time
}

type intentRow struct {
	ID           string
	InstrumentID int64
	Side         string
	Quantity     string
	LimitPrice   string
	RefPrice     string
	DecisionIDs  []string
	CreatedAt    time.Time
}

type executionRow struct {
	IntentID     string
	InstrumentID int64
	Venue        string
	VenueRef     string
	FillPrice    string
	FillQty      string
	Status       string
	Reason       string
	ExecutedAt   time.Time
}

func transformInstrument(in model.Instrument) instrumentRow {
	return instrumentRow{
		ID:         in.ID,
		Symbol:     in.Symbol,
		Venue:      in.Venue,
		AssetClass: in.AssetClass,
		Status:     string(in.Status),
		FirstSeen:  in.FirstSeen,
	}
}

func transformTick(t model.Tick) tickRow {
	return tickRow{
		InstrumentID: t.InstrumentID,
		Symbol:       t.Symbol,
		Venue:        t.Venue,
		EventType:    string(t.EventType),
		Price:        t.Price.String(),
		Size:         t.Size.String(),
		VenueSeq:     t.VenueSeq,
		EventTS:      t.EventTS,
		ReceivedAt:   t.ReceivedAt,
	}
}

func transformDecision(d model.StrategyDecision) decisionRow {
	return decisionRow{
		ID:           d.ID.String(),
		InstrumentID: d.InstrumentID,
		Shard:        d.Shard,
		Strategy:     d.Strategy,
		Priority:     d.Priority,
		Signal:       d.Signal.String(),
		Quantity:     d.Quantity.String(),
		LimitPrice:   d.LimitPrice.String(),
		Reason:       d.Reason,
		TriggerSeq:   d.TriggerSeq,
		TriggerTS:    d.TriggerTS,
		TriggerPrice: d.TriggerPrice.String(),
		CreatedAt:    d.CreatedAt,
	}
}

func transformIntent(i model.OrderIntent) intentRow {
	ids := make([]string, len(i.DecisionIDs))
	for n, id := range i.DecisionIDs {
		ids[n] = id.String()
	}
	return intentRow{
		ID:           i.ID.String(),
		InstrumentID: i.InstrumentID,
		Side:         string(i.Side),
		Quantity:     i.Quantity.String(),
		LimitPrice:   i.LimitPrice.String(),
		RefPrice:     i.RefPrice.String(),
		DecisionIDs:  ids,
		CreatedAt:    i.CreatedAt,
	}
}

func transformExecution(e model.OrderExecution) executionRow {
	return executionRow{
		IntentID:     e.IntentID.String(),
		InstrumentID: e.InstrumentID,
		Venue:        e.Venue,
		VenueRef:     e.VenueRef,
		FillPrice:    e.FillPrice.String(),
		FillQty:      e.FillQty.String(),
		Status:       string(e.Status),
		Reason:       e.Reason,
		ExecutedAt:   e.ExecutedAt,
	}
}
