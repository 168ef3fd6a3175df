package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tickforge/tickforge/internal/model"
)

func testConfig() Config {
	return Config{
		BatchSize:     100,
		FlushInterval: time.Hour,
	}
}

func testInputs() (Inputs, chan model.Instrument, chan model.Tick, chan model.StrategyDecision, chan model.OrderIntent, chan model.OrderExecution) {
	insts := make(chan model.Instrument, 16)
	ticks := make(chan model.Tick, 16)
	decs := make(chan model.StrategyDecision, 16)
	intents := make(chan model.OrderIntent, 16)
	execs := make(chan model.OrderExecution, 16)
	return Inputs{
		Instruments: insts,
		Ticks:       ticks,
		Decisions:   decs,
		Intents:     intents,
		Executions:  execs,
	}, insts, ticks, decs, intents, execs
}

func TestTransformTick(t *testing.T) {
	eventTS := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	receivedAt := eventTS.Add(3 * time.Millisecond)

	tick := model.Tick{
		InstrumentID: 7,
		Symbol:       "PRES-2028",
		Venue:        "kalshi",
		EventType:    model.EventTrade,
		Price:        decimal.NewFromFloat(0.52),
		Size:         decimal.NewFromInt(50),
		VenueSeq:     42,
		EventTS:      eventTS,
		ReceivedAt:   receivedAt,
	}

	row := transformTick(tick)

	if row.InstrumentID != 7 {
		t.Errorf("InstrumentID = %d, want 7", row.InstrumentID)
	}
	if row.Symbol != "PRES-2028" {
		t.Errorf("Symbol = %s, want PRES-2028", row.Symbol)
	}
	if row.EventType != "trade" {
		t.Errorf("EventType = %s, want trade", row.EventType)
	}
	if row.Price != "0.52" {
		t.Errorf("Price = %s, want 0.52", row.Price)
	}
	if row.Size != "50" {
		t.Errorf("Size = %s, want 50", row.Size)
	}
	if row.VenueSeq != 42 {
		t.Errorf("VenueSeq = %d, want 42", row.VenueSeq)
	}
	if !row.EventTS.Equal(eventTS) {
		t.Errorf("EventTS = %v, want %v", row.EventTS, eventTS)
	}
}

func TestTransformDecision(t *testing.T) {
	id := uuid.New()
	d := model.StrategyDecision{
		ID:           id,
		InstrumentID: 7,
		Shard:        2,
		Strategy:     "sma_cross",
		Priority:     10,
		Signal:       model.Buy,
		Quantity:     decimal.NewFromInt(5),
		Reason:       "crossed",
		TriggerSeq:   42,
		TriggerPrice: decimal.NewFromFloat(0.52),
	}

	row := transformDecision(d)

	if row.ID != id.String() {
		t.Errorf("ID = %s, want %s", row.ID, id)
	}
	if row.Signal != "buy" {
		t.Errorf("Signal = %s, want buy", row.Signal)
	}
	if row.Quantity != "5" {
		t.Errorf("Quantity = %s, want 5", row.Quantity)
	}
	if row.LimitPrice != "0" {
		t.Errorf("LimitPrice = %s, want 0 for unconstrained", row.LimitPrice)
	}
	if row.Shard != 2 {
		t.Errorf("Shard = %d, want 2", row.Shard)
	}
}

func TestTransformIntentCarriesLineage(t *testing.T) {
	d1, d2 := uuid.New(), uuid.New()
	intent := model.OrderIntent{
		ID:           uuid.New(),
		InstrumentID: 7,
		Side:         model.SideSell,
		Quantity:     decimal.NewFromInt(3),
		DecisionIDs:  []uuid.UUID{d1, d2},
	}

	row := transformIntent(intent)

	if row.Side != "sell" {
		t.Errorf("Side = %s, want sell", row.Side)
	}
	if len(row.DecisionIDs) != 2 {
		t.Fatalf("DecisionIDs length = %d, want 2", len(row.DecisionIDs))
	}
	if row.DecisionIDs[0] != d1.String() || row.DecisionIDs[1] != d2.String() {
		t.Error("DecisionIDs order not preserved")
	}
}

func TestTransformExecution(t *testing.T) {
	id := uuid.New()
	e := model.OrderExecution{
		IntentID:  id,
		Venue:     "simulation",
		VenueRef:  "SIM-" + id.String(),
		FillPrice: decimal.NewFromFloat(0.52),
		FillQty:   decimal.NewFromInt(5),
		Status:    model.ExecFilled,
	}

	row := transformExecution(e)

	if row.IntentID != id.String() {
		t.Errorf("IntentID = %s, want %s", row.IntentID, id)
	}
	if row.Status != "filled" {
		t.Errorf("Status = %s, want filled", row.Status)
	}
	if row.FillPrice != "0.52" {
		t.Errorf("FillPrice = %s, want 0.52", row.FillPrice)
	}
}

func TestRecorderLifecycle(t *testing.T) {
	inputs, _, _, _, _, _ := testInputs()

	// No database: exercises goroutine lifecycle and batching only.
	r := NewRecorder(Config{BatchSize: 10, FlushInterval: 100 * time.Millisecond}, inputs, nil, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Stop(stopCtx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestRecorderBatchesAcrossRelations(t *testing.T) {
	inputs, insts, ticks, decs, intents, execs := testInputs()
	r := NewRecorder(testConfig(), inputs, nil, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		r.Stop(ctx)
	})

	insts <- model.Instrument{ID: 1, Symbol: "A", Venue: "kalshi"}
	ticks <- model.Tick{InstrumentID: 1}
	decs <- model.StrategyDecision{ID: uuid.New(), InstrumentID: 1}
	intents <- model.OrderIntent{ID: uuid.New(), InstrumentID: 1, DecisionIDs: []uuid.UUID{uuid.New()}}
	execs <- model.OrderExecution{IntentID: uuid.New(), InstrumentID: 1}

	deadline := time.After(2 * time.Second)
	for {
		r.batchMu.Lock()
		pending := r.pendingLocked()
		r.batchMu.Unlock()
		if pending == 5 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("pending = %d, want 5", pending)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRecorderFlushesAtBatchSize(t *testing.T) {
	inputs, _, ticks, _, _, _ := testInputs()
	r := NewRecorder(Config{BatchSize: 3, FlushInterval: time.Hour}, inputs, nil, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		r.Stop(ctx)
	})

	for i := 0; i < 3; i++ {
		ticks <- model.Tick{InstrumentID: int64(i)}
	}

	deadline := time.After(2 * time.Second)
	for {
		if r.Stats().Flushes >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("Flushes = %d, want >= 1", r.Stats().Flushes)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRecorderFinalFlushOnStop(t *testing.T) {
	inputs, _, ticks, _, _, _ := testInputs()
	r := NewRecorder(testConfig(), inputs, nil, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ticks <- model.Tick{InstrumentID: 1}

	// Wait for the consume loop to batch it.
	deadline := time.After(2 * time.Second)
	for {
		r.batchMu.Lock()
		pending := r.pendingLocked()
		r.batchMu.Unlock()
		if pending == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("tick never batched")
		case <-time.After(5 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if got := r.Stats().Flushes; got != 1 {
		t.Errorf("Flushes after Stop = %d, want 1", got)
	}

	r.batchMu.Lock()
	pending := r.pendingLocked()
	r.batchMu.Unlock()
	if pending != 0 {
		t.Errorf("pending after Stop = %d, want 0", pending)
	}
}

func TestRecorderInitialStats(t *testing.T) {
	inputs, _, _, _, _, _ := testInputs()
	r := NewRecorder(testConfig(), inputs, nil, nil)

	stats := r.Stats()
	if stats.Inserts != 0 || stats.Errors != 0 || stats.Flushes != 0 {
		t.Errorf("initial stats = %+v, want zeros", stats)
	}
}
