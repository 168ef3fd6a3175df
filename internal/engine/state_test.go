package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tickforge/tickforge/internal/model"
)

func priceTick(price float64) model.Tick {
	return model.Tick{
		InstrumentID: 1,
		EventType:    model.EventTrade,
		Price:        decimal.NewFromFloat(price),
	}
}

func TestStateWarmsToActive(t *testing.T) {
	s := NewInstrumentState(3)

	if s.Lifecycle() != Uninitialized {
		t.Errorf("new state lifecycle = %v, want Uninitialized", s.Lifecycle())
	}

	if got := s.Apply(priceTick(10)); got != Warming {
		t.Errorf("after 1 tick lifecycle = %v, want Warming", got)
	}
	if got := s.Apply(priceTick(11)); got != Warming {
		t.Errorf("after 2 ticks lifecycle = %v, want Warming", got)
	}
	if got := s.Apply(priceTick(12)); got != Active {
		t.Errorf("after 3 ticks lifecycle = %v, want Active", got)
	}
	// Stays active.
	if got := s.Apply(priceTick(13)); got != Active {
		t.Errorf("after 4 ticks lifecycle = %v, want Active", got)
	}
}

func TestStateWindowSlides(t *testing.T) {
	s := NewInstrumentState(3)
	for _, p := range []float64{1, 2, 3, 4, 5} {
		s.Apply(priceTick(p))
	}

	in := s.Input(priceTick(5))
	want := []float64{3, 4, 5}
	if len(in.Prices) != len(want) {
		t.Fatalf("window length = %d, want %d", len(in.Prices), len(want))
	}
	for i := range want {
		if in.Prices[i] != want[i] {
			t.Errorf("Prices[%d] = %v, want %v", i, in.Prices[i], want[i])
		}
	}
	if in.TickCount != 5 {
		t.Errorf("TickCount = %d, want 5", in.TickCount)
	}
}

func TestStatePricelessTickCountsButDoesNotFillWindow(t *testing.T) {
	s := NewInstrumentState(2)

	s.Apply(priceTick(10))
	if got := s.Apply(model.Tick{InstrumentID: 1, EventType: model.EventBook}); got != Warming {
		t.Errorf("lifecycle after priceless tick = %v, want Warming", got)
	}
	if s.TickCount() != 2 {
		t.Errorf("TickCount = %d, want 2", s.TickCount())
	}
	if got := s.Apply(priceTick(11)); got != Active {
		t.Errorf("lifecycle = %v, want Active", got)
	}
}

func TestStateRecordSignal(t *testing.T) {
	s := NewInstrumentState(1)

	s.RecordSignal(model.Buy, decimal.NewFromInt(5))
	s.RecordSignal(model.Buy, decimal.NewFromInt(2))
	s.RecordSignal(model.Sell, decimal.NewFromInt(3))
	s.RecordSignal(model.Hold, decimal.NewFromInt(100))

	if got := s.Position().String(); got != "4" {
		t.Errorf("Position = %s, want 4", got)
	}
}

func TestStateReplayEquivalence(t *testing.T) {
	// Folding the same ordered tick sequence into a fresh state, as a
	// restart would, produces an identical view.
	seq := []float64{10, 11, 9, 12, 8, 13, 12.5}

	a := NewInstrumentState(4)
	b := NewInstrumentState(4)
	for _, p := range seq {
		a.Apply(priceTick(p))
	}
	for _, p := range seq {
		b.Apply(priceTick(p))
	}

	if a.Lifecycle() != b.Lifecycle() {
		t.Errorf("lifecycles differ: %v vs %v", a.Lifecycle(), b.Lifecycle())
	}
	if a.TickCount() != b.TickCount() {
		t.Errorf("tick counts differ: %d vs %d", a.TickCount(), b.TickCount())
	}

	last := priceTick(seq[len(seq)-1])
	ia, ib := a.Input(last), b.Input(last)
	if len(ia.Prices) != len(ib.Prices) {
		t.Fatalf("window lengths differ: %d vs %d", len(ia.Prices), len(ib.Prices))
	}
	for i := range ia.Prices {
		if ia.Prices[i] != ib.Prices[i] {
			t.Errorf("Prices[%d] differ: %v vs %v", i, ia.Prices[i], ib.Prices[i])
		}
	}
}

func TestStateMinimumWindow(t *testing.T) {
	s := NewInstrumentState(0)
	if got := s.Apply(priceTick(10)); got != Active {
		t.Errorf("lifecycle = %v, want Active with clamped window", got)
	}
}

func TestLifecycleString(t *testing.T) {
	tests := []struct {
		l    Lifecycle
		want string
	}{
		{Uninitialized, "uninitialized"},
		{Warming, "warming"},
		{Active, "active"},
	}
	for _, tt := range tests {
		if got := tt.l.String(); got != tt.want {
			t.Errorf("Lifecycle(%d).String() = %q, want %q", tt.l, got, tt.want)
		}
	}
}
