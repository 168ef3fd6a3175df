package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/tickforge/tickforge/internal/model"
)

func TestKalshiDecodeTrade(t *testing.T) {
	c := NewKalshiCodec("kalshi")

	data := []byte(`{
		"type": "trade",
		"sid": 1001,
		"seq": 42,
		"msg": {
			"market_ticker": "PRES-2028-DEM",
			"trade_id": "trade-123",
			"count": 50,
			"yes_price_dollars": "0.52",
			"no_price_dollars": "0.48",
			"taker_side": "yes",
			"ts": 1705320000
		}
	}`)

	tick, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if tick.Symbol != "PRES-2028-DEM" {
		t.Errorf("Symbol = %q, want PRES-2028-DEM", tick.Symbol)
	}
	if tick.EventType != model.EventTrade {
		t.Errorf("EventType = %q, want trade", tick.EventType)
	}
	if tick.Price.String() != "0.52" {
		t.Errorf("Price = %s, want 0.52", tick.Price)
	}
	if tick.Size.String() != "50" {
		t.Errorf("Size = %s, want 50", tick.Size)
	}
	if tick.VenueSeq != 42 {
		t.Errorf("VenueSeq = %d, want 42", tick.VenueSeq)
	}
	want := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	if !tick.EventTS.Equal(want) {
		t.Errorf("EventTS = %v, want %v", tick.EventTS, want)
	}
}

func TestKalshiDecodeTicker(t *testing.T) {
	c := NewKalshiCodec("kalshi")

	data := []byte(`{
		"type": "ticker",
		"sid": 1002,
		"msg": {
			"market_ticker": "FED-25DEC",
			"price_dollars": "0.6150",
			"volume": 1200,
			"open_interest": 900,
			"ts": 1705320060
		}
	}`)

	tick, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if tick.EventType != model.EventQuote {
		t.Errorf("EventType = %q, want quote", tick.EventType)
	}
	if tick.Price.String() != "0.615" {
		t.Errorf("Price = %s, want 0.615", tick.Price)
	}
	if tick.VenueSeq != 0 {
		t.Errorf("VenueSeq = %d, want 0 (tickers carry no seq)", tick.VenueSeq)
	}
}

func TestKalshiDecodeSkipsControlMessages(t *testing.T) {
	c := NewKalshiCodec("kalshi")

	for _, raw := range []string{
		`{"type":"subscribed","id":1,"msg":{"sid":7,"channel":"ticker"}}`,
		`{"type":"unsubscribed","msg":{"sids":[7]}}`,
		`{"type":"ok"}`,
		`{"type":"error","msg":{"code":"6","message":"bad params"}}`,
	} {
		if _, err := c.Decode([]byte(raw)); !errors.Is(err, ErrSkip) {
			t.Errorf("Decode(%s) err = %v, want ErrSkip", raw, err)
		}
	}
}

func TestKalshiDecodeFailsClosed(t *testing.T) {
	c := NewKalshiCodec("kalshi")

	cases := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"unknown type", `{"type":"orderbook_rollup"}`},
		{"trade missing ticker", `{"type":"trade","msg":{"count":1,"yes_price_dollars":"0.50","ts":1}}`},
		{"trade bad price", `{"type":"trade","msg":{"market_ticker":"X","yes_price_dollars":"abc","ts":1}}`},
		{"ticker bad price", `{"type":"ticker","msg":{"market_ticker":"X","price_dollars":"","ts":1}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Decode([]byte(tc.data))
			if err == nil {
				t.Error("Decode() = nil error, want parse failure")
			}
			if errors.Is(err, ErrSkip) {
				t.Error("parse failure must not be classified as skip")
			}
		})
	}
}
