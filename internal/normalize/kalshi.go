package normalize

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tickforge/tickforge/internal/model"
)

// KalshiCodec decodes the Kalshi WebSocket envelope: trades and ticker
// updates become Ticks, command responses are skipped.
type KalshiCodec struct {
	venue string
}

// NewKalshiCodec creates a codec bound to the given venue name.
func NewKalshiCodec(venue string) *KalshiCodec {
	return &KalshiCodec{venue: venue}
}

func (c *KalshiCodec) Venue() string      { return c.venue }
func (c *KalshiCodec) AssetClass() string { return "event_contract" }

// messageEnvelope is used for fast type extraction.
type messageEnvelope struct {
	Type string `json:"type"`
}

// tradeWire is the wire format for trade messages.
type tradeWire struct {
	Type string `json:"type"`
	SID  int64  `json:"sid"`
	Seq  int64  `json:"seq"`
	Msg  struct {
		MarketTicker    string `json:"market_ticker"`
		TradeID         string `json:"trade_id"`
		Count           int    `json:"count"`
		YesPriceDollars string `json:"yes_price_dollars"`
		NoPriceDollars  string `json:"no_price_dollars"`
		TakerSide       string `json:"taker_side"`
		Ts              int64  `json:"ts"` // Seconds since epoch
	} `json:"msg"`
}

// tickerWire is the wire format for ticker messages.
type tickerWire struct {
	Type string `json:"type"`
	SID  int64  `json:"sid"`
	Msg  struct {
		MarketTicker string `json:"market_ticker"`
		PriceDollars string `json:"price_dollars"`
		Volume       int64  `json:"volume"`
		OpenInterest int64  `json:"open_interest"`
		Ts           int64  `json:"ts"` // Seconds since epoch
	} `json:"msg"`
}

// Decode parses one raw Kalshi message.
func (c *KalshiCodec) Decode(data []byte) (WireTick, error) {
	var envelope messageEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return WireTick{}, fmt.Errorf("extract message type: %w", err)
	}

	switch envelope.Type {
	case "trade":
		return c.decodeTrade(data)
	case "ticker":
		return c.decodeTicker(data)
	case "subscribed", "unsubscribed", "ok", "error":
		// Command responses, not market data.
		return WireTick{}, ErrSkip
	default:
		return WireTick{}, fmt.Errorf("unknown message type %q", envelope.Type)
	}
}

func (c *KalshiCodec) decodeTrade(data []byte) (WireTick, error) {
	var wire tradeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return WireTick{}, fmt.Errorf("parse trade: %w", err)
	}
	if wire.Msg.MarketTicker == "" {
		return WireTick{}, fmt.Errorf("trade missing market_ticker")
	}

	price, err := decimal.NewFromString(wire.Msg.YesPriceDollars)
	if err != nil {
		return WireTick{}, fmt.Errorf("parse trade price %q: %w", wire.Msg.YesPriceDollars, err)
	}

	return WireTick{
		Symbol:    wire.Msg.MarketTicker,
		EventType: model.EventTrade,
		Price:     price,
		Size:      decimal.NewFromInt(int64(wire.Msg.Count)),
		VenueSeq:  wire.Seq,
		EventTS:   time.Unix(wire.Msg.Ts, 0).UTC(),
	}, nil
}

func (c *KalshiCodec) decodeTicker(data []byte) (WireTick, error) {
	var wire tickerWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return WireTick{}, fmt.Errorf("parse ticker: %w", err)
	}
	if wire.Msg.MarketTicker == "" {
		return WireTick{}, fmt.Errorf("ticker missing market_ticker")
	}

	price, err := decimal.NewFromString(wire.Msg.PriceDollars)
	if err != nil {
		return WireTick{}, fmt.Errorf("parse ticker price %q: %w", wire.Msg.PriceDollars, err)
	}

	// Ticker messages carry no sequence number.
	return WireTick{
		Symbol:    wire.Msg.MarketTicker,
		EventType: model.EventQuote,
		Price:     price,
		EventTS:   time.Unix(wire.Msg.Ts, 0).UTC(),
	}, nil
}
