// Package normalize converts venue-native wire messages into canonical
// Ticks. Decoding fails closed: a message that cannot be parsed is
// dropped and counted, never propagated as a malformed Tick.
package normalize

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tickforge/tickforge/internal/model"
)

// ErrSkip marks a well-formed message that carries no market data
// (command responses, heartbeats). Skipped messages are not counted as
// parse errors.
var ErrSkip = errors.New("not a market data message")

// WireTick is a decoded venue message before instrument resolution.
type WireTick struct {
	Symbol    string
	EventType model.EventType
	Price     decimal.Decimal
	Size      decimal.Decimal
	VenueSeq  int64
	EventTS   time.Time
}

// Codec is a deterministic mapping from one venue's wire format to
// WireTick. One codec instance serves all connections of its venue.
type Codec interface {
	// Venue returns the venue name this codec decodes for.
	Venue() string

	// AssetClass is the class assigned to auto-created instruments.
	AssetClass() string

	// Decode parses one raw message. Returns ErrSkip for non-data
	// messages and any other error for unparseable payloads.
	Decode(data []byte) (WireTick, error)
}
