package ingest

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
)

// ConnState is the supervisor's connection state machine.
// Disconnected -> Connecting -> Connected, with Backoff between
// attempts after a failure.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateBackoff
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateBackoff:
		return "backoff"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// RawMessage is a venue-native message handed to the normalizer.
type RawMessage struct {
	Venue      string    // Venue name from config
	ConnID     string    // Which connection produced this
	Data       []byte    // Raw message bytes
	ReceivedAt time.Time // Local receive timestamp
}

// Command is a command to send to the venue after connecting.
type Command struct {
	ID     int64       `json:"id"`
	Cmd    string      `json:"cmd"`
	Params interface{} `json:"params"`
}

// SubscribeParams are parameters for a subscribe command.
type SubscribeParams struct {
	Channels []string `json:"channels"`
}

// ClientConfig configures a single WebSocket client.
type ClientConfig struct {
	URL              string
	APIKey           string
	BufferSize       int
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	ReadTimeout      time.Duration
}
