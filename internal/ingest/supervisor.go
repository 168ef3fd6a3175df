package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tickforge/tickforge/internal/metrics"
)

// DialFunc produces a fresh Client for each connection attempt.
type DialFunc func() Client

// Supervisor owns one venue connection for the life of the process and
// drives it through the Disconnected -> Connecting -> Connected state
// machine, entering Backoff between failed attempts. It never blocks
// the rest of the pipeline while reconnecting: downstream only sees a
// quiet output channel.
type Supervisor struct {
	venue    string
	id       string
	channels []string
	dial     DialFunc
	backoff  Backoff
	out      chan<- RawMessage
	logger   *slog.Logger

	state      atomic.Int32
	reconnects atomic.Int64
}

// NewSupervisor creates a connection supervisor. out is shared by all
// supervisors feeding the same normalizer.
func NewSupervisor(venue, id string, channels []string, dial DialFunc, backoff Backoff, out chan<- RawMessage, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		venue:    venue,
		id:       id,
		channels: channels,
		dial:     dial,
		backoff:  backoff,
		out:      out,
		logger:   logger.With("venue", venue, "conn", id),
	}
}

// State returns the current connection state for health reporting.
func (s *Supervisor) State() ConnState {
	return ConnState(s.state.Load())
}

// Venue returns the venue name this supervisor serves.
func (s *Supervisor) Venue() string { return s.venue }

// ID returns the connection id.
func (s *Supervisor) ID() string { return s.id }

// Reconnects returns the number of reconnect attempts made so far.
func (s *Supervisor) Reconnects() int64 {
	return s.reconnects.Load()
}

// Run drives the connection until ctx is cancelled. Always returns nil:
// connection failures are retried forever, never fatal.
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.setState(StateDisconnected)

	attempt := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		s.setState(StateConnecting)
		client := s.dial()

		if err := client.Connect(ctx); err != nil {
			attempt++
			s.logger.Warn("connect failed", "error", err, "attempt", attempt)
			if !s.waitBackoff(ctx, attempt) {
				return nil
			}
			continue
		}

		if err := s.subscribe(client); err != nil {
			s.logger.Warn("subscribe failed", "error", err)
			client.Close()
			attempt++
			if !s.waitBackoff(ctx, attempt) {
				return nil
			}
			continue
		}

		s.setState(StateConnected)
		s.logger.Info("connected", "attempt", attempt)
		attempt = 0

		s.stream(ctx, client)
		client.Close()

		if ctx.Err() != nil {
			return nil
		}

		attempt++
		if !s.waitBackoff(ctx, attempt) {
			return nil
		}
	}
}

// stream pumps client messages into the shared output channel until the
// connection dies or ctx is cancelled.
func (s *Supervisor) stream(ctx context.Context, client Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-client.Errors():
			s.logger.Warn("connection error", "error", err)
			return
		case msg, ok := <-client.Messages():
			if !ok {
				s.logger.Warn("connection closed by venue")
				return
			}
			raw := RawMessage{
				Venue:      s.venue,
				ConnID:     s.id,
				Data:       msg.Data,
				ReceivedAt: msg.ReceivedAt,
			}
			select {
			case s.out <- raw:
			case <-ctx.Done():
				return
			}
		}
	}
}

// subscribe sends the channel subscription command after connecting.
func (s *Supervisor) subscribe(client Client) error {
	if len(s.channels) == 0 {
		return nil
	}
	cmd := Command{
		ID:     1,
		Cmd:    "subscribe",
		Params: SubscribeParams{Channels: s.channels},
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return client.Send(data)
}

// waitBackoff sleeps for the attempt's backoff delay. Returns false if
// ctx was cancelled while waiting.
func (s *Supervisor) waitBackoff(ctx context.Context, attempt int) bool {
	s.setState(StateBackoff)
	s.reconnects.Add(1)
	metrics.Reconnects.WithLabelValues(s.venue, s.id).Inc()

	delay := s.backoff.Next(attempt)
	s.logger.Debug("backing off", "attempt", attempt, "delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Supervisor) setState(state ConnState) {
	s.state.Store(int32(state))
	metrics.ConnectionState.WithLabelValues(s.venue, s.id).Set(float64(state))
}
