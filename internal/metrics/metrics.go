// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Connection state and reconnect counts per venue
//   - Normalizer throughput, parse errors and instrument auto-creations
//   - FAST ring drops per shard
//   - Strategy error isolation counts
//   - Intent/execution throughput and recorder flush sizes
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionState is 0=disconnected, 1=backoff, 2=connecting, 3=connected.
	ConnectionState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tickforge",
		Subsystem: "ingest",
		Name:      "connection_state",
		Help:      "Current connection state per venue connection.",
	}, []string{"venue", "conn"})

	Reconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tickforge",
		Subsystem: "ingest",
		Name:      "reconnects_total",
		Help:      "Reconnect attempts per venue connection.",
	}, []string{"venue", "conn"})

	TicksNormalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tickforge",
		Subsystem: "normalize",
		Name:      "ticks_total",
		Help:      "Ticks successfully normalized per venue.",
	}, []string{"venue"})

	ParseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tickforge",
		Subsystem: "normalize",
		Name:      "parse_errors_total",
		Help:      "Venue messages dropped as unparseable.",
	}, []string{"venue"})

	InstrumentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tickforge",
		Subsystem: "normalize",
		Name:      "instruments_created_total",
		Help:      "Instruments auto-created on first sight.",
	})

	FastDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tickforge",
		Subsystem: "router",
		Name:      "fast_drops_total",
		Help:      "FAST-class ticks dropped oldest-first on ring overflow.",
	}, []string{"shard"})

	TicksRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tickforge",
		Subsystem: "router",
		Name:      "ticks_total",
		Help:      "Ticks routed per priority class.",
	}, []string{"priority"})

	StrategyErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tickforge",
		Subsystem: "engine",
		Name:      "strategy_errors_total",
		Help:      "Strategy invocations isolated after an error or panic.",
	}, []string{"strategy"})

	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tickforge",
		Subsystem: "engine",
		Name:      "decisions_total",
		Help:      "Strategy decisions emitted.",
	}, []string{"strategy", "signal"})

	Intents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tickforge",
		Subsystem: "coordinator",
		Name:      "intents_total",
		Help:      "Order intents emitted after merge.",
	})

	Executions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tickforge",
		Subsystem: "gateway",
		Name:      "executions_total",
		Help:      "Order executions by terminal status.",
	}, []string{"status"})

	RecorderFlushRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tickforge",
		Subsystem: "recorder",
		Name:      "flush_rows_total",
		Help:      "Rows flushed to the durable store per relation.",
	}, []string{"relation"})
)
