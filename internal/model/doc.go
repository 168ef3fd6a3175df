// Package model defines the canonical records flowing through the
// pipeline: Tick, Instrument, StrategyDecision, OrderIntent and
// OrderExecution.
//
// Records are immutable once constructed and are passed between stages
// by value. Every OrderExecution traces to exactly one OrderIntent,
// every OrderIntent to at least one StrategyDecision, and every
// StrategyDecision to exactly one Tick; the id and trigger fields below
// are the keys that make that chain reconstructable from persisted rows
// alone.
package model
