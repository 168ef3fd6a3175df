package recorder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The store is append-only: rows are only ever inserted, and natural
// key conflicts are ignored so replays and reconnect overlap never
// produce duplicates.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS instruments (
		id           BIGINT      NOT NULL,
		symbol       TEXT        NOT NULL,
		venue        TEXT        NOT NULL,
		asset_class  TEXT        NOT NULL,
		status       TEXT        NOT NULL,
		first_seen   TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (venue, symbol)
	)`,
	`CREATE TABLE IF NOT EXISTS ticks (
		instrument_id BIGINT      NOT NULL,
		symbol        TEXT        NOT NULL,
		venue         TEXT        NOT NULL,
		event_type    TEXT        NOT NULL,
		price         NUMERIC     NOT NULL,
		size          NUMERIC     NOT NULL,
		venue_seq     BIGINT      NOT NULL,
		event_ts      TIMESTAMPTZ NOT NULL,
		received_at   TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (instrument_id, venue, venue_seq, event_ts)
	)`,
	`CREATE TABLE IF NOT EXISTS strategy_decisions (
		id            UUID        PRIMARY KEY,
		instrument_id BIGINT      NOT NULL,
		shard         INT         NOT NULL,
		strategy      TEXT        NOT NULL,
		priority      INT         NOT NULL,
		signal        TEXT        NOT NULL,
		quantity      NUMERIC     NOT NULL,
		limit_price   NUMERIC     NOT NULL,
		reason        TEXT        NOT NULL,
		trigger_seq   BIGINT      NOT NULL,
		trigger_ts    TIMESTAMPTZ NOT NULL,
		trigger_price NUMERIC     NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_intents (
		id            UUID        PRIMARY KEY,
		instrument_id BIGINT      NOT NULL,
		side          TEXT        NOT NULL,
		quantity      NUMERIC     NOT NULL,
		limit_price   NUMERIC     NOT NULL,
		ref_price     NUMERIC     NOT NULL,
		decision_ids  UUID[]      NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_executions (
		intent_id     UUID        PRIMARY KEY,
		instrument_id BIGINT      NOT NULL,
		venue         TEXT        NOT NULL,
		venue_ref     TEXT        NOT NULL,
		fill_price    NUMERIC     NOT NULL,
		fill_qty      NUMERIC     NOT NULL,
		status        TEXT        NOT NULL,
		reason        TEXT        NOT NULL,
		executed_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ticks_event_ts_idx ON ticks (event_ts)`,
	`CREATE INDEX IF NOT EXISTS strategy_decisions_instrument_idx ON strategy_decisions (instrument_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS order_intents_instrument_idx ON order_intents (instrument_id, created_at)`,
}

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
