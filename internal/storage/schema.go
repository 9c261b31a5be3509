package storage

import "database/sql"

// schemaDDL creates the tables the engine operates on. The composite
// (contract_id, ts) primary keys are what make insert-or-skip and the
// congruence invariants enforceable at the store level.
//
// Timestamps are stored as TIMESTAMPTZ; date and clock-time comparisons in
// the repair pass are done in the market timezone via AT TIME ZONE.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS contracts (
		id          BIGSERIAL PRIMARY KEY,
		symbol      TEXT          NOT NULL,
		strike      NUMERIC(10,2) NOT NULL,
		expiration  DATE          NOT NULL,
		opt_right   CHAR(1)       NOT NULL CHECK (opt_right IN ('C','P')),
		created_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
		UNIQUE (symbol, strike, expiration, opt_right)
	)`,
	`CREATE TABLE IF NOT EXISTS option_bars (
		contract_id BIGINT      NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		ts          TIMESTAMPTZ NOT NULL,
		open        DOUBLE PRECISION NOT NULL,
		high        DOUBLE PRECISION NOT NULL,
		low         DOUBLE PRECISION NOT NULL,
		close       DOUBLE PRECISION NOT NULL,
		volume      BIGINT      NOT NULL,
		PRIMARY KEY (contract_id, ts)
	)`,
	`CREATE TABLE IF NOT EXISTS option_greeks (
		contract_id BIGINT      NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		ts          TIMESTAMPTZ NOT NULL,
		delta       DOUBLE PRECISION,
		gamma       DOUBLE PRECISION,
		theta       DOUBLE PRECISION,
		vega        DOUBLE PRECISION,
		rho         DOUBLE PRECISION,
		PRIMARY KEY (contract_id, ts)
	)`,
	`CREATE TABLE IF NOT EXISTS option_iv (
		contract_id BIGINT      NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		ts          TIMESTAMPTZ NOT NULL,
		implied_vol DOUBLE PRECISION,
		PRIMARY KEY (contract_id, ts)
	)`,
	`CREATE TABLE IF NOT EXISTS ingestion_log (
		file_date   DATE        NOT NULL,
		kind        TEXT        NOT NULL,
		run_id      UUID        NOT NULL,
		filename    TEXT        NOT NULL,
		row_count   INT         NOT NULL,
		ingested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (file_date, kind)
	)`,
	`CREATE TABLE IF NOT EXISTS raw_events (
		seq         BIGSERIAL PRIMARY KEY,
		account     TEXT        NOT NULL,
		ts          TIMESTAMPTZ NOT NULL,
		event_type  TEXT        NOT NULL,
		description TEXT        NOT NULL DEFAULT '',
		quantity    DOUBLE PRECISION NOT NULL DEFAULT 0,
		strike      DOUBLE PRECISION NOT NULL DEFAULT 0,
		proceeds    DOUBLE PRECISION NOT NULL DEFAULT 0,
		cost_basis  DOUBLE PRECISION NOT NULL DEFAULT 0,
		commission  DOUBLE PRECISION NOT NULL DEFAULT 0,
		amount      DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_raw_events_account_ts ON raw_events (account, ts, seq)`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		account      TEXT        NOT NULL,
		position     INT         NOT NULL,
		ts           TIMESTAMPTZ NOT NULL,
		event_type   TEXT        NOT NULL,
		description  TEXT        NOT NULL DEFAULT '',
		cash_impact  DOUBLE PRECISION NOT NULL,
		realized_pnl DOUBLE PRECISION NOT NULL,
		nav_after    DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (account, position)
	)`,
	`CREATE TABLE IF NOT EXISTS daily_summaries (
		account       TEXT   NOT NULL,
		summary_date  DATE   NOT NULL,
		opening_nav   DOUBLE PRECISION NOT NULL,
		closing_nav   DOUBLE PRECISION NOT NULL,
		total_pnl     DOUBLE PRECISION NOT NULL,
		net_cash_flow DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (account, summary_date)
	)`,
}

// EnsureSchema creates all tables and indexes if they do not exist yet.
// Statements are idempotent, so running it on every startup is safe.
func EnsureSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}
