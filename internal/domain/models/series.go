package models

import (
	"database/sql"
	"time"
)

// BarRecord is one OHLCV trade bar for a contract.
// At most one record exists per (ContractID, TS); inserts are first-write-wins.
type BarRecord struct {
	ContractID int64
	TS         time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
}

// GreeksRecord is one Greeks snapshot for a contract.
//
// All five values are nullable: a row with NULL Greeks is a placeholder
// inserted by the congruence repair for a bar timestamp that has no computed
// Greeks, distinct from a missing row.
type GreeksRecord struct {
	ContractID int64
	TS         time.Time
	Delta      sql.NullFloat64
	Gamma      sql.NullFloat64
	Theta      sql.NullFloat64
	Vega       sql.NullFloat64
	Rho        sql.NullFloat64
}

// IVRecord is one implied-volatility observation for a contract.
//
// A NULL ImpliedVol is a legitimate placeholder meaning "no IV observation,
// interpolate later" and is preserved across congruence passes.
type IVRecord struct {
	ContractID int64
	TS         time.Time
	ImpliedVol sql.NullFloat64
}
