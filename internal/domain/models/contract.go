package models

import "time"

// Right is the option right: call or put.
type Right string

const (
	RightCall Right = "C"
	RightPut  Right = "P"
)

// Valid reports whether r is one of the two known rights.
func (r Right) Valid() bool {
	return r == RightCall || r == RightPut
}

// Contract is the durable identity of one option contract.
//
// The tuple (Symbol, Strike, Expiration, Right) is unique and immutable once
// created; ID is a synthetic key assigned by the store at creation and never
// reused. Contracts are created on first sighting during ingestion and only
// removed by explicit dataset resets (purge of an expiration range).
type Contract struct {
	ID         int64
	Symbol     string
	Strike     float64
	Expiration time.Time // date component only; stored as DATE
	Right      Right
}

// SeriesCounts holds per-contract record counts across the three time series.
// After a strict congruence pass all three counts are equal.
type SeriesCounts struct {
	Bars   int64
	Greeks int64
	IV     int64
}

// Congruent reports whether the three series carry the same number of records.
func (c SeriesCounts) Congruent() bool {
	return c.Bars == c.Greeks && c.Bars == c.IV
}
