package models

import "time"

// EventType tags a raw broker event with its ledger treatment.
type EventType string

const (
	EventTrade           EventType = "TRADE"
	EventAssignment      EventType = "ASSIGNMENT"
	EventExercise        EventType = "EXERCISE"
	EventExpiration      EventType = "EXPIRATION"
	EventCashTransfer    EventType = "CASH_TRANSFER"
	EventFinancingCharge EventType = "FINANCING_CHARGE"
	EventOther           EventType = "OTHER"
)

// RawEvent is one heterogeneous account event as supplied by the broker
// statement ingester. Which numeric fields are meaningful depends on Type:
//
//   - TRADE: Proceeds, CostBasis, Commission
//   - ASSIGNMENT / EXERCISE: CostBasis, Strike, Quantity (signed by direction)
//   - EXPIRATION: CostBasis (remaining basis; negative for a short premium)
//   - CASH_TRANSFER: Amount (signed; deposits positive)
//   - FINANCING_CHARGE: Amount (positive charge)
//
// Seq is the store-assigned insertion sequence, used as the stable tie-break
// when several events share a timestamp.
type RawEvent struct {
	Seq         int64
	Account     string
	Timestamp   time.Time
	Type        string
	Description string
	Quantity    float64
	Strike      float64
	Proceeds    float64
	CostBasis   float64
	Commission  float64
	Amount      float64
}

// LedgerEntry is one immutable row of the chronological account ledger.
// Corrections are modeled as new offsetting entries, never in-place edits.
//
// Invariant: NAVAfter = previous NAVAfter + CashImpact + RealizedPNL, with
// the ledger's starting NAV before the first entry.
type LedgerEntry struct {
	Account     string
	Position    int // 0-based position within the built ledger
	Timestamp   time.Time
	Type        EventType
	Description string
	CashImpact  float64
	RealizedPNL float64
	NAVAfter    float64
}

// DailySummaryRow is the per-trading-day rollup of a ledger. Derived, never
// independently mutable: OpeningNAV of day N equals ClosingNAV of day N-1.
type DailySummaryRow struct {
	Account     string
	Date        time.Time // date component only, in the reporting timezone
	OpeningNAV  float64
	ClosingNAV  float64
	TotalPNL    float64
	NetCashFlow float64
}
