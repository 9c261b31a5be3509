package alm

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rgoulart/optpulse/internal/domain/models"
)

// reconcileTolerance is the maximum absolute difference allowed by the
// per-day balance check, in currency units.
const reconcileTolerance = 0.01

// ErrReconciliationMismatch means a daily summary failed its balance
// postcondition (closing != opening + pnl + cash flow). It indicates an
// upstream data or ledger-construction bug and is never silently corrected.
var ErrReconciliationMismatch = errors.New("daily summary does not balance")

// Aggregator folds a built ledger into one row per trading day.
type Aggregator struct {
	location *time.Location
}

// NewAggregator creates an aggregator grouping entries by calendar date in
// the account's reporting timezone.
func NewAggregator(timezone string) (*Aggregator, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load reporting timezone %q: %w", timezone, err)
	}
	return &Aggregator{location: loc}, nil
}

// Aggregate groups ledger entries by calendar date and chains NAV across
// days: opening NAV of day N is day N-1's closing NAV, or the ledger's
// starting NAV for the first day; closing NAV is the last entry's NAV.
//
// Every produced row is validated against the reconciliation invariant
// closing == opening + pnl + cash_flow (within 0.01). A violation returns
// ErrReconciliationMismatch with the offending date — it is a hard failure
// requiring investigation, not a condition to paper over.
func (a *Aggregator) Aggregate(account string, startingNAV float64, entries []models.LedgerEntry) ([]models.DailySummaryRow, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	var rows []models.DailySummaryRow
	opening := startingNAV
	var current *models.DailySummaryRow

	for _, e := range entries {
		day := dateOf(e.Timestamp.In(a.location))
		if current == nil || !current.Date.Equal(day) {
			if current != nil {
				rows = append(rows, *current)
				opening = current.ClosingNAV
			}
			current = &models.DailySummaryRow{
				Account:    account,
				Date:       day,
				OpeningNAV: opening,
			}
		}
		current.TotalPNL += e.RealizedPNL
		current.NetCashFlow += e.CashImpact
		current.ClosingNAV = e.NAVAfter
	}
	rows = append(rows, *current)

	for _, row := range rows {
		expected := row.OpeningNAV + row.TotalPNL + row.NetCashFlow
		if math.Abs(row.ClosingNAV-expected) > reconcileTolerance {
			return nil, fmt.Errorf("%w: %s closing=%.2f expected=%.2f",
				ErrReconciliationMismatch, row.Date.Format("2006-01-02"), row.ClosingNAV, expected)
		}
	}
	return rows, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
