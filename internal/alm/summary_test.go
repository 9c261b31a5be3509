package alm

import (
	"errors"
	"testing"
	"time"

	"github.com/rgoulart/optpulse/internal/domain/models"
)

func TestAggregate_SingleDayBalances(t *testing.T) {
	agg, err := NewAggregator("America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := []models.LedgerEntry{
		{
			Account:     "U1",
			Timestamp:   time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
			Type:        models.EventTrade,
			CashImpact:  480,
			RealizedPNL: 500,
			NAVAfter:    100980,
		},
	}

	rows, err := agg.Aggregate("U1", 100000, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("want 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.OpeningNAV != 100000 || r.ClosingNAV != 100980 {
		t.Fatalf("nav chain: %+v", r)
	}
	if r.TotalPNL != 500 || r.NetCashFlow != 480 {
		t.Fatalf("day totals: %+v", r)
	}
}

func TestAggregate_ChainsOpeningAcrossDays(t *testing.T) {
	agg, err := NewAggregator("UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := []models.LedgerEntry{
		{Timestamp: time.Date(2024, 3, 14, 15, 0, 0, 0, time.UTC), CashImpact: 100, NAVAfter: 1100},
		{Timestamp: time.Date(2024, 3, 14, 16, 0, 0, 0, time.UTC), RealizedPNL: 50, NAVAfter: 1150},
		{Timestamp: time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC), RealizedPNL: -150, NAVAfter: 1000},
	}

	rows, err := agg.Aggregate("U1", 1000, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	if rows[0].OpeningNAV != 1000 || rows[0].ClosingNAV != 1150 {
		t.Fatalf("day 1: %+v", rows[0])
	}
	if rows[1].OpeningNAV != 1150 {
		t.Fatalf("day 2 opening must equal day 1 closing: %+v", rows[1])
	}
	if rows[1].ClosingNAV != 1000 {
		t.Fatalf("day 2 closing: %+v", rows[1])
	}
}

func TestAggregate_GroupsByReportingTimezone(t *testing.T) {
	agg, err := NewAggregator("America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2024-03-15 01:00 UTC is still 2024-03-14 in New York.
	entries := []models.LedgerEntry{
		{Timestamp: time.Date(2024, 3, 14, 20, 0, 0, 0, time.UTC), CashImpact: 10, NAVAfter: 110},
		{Timestamp: time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC), CashImpact: 5, NAVAfter: 115},
	}

	rows, err := agg.Aggregate("U1", 100, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("both entries fall on the same New York date, got %d rows", len(rows))
	}
	wantDate := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	if !rows[0].Date.Equal(wantDate) {
		t.Fatalf("date: got %v want %v", rows[0].Date, wantDate)
	}
}

func TestAggregate_MismatchIsHardFailure(t *testing.T) {
	agg, err := NewAggregator("UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// NAVAfter inconsistent with the impacts by more than the tolerance.
	entries := []models.LedgerEntry{
		{Timestamp: time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC), CashImpact: 100, RealizedPNL: 0, NAVAfter: 1500},
	}

	rows, err := agg.Aggregate("U1", 1000, entries)
	if !errors.Is(err, ErrReconciliationMismatch) {
		t.Fatalf("want ErrReconciliationMismatch, got %v", err)
	}
	if rows != nil {
		t.Fatal("no rows on reconciliation failure")
	}
}

func TestAggregate_WithinToleranceBalances(t *testing.T) {
	agg, err := NewAggregator("UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := []models.LedgerEntry{
		{Timestamp: time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC), CashImpact: 100, NAVAfter: 1100.009},
	}

	if _, err := agg.Aggregate("U1", 1000, entries); err != nil {
		t.Fatalf("sub-cent drift must pass: %v", err)
	}
}

func TestAggregate_EmptyLedger(t *testing.T) {
	agg, err := NewAggregator("UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, err := agg.Aggregate("U1", 1000, nil)
	if err != nil || rows != nil {
		t.Fatalf("empty ledger: rows=%v err=%v", rows, err)
	}
}

func TestNewAggregator_BadTimezone(t *testing.T) {
	if _, err := NewAggregator("Mars/Olympus"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
