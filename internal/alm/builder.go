// Package alm folds heterogeneous broker events into a chronological account
// ledger and reconciles it into per-day NAV summaries.
package alm

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rgoulart/optpulse/internal/domain/models"
	"github.com/rgoulart/optpulse/internal/logger"
)

// contractMultiplier converts option strike terms to cash: one contract
// covers 100 shares of the underlying.
const contractMultiplier = 100.0

// LedgerBuilder folds raw account events into an ordered ledger.
//
// Every produced entry carries a cash impact, a realized-P&L impact, and the
// resulting NAV; the NAV recurrence is
//
//	nav[i] = nav[i-1] + cash[i] + pnl[i]
//
// with the supplied starting NAV before the first entry. The fold is strictly
// sequential (NAV accumulation is order-defined) and therefore not internally
// parallelizable; independent accounts can be built concurrently.
type LedgerBuilder struct {
	// fxRate is a single fixed conversion rate applied to every impact when
	// the instrument currency differs from the account base currency. A fixed
	// rate keeps the ledger internally consistent even when it cannot match a
	// multi-currency broker statement to the cent.
	fxRate float64
	log    zerolog.Logger
}

func NewLedgerBuilder(fxRate float64) *LedgerBuilder {
	if fxRate <= 0 {
		fxRate = 1.0
	}
	return &LedgerBuilder{fxRate: fxRate, log: logger.With("alm")}
}

// Build produces the ledger for one account from its raw events.
//
// Events are processed in ascending timestamp order with the store-assigned
// sequence as a stable tie-break. An event of unrecognized type becomes a
// zero-impact entry and a warning — a single malformed event must not block
// reconstruction of the rest of the ledger.
func (b *LedgerBuilder) Build(account string, startingNAV float64, events []models.RawEvent) []models.LedgerEntry {
	ordered := make([]models.RawEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		}
		return ordered[i].Seq < ordered[j].Seq
	})

	entries := make([]models.LedgerEntry, 0, len(ordered))
	nav := startingNAV

	for i, ev := range ordered {
		eventType, cash, pnl := b.impacts(ev)

		cash *= b.fxRate
		pnl *= b.fxRate
		nav += cash + pnl

		entries = append(entries, models.LedgerEntry{
			Account:     account,
			Position:    i,
			Timestamp:   ev.Timestamp,
			Type:        eventType,
			Description: ev.Description,
			CashImpact:  cash,
			RealizedPNL: pnl,
			NAVAfter:    nav,
		})
	}
	return entries
}

// impacts computes the cash and realized-P&L impact of one raw event
// according to its type tag.
func (b *LedgerBuilder) impacts(ev models.RawEvent) (models.EventType, float64, float64) {
	switch models.EventType(strings.ToUpper(strings.TrimSpace(ev.Type))) {
	case models.EventTrade:
		// Commission always reduces cash; realized P&L nets it too.
		pnl := ev.Proceeds - ev.CostBasis - ev.Commission
		cash := ev.Proceeds - ev.Commission
		return models.EventTrade, cash, pnl

	case models.EventAssignment, models.EventExercise:
		// The option's remaining basis settles; cash moves at strike terms,
		// signed by the direction of the stock entering or leaving the book.
		pnl := -ev.CostBasis
		cash := ev.Strike * ev.Quantity * contractMultiplier
		return models.EventAssignment, cash, pnl

	case models.EventExpiration:
		// Worthless expiry: a long position loses its remaining basis, a
		// short position keeps the full premium (negative basis). No cash.
		return models.EventExpiration, 0, -ev.CostBasis

	case models.EventCashTransfer:
		// Deposits positive, withdrawals negative; no P&L.
		return models.EventCashTransfer, ev.Amount, 0

	case models.EventFinancingCharge:
		return models.EventFinancingCharge, -ev.Amount, 0

	default:
		b.log.Warn().
			Str("account", ev.Account).
			Str("event_type", ev.Type).
			Time("ts", ev.Timestamp).
			Msg("unrecognized event type, recording zero-impact entry")
		return models.EventOther, 0, 0
	}
}
