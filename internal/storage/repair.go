package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// RepairPlan describes the repair steps to run for one contract. It is
// decided by the congruence enforcer; this repository only executes it.
type RepairPlan struct {
	// Expiration is the contract's expiration date, used for the
	// off-expiration contamination check when DeleteOffExpiry is set.
	Expiration time.Time

	// Timezone is the IANA market timezone for date and clock comparisons.
	Timezone string

	// EODCutoff is the clock time (HH:MM:SS) of the spurious end-of-day
	// snapshot; Greeks and IV rows at exactly this time are removed unless a
	// bar traded at that minute.
	EODCutoff string

	// DeleteOffExpiry removes bars whose timestamp date differs from the
	// contract's expiration date (0DTE contamination).
	DeleteOffExpiry bool

	// DeleteOrphans removes Greeks and IV rows with no matching bar.
	DeleteOrphans bool

	// FillPlaceholders inserts NULL-valued Greeks and IV rows for every bar
	// timestamp missing one.
	FillPlaceholders bool
}

// RepairStats reports rows changed by each repair step. A second pass over an
// already-repaired contract yields the zero value.
type RepairStats struct {
	OffExpiryBarsDeleted int64
	ArtifactsDeleted     int64
	OrphanGreeksDeleted  int64
	OrphanIVDeleted      int64
	GreeksPlaceholders   int64
	IVPlaceholders       int64
}

// Changed reports whether any step touched a row.
func (s RepairStats) Changed() bool {
	return s.OffExpiryBarsDeleted+s.ArtifactsDeleted+
		s.OrphanGreeksDeleted+s.OrphanIVDeleted+
		s.GreeksPlaceholders+s.IVPlaceholders != 0
}

// CongruenceRepository executes the per-contract repair transaction.
type CongruenceRepository interface {
	// RepairContract runs every step of the plan for one contract inside a
	// single transaction. On any step error the whole repair is rolled back,
	// so a contract is never left partially repaired.
	RepairContract(contractID int64, plan RepairPlan) (RepairStats, error)
}

type congruenceRepository struct {
	db *sql.DB
}

func NewCongruenceRepository(db *sql.DB) CongruenceRepository {
	return &congruenceRepository{db: db}
}

func (r *congruenceRepository) RepairContract(contractID int64, plan RepairPlan) (RepairStats, error) {
	var stats RepairStats

	tx, err := r.db.Begin()
	if err != nil {
		return stats, err
	}

	step := func(dst *int64, name, query string, args ...interface{}) error {
		res, err := tx.Exec(query, args...)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if affected, err := res.RowsAffected(); err == nil {
			*dst += affected
		}
		return nil
	}

	run := func() error {
		// Contaminated bars first: orphan detection below must not see keys
		// that are about to disappear.
		if plan.DeleteOffExpiry {
			if err := step(&stats.OffExpiryBarsDeleted, "delete off-expiry bars", `
				DELETE FROM option_bars
				WHERE contract_id = $1 AND (ts AT TIME ZONE $2)::date <> $3
			`, contractID, plan.Timezone, plan.Expiration); err != nil {
				return err
			}
		}

		// The end-of-day snapshot is a known upstream feed artifact. A cutoff
		// row backed by a bar is real trade data, not the snapshot, so only
		// bar-less cutoff rows are removed; otherwise each pass would delete
		// the row and the placeholder fill below would re-create it.
		for _, table := range []string{"option_greeks", "option_iv"} {
			if err := step(&stats.ArtifactsDeleted, "delete eod artifacts", fmt.Sprintf(`
				DELETE FROM %s s
				WHERE s.contract_id = $1 AND (s.ts AT TIME ZONE $2)::time = $3::time
				  AND NOT EXISTS (
					SELECT 1 FROM option_bars b
					WHERE b.contract_id = s.contract_id AND b.ts = s.ts
				  )
			`, table), contractID, plan.Timezone, plan.EODCutoff); err != nil {
				return err
			}
		}

		// Greeks or IV without a matching bar are theoretical/off-session
		// computations with no trade behind them.
		if plan.DeleteOrphans {
			if err := step(&stats.OrphanGreeksDeleted, "delete orphan greeks", `
				DELETE FROM option_greeks g
				WHERE g.contract_id = $1
				  AND NOT EXISTS (
					SELECT 1 FROM option_bars b
					WHERE b.contract_id = g.contract_id AND b.ts = g.ts
				  )
			`, contractID); err != nil {
				return err
			}
			if err := step(&stats.OrphanIVDeleted, "delete orphan iv", `
				DELETE FROM option_iv v
				WHERE v.contract_id = $1
				  AND NOT EXISTS (
					SELECT 1 FROM option_bars b
					WHERE b.contract_id = v.contract_id AND b.ts = v.ts
				  )
			`, contractID); err != nil {
				return err
			}
		}

		// Bars are the authoritative record of what traded: a bar without IV
		// or Greeks means "not yet observed", so the gap is filled with a
		// NULL placeholder rather than the bar being deleted.
		if plan.FillPlaceholders {
			if err := step(&stats.GreeksPlaceholders, "fill greeks placeholders", `
				INSERT INTO option_greeks (contract_id, ts, delta, gamma, theta, vega, rho)
				SELECT b.contract_id, b.ts, NULL, NULL, NULL, NULL, NULL
				FROM option_bars b
				WHERE b.contract_id = $1
				ON CONFLICT (contract_id, ts) DO NOTHING
			`, contractID); err != nil {
				return err
			}
			if err := step(&stats.IVPlaceholders, "fill iv placeholders", `
				INSERT INTO option_iv (contract_id, ts, implied_vol)
				SELECT b.contract_id, b.ts, NULL
				FROM option_bars b
				WHERE b.contract_id = $1
				ON CONFLICT (contract_id, ts) DO NOTHING
			`, contractID); err != nil {
				return err
			}
		}
		return nil
	}

	if err := run(); err != nil {
		_ = tx.Rollback()
		return RepairStats{}, err
	}
	if err := tx.Commit(); err != nil {
		return RepairStats{}, err
	}
	return stats, nil
}
