// Package congruence brings the three per-contract time series (bars, Greeks,
// implied volatility) into a single canonical state and keeps them there.
package congruence

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rgoulart/optpulse/config"
	"github.com/rgoulart/optpulse/internal/domain/models"
	"github.com/rgoulart/optpulse/internal/logger"
	"github.com/rgoulart/optpulse/internal/storage"
)

// Mode selects the target state of a repair pass.
type Mode string

const (
	// ModeStrict keeps only timestamps backed by a bar: orphan Greeks/IV are
	// deleted, bar-timestamp gaps in Greeks/IV are filled with NULL
	// placeholders, so all three key sets end up identical.
	ModeStrict Mode = "strict"

	// ModeComplete guarantees every bar has Greeks and IV (NULL placeholders
	// where no real observation exists) but keeps extra Greeks/IV rows —
	// theoretical values without a trade are expected in non-reconciled
	// datasets.
	ModeComplete Mode = "complete"
)

// ErrIncongruent is the failed postcondition of a strict pass: the three
// series did not end up with equal record counts.
var ErrIncongruent = errors.New("series counts diverge after strict repair")

// ContractResult is the outcome of one contract's repair. Err is set when the
// repair transaction failed or the postcondition did not hold; the rest of
// the batch is unaffected.
type ContractResult struct {
	Contract models.Contract
	Stats    storage.RepairStats
	Counts   models.SeriesCounts
	Err      error
}

// Report summarizes one enforcement batch.
type Report struct {
	Mode     Mode
	Repaired int
	Failed   int
	Results  []ContractResult
}

// Enforcer runs the repair pass. It assumes no concurrent writers to the
// contracts it is repairing; independent contracts carry no cross-contract
// invariants and may be enforced concurrently by separate callers.
type Enforcer struct {
	cfg    config.CongruenceConfig
	repo   storage.CongruenceRepository
	series storage.TimeSeriesStore
	log    zerolog.Logger
}

func NewEnforcer(cfg config.CongruenceConfig, repo storage.CongruenceRepository, series storage.TimeSeriesStore) *Enforcer {
	return &Enforcer{
		cfg:    cfg,
		repo:   repo,
		series: series,
		log:    logger.With("congruence"),
	}
}

// Enforce repairs every given contract in the chosen mode. A failed contract
// is logged and reported but never aborts the batch. The pass is idempotent:
// each repair step only touches rows violating its target state, so a second
// pass over a repaired contract changes nothing.
func (e *Enforcer) Enforce(contracts []models.Contract, mode Mode) Report {
	report := Report{Mode: mode, Results: make([]ContractResult, 0, len(contracts))}

	for _, ct := range contracts {
		result := e.enforceOne(ct, mode)
		if result.Err != nil {
			report.Failed++
			e.log.Error().
				Err(result.Err).
				Int64("contract_id", ct.ID).
				Str("expiration", ct.Expiration.Format("2006-01-02")).
				Msg("contract repair failed, continuing batch")
		} else {
			report.Repaired++
			if result.Stats.Changed() {
				e.log.Info().
					Int64("contract_id", ct.ID).
					Int64("off_expiry_bars", result.Stats.OffExpiryBarsDeleted).
					Int64("eod_artifacts", result.Stats.ArtifactsDeleted).
					Int64("orphan_greeks", result.Stats.OrphanGreeksDeleted).
					Int64("orphan_iv", result.Stats.OrphanIVDeleted).
					Int64("greeks_placeholders", result.Stats.GreeksPlaceholders).
					Int64("iv_placeholders", result.Stats.IVPlaceholders).
					Msg("contract repaired")
			}
		}
		report.Results = append(report.Results, result)
	}
	return report
}

func (e *Enforcer) enforceOne(ct models.Contract, mode Mode) ContractResult {
	result := ContractResult{Contract: ct}

	plan := e.plan(ct.Expiration, mode)
	stats, err := e.repo.RepairContract(ct.ID, plan)
	if err != nil {
		result.Err = fmt.Errorf("repair contract %d: %w", ct.ID, err)
		return result
	}
	result.Stats = stats

	counts, err := e.series.Counts(ct.ID)
	if err != nil {
		result.Err = fmt.Errorf("verify contract %d: %w", ct.ID, err)
		return result
	}
	result.Counts = counts

	if mode == ModeStrict && !counts.Congruent() {
		result.Err = fmt.Errorf("contract %d: %w (bars=%d greeks=%d iv=%d)",
			ct.ID, ErrIncongruent, counts.Bars, counts.Greeks, counts.IV)
	}
	return result
}

// plan maps a mode onto concrete repair steps.
func (e *Enforcer) plan(expiration time.Time, mode Mode) storage.RepairPlan {
	plan := storage.RepairPlan{
		Expiration:       expiration,
		Timezone:         e.cfg.Timezone,
		EODCutoff:        e.cfg.EODCutoff,
		FillPlaceholders: true,
	}
	if mode == ModeStrict {
		plan.DeleteOrphans = true
		plan.DeleteOffExpiry = e.cfg.Enforce0DTE
	}
	return plan
}
