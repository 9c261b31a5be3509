// Package ingestion loads per-day terminal export files (bars, Greeks,
// implied volatility) into the time-series store. It is the write side in
// front of the congruence repair pass: files are inserted whole, insert-or-
// skip, and the enforcer is only run after a day's files are fully written.
package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rgoulart/optpulse/internal/logger"
	"github.com/rgoulart/optpulse/internal/storage"
)

const (
	fileDateLayout   = "2006-01-02"
	defaultBatchSize = 5000
	maxDays          = 30
)

// Constructor indirections so tests can swap the repositories.
var (
	catalogCtor = func(db *sql.DB) storage.ContractCatalog { return storage.NewContractCatalog(db) }
	storeCtor   = func(db *sql.DB) storage.TimeSeriesStore { return storage.NewTimeSeriesStore(db) }
)

// Options configures one ingestion run.
type Options struct {
	Dir      string // directory containing the export files
	Symbol   string // underlying symbol, e.g. "SPY"
	Days     int    // number of most recent trading sessions to load (1-30)
	Parallel int    // concurrent days (0 = auto up to CPU count, max 7)
	Force    bool   // reprocess days already logged (deletes that day's records first)
	Timezone string // market timezone for day-scoped deletes
}

// ProcessDirectory ingests the last Options.Days trading sessions from
// Options.Dir.
//
// Behavior:
//   - Expects up to three files per session, named
//     "<SYMBOL>_<YYYY-MM-DD>_{bars,greeks,iv}.csv"; a missing file is logged
//     and skipped (not every export includes all three kinds).
//   - Days are processed concurrently under an errgroup limit; the three
//     files of one day are processed sequentially, bars first.
//   - Each file's ingestion is recorded in the ingestion log under one run id;
//     already-logged (day, kind) pairs are skipped unless Force is set.
//   - Returns the first error encountered, cancelling remaining days.
func ProcessDirectory(ctx context.Context, db *sql.DB, opts Options) error {
	log := logger.With("ingestion")

	catalog := catalogCtor(db)
	store := storeCtor(db)

	if opts.Days < 1 {
		opts.Days = 1
	}
	if opts.Days > maxDays {
		opts.Days = maxDays
	}
	dates := LastNTradingDays(opts.Days, time.Now())

	limit := opts.Parallel
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	if limit > 7 {
		limit = 7
	}

	runID := uuid.NewString()
	log.Info().
		Str("run_id", runID).
		Str("dir", opts.Dir).
		Int("days", len(dates)).
		Int("parallel", limit).
		Msg("ingestion starting")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, date := range dates {
		date := date
		g.Go(func() error {
			return processDay(gctx, catalog, store, runID, date, opts)
		})
	}
	return g.Wait()
}

// processDay loads the (up to) three export files of one trading session.
func processDay(ctx context.Context, catalog storage.ContractCatalog, store storage.TimeSeriesStore, runID string, date time.Time, opts Options) error {
	log := logger.With("ingestion")
	dayTag := date.Format(fileDateLayout)

	if opts.Force {
		deleted, err := store.DeleteDay(date, opts.Timezone)
		if err != nil {
			return fmt.Errorf("day %s: force delete: %w", dayTag, err)
		}
		if deleted > 0 {
			log.Info().Str("date", dayTag).Int64("deleted", deleted).Msg("cleared previously ingested day")
		}
	}

	proc := newFileProcessor(catalog, store, DefaultRetryPolicy(), defaultBatchSize)

	for _, kind := range []string{KindBars, KindGreeks, KindIV} {
		if !opts.Force {
			done, err := store.HasIngestion(date, kind)
			if err != nil {
				return fmt.Errorf("day %s: ingestion check: %w", dayTag, err)
			}
			if done {
				log.Debug().Str("date", dayTag).Str("kind", kind).Msg("already ingested, skipping")
				continue
			}
		}

		filename := fmt.Sprintf("%s_%s_%s.csv", opts.Symbol, dayTag, kind)
		path := filepath.Join(opts.Dir, filename)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Warn().Str("file", filename).Msg("export file missing, skipping")
			continue
		}

		rows, err := proc.parseAndPersistFile(ctx, path, kind)
		if err != nil {
			return fmt.Errorf("file %s: %w", filename, err)
		}

		if err := store.UpsertIngestionLog(date, kind, runID, filename, rows); err != nil {
			return fmt.Errorf("file %s: log ingestion: %w", filename, err)
		}
		log.Info().Str("file", filename).Int("rows", rows).Msg("file ingested")
	}
	return nil
}
