package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	pq "github.com/lib/pq"
	"github.com/rgoulart/optpulse/internal/domain/models"
)

// TimeSeriesStore is the append-only per-contract storage of the three
// aligned series: price bars, Greeks, and implied volatility.
//
// All Insert* operations are insert-or-skip on the (contract_id, ts) key:
// duplicates are silently ignored, never overwritten. First-write-wins is a
// documented contract here, not an accident of a particular statement —
// re-downloads must not corrupt already-validated data, and the congruence
// pass depends on it for idempotence.
type TimeSeriesStore interface {
	InsertBars(records []models.BarRecord) (inserted int64, err error)
	InsertGreeks(records []models.GreeksRecord) (inserted int64, err error)
	InsertIV(records []models.IVRecord) (inserted int64, err error)

	// Counts returns the per-series record counts for one contract.
	Counts(contractID int64) (models.SeriesCounts, error)

	// DeleteDay removes all records, across all three series, whose timestamp
	// falls on the given calendar date in the given timezone. Supports forced
	// re-ingestion of a single day.
	DeleteDay(date time.Time, timezone string) (int64, error)

	// HasIngestion reports whether a file of the given kind was already
	// ingested for the date.
	HasIngestion(date time.Time, kind string) (bool, error)

	// UpsertIngestionLog records (or updates) an ingestion entry for one
	// (date, kind) pair.
	UpsertIngestionLog(date time.Time, kind, runID, filename string, rowCount int) error
}

type timeSeriesStore struct {
	db *sql.DB
}

func NewTimeSeriesStore(db *sql.DB) TimeSeriesStore {
	return &timeSeriesStore{db: db}
}

// insertBatch bulk-loads one batch with COPY inside a single transaction and
// reports how many rows were actually written. COPY cannot skip conflicting
// rows, so the batch lands in a session-local staging table first and moves
// into the target via INSERT ... ON CONFLICT DO NOTHING.
func (s *timeSeriesStore) insertBatch(table string, cols []string, n int, bind func(i int) []interface{}) (int64, error) {
	if n == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}

	// Small optimization for bulk load
	if _, err := tx.Exec(`SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	stage := table + "_stage"
	if _, err := tx.Exec(fmt.Sprintf(
		`CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP`, stage, table,
	)); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	stmt, err := tx.Prepare(pq.CopyIn(stage, cols...))
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	for i := 0; i < n; i++ {
		if _, err := stmt.Exec(bind(i)...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, err
		}
	}

	if _, err := stmt.Exec(); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return 0, err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	colList := strings.Join(cols, ", ")
	res, err := tx.Exec(fmt.Sprintf(
		`INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (contract_id, ts) DO NOTHING`,
		table, colList, colList, stage,
	))
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	inserted, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *timeSeriesStore) InsertBars(records []models.BarRecord) (int64, error) {
	n, err := s.insertBatch(
		"option_bars",
		[]string{"contract_id", "ts", "open", "high", "low", "close", "volume"},
		len(records), func(i int) []interface{} {
			r := records[i]
			return []interface{}{r.ContractID, r.TS, r.Open, r.High, r.Low, r.Close, r.Volume}
		})
	if err != nil {
		return 0, fmt.Errorf("insert bars: %w", err)
	}
	return n, nil
}

func (s *timeSeriesStore) InsertGreeks(records []models.GreeksRecord) (int64, error) {
	n, err := s.insertBatch(
		"option_greeks",
		[]string{"contract_id", "ts", "delta", "gamma", "theta", "vega", "rho"},
		len(records), func(i int) []interface{} {
			r := records[i]
			return []interface{}{r.ContractID, r.TS, r.Delta, r.Gamma, r.Theta, r.Vega, r.Rho}
		})
	if err != nil {
		return 0, fmt.Errorf("insert greeks: %w", err)
	}
	return n, nil
}

func (s *timeSeriesStore) InsertIV(records []models.IVRecord) (int64, error) {
	n, err := s.insertBatch(
		"option_iv",
		[]string{"contract_id", "ts", "implied_vol"},
		len(records), func(i int) []interface{} {
			r := records[i]
			return []interface{}{r.ContractID, r.TS, r.ImpliedVol}
		})
	if err != nil {
		return 0, fmt.Errorf("insert iv: %w", err)
	}
	return n, nil
}

func (s *timeSeriesStore) Counts(contractID int64) (models.SeriesCounts, error) {
	var counts models.SeriesCounts
	err := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM option_bars   WHERE contract_id = $1) AS bars,
			(SELECT COUNT(*) FROM option_greeks WHERE contract_id = $1) AS greeks,
			(SELECT COUNT(*) FROM option_iv     WHERE contract_id = $1) AS iv
	`, contractID).Scan(&counts.Bars, &counts.Greeks, &counts.IV)
	if err != nil {
		return models.SeriesCounts{}, fmt.Errorf("series counts: %w", err)
	}
	return counts, nil
}

func (s *timeSeriesStore) DeleteDay(date time.Time, timezone string) (int64, error) {
	var total int64
	for _, table := range []string{"option_bars", "option_greeks", "option_iv"} {
		res, err := s.db.Exec(
			fmt.Sprintf(`DELETE FROM %s WHERE (ts AT TIME ZONE $1)::date = $2`, table),
			timezone, date,
		)
		if err != nil {
			return total, fmt.Errorf("delete day from %s: %w", table, err)
		}
		if affected, err := res.RowsAffected(); err == nil {
			total += affected
		}
	}
	return total, nil
}

func (s *timeSeriesStore) HasIngestion(date time.Time, kind string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM ingestion_log WHERE file_date = $1 AND kind = $2)`,
		date, kind,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *timeSeriesStore) UpsertIngestionLog(date time.Time, kind, runID, filename string, rowCount int) error {
	_, err := s.db.Exec(`
		INSERT INTO ingestion_log (file_date, kind, run_id, filename, row_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (file_date, kind)
		DO UPDATE SET run_id = EXCLUDED.run_id,
					  filename = EXCLUDED.filename,
					  row_count = EXCLUDED.row_count,
					  ingested_at = NOW()
	`, date, kind, runID, filename, rowCount)
	return err
}
