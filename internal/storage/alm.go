package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rgoulart/optpulse/internal/domain/models"
)

// ALMRepository persists ledger builds and serves raw events and reporting
// reads. Ledger entries are immutable once written; a rebuild replaces the
// account's prior ledger and summaries atomically.
type ALMRepository interface {
	// FetchRawEvents returns all raw events for the account in ascending
	// (ts, seq) order — seq is the stable tie-break for equal timestamps.
	FetchRawEvents(account string) ([]models.RawEvent, error)

	// ReplaceLedger swaps the account's stored ledger and daily summaries
	// for the freshly built ones in one transaction.
	ReplaceLedger(account string, entries []models.LedgerEntry, summaries []models.DailySummaryRow) error

	GetLedgerEntries(account string, date *time.Time, timezone string) ([]models.LedgerEntry, error)
	GetDailySummaries(account string, start, end *time.Time) ([]models.DailySummaryRow, error)
}

type almRepository struct {
	db *sql.DB
}

func NewALMRepository(db *sql.DB) ALMRepository {
	return &almRepository{db: db}
}

func (r *almRepository) FetchRawEvents(account string) ([]models.RawEvent, error) {
	rows, err := r.db.Query(`
		SELECT seq, account, ts, event_type, description,
			   quantity, strike, proceeds, cost_basis, commission, amount
		FROM raw_events
		WHERE account = $1
		ORDER BY ts, seq
	`, account)
	if err != nil {
		return nil, fmt.Errorf("fetch raw events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.RawEvent
	for rows.Next() {
		var ev models.RawEvent
		if err := rows.Scan(
			&ev.Seq, &ev.Account, &ev.Timestamp, &ev.Type, &ev.Description,
			&ev.Quantity, &ev.Strike, &ev.Proceeds, &ev.CostBasis, &ev.Commission, &ev.Amount,
		); err != nil {
			return nil, fmt.Errorf("scan raw event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *almRepository) ReplaceLedger(account string, entries []models.LedgerEntry, summaries []models.DailySummaryRow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM ledger_entries WHERE account = $1`, account); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear ledger: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM daily_summaries WHERE account = $1`, account); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear summaries: %w", err)
	}

	entryStmt, err := tx.Prepare(`
		INSERT INTO ledger_entries
			(account, position, ts, event_type, description, cash_impact, realized_pnl, nav_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, e := range entries {
		if _, err := entryStmt.Exec(
			account, e.Position, e.Timestamp, string(e.Type), e.Description,
			e.CashImpact, e.RealizedPNL, e.NAVAfter,
		); err != nil {
			_ = entryStmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("insert ledger entry %d: %w", e.Position, err)
		}
	}
	if err := entryStmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	summaryStmt, err := tx.Prepare(`
		INSERT INTO daily_summaries
			(account, summary_date, opening_nav, closing_nav, total_pnl, net_cash_flow)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, s := range summaries {
		if _, err := summaryStmt.Exec(
			account, s.Date, s.OpeningNAV, s.ClosingNAV, s.TotalPNL, s.NetCashFlow,
		); err != nil {
			_ = summaryStmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("insert daily summary %s: %w", s.Date.Format("2006-01-02"), err)
		}
	}
	if err := summaryStmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *almRepository) GetLedgerEntries(account string, date *time.Time, timezone string) ([]models.LedgerEntry, error) {
	query := `
		SELECT account, position, ts, event_type, description, cash_impact, realized_pnl, nav_after
		FROM ledger_entries
		WHERE account = $1`
	args := []interface{}{account}
	if date != nil {
		query += ` AND (ts AT TIME ZONE $2)::date = $3`
		args = append(args, timezone, *date)
	}
	query += ` ORDER BY position`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get ledger entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		var typ string
		if err := rows.Scan(
			&e.Account, &e.Position, &e.Timestamp, &typ, &e.Description,
			&e.CashImpact, &e.RealizedPNL, &e.NAVAfter,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Type = models.EventType(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *almRepository) GetDailySummaries(account string, start, end *time.Time) ([]models.DailySummaryRow, error) {
	query := `
		SELECT account, summary_date, opening_nav, closing_nav, total_pnl, net_cash_flow
		FROM daily_summaries
		WHERE account = $1`
	args := []interface{}{account}
	if start != nil {
		query += fmt.Sprintf(` AND summary_date >= $%d`, len(args)+1)
		args = append(args, *start)
	}
	if end != nil {
		query += fmt.Sprintf(` AND summary_date <= $%d`, len(args)+1)
		args = append(args, *end)
	}
	query += ` ORDER BY summary_date`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get daily summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.DailySummaryRow
	for rows.Next() {
		var s models.DailySummaryRow
		if err := rows.Scan(
			&s.Account, &s.Date, &s.OpeningNAV, &s.ClosingNAV, &s.TotalPNL, &s.NetCashFlow,
		); err != nil {
			return nil, fmt.Errorf("scan daily summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
