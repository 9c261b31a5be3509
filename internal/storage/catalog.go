package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rgoulart/optpulse/internal/domain/models"
)

// ErrInvalidContractSpec is returned by Resolve for a malformed contract
// identity (empty symbol, non-positive strike, zero expiration, unknown
// right). Callers must not proceed with that contract.
var ErrInvalidContractSpec = errors.New("invalid contract spec")

// ContractCatalog maps a logical option identity to its durable synthetic key.
// It is the source of truth for "does this contract exist".
type ContractCatalog interface {
	// Resolve returns the existing key for (symbol, strike, expiration, right)
	// or allocates and persists a new one. Idempotent: re-resolving a known
	// tuple never allocates.
	Resolve(symbol string, strike float64, expiration time.Time, right models.Right) (int64, error)

	// List returns contracts for a symbol, optionally restricted to one
	// expiration date, ordered by key.
	List(symbol string, expiration *time.Time) ([]models.Contract, error)

	// Purge deletes all contracts for the symbol whose expiration falls in
	// the inclusive [from, to] range, together with all dependent series
	// records, in one transaction. Used for full dataset resets.
	Purge(symbol string, from, to time.Time) (int64, error)
}

type contractCatalog struct {
	db *sql.DB
}

func NewContractCatalog(db *sql.DB) ContractCatalog {
	return &contractCatalog{db: db}
}

func (c *contractCatalog) Resolve(symbol string, strike float64, expiration time.Time, right models.Right) (int64, error) {
	if symbol == "" {
		return 0, fmt.Errorf("%w: empty symbol", ErrInvalidContractSpec)
	}
	if strike <= 0 {
		return 0, fmt.Errorf("%w: strike %v", ErrInvalidContractSpec, strike)
	}
	if expiration.IsZero() {
		return 0, fmt.Errorf("%w: zero expiration", ErrInvalidContractSpec)
	}
	if !right.Valid() {
		return 0, fmt.Errorf("%w: right %q", ErrInvalidContractSpec, right)
	}

	// First-write-wins allocation: the conflict target is the identity tuple,
	// so concurrent resolvers of the same contract converge on one key.
	_, err := c.db.Exec(`
		INSERT INTO contracts (symbol, strike, expiration, opt_right)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, strike, expiration, opt_right) DO NOTHING
	`, symbol, strike, expiration, string(right))
	if err != nil {
		return 0, fmt.Errorf("insert contract: %w", err)
	}

	var id int64
	err = c.db.QueryRow(`
		SELECT id FROM contracts
		WHERE symbol = $1 AND strike = $2 AND expiration = $3 AND opt_right = $4
	`, symbol, strike, expiration, string(right)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("select contract: %w", err)
	}
	return id, nil
}

func (c *contractCatalog) List(symbol string, expiration *time.Time) ([]models.Contract, error) {
	query := `SELECT id, symbol, strike, expiration, opt_right FROM contracts WHERE symbol = $1`
	args := []interface{}{symbol}
	if expiration != nil {
		query += ` AND expiration = $2`
		args = append(args, *expiration)
	}
	query += ` ORDER BY id`

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Contract
	for rows.Next() {
		var ct models.Contract
		var right string
		if err := rows.Scan(&ct.ID, &ct.Symbol, &ct.Strike, &ct.Expiration, &right); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		ct.Right = models.Right(right)
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (c *contractCatalog) Purge(symbol string, from, to time.Time) (int64, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return 0, err
	}

	// Dependent series rows are removed explicitly rather than relying on the
	// FK cascade, so the row counts are observable and the whole reset is one
	// transaction: either the contracts and all three series vanish, or none do.
	sub := `SELECT id FROM contracts WHERE symbol = $1 AND expiration BETWEEN $2 AND $3`
	for _, table := range []string{"option_bars", "option_greeks", "option_iv"} {
		if _, err := tx.Exec(
			fmt.Sprintf(`DELETE FROM %s WHERE contract_id IN (%s)`, table, sub),
			symbol, from, to,
		); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("purge %s: %w", table, err)
		}
	}

	res, err := tx.Exec(`DELETE FROM contracts WHERE symbol = $1 AND expiration BETWEEN $2 AND $3`, symbol, from, to)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("purge contracts: %w", err)
	}
	purged, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return purged, nil
}
