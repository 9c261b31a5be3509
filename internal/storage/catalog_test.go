package storage

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/rgoulart/optpulse/internal/domain/models"
)

func newMockCatalog(t *testing.T) (ContractCatalog, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	return NewContractCatalog(db), mock, func() { _ = db.Close() }
}

func expirationDate() time.Time {
	return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
}

func TestResolve_AllocatesAndReturnsKey(t *testing.T) {
	catalog, mock, cleanup := newMockCatalog(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO contracts`)).
		WithArgs("SPY", 500.0, expirationDate(), "C").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM contracts`)).
		WithArgs("SPY", 500.0, expirationDate(), "C").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := catalog.Resolve("SPY", 500, expirationDate(), models.RightCall)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("id: got %d want 42", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolve_ExistingTupleReturnsSameKey(t *testing.T) {
	catalog, mock, cleanup := newMockCatalog(t)
	defer cleanup()

	// Conflict: the insert writes nothing, the select still finds the key.
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO contracts`)).
		WithArgs("SPY", 500.0, expirationDate(), "P").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM contracts`)).
		WithArgs("SPY", 500.0, expirationDate(), "P").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := catalog.Resolve("SPY", 500, expirationDate(), models.RightPut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Fatalf("id: got %d want 7", id)
	}
}

func TestResolve_RejectsMalformedSpec(t *testing.T) {
	catalog, mock, cleanup := newMockCatalog(t)
	defer cleanup()

	cases := []struct {
		name   string
		symbol string
		strike float64
		exp    time.Time
		right  models.Right
	}{
		{"empty symbol", "", 500, expirationDate(), models.RightCall},
		{"zero strike", "SPY", 0, expirationDate(), models.RightCall},
		{"negative strike", "SPY", -5, expirationDate(), models.RightCall},
		{"zero expiration", "SPY", 500, time.Time{}, models.RightCall},
		{"unknown right", "SPY", 500, expirationDate(), models.Right("X")},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := catalog.Resolve(c.symbol, c.strike, c.exp, c.right)
			if !errors.Is(err, ErrInvalidContractSpec) {
				t.Fatalf("want ErrInvalidContractSpec, got %v", err)
			}
		})
	}
	// Validation failures never reach the database.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestList_FiltersByExpiration(t *testing.T) {
	catalog, mock, cleanup := newMockCatalog(t)
	defer cleanup()

	exp := expirationDate()
	rows := sqlmock.NewRows([]string{"id", "symbol", "strike", "expiration", "opt_right"}).
		AddRow(1, "SPY", 495.0, exp, "C").
		AddRow(2, "SPY", 500.0, exp, "P")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, symbol, strike, expiration, opt_right FROM contracts WHERE symbol = $1 AND expiration = $2 ORDER BY id`)).
		WithArgs("SPY", exp).
		WillReturnRows(rows)

	contracts, err := catalog.List("SPY", &exp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contracts) != 2 {
		t.Fatalf("want 2 contracts, got %d", len(contracts))
	}
	if contracts[0].ID != 1 || contracts[0].Right != models.RightCall {
		t.Fatalf("first contract: %+v", contracts[0])
	}
	if contracts[1].Strike != 500 || contracts[1].Right != models.RightPut {
		t.Fatalf("second contract: %+v", contracts[1])
	}
}

func TestList_NoExpirationFilter(t *testing.T) {
	catalog, mock, cleanup := newMockCatalog(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, symbol, strike, expiration, opt_right FROM contracts WHERE symbol = $1 ORDER BY id`)).
		WithArgs("SPY").
		WillReturnRows(sqlmock.NewRows([]string{"id", "symbol", "strike", "expiration", "opt_right"}))

	contracts, err := catalog.List("SPY", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contracts) != 0 {
		t.Fatalf("want empty, got %d", len(contracts))
	}
}

func TestPurge_DeletesSeriesAndContractsInOneTx(t *testing.T) {
	catalog, mock, cleanup := newMockCatalog(t)
	defer cleanup()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	for _, table := range []string{"option_bars", "option_greeks", "option_iv"} {
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM `+table+` WHERE contract_id IN`)).
			WithArgs("SPY", from, to).
			WillReturnResult(sqlmock.NewResult(0, 100))
	}
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM contracts WHERE symbol = $1 AND expiration BETWEEN $2 AND $3`)).
		WithArgs("SPY", from, to).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectCommit()

	purged, err := catalog.Purge("SPY", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purged != 12 {
		t.Fatalf("purged: got %d want 12", purged)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPurge_RollsBackOnSeriesDeleteFailure(t *testing.T) {
	catalog, mock, cleanup := newMockCatalog(t)
	defer cleanup()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM option_bars`)).
		WithArgs("SPY", from, to).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	if _, err := catalog.Purge("SPY", from, to); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
