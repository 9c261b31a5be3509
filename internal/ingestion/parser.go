package ingestion

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rgoulart/optpulse/internal/domain/models"
	"github.com/rgoulart/optpulse/internal/storage"
)

// File kinds; one export file per (day, kind).
const (
	KindBars   = "bars"
	KindGreeks = "greeks"
	KindIV     = "iv"
)

// expectedHeaders enforces strict column ordering for the terminal exports.
// If a header doesn't match EXACTLY (order + count), the file fails.
var expectedHeaders = map[string][]string{
	KindBars:   {"symbol", "strike", "expiration", "right", "timestamp", "open", "high", "low", "close", "volume"},
	KindGreeks: {"symbol", "strike", "expiration", "right", "timestamp", "delta", "gamma", "theta", "vega", "rho"},
	KindIV:     {"symbol", "strike", "expiration", "right", "timestamp", "implied_volatility"},
}

// fileProcessor parses one kind of export file and persists its records in
// batches through the insert-or-skip store. Contract identities are resolved
// through the catalog once and memoized for the run.
type fileProcessor struct {
	catalog storage.ContractCatalog
	store   storage.TimeSeriesStore
	retry   RetryPolicy
	batch   int

	ids map[string]int64
}

func newFileProcessor(catalog storage.ContractCatalog, store storage.TimeSeriesStore, retry RetryPolicy, batch int) *fileProcessor {
	return &fileProcessor{
		catalog: catalog,
		store:   store,
		retry:   retry,
		batch:   batch,
		ids:     make(map[string]int64),
	}
}

// resolve memoizes catalog lookups; an export day repeats each contract once
// per bar, so this collapses thousands of lookups into one per contract.
func (p *fileProcessor) resolve(symbol string, strike float64, expiration time.Time, right models.Right) (int64, error) {
	key := fmt.Sprintf("%s|%.2f|%s|%s", symbol, strike, expiration.Format("2006-01-02"), right)
	if id, ok := p.ids[key]; ok {
		return id, nil
	}
	id, err := p.catalog.Resolve(symbol, strike, expiration, right)
	if err != nil {
		return 0, err
	}
	p.ids[key] = id
	return id, nil
}

// parseAndPersistFile opens, validates, parses, and persists one export file
// in batches. It fails on a header mismatch, a malformed row, or an
// unrecoverable flush error (after retries); it tolerates empty numeric
// cells in Greeks/IV files, which become NULL observations.
func (p *fileProcessor) parseAndPersistFile(ctx context.Context, path, kind string) (int, error) {
	headers, ok := expectedHeaders[kind]
	if !ok {
		return 0, fmt.Errorf("unknown file kind %q", kind)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(headers) {
		return 0, fmt.Errorf("invalid header length: expected %d, got %d", len(headers), len(header))
	}
	for i, h := range header {
		if strings.TrimSpace(strings.ToLower(h)) != headers[i] {
			return 0, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, headers[i], h)
		}
	}

	var (
		bars   []models.BarRecord
		greeks []models.GreeksRecord
		ivs    []models.IVRecord
	)

	flush := func() error {
		return p.retry.Do(func() error {
			var err error
			switch kind {
			case KindBars:
				if len(bars) > 0 {
					_, err = p.store.InsertBars(bars)
				}
			case KindGreeks:
				if len(greeks) > 0 {
					_, err = p.store.InsertGreeks(greeks)
				}
			case KindIV:
				if len(ivs) > 0 {
					_, err = p.store.InsertIV(ivs)
				}
			}
			return err
		})
	}
	reset := func() {
		bars = bars[:0]
		greeks = greeks[:0]
		ivs = ivs[:0]
	}
	buffered := func() int { return len(bars) + len(greeks) + len(ivs) }

	total := 0
	lineNumber := 1 // header already read

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		if len(rec) != len(headers) {
			return 0, fmt.Errorf("invalid column count on line %d: expected %d got %d", lineNumber, len(headers), len(rec))
		}

		contractID, ts, err := p.identity(rec)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNumber, err)
		}

		switch kind {
		case KindBars:
			bar, err := recordToBar(contractID, ts, rec)
			if err != nil {
				return 0, fmt.Errorf("line %d: %w", lineNumber, err)
			}
			bars = append(bars, bar)
		case KindGreeks:
			gr, err := recordToGreeks(contractID, ts, rec)
			if err != nil {
				return 0, fmt.Errorf("line %d: %w", lineNumber, err)
			}
			greeks = append(greeks, gr)
		case KindIV:
			iv, err := recordToIV(contractID, ts, rec)
			if err != nil {
				return 0, fmt.Errorf("line %d: %w", lineNumber, err)
			}
			ivs = append(ivs, iv)
		}

		total++
		if buffered() >= p.batch {
			if err := flush(); err != nil {
				return 0, fmt.Errorf("flush batch ending line %d: %w", lineNumber, err)
			}
			reset()
		}
	}

	if err := flush(); err != nil {
		return 0, fmt.Errorf("final flush: %w", err)
	}
	return total, nil
}

// identity parses the shared leading columns (symbol, strike, expiration,
// right, timestamp) and resolves the contract key.
func (p *fileProcessor) identity(rec []string) (int64, time.Time, error) {
	symbol := strings.TrimSpace(rec[0])

	strike, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid strike: %v", err)
	}

	expiration, err := time.Parse("2006-01-02", strings.TrimSpace(rec[2]))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid expiration: %v", err)
	}

	right := models.Right(strings.ToUpper(strings.TrimSpace(rec[3])))

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[4]))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid timestamp: %v", err)
	}

	id, err := p.resolve(symbol, strike, expiration, right)
	if err != nil {
		return 0, time.Time{}, err
	}
	return id, ts, nil
}

func recordToBar(contractID int64, ts time.Time, rec []string) (models.BarRecord, error) {
	bar := models.BarRecord{ContractID: contractID, TS: ts}

	for i, dst := range []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close} {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[5+i]), 64)
		if err != nil {
			return bar, fmt.Errorf("invalid %s: %v", expectedHeaders[KindBars][5+i], err)
		}
		*dst = v
	}

	vol, err := strconv.ParseInt(strings.TrimSpace(rec[9]), 10, 64)
	if err != nil {
		return bar, fmt.Errorf("invalid volume: %v", err)
	}
	bar.Volume = vol
	return bar, nil
}

func recordToGreeks(contractID int64, ts time.Time, rec []string) (models.GreeksRecord, error) {
	gr := models.GreeksRecord{ContractID: contractID, TS: ts}

	for i, dst := range []*sql.NullFloat64{&gr.Delta, &gr.Gamma, &gr.Theta, &gr.Vega, &gr.Rho} {
		v, err := parseNullFloat(rec[5+i])
		if err != nil {
			return gr, fmt.Errorf("invalid %s: %v", expectedHeaders[KindGreeks][5+i], err)
		}
		*dst = v
	}
	return gr, nil
}

func recordToIV(contractID int64, ts time.Time, rec []string) (models.IVRecord, error) {
	iv := models.IVRecord{ContractID: contractID, TS: ts}

	v, err := parseNullFloat(rec[5])
	if err != nil {
		return iv, fmt.Errorf("invalid implied_volatility: %v", err)
	}
	iv.ImpliedVol = v
	return iv, nil
}

// parseNullFloat maps an empty cell to a NULL observation, not zero.
func parseNullFloat(s string) (sql.NullFloat64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	return sql.NullFloat64{Float64: v, Valid: true}, nil
}
