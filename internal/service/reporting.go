// Package service exposes read-only reporting over persisted ledgers,
// summaries, and the contract catalog.
package service

import (
	"context"
	"time"

	"github.com/rgoulart/optpulse/internal/domain/models"
	"github.com/rgoulart/optpulse/internal/liquidity"
	"github.com/rgoulart/optpulse/internal/storage"
)

// ContractCounts pairs a contract with its per-series record counts and the
// liquidity verdict.
type ContractCounts struct {
	Contract models.Contract
	Counts   models.SeriesCounts
	Liquid   bool
}

// ReportingService defines the read side consumed by the HTTP handlers.
// It decouples handlers from data access.
type ReportingService interface {
	GetDailySummaries(ctx context.Context, account string, start, end *time.Time) ([]models.DailySummaryRow, error)
	GetLedger(ctx context.Context, account string, date *time.Time) ([]models.LedgerEntry, error)
	GetContractCounts(ctx context.Context, symbol string, expiration *time.Time) ([]ContractCounts, error)
}

type reportingService struct {
	alm      storage.ALMRepository
	catalog  storage.ContractCatalog
	series   storage.TimeSeriesStore
	filter   *liquidity.Filter
	timezone string
}

func NewReportingService(alm storage.ALMRepository, catalog storage.ContractCatalog, series storage.TimeSeriesStore, filter *liquidity.Filter, timezone string) ReportingService {
	return &reportingService{
		alm:      alm,
		catalog:  catalog,
		series:   series,
		filter:   filter,
		timezone: timezone,
	}
}

func (s *reportingService) GetDailySummaries(ctx context.Context, account string, start, end *time.Time) ([]models.DailySummaryRow, error) {
	return s.alm.GetDailySummaries(account, start, end)
}

func (s *reportingService) GetLedger(ctx context.Context, account string, date *time.Time) ([]models.LedgerEntry, error) {
	return s.alm.GetLedgerEntries(account, date, s.timezone)
}

func (s *reportingService) GetContractCounts(ctx context.Context, symbol string, expiration *time.Time) ([]ContractCounts, error) {
	contracts, err := s.catalog.List(symbol, expiration)
	if err != nil {
		return nil, err
	}

	out := make([]ContractCounts, 0, len(contracts))
	for _, ct := range contracts {
		counts, err := s.series.Counts(ct.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ContractCounts{
			Contract: ct,
			Counts:   counts,
			Liquid:   s.filter.PassesActivityThreshold(counts),
		})
	}
	return out, nil
}
