package dto

// DailySummaryResponse is one per-trading-day NAV reconciliation row.
//
// Fields match the API contract and may differ from internal domain models.
//
// swagger:model DailySummaryResponse
type DailySummaryResponse struct {
	Account     string  `json:"account" example:"U1234567"`
	Date        string  `json:"date" example:"2024-03-15"`
	OpeningNAV  float64 `json:"opening_nav" example:"100000"`
	ClosingNAV  float64 `json:"closing_nav" example:"100980"`
	TotalPNL    float64 `json:"total_pnl" example:"500"`
	NetCashFlow float64 `json:"net_cash_flow" example:"480"`
}

// LedgerEntryResponse is one immutable ledger row.
//
// swagger:model LedgerEntryResponse
type LedgerEntryResponse struct {
	Position    int     `json:"position" example:"0"`
	Timestamp   string  `json:"timestamp" example:"2024-03-15T14:30:00Z"`
	EventType   string  `json:"event_type" example:"TRADE"`
	Description string  `json:"description" example:"SPY 515C closed"`
	CashImpact  float64 `json:"cash_impact" example:"480"`
	RealizedPNL float64 `json:"realized_pnl" example:"500"`
	NAVAfter    float64 `json:"nav_after" example:"100980"`
}

// ContractCountsResponse reports per-contract series counts, the congruence
// state, and whether the contract clears the liquidity activity threshold.
//
// swagger:model ContractCountsResponse
type ContractCountsResponse struct {
	ContractID int64   `json:"contract_id" example:"42"`
	Symbol     string  `json:"symbol" example:"SPY"`
	Strike     float64 `json:"strike" example:"515"`
	Expiration string  `json:"expiration" example:"2024-03-15"`
	Right      string  `json:"right" example:"C"`
	Bars       int64   `json:"bars" example:"240"`
	Greeks     int64   `json:"greeks" example:"240"`
	IV         int64   `json:"iv" example:"240"`
	Congruent  bool    `json:"congruent" example:"true"`
	Liquid     bool    `json:"liquid" example:"true"`
}
