package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rgoulart/optpulse/internal/domain/dto"
	"github.com/rgoulart/optpulse/internal/service"
)

// Handler provides HTTP handlers for the reporting endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Call the reporting service
//   - Translate results into response DTOs with appropriate status codes
type Handler struct {
	svc service.ReportingService
}

// NewHandler constructs a Handler around the reporting service.
func NewHandler(svc service.ReportingService) *Handler {
	return &Handler{svc: svc}
}

// GetDailySummaries godoc
// @Summary      Daily NAV summaries
// @Description  Returns per-trading-day opening/closing NAV, P&L, and cash flow for an account
// @Tags         alm
// @Produce      json
// @Param        account  query     string  true   "Account identifier" example(U1234567)
// @Param        start    query     string  false  "Start date in YYYY-MM-DD" example(2024-03-01)
// @Param        end      query     string  false  "End date in YYYY-MM-DD" example(2024-03-31)
// @Success      200      {array}   dto.DailySummaryResponse  "Success"
// @Failure      400      {object}  dto.ErrorResponse         "Bad Request"
// @Failure      404      {object}  dto.ErrorResponse         "Not Found"
// @Failure      500      {object}  dto.ErrorResponse         "Internal Error"
// @Router       /api/v1/summary [get]
func (h *Handler) GetDailySummaries(c *gin.Context) {
	account := strings.TrimSpace(c.Query("account"))
	if account == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("account is required", nil))
		return
	}

	start, ok := parseDateParam(c, "start")
	if !ok {
		return
	}
	end, ok := parseDateParam(c, "end")
	if !ok {
		return
	}

	rows, err := h.svc.GetDailySummaries(c.Request.Context(), account, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch summaries", err))
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", nil))
		return
	}

	resp := make([]dto.DailySummaryResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, dto.DailySummaryResponse{
			Account:     row.Account,
			Date:        row.Date.Format("2006-01-02"),
			OpeningNAV:  row.OpeningNAV,
			ClosingNAV:  row.ClosingNAV,
			TotalPNL:    row.TotalPNL,
			NetCashFlow: row.NetCashFlow,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GetLedger godoc
// @Summary      Ledger entries
// @Description  Returns the chronological account ledger, optionally for one date
// @Tags         alm
// @Produce      json
// @Param        account  query     string  true   "Account identifier" example(U1234567)
// @Param        date     query     string  false  "Date in YYYY-MM-DD" example(2024-03-15)
// @Success      200      {array}   dto.LedgerEntryResponse  "Success"
// @Failure      400      {object}  dto.ErrorResponse        "Bad Request"
// @Failure      404      {object}  dto.ErrorResponse        "Not Found"
// @Failure      500      {object}  dto.ErrorResponse        "Internal Error"
// @Router       /api/v1/ledger [get]
func (h *Handler) GetLedger(c *gin.Context) {
	account := strings.TrimSpace(c.Query("account"))
	if account == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("account is required", nil))
		return
	}

	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	entries, err := h.svc.GetLedger(c.Request.Context(), account, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch ledger", err))
		return
	}
	if len(entries) == 0 {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", nil))
		return
	}

	resp := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.LedgerEntryResponse{
			Position:    e.Position,
			Timestamp:   e.Timestamp.UTC().Format(time.RFC3339),
			EventType:   string(e.Type),
			Description: e.Description,
			CashImpact:  e.CashImpact,
			RealizedPNL: e.RealizedPNL,
			NAVAfter:    e.NAVAfter,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GetContractCounts godoc
// @Summary      Contract series counts
// @Description  Returns per-contract bar/Greeks/IV counts, congruence state, and liquidity verdict
// @Tags         contracts
// @Produce      json
// @Param        symbol      query     string  true   "Underlying symbol" example(SPY)
// @Param        expiration  query     string  false  "Expiration date in YYYY-MM-DD" example(2024-03-15)
// @Success      200         {array}   dto.ContractCountsResponse  "Success"
// @Failure      400         {object}  dto.ErrorResponse           "Bad Request"
// @Failure      404         {object}  dto.ErrorResponse           "Not Found"
// @Failure      500         {object}  dto.ErrorResponse           "Internal Error"
// @Router       /api/v1/contracts/counts [get]
func (h *Handler) GetContractCounts(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("symbol is required", nil))
		return
	}

	expiration, ok := parseDateParam(c, "expiration")
	if !ok {
		return
	}

	counts, err := h.svc.GetContractCounts(c.Request.Context(), symbol, expiration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch contract counts", err))
		return
	}
	if len(counts) == 0 {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", nil))
		return
	}

	resp := make([]dto.ContractCountsResponse, 0, len(counts))
	for _, cc := range counts {
		resp = append(resp, dto.ContractCountsResponse{
			ContractID: cc.Contract.ID,
			Symbol:     cc.Contract.Symbol,
			Strike:     cc.Contract.Strike,
			Expiration: cc.Contract.Expiration.Format("2006-01-02"),
			Right:      string(cc.Contract.Right),
			Bars:       cc.Counts.Bars,
			Greeks:     cc.Counts.Greeks,
			IV:         cc.Counts.IV,
			Congruent:  cc.Counts.Congruent(),
			Liquid:     cc.Liquid,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// parseDateParam parses an optional YYYY-MM-DD query parameter. On a malformed
// value it writes a 400 response and returns ok=false.
func parseDateParam(c *gin.Context, name string) (*time.Time, bool) {
	s := c.Query(name)
	if s == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid "+name+" format, expected YYYY-MM-DD", err))
		return nil, false
	}
	return &parsed, true
}
