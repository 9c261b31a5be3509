// Package liquidity bounds which contracts enter downstream datasets:
// a minimum-activity bar count and a volatility-scaled strike band around
// the money.
package liquidity

import (
	"math"

	"github.com/rgoulart/optpulse/config"
	"github.com/rgoulart/optpulse/internal/domain/models"
)

// Filter applies the activity threshold and strike-band selection.
type Filter struct {
	cfg config.LiquidityConfig
}

func NewFilter(cfg config.LiquidityConfig) *Filter {
	return &Filter{cfg: cfg}
}

// PassesActivityThreshold reports whether a contract's bar count clears the
// configured minimum. Contracts failing it are excluded from downstream
// datasets but never deleted from storage.
func (f *Filter) PassesActivityThreshold(counts models.SeriesCounts) bool {
	return counts.Bars >= int64(f.cfg.MinBars)
}

// SelectStrikeBand returns the inclusive [low, high] strike range around
// at-the-money for the given underlying price.
//
// The band half-width is SigmaMultiplier expected moves, where the expected
// move for the remaining day fraction is price * iv * sqrt(dayFraction).
// The width in strikes is rounded outward (wider) so a marginally-qualifying
// strike is never excluded, then clamped to the configured min/max strikes
// per side. When impliedVol or dayFraction is unavailable the band degrades
// to the fixed fallback strike count per side, never to a zero-width band.
func (f *Filter) SelectStrikeBand(underlyingPrice, impliedVol, dayFractionRemaining float64) (low, high float64) {
	inc := f.cfg.StrikeIncrement
	if inc <= 0 {
		inc = 1.0
	}
	atm := roundToIncrement(underlyingPrice, inc)

	perSide := f.cfg.FallbackStrikesPerSide
	if impliedVol > 0 && dayFractionRemaining > 0 {
		move := underlyingPrice * impliedVol * math.Sqrt(dayFractionRemaining) * f.cfg.SigmaMultiplier
		perSide = int(math.Ceil(move / inc))
	}
	if perSide < f.cfg.MinStrikesPerSide {
		perSide = f.cfg.MinStrikesPerSide
	}
	if f.cfg.MaxStrikesPerSide > 0 && perSide > f.cfg.MaxStrikesPerSide {
		perSide = f.cfg.MaxStrikesPerSide
	}
	if perSide < 1 {
		perSide = 1
	}

	low = atm - float64(perSide)*inc
	high = atm + float64(perSide)*inc
	if low < inc {
		low = inc
	}
	return low, high
}

// roundToIncrement rounds x to the nearest strike increment.
func roundToIncrement(x, inc float64) float64 {
	return math.Round(x/inc) * inc
}
