package liquidity

import (
	"testing"

	"github.com/rgoulart/optpulse/config"
	"github.com/rgoulart/optpulse/internal/domain/models"
)

func testConfig() config.LiquidityConfig {
	return config.LiquidityConfig{
		MinBars:                60,
		SigmaMultiplier:        1.5,
		StrikeIncrement:        1.0,
		MinStrikesPerSide:      5,
		MaxStrikesPerSide:      25,
		FallbackStrikesPerSide: 10,
	}
}

func TestPassesActivityThreshold(t *testing.T) {
	f := NewFilter(testConfig())

	cases := []struct {
		name string
		bars int64
		want bool
	}{
		{"well above minimum", 390, true},
		{"exactly at minimum", 60, true},
		{"one below minimum", 59, false},
		{"no bars", 0, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := f.PassesActivityThreshold(models.SeriesCounts{Bars: c.bars})
			if got != c.want {
				t.Fatalf("bars=%d: got %v want %v", c.bars, got, c.want)
			}
		})
	}
}

func TestPassesActivityThreshold_ZeroMinimumAdmitsAll(t *testing.T) {
	cfg := testConfig()
	cfg.MinBars = 0
	f := NewFilter(cfg)
	if !f.PassesActivityThreshold(models.SeriesCounts{Bars: 0}) {
		t.Fatal("minimum of zero must admit empty contracts")
	}
}

func TestSelectStrikeBand_SymmetricAroundATM(t *testing.T) {
	f := NewFilter(testConfig())

	// price 500, iv 0.20, full day: move = 500*0.20*1*1.5 = 150 strikes,
	// clamped to max 25 per side.
	low, high := f.SelectStrikeBand(500, 0.20, 1.0)
	if low != 475 || high != 525 {
		t.Fatalf("band: got [%v, %v] want [475, 525]", low, high)
	}
}

func TestSelectStrikeBand_NarrowMoveClampedToMin(t *testing.T) {
	f := NewFilter(testConfig())

	// tiny vol late in the day: raw width under one strike, floor at 5.
	low, high := f.SelectStrikeBand(500, 0.001, 0.01)
	if low != 495 || high != 505 {
		t.Fatalf("band: got [%v, %v] want [495, 505]", low, high)
	}
}

func TestSelectStrikeBand_RoundsWidthOutward(t *testing.T) {
	cfg := testConfig()
	cfg.MinStrikesPerSide = 1
	cfg.MaxStrikesPerSide = 100
	f := NewFilter(cfg)

	// move = 500 * 0.02 * 1 * 1.5 = 15.0 -> 15 per side exactly.
	low, high := f.SelectStrikeBand(500, 0.02, 1.0)
	if low != 485 || high != 515 {
		t.Fatalf("exact width: got [%v, %v]", low, high)
	}

	// move = 500 * 0.021 * 1 * 1.5 = 15.75 -> ceil to 16, never truncated.
	low, high = f.SelectStrikeBand(500, 0.021, 1.0)
	if low != 484 || high != 516 {
		t.Fatalf("fractional width must widen: got [%v, %v]", low, high)
	}
}

func TestSelectStrikeBand_FallbackWhenVolUnavailable(t *testing.T) {
	f := NewFilter(testConfig())

	cases := []struct {
		name        string
		iv, dayFrac float64
	}{
		{"zero iv", 0, 1.0},
		{"negative iv", -0.5, 1.0},
		{"zero day fraction", 0.2, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			low, high := f.SelectStrikeBand(500, c.iv, c.dayFrac)
			if low != 490 || high != 510 {
				t.Fatalf("fallback band: got [%v, %v] want [490, 510]", low, high)
			}
		})
	}
}

func TestSelectStrikeBand_NeverZeroWidth(t *testing.T) {
	cfg := testConfig()
	cfg.MinStrikesPerSide = 0
	cfg.FallbackStrikesPerSide = 0
	f := NewFilter(cfg)

	low, high := f.SelectStrikeBand(500, 0, 0)
	if low >= high {
		t.Fatalf("band must retain width even with degenerate config: [%v, %v]", low, high)
	}
}

func TestSelectStrikeBand_LowBoundFloor(t *testing.T) {
	f := NewFilter(testConfig())

	// ATM near zero: the low edge must not cross into non-positive strikes.
	low, _ := f.SelectStrikeBand(3, 0, 1.0)
	if low < 1.0 {
		t.Fatalf("low edge below one increment: %v", low)
	}
}

func TestSelectStrikeBand_RoundsATMToIncrement(t *testing.T) {
	cfg := testConfig()
	cfg.StrikeIncrement = 5.0
	cfg.MinStrikesPerSide = 1
	cfg.MaxStrikesPerSide = 1
	cfg.FallbackStrikesPerSide = 1
	f := NewFilter(cfg)

	low, high := f.SelectStrikeBand(503.4, 0, 1.0)
	if low != 500 || high != 510 {
		t.Fatalf("atm rounding with 5-wide strikes: got [%v, %v]", low, high)
	}
}
