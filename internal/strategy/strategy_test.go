package strategy

import (
	"testing"
	"time"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
)

// trendBars builds n bars starting at base, each close stepping by step,
// with a one-point range around the close and the given volume.
func trendBars(n int, base, step, volume float64) []model.Bar {
	bars := make([]model.Bar, n)
	ts := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)
	for i := range bars {
		close := base + float64(i)*step
		bars[i] = model.Bar{
			TS:     ts.Add(time.Duration(i) * time.Minute),
			Open:   close - step,
			High:   close + 1,
			Low:    close - 1,
			Close:  close,
			Volume: volume,
		}
	}
	return bars
}

func TestEvaluateShortSeriesHolds(t *testing.T) {
	for _, mode := range Modes() {
		bars := trendBars(mode.MinBars()-1, 100, 1, 1000)
		res := Evaluate(bars, mode)
		if res.Signal != model.SignalHold {
			t.Errorf("%s: %d bars: got %s, want HOLD", mode, len(bars), res.Signal)
		}
	}
}

func TestEvaluateEmptyAndUnknown(t *testing.T) {
	if res := Evaluate(nil, ModeSniper); res.Signal != model.SignalHold || res.LastClose != 0 {
		t.Errorf("empty series: got %+v", res)
	}
	if res := Evaluate(trendBars(50, 100, 1, 1000), Mode("MARTINGALE")); res.Signal != model.SignalHold {
		t.Errorf("unknown mode: got %s, want HOLD", res.Signal)
	}
}

func TestDirectionalModes(t *testing.T) {
	up := trendBars(60, 100, 2, 1000)
	down := trendBars(60, 300, -2, 1000)

	for _, mode := range []Mode{ModeSniper, ModeMomentum, ModeGoldenCross, ModeSupertrend, ModeVWAPMACD} {
		if res := Evaluate(up, mode); res.Signal != model.SignalBuy {
			t.Errorf("%s uptrend: got %s, want BUY (%s)", mode, res.Signal, res.Reason)
		}
		if res := Evaluate(down, mode); res.Signal != model.SignalSell {
			t.Errorf("%s downtrend: got %s, want SELL (%s)", mode, res.Signal, res.Reason)
		}
	}
}

func TestMomentumNeverHolds(t *testing.T) {
	bars := trendBars(emaFastPeriod, 100, 0, 1000)
	res := Evaluate(bars, ModeMomentum)
	if res.Signal == model.SignalHold {
		t.Fatal("momentum held on a flat series; it must always take a side")
	}
}

func TestVolumeShock(t *testing.T) {
	quiet := trendBars(volumeWindow, 100, 1, 100)
	if res := Evaluate(quiet, ModeVolumeShock); res.Signal != model.SignalHold {
		t.Errorf("no spike: got %s, want HOLD", res.Signal)
	}

	bullish := trendBars(volumeWindow, 100, 1, 100)
	bullish[len(bullish)-1].Volume = 500
	if res := Evaluate(bullish, ModeVolumeShock); res.Signal != model.SignalBuy {
		t.Errorf("bullish spike: got %s, want BUY", res.Signal)
	}

	bearish := trendBars(volumeWindow, 100, 1, 100)
	last := &bearish[len(bearish)-1]
	last.Volume = 500
	last.Open = last.Close + 2
	if res := Evaluate(bearish, ModeVolumeShock); res.Signal != model.SignalSell {
		t.Errorf("bearish spike: got %s, want SELL", res.Signal)
	}
}

func TestSniperPullbackDoesNotFlipShort(t *testing.T) {
	// A late pullback keeps the fast EMA ahead of the slow one while RSI
	// drops out of the bullish zone.
	bars := trendBars(60, 100, 2, 1000)
	for i := 0; i < 6; i++ {
		b := &bars[len(bars)-1-i]
		b.Close -= 10
		b.Low = b.Close - 1
		b.High = b.Close + 1
	}
	res := Evaluate(bars, ModeSniper)
	if res.Signal == model.SignalSell {
		t.Fatalf("pullback in an uptrend must not flip to SELL, got %s", res.Signal)
	}
}

func TestParseMode(t *testing.T) {
	for _, mode := range Modes() {
		got, err := ParseMode(string(mode))
		if err != nil || got != mode {
			t.Errorf("ParseMode(%q) = %v, %v", mode, got, err)
		}
	}
	if _, err := ParseMode("sniper"); err == nil {
		t.Error("lowercase mode accepted; modes are a closed uppercase set")
	}
	if _, err := ParseMode(""); err == nil {
		t.Error("empty mode accepted")
	}
}

func TestModeIntervals(t *testing.T) {
	tests := []struct {
		mode Mode
		want model.Interval
	}{
		{ModeSniper, model.Interval1m},
		{ModeMomentum, model.Interval5m},
		{ModeGoldenCross, model.Interval5m},
		{ModeSupertrend, model.Interval5m},
		{ModeVWAPMACD, model.Interval15m},
		{ModeVolumeShock, model.Interval5m},
	}
	for _, tt := range tests {
		if got := tt.mode.Interval(); got != tt.want {
			t.Errorf("%s interval = %s, want %s", tt.mode, got, tt.want)
		}
	}
}
