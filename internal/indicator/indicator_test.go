package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	s := NewSMA(3)
	s.Update(1)
	s.Update(2)
	if s.Ready() {
		t.Fatal("ready before the window filled")
	}
	s.Update(3)
	if !s.Ready() || !almost(s.Value(), 2) {
		t.Fatalf("SMA = %.4f ready=%v, want 2", s.Value(), s.Ready())
	}
	s.Update(7)
	if !almost(s.Value(), 4) {
		t.Fatalf("rolling SMA = %.4f, want 4", s.Value())
	}
}

func TestEMASeedsWithSMA(t *testing.T) {
	e := NewEMA(3)
	for _, p := range []float64{2, 4, 6} {
		e.Update(p)
	}
	if !e.Ready() || !almost(e.Value(), 4) {
		t.Fatalf("seed = %.4f, want the SMA 4", e.Value())
	}

	// Next update applies the standard smoothing, multiplier 2/(3+1) = 0.5.
	e.Update(8)
	if !almost(e.Value(), 6) {
		t.Fatalf("EMA = %.4f, want 6", e.Value())
	}
}

func TestEMASeriesShortNotReady(t *testing.T) {
	if _, ok := EMASeries([]float64{1, 2}, 3); ok {
		t.Fatal("series shorter than period reported ready")
	}
}

func TestRSIExtremes(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	v, ok := RSISeries(rising, 14)
	if !ok || v != 100 {
		t.Errorf("all-gain RSI = %.2f ok=%v, want 100", v, ok)
	}

	falling := make([]float64, 20)
	for i := range falling {
		falling[i] = 200 - float64(i)
	}
	v, ok = RSISeries(falling, 14)
	if !ok || v != 0 {
		t.Errorf("all-loss RSI = %.2f ok=%v, want 0", v, ok)
	}

	if _, ok := RSISeries(rising[:14], 14); ok {
		t.Error("RSI ready without period+1 values")
	}
}

func TestATRConstantRange(t *testing.T) {
	a := NewATR(5)
	for i := 0; i < 10; i++ {
		c := 100 + float64(i)
		a.Update(model.Bar{High: c + 1, Low: c - 1, Close: c})
	}
	if !a.Ready() {
		t.Fatal("ATR not ready after 10 bars")
	}
	// Each true range is max(2, |high-prevClose|=2, |low-prevClose|=0) = 2.
	if !almost(a.Value(), 2) {
		t.Fatalf("ATR = %.4f, want 2", a.Value())
	}
}

func TestMACDUptrendLineLeadsSignal(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 100 + 2*float64(i)
	}
	line, sig, ok := MACDSeries(values, 12, 26, 9)
	if !ok {
		t.Fatal("MACD not ready on 50 values")
	}
	if line <= 0 || line <= sig {
		t.Fatalf("line %.4f signal %.4f, want positive line above signal", line, sig)
	}
}

func TestVWAP(t *testing.T) {
	bar := func(h, l, c, vol float64) model.Bar {
		return model.Bar{TS: time.Now(), High: h, Low: l, Close: c, Volume: vol}
	}

	v := NewVWAP()
	v.Update(bar(12, 8, 10, 100))  // typical 10
	v.Update(bar(22, 18, 20, 300)) // typical 20
	if !v.Ready() {
		t.Fatal("VWAP not ready with volume present")
	}
	// (10*100 + 20*300) / 400 = 17.5
	if !almost(v.Value(), 17.5) {
		t.Fatalf("VWAP = %.4f, want 17.5", v.Value())
	}

	zero := NewVWAP()
	zero.Update(bar(12, 8, 10, 0))
	if zero.Ready() {
		t.Fatal("VWAP ready with zero total volume")
	}
}

func TestVolumeMean(t *testing.T) {
	bars := make([]model.Bar, 25)
	for i := range bars {
		bars[i] = model.Bar{Volume: 100}
	}
	bars[24].Volume = 600

	mean, ok := VolumeMean(bars, 20)
	if !ok {
		t.Fatal("VolumeMean not ok with enough bars")
	}
	// Trailing 20 bars: 19 at 100 plus the 600 spike.
	if !almost(mean, (19*100+600)/20.0) {
		t.Fatalf("mean = %.2f, want %.2f", mean, (19*100+600)/20.0)
	}

	if _, ok := VolumeMean(bars[:10], 20); ok {
		t.Fatal("VolumeMean ok with too few bars")
	}
}

func TestSupertrendTrendsAndFlips(t *testing.T) {
	st := NewSupertrend(5, 3)
	c := 100.0
	for i := 0; i < 20; i++ {
		c += 2
		st.Update(model.Bar{High: c + 1, Low: c - 1, Close: c})
	}
	if !st.Ready() || !st.Uptrend() {
		t.Fatalf("ready=%v uptrend=%v after a sustained rise", st.Ready(), st.Uptrend())
	}
	if st.Value() >= c {
		t.Fatalf("line %.2f not below price %.2f in an uptrend", st.Value(), c)
	}

	for i := 0; i < 20; i++ {
		c -= 4
		st.Update(model.Bar{High: c + 1, Low: c - 1, Close: c})
	}
	if st.Uptrend() {
		t.Fatal("no flip after a sustained fall")
	}
	if st.Value() <= c {
		t.Fatalf("line %.2f not above price %.2f in a downtrend", st.Value(), c)
	}
}
