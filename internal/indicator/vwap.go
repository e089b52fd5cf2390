package indicator

import "github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"

// VWAP calculates the Volume-Weighted Average Price over the bars it has
// seen, using the typical price (H+L+C)/3 per bar.
type VWAP struct {
	pvSum  float64
	volSum float64
	count  int
}

// NewVWAP creates a VWAP accumulator.
func NewVWAP() *VWAP {
	return &VWAP{}
}

func (v *VWAP) Update(bar model.Bar) {
	typical := (bar.High + bar.Low + bar.Close) / 3
	v.pvSum += typical * bar.Volume
	v.volSum += bar.Volume
	v.count++
}

func (v *VWAP) Value() float64 {
	if v.volSum == 0 {
		return 0
	}
	return v.pvSum / v.volSum
}

// Ready reports whether any volume has been accumulated. Index series with
// zero reported volume never become ready.
func (v *VWAP) Ready() bool { return v.count > 0 && v.volSum > 0 }

// VWAPSeries runs a VWAP over the full bar series.
func VWAPSeries(bars []model.Bar) (v float64, ok bool) {
	w := NewVWAP()
	for _, b := range bars {
		w.Update(b)
	}
	return w.Value(), w.Ready()
}

// VolumeMean returns the mean volume of the trailing window bars. ok is
// false when fewer than window bars are available.
func VolumeMean(bars []model.Bar, window int) (mean float64, ok bool) {
	if len(bars) < window || window <= 0 {
		return 0, false
	}
	var sum float64
	for _, b := range bars[len(bars)-window:] {
		sum += b.Volume
	}
	return sum / float64(window), true
}
