package indicator

import "github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"

// ATR calculates the Average True Range with Wilder's smoothing.
type ATR struct {
	period    int
	count     int
	prevClose float64
	current   float64
	sum       float64
}

// NewATR creates an ATR indicator with the given period.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Update(bar model.Bar) {
	a.count++

	tr := bar.High - bar.Low
	if a.count > 1 {
		if d := abs(bar.High - a.prevClose); d > tr {
			tr = d
		}
		if d := abs(bar.Low - a.prevClose); d > tr {
			tr = d
		}
	}
	a.prevClose = bar.Close

	if a.count <= a.period {
		a.sum += tr
		if a.count == a.period {
			a.current = a.sum / float64(a.period)
		}
		return
	}

	p := float64(a.period)
	a.current = (a.current*(p-1) + tr) / p
}

func (a *ATR) Value() float64 { return a.current }
func (a *ATR) Ready() bool    { return a.count >= a.period }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
