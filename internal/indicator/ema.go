// Package indicator provides the price-derived indicators the strategy
// engine evaluates: moving averages, RSI, MACD, VWAP, ATR and a Supertrend
// band. All indicators are streaming: Update is O(1) per bar, and every
// indicator reports Ready only once its warm-up window is satisfied.
package indicator

// EMA calculates an Exponential Moving Average seeded with an SMA over the
// first period values.
type EMA struct {
	period     int
	multiplier float64
	current    float64
	count      int
	sum        float64
}

// NewEMA creates an EMA indicator with the given period.
func NewEMA(period int) *EMA {
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *EMA) Update(price float64) {
	e.count++

	if e.count <= e.period {
		// Accumulate for initial SMA seed
		e.sum += price
		if e.count == e.period {
			e.current = e.sum / float64(e.period)
		}
		return
	}

	e.current = (price * e.multiplier) + (e.current * (1 - e.multiplier))
}

func (e *EMA) Value() float64 { return e.current }
func (e *EMA) Ready() bool    { return e.count >= e.period }

// EMASeries runs an EMA over the full series and returns the final value.
// ok is false when the series is shorter than the period.
func EMASeries(values []float64, period int) (v float64, ok bool) {
	e := NewEMA(period)
	for _, p := range values {
		e.Update(p)
	}
	return e.Value(), e.Ready()
}
