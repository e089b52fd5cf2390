package indicator

// MACD calculates the Moving Average Convergence/Divergence line and its
// signal line (EMA of the MACD line).
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA
}

// NewMACD creates a MACD with the given fast, slow and signal periods
// (typically 12, 26, 9).
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	return &MACD{
		fast:   NewEMA(fastPeriod),
		slow:   NewEMA(slowPeriod),
		signal: NewEMA(signalPeriod),
	}
}

func (m *MACD) Update(price float64) {
	m.fast.Update(price)
	m.slow.Update(price)
	if m.fast.Ready() && m.slow.Ready() {
		m.signal.Update(m.fast.Value() - m.slow.Value())
	}
}

// Line returns the MACD line (fast EMA − slow EMA).
func (m *MACD) Line() float64 { return m.fast.Value() - m.slow.Value() }

// Signal returns the signal line.
func (m *MACD) Signal() float64 { return m.signal.Value() }

func (m *MACD) Ready() bool { return m.signal.Ready() }

// MACDSeries runs a MACD over the full series and returns the final line and
// signal values. ok is false when the series is too short.
func MACDSeries(values []float64, fast, slow, signal int) (line, sig float64, ok bool) {
	m := NewMACD(fast, slow, signal)
	for _, p := range values {
		m.Update(p)
	}
	return m.Line(), m.Signal(), m.Ready()
}
