package indicator

// SMA calculates a Simple Moving Average over a rolling window using a
// preallocated circular buffer.
type SMA struct {
	period  int
	buf     []float64
	idx     int
	count   int
	sum     float64
	current float64
}

// NewSMA creates an SMA indicator with the given period.
func NewSMA(period int) *SMA {
	return &SMA{
		period: period,
		buf:    make([]float64, period),
	}
}

func (s *SMA) Update(price float64) {
	if s.count >= s.period {
		// Subtract the oldest value being overwritten
		s.sum -= s.buf[s.idx]
	}

	s.buf[s.idx] = price
	s.sum += price
	s.idx = (s.idx + 1) % s.period
	s.count++

	if s.count >= s.period {
		s.current = s.sum / float64(s.period)
	}
}

func (s *SMA) Value() float64 { return s.current }
func (s *SMA) Ready() bool    { return s.count >= s.period }

// SMASeries runs an SMA over the full series and returns the final value.
// ok is false when the series is shorter than the period.
func SMASeries(values []float64, period int) (v float64, ok bool) {
	s := NewSMA(period)
	for _, p := range values {
		s.Update(p)
	}
	return s.Value(), s.Ready()
}
