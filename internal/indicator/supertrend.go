package indicator

import "github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"

// Supertrend computes an ATR-banded trend line. The line sits below price
// in an uptrend and above it in a downtrend; the trend flips when the close
// crosses the carried band.
type Supertrend struct {
	atr        *ATR
	multiplier float64

	upper    float64 // final upper band
	lower    float64 // final lower band
	line     float64
	uptrend  bool
	prevBar  model.Bar
	haveBand bool
}

// NewSupertrend creates a Supertrend with the given ATR period and band
// multiplier (typically 10 and 3).
func NewSupertrend(period int, multiplier float64) *Supertrend {
	return &Supertrend{
		atr:        NewATR(period),
		multiplier: multiplier,
	}
}

func (s *Supertrend) Update(bar model.Bar) {
	s.atr.Update(bar)
	if !s.atr.Ready() {
		s.prevBar = bar
		return
	}

	mid := (bar.High + bar.Low) / 2
	band := s.multiplier * s.atr.Value()
	basicUpper := mid + band
	basicLower := mid - band

	if !s.haveBand {
		s.upper = basicUpper
		s.lower = basicLower
		s.uptrend = bar.Close > mid
		s.haveBand = true
	} else {
		// Bands only ratchet in the trend direction until price breaks them.
		if basicUpper < s.upper || s.prevBar.Close > s.upper {
			s.upper = basicUpper
		}
		if basicLower > s.lower || s.prevBar.Close < s.lower {
			s.lower = basicLower
		}

		if s.uptrend && bar.Close < s.lower {
			s.uptrend = false
			s.upper = basicUpper
		} else if !s.uptrend && bar.Close > s.upper {
			s.uptrend = true
			s.lower = basicLower
		}
	}

	if s.uptrend {
		s.line = s.lower
	} else {
		s.line = s.upper
	}
	s.prevBar = bar
}

// Value returns the current trend line level.
func (s *Supertrend) Value() float64 { return s.line }

// Uptrend reports the current trend direction.
func (s *Supertrend) Uptrend() bool { return s.uptrend }

func (s *Supertrend) Ready() bool { return s.haveBand }

// SupertrendSeries runs a Supertrend over the full bar series and returns
// the final line level. ok is false when the series is too short.
func SupertrendSeries(bars []model.Bar, period int, multiplier float64) (line float64, uptrend, ok bool) {
	st := NewSupertrend(period, multiplier)
	for _, b := range bars {
		st.Update(b)
	}
	return st.Value(), st.Uptrend(), st.Ready()
}
