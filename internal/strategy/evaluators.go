package strategy

import (
	"fmt"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/indicator"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
)

// evalSniper buys when the fast EMA leads the slow EMA with RSI confirming
// strength, sells on the mirrored weakness, and holds in between.
func evalSniper(bars []model.Bar) Result {
	closes := model.Closes(bars)
	fast, okF := indicator.EMASeries(closes, emaFastPeriod)
	slow, okS := indicator.EMASeries(closes, emaSlowPeriod)
	rsi, okR := indicator.RSISeries(closes, rsiPeriod)
	if !okF || !okS || !okR {
		return hold(bars)
	}

	r := hold(bars)
	switch {
	case fast > slow && rsi > rsiBullThreshold:
		r.Signal = model.SignalBuy
		r.Reason = fmt.Sprintf("EMA%d>EMA%d RSI %.1f", emaFastPeriod, emaSlowPeriod, rsi)
	case fast < slow && rsi < rsiBearThreshold:
		r.Signal = model.SignalSell
		r.Reason = fmt.Sprintf("EMA%d<EMA%d RSI %.1f", emaFastPeriod, emaSlowPeriod, rsi)
	}
	return r
}

// evalMomentum is always directional: long above the fast EMA, short below.
// Meant for short holding periods.
func evalMomentum(bars []model.Bar) Result {
	closes := model.Closes(bars)
	fast, ok := indicator.EMASeries(closes, emaFastPeriod)
	if !ok {
		return hold(bars)
	}

	r := hold(bars)
	if r.LastClose > fast {
		r.Signal = model.SignalBuy
		r.Reason = fmt.Sprintf("close %.2f above EMA%d %.2f", r.LastClose, emaFastPeriod, fast)
	} else {
		r.Signal = model.SignalSell
		r.Reason = fmt.Sprintf("close %.2f below EMA%d %.2f", r.LastClose, emaFastPeriod, fast)
	}
	return r
}

// evalGoldenCross is the plain fast/slow average relation: golden side buys,
// death side sells.
func evalGoldenCross(bars []model.Bar) Result {
	closes := model.Closes(bars)
	fast, okF := indicator.EMASeries(closes, emaFastPeriod)
	slow, okS := indicator.EMASeries(closes, emaSlowPeriod)
	if !okF || !okS {
		return hold(bars)
	}

	r := hold(bars)
	if fast > slow {
		r.Signal = model.SignalBuy
		r.Reason = "fast EMA above slow EMA"
	} else {
		r.Signal = model.SignalSell
		r.Reason = "fast EMA below slow EMA"
	}
	return r
}

// evalSupertrend follows the ATR trend band: long while the close is above
// the band line, short below. Indeterminate inputs hold.
func evalSupertrend(bars []model.Bar) Result {
	line, _, ok := indicator.SupertrendSeries(bars, supertrendPeriod, supertrendMultiplier)
	if !ok {
		return hold(bars)
	}

	r := hold(bars)
	if r.LastClose > line {
		r.Signal = model.SignalBuy
		r.Reason = fmt.Sprintf("close above supertrend %.2f", line)
	} else {
		r.Signal = model.SignalSell
		r.Reason = fmt.Sprintf("close below supertrend %.2f", line)
	}
	return r
}

// evalVWAPMACD wants both the session VWAP and the MACD signal relation to
// agree before taking a side.
func evalVWAPMACD(bars []model.Bar) Result {
	closes := model.Closes(bars)
	vwap, okV := indicator.VWAPSeries(bars)
	line, sig, okM := indicator.MACDSeries(closes, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	if !okV || !okM {
		return hold(bars)
	}

	r := hold(bars)
	switch {
	case r.LastClose > vwap && line > sig:
		r.Signal = model.SignalBuy
		r.Reason = fmt.Sprintf("above VWAP %.2f, MACD above signal", vwap)
	case r.LastClose < vwap && line < sig:
		r.Signal = model.SignalSell
		r.Reason = fmt.Sprintf("below VWAP %.2f, MACD below signal", vwap)
	}
	return r
}

// evalVolumeShock reacts only to a volume spike at twice the trailing
// average; direction follows whether the bar closed above or below its open.
func evalVolumeShock(bars []model.Bar) Result {
	mean, ok := indicator.VolumeMean(bars, volumeWindow)
	if !ok {
		return hold(bars)
	}

	last := bars[len(bars)-1]
	r := hold(bars)
	if last.Volume <= mean*volumeShockRatio {
		return r
	}
	if last.Close > last.Open {
		r.Signal = model.SignalBuy
		r.Reason = fmt.Sprintf("volume %.0f vs avg %.0f, bullish bar", last.Volume, mean)
	} else {
		r.Signal = model.SignalSell
		r.Reason = fmt.Sprintf("volume %.0f vs avg %.0f, bearish bar", last.Volume, mean)
	}
	return r
}
