// Package strategy turns a bar sequence into a directional trading signal.
//
// Each strategy mode is a pure function of the bars it is given: no hidden
// state, no side effects. A sequence shorter than the mode's indicator
// warm-up always evaluates to HOLD, never to a false signal and never to an
// error. Modes form a closed set registered in one place; there is no
// name-based dispatch.
package strategy

import (
	"fmt"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
)

// Mode identifies a strategy variant.
type Mode string

const (
	ModeSniper      Mode = "SNIPER"       // EMA 9/21 crossover + RSI filter, 1m
	ModeMomentum    Mode = "MOMENTUM"     // close vs EMA 9, 5m, always directional
	ModeGoldenCross Mode = "GOLDEN_CROSS" // EMA 9 vs EMA 21, 5m
	ModeSupertrend  Mode = "SUPERTREND"   // ATR trend band 10/3, 5m
	ModeVWAPMACD    Mode = "VWAP_MACD"    // close vs VWAP + MACD 12/26/9, 15m
	ModeVolumeShock Mode = "VOLUME_SHOCK" // 20-bar volume average, 2x shock, 5m
)

// Fixed design constants shared by the evaluators. Deliberately not
// operator-tunable.
const (
	emaFastPeriod = 9
	emaSlowPeriod = 21

	rsiPeriod        = 14
	rsiBullThreshold = 55
	rsiBearThreshold = 45

	supertrendPeriod     = 10
	supertrendMultiplier = 3

	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9

	volumeWindow     = 20
	volumeShockRatio = 2
)

// Result is the outcome of evaluating one bar sequence.
type Result struct {
	Signal    model.Signal
	LastClose float64
	Reason    string
}

// Evaluator is a pure evaluation function for one strategy mode.
type Evaluator func(bars []model.Bar) Result

// entry describes one registered mode.
type entry struct {
	eval     Evaluator
	interval model.Interval
	minBars  int
}

// registry is the single registration point for all modes.
var registry = map[Mode]entry{
	ModeSniper:      {evalSniper, model.Interval1m, emaSlowPeriod},
	ModeMomentum:    {evalMomentum, model.Interval5m, emaFastPeriod},
	ModeGoldenCross: {evalGoldenCross, model.Interval5m, emaSlowPeriod},
	ModeSupertrend:  {evalSupertrend, model.Interval5m, supertrendPeriod + 1},
	ModeVWAPMACD:    {evalVWAPMACD, model.Interval15m, macdSlowPeriod + macdSignalPeriod},
	ModeVolumeShock: {evalVolumeShock, model.Interval5m, volumeWindow},
}

// Modes returns all registered modes, for operator selection surfaces.
func Modes() []Mode {
	return []Mode{
		ModeSniper, ModeMomentum, ModeGoldenCross,
		ModeSupertrend, ModeVWAPMACD, ModeVolumeShock,
	}
}

// ParseMode validates an operator-supplied mode string.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if _, ok := registry[m]; !ok {
		return "", fmt.Errorf("unknown strategy mode %q", s)
	}
	return m, nil
}

// Interval returns the bar sampling interval the mode evaluates on.
func (m Mode) Interval() model.Interval {
	if sp, ok := registry[m]; ok {
		return sp.interval
	}
	return model.Interval5m
}

// MinBars returns the shortest bar sequence the mode can evaluate without
// holding.
func (m Mode) MinBars() int {
	if sp, ok := registry[m]; ok {
		return sp.minBars
	}
	return 0
}

// Evaluate runs the mode's evaluator over bars. Unknown modes and sequences
// shorter than the mode's warm-up evaluate to HOLD.
func Evaluate(bars []model.Bar, mode Mode) Result {
	sp, ok := registry[mode]
	if !ok || len(bars) < sp.minBars {
		return hold(bars)
	}
	return sp.eval(bars)
}

func hold(bars []model.Bar) Result {
	r := Result{Signal: model.SignalHold}
	if len(bars) > 0 {
		r.LastClose = bars[len(bars)-1].Close
	}
	return r
}
