package model

import "strings"

// Signal is a directional trading decision for one instrument at one point
// in time. Index entries carry the side-qualified option form.
type Signal string

const (
	SignalHold    Signal = "HOLD"
	SignalBuy     Signal = "BUY"
	SignalSell    Signal = "SELL"
	SignalBuyCall Signal = "BUY_CALL"
	SignalBuyPut  Signal = "BUY_PUT"
)

// IsBuy reports whether s is an entry-qualifying buy variant.
func (s Signal) IsBuy() bool {
	return strings.HasPrefix(string(s), "BUY")
}

// OptionSide maps a directional signal to the option side traded for index
// entries: calls ride buy signals, puts ride sell signals.
func (s Signal) OptionSide() OptionType {
	if s.IsBuy() {
		return OptionCall
	}
	return OptionPut
}

// ScanRecord is the per-cycle, per-instrument scanner output. Ephemeral:
// recomputed every cycle and never merged with prior cycles.
type ScanRecord struct {
	Label  string     `json:"label"` // tradable label shown to the operator
	Symbol string     `json:"symbol"`
	Class  AssetClass `json:"class"`
	Signal Signal     `json:"signal"`

	// Price is the reference price used for entries and mark-to-market.
	// When PremiumEstimated is set it is a crude option-premium placeholder
	// (underlying close scaled by a fixed factor), not a real quote.
	Price            float64 `json:"price"`
	PremiumEstimated bool    `json:"premium_estimated,omitempty"`

	// Contract is nil when no tradable scrip resolved this cycle.
	Contract *Contract `json:"contract,omitempty"`

	// PctChange is the move from the window's opening price to the latest
	// close, for informational display only.
	PctChange float64 `json:"pct_change"`
}
