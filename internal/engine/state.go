package engine

import (
	"sort"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
)

// Activate lets the engine take cycles again. The daily P&L counter is not
// reset: after a breaker trip the operator must raise the ceiling (or
// accept an immediate re-trip).
func (e *Engine) Activate() {
	e.mu.Lock()
	e.active = true
	e.mu.Unlock()
	if e.prom != nil {
		e.prom.BotActive.Set(1)
	}
}

// Deactivate stops future cycles. Open positions are untouched.
func (e *Engine) Deactivate() {
	e.mu.Lock()
	e.active = false
	e.mu.Unlock()
	if e.prom != nil {
		e.prom.BotActive.Set(0)
	}
}

// Active reports whether the engine is taking cycles.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// DailyPnL returns the cumulative realized P&L for this run.
func (e *Engine) DailyPnL() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dailyPnL
}

// Risk returns the current risk configuration.
func (e *Engine) Risk() RiskConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetRisk replaces the risk configuration for the next cycle. Invalid
// configurations are rejected at this boundary and never reinterpreted.
func (e *Engine) SetRisk(cfg RiskConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	return nil
}

// SetStartBalance sets the wallet balance the run started with.
// Non-positive values are ignored and the default stands.
func (e *Engine) SetStartBalance(v float64) {
	if v <= 0 {
		return
	}
	e.mu.Lock()
	e.startBalance = v
	e.mu.Unlock()
}

// SetLiveTrading toggles live order routing without touching the other risk
// parameters.
func (e *Engine) SetLiveTrading(on bool) {
	e.mu.Lock()
	e.cfg.LiveTrading = on
	e.mu.Unlock()
}

// Positions returns a stable-ordered snapshot of the open book.
func (e *Engine) Positions() []model.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Position, 0, len(e.positions))
	for _, p := range e.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Stats summarizes the book for the presentation layer.
type Stats struct {
	Active        bool    `json:"active"`
	OpenPositions int     `json:"open_positions"`
	DailyPnL      float64 `json:"daily_pnl"`      // realized
	UnrealizedPnL float64 `json:"unrealized_pnl"` // sum over the open book
	Balance       float64 `json:"balance"`        // start balance plus realized P&L
}

// GetStats returns the current book summary.
func (e *Engine) GetStats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	var unrealized float64
	for _, p := range e.positions {
		unrealized += p.PnL
	}
	return Stats{
		Active:        e.active,
		OpenPositions: len(e.positions),
		DailyPnL:      e.dailyPnL,
		UnrealizedPnL: unrealized,
		Balance:       e.startBalance + e.dailyPnL,
	}
}
