package model

import "time"

// ExecMode records how a position entry was executed.
type ExecMode string

const (
	ExecSimulated ExecMode = "SIMULATED"
	ExecLive      ExecMode = "LIVE"
	ExecFailed    ExecMode = "FAILED" // order attempt only; never becomes a position
)

// CloseReason explains why a position left the open set.
type CloseReason string

const (
	CloseStopLoss CloseReason = "STOP_LOSS"
	CloseTarget   CloseReason = "TARGET"
	ClosePanic    CloseReason = "PANIC"
)

// Position is a tracked open trade. At most one open position exists per
// label at any time. Once closed it is removed from the book and never
// reopened; a later buy signal for the same label creates a new Position.
type Position struct {
	Label    string    `json:"label"`
	Entry    float64   `json:"entry"`
	Current  float64   `json:"current"`
	Qty      int64     `json:"qty"`
	PnL      float64   `json:"pnl"` // running, recomputed every mark-to-market
	Mode     ExecMode  `json:"mode"`
	OrderID  string    `json:"order_id,omitempty"` // broker order id for LIVE entries
	OpenedAt time.Time `json:"opened_at"`
}

// PctMove returns the percent move of the current mark from the entry price.
func (p *Position) PctMove() float64 {
	if p.Entry == 0 {
		return 0
	}
	return (p.Current - p.Entry) / p.Entry * 100
}
