// Package engine owns the book of open positions and applies the risk rules
// to it: mark-to-market, stop-loss and target exits, the daily-loss circuit
// breaker, the market-hours gate and new entries. The book and the realized
// daily P&L counter are owned exclusively by the Engine; everything else
// reads or requests changes through its methods.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/auditlog"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/markethours"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/metrics"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/notification"
)

const orderTimeout = 10 * time.Second

// DefaultStartBalance is the wallet balance the engine starts with unless
// the operator configures one.
const DefaultStartBalance = 100000.0

// RiskConfig holds the operator-tunable risk parameters. Read at the start
// of every cycle; changes take effect on the next cycle.
type RiskConfig struct {
	StopLossPct  float64 `json:"stop_loss_pct"`  // close at a loss at −this %
	TargetPct    float64 `json:"target_pct"`     // close at a gain at +this %
	MaxDailyLoss float64 `json:"max_daily_loss"` // absolute currency ceiling
	Qty          int64   `json:"qty"`            // default order quantity
	LiveTrading  bool    `json:"live_trading"`
}

// Validate rejects configurations the engine must never run with.
func (c RiskConfig) Validate() error {
	if c.StopLossPct <= 0 {
		return errors.New("stop-loss percent must be positive")
	}
	if c.TargetPct <= 0 {
		return errors.New("target percent must be positive")
	}
	if c.MaxDailyLoss <= 0 {
		return errors.New("max daily loss must be positive")
	}
	if c.Qty <= 0 {
		return errors.New("order quantity must be positive")
	}
	return nil
}

// DefaultRiskConfig returns the risk parameters the bot starts with.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		StopLossPct:  1.0,
		TargetPct:    2.0,
		MaxDailyLoss: 5000,
		Qty:          50,
	}
}

// OrderRouter places real broker orders for live entries.
type OrderRouter interface {
	PlaceMarketOrder(ctx context.Context, label string, contract model.Contract, qty int64) (orderID string, err error)
}

// TradeJournal persists entries and exits. Implementations must be
// non-fatal: a journal error never blocks a book mutation.
type TradeJournal interface {
	RecordEntry(pos model.Position) error
	RecordExit(pos model.Position, reason model.CloseReason) error
}

// Engine is the position risk engine.
type Engine struct {
	mu           sync.Mutex
	positions    map[string]*model.Position // open book, keyed by label
	dailyPnL     float64                    // realized, cumulative for the run
	startBalance float64                    // wallet at the start of the run
	active       bool
	cfg          RiskConfig

	router   OrderRouter           // nil = paper only
	journal  TradeJournal          // nil-safe
	notifier notification.Notifier // nil-safe
	audit    *auditlog.Log
	log      *slog.Logger
	prom     *metrics.Metrics // nil-safe
	now      func() time.Time
}

// New creates an Engine with the given collaborators. router, journal,
// notifier and prom may be nil.
func New(cfg RiskConfig, router OrderRouter, journal TradeJournal, notifier notification.Notifier,
	audit *auditlog.Log, log *slog.Logger, prom *metrics.Metrics) (*Engine, error) {

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("risk config: %w", err)
	}
	return &Engine{
		positions:    make(map[string]*model.Position),
		startBalance: DefaultStartBalance,
		cfg:          cfg,
		router:       router,
		journal:      journal,
		notifier:     notifier,
		audit:        audit,
		log:          log,
		prom:         prom,
		now:          time.Now,
	}, nil
}

// Cycle runs one risk pass over the latest scan: mark-to-market, exits,
// circuit breaker, then entries. The ordering is fixed: exits always see
// fresh marks, and entries never run on the cycle that trips the breaker.
func (e *Engine) Cycle(ctx context.Context, records []model.ScanRecord) {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	cfg := e.cfg

	e.markToMarket(records)
	e.evaluateExits(cfg)
	tripped := e.checkBreaker(cfg)
	pnl := e.dailyPnL
	var candidates []model.ScanRecord
	if !tripped {
		candidates = e.entryCandidates(records, cfg)
	}
	e.mu.Unlock()

	// The notifier can block on the network, so the alert goes out after the
	// lock is released. Panic and the state readers must never wait on it.
	if tripped {
		e.notify(notification.AlertCritical, "Circuit breaker tripped",
			fmt.Sprintf("Daily P&L %.2f breached max daily loss %.2f. Bot deactivated; open positions kept.",
				pnl, cfg.MaxDailyLoss))
	}
	for _, rec := range candidates {
		e.openPosition(ctx, rec, cfg)
	}
}

// markToMarket refreshes every open position from the scan record with the
// matching label. Positions without a record this cycle keep their last
// mark. Caller holds e.mu.
func (e *Engine) markToMarket(records []model.ScanRecord) {
	for _, rec := range records {
		pos, ok := e.positions[rec.Label]
		if !ok {
			continue
		}
		pos.Current = rec.Price
		pos.PnL = (pos.Current - pos.Entry) * float64(pos.Qty)
	}
}

// evaluateExits closes positions breaching stop-loss or target. The loss
// check runs first so a malformed configuration can never turn a breach
// into a gain exit. Caller holds e.mu.
func (e *Engine) evaluateExits(cfg RiskConfig) {
	for label, pos := range e.positions {
		pct := pos.PctMove()
		switch {
		case pct <= -cfg.StopLossPct:
			e.closeLocked(label, model.CloseStopLoss)
		case pct >= cfg.TargetPct:
			e.closeLocked(label, model.CloseTarget)
		}
	}
}

// checkBreaker deactivates the bot once cumulative realized loss breaches
// the ceiling. Open positions stay open; only new activity halts. Caller
// holds e.mu; the caller sends the operator alert once the lock is released.
func (e *Engine) checkBreaker(cfg RiskConfig) bool {
	if e.dailyPnL > -cfg.MaxDailyLoss {
		return false
	}
	e.active = false
	e.audit.Record(auditlog.SeverityAlert,
		"MAX DAILY LOSS BREACHED: %.2f <= -%.2f, trading halted", e.dailyPnL, cfg.MaxDailyLoss)
	e.log.Error("circuit breaker tripped", "daily_pnl", e.dailyPnL, "max_daily_loss", cfg.MaxDailyLoss)
	if e.prom != nil {
		e.prom.BreakerTrips.Inc()
		e.prom.BotActive.Set(0)
	}
	return true
}

// entryCandidates selects scan records eligible to open a position this
// cycle: a buy-variant signal, no open position for the label, and, when
// live trading is on, an open trading session for the asset class. Caller
// holds e.mu.
func (e *Engine) entryCandidates(records []model.ScanRecord, cfg RiskConfig) []model.ScanRecord {
	var out []model.ScanRecord
	now := e.now()
	for _, rec := range records {
		if !rec.Signal.IsBuy() {
			continue
		}
		if _, open := e.positions[rec.Label]; open {
			continue
		}
		if cfg.LiveTrading && !markethours.SessionOpen(rec.Class, now) {
			e.log.Info("session closed, entry skipped", "label", rec.Label, "class", rec.Class)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// openPosition opens one position for a qualifying record. Live entries
// route a real order first; a transport failure means no position, so the
// book never paper-tracks a trade that did not execute.
func (e *Engine) openPosition(ctx context.Context, rec model.ScanRecord, cfg RiskConfig) {
	mode := model.ExecSimulated
	orderID := ""

	if cfg.LiveTrading && rec.Contract != nil && e.router != nil {
		octx, cancel := context.WithTimeout(ctx, orderTimeout)
		id, err := e.router.PlaceMarketOrder(octx, rec.Label, *rec.Contract, cfg.Qty)
		cancel()
		if err != nil {
			e.audit.Record(auditlog.SeverityError, "LIVE order failed for %s: %v", rec.Label, err)
			e.log.Error("live order failed", "label", rec.Label, "err", err)
			if e.prom != nil {
				e.prom.OrdersTotal.WithLabelValues(string(model.ExecFailed), "rejected").Inc()
			}
			return
		}
		mode = model.ExecLive
		orderID = id
	}

	pos := &model.Position{
		Label:    rec.Label,
		Entry:    rec.Price,
		Current:  rec.Price,
		Qty:      cfg.Qty,
		Mode:     mode,
		OrderID:  orderID,
		OpenedAt: e.now(),
	}

	e.mu.Lock()
	if !e.active {
		// Panic or breaker raced the order; do not grow the book.
		e.mu.Unlock()
		e.log.Warn("entry discarded, engine inactive", "label", rec.Label)
		return
	}
	if _, open := e.positions[rec.Label]; open {
		e.mu.Unlock()
		return
	}
	e.positions[rec.Label] = pos
	count := len(e.positions)
	e.mu.Unlock()

	e.audit.Record(auditlog.SeverityInfo, "Entry: %s qty %d @ %.2f [%s]", pos.Label, pos.Qty, pos.Entry, pos.Mode)
	e.log.Info("position opened", "label", pos.Label, "entry", pos.Entry, "qty", pos.Qty, "mode", pos.Mode)
	if e.prom != nil {
		e.prom.PositionsOpened.Inc()
		e.prom.OrdersTotal.WithLabelValues(string(mode), "filled").Inc()
		e.prom.OpenPositions.Set(float64(count))
	}
	if e.journal != nil {
		if err := e.journal.RecordEntry(*pos); err != nil {
			e.log.Warn("journal entry write failed", "label", pos.Label, "err", err)
		}
	}
}

// closeLocked removes a position from the open set and folds its P&L into
// the daily total. Caller holds e.mu.
func (e *Engine) closeLocked(label string, reason model.CloseReason) {
	pos, ok := e.positions[label]
	if !ok {
		return
	}
	delete(e.positions, label)
	e.dailyPnL += pos.PnL

	e.audit.Record(auditlog.SeverityInfo, "Exit %s [%s] PnL: %.2f", label, reason, pos.PnL)
	e.log.Info("position closed", "label", label, "reason", reason, "pnl", pos.PnL, "daily_pnl", e.dailyPnL)
	if e.prom != nil {
		e.prom.PositionsClosed.WithLabelValues(string(reason)).Inc()
		e.prom.OpenPositions.Set(float64(len(e.positions)))
		e.prom.DailyPnL.Set(e.dailyPnL)
	}
	if e.journal != nil {
		if err := e.journal.RecordExit(*pos, reason); err != nil {
			e.log.Warn("journal exit write failed", "label", label, "err", err)
		}
	}
}

// Panic force-closes every open position at its last mark and deactivates
// the engine. Safe to call at any time, including mid-cycle.
func (e *Engine) Panic() {
	e.mu.Lock()
	labels := make([]string, 0, len(e.positions))
	for label := range e.positions {
		labels = append(labels, label)
	}
	for _, label := range labels {
		e.closeLocked(label, model.ClosePanic)
	}
	e.active = false
	pnl := e.dailyPnL
	e.mu.Unlock()

	e.audit.Record(auditlog.SeverityAlert, "PANIC EXIT: flattened %d positions, daily PnL %.2f", len(labels), pnl)
	e.log.Warn("panic exit", "closed", len(labels), "daily_pnl", pnl)
	if e.prom != nil {
		e.prom.BotActive.Set(0)
	}
	e.notify(notification.AlertCritical, "Panic exit",
		fmt.Sprintf("Flattened %d positions. Daily P&L: %.2f. Bot deactivated.", len(labels), pnl))
}

func (e *Engine) notify(level notification.AlertLevel, title, msg string) {
	if e.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.notifier.Send(ctx, notification.Alert{Level: level, Title: title, Message: msg}); err != nil {
		e.log.Warn("notification failed", "title", title, "err", err)
	}
}
