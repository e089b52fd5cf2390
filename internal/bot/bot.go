// Package bot owns the control loop and the operator surface: start/stop,
// strategy selection, watchlist edits, risk updates and the panic switch.
// Everything the loop needs hangs off the Bot so there is no package-level
// state.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/auditlog"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/engine"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/metrics"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/scanner"
	redisstore "github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/store/redis"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/strategy"
)

const cycleDelay = 5 * time.Second

// Bot drives scan/risk cycles while active and exposes the operator
// controls. All methods are safe for concurrent use.
type Bot struct {
	scanner *scanner.Scanner
	engine  *engine.Engine
	store   *redisstore.Writer // nil-safe
	audit   *auditlog.Log
	log     *slog.Logger
	prom    *metrics.Metrics
	health  *metrics.HealthStatus

	mu        sync.RWMutex
	mode      strategy.Mode
	watchlist []model.Instrument
	lastScan  []model.ScanRecord
}

// New assembles a Bot with the default watchlist and strategy.
func New(sc *scanner.Scanner, eng *engine.Engine, store *redisstore.Writer,
	audit *auditlog.Log, log *slog.Logger, prom *metrics.Metrics, health *metrics.HealthStatus) *Bot {

	return &Bot{
		scanner:   sc,
		engine:    eng,
		store:     store,
		audit:     audit,
		log:       log,
		prom:      prom,
		health:    health,
		mode:      strategy.ModeSniper,
		watchlist: model.DefaultWatchlist(),
	}
}

// Run executes the control loop until ctx is cancelled. Cycles only run
// while the engine is active; an inactive bot just waits for the next tick.
func (b *Bot) Run(ctx context.Context) {
	ticker := time.NewTicker(cycleDelay)
	defer ticker.Stop()

	for {
		if b.engine.Active() {
			b.cycle(ctx)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (b *Bot) cycle(ctx context.Context) {
	start := time.Now()

	b.mu.RLock()
	mode := b.mode
	watchlist := append([]model.Instrument(nil), b.watchlist...)
	b.mu.RUnlock()

	records := b.scanner.Scan(ctx, watchlist, mode)
	b.engine.Cycle(ctx, records)

	b.mu.Lock()
	b.lastScan = records
	b.mu.Unlock()

	if b.store != nil {
		b.store.SaveScan(ctx, records)
		b.store.SaveState(ctx, b.engine.GetStats(), b.engine.Positions())
	}
	if b.prom != nil {
		b.prom.CycleDur.Observe(time.Since(start).Seconds())
	}
	if b.health != nil {
		b.health.MarkCycle()
	}
}

// Start activates trading.
func (b *Bot) Start() {
	b.engine.Activate()
	if b.prom != nil {
		b.prom.BotActive.Set(1)
	}
	b.audit.Record(auditlog.SeverityInfo, "Bot started (strategy: %s)", b.Mode())
	b.log.Info("bot started", "strategy", b.Mode())
}

// Stop deactivates trading. Open positions stay on the book and keep being
// marked once the bot restarts.
func (b *Bot) Stop() {
	b.engine.Deactivate()
	if b.prom != nil {
		b.prom.BotActive.Set(0)
	}
	b.audit.Record(auditlog.SeverityInfo, "Bot stopped")
	b.log.Info("bot stopped")
}

// Active reports whether cycles are running.
func (b *Bot) Active() bool { return b.engine.Active() }

// Panic force-closes every open position and stops trading.
func (b *Bot) Panic() {
	b.engine.Panic()
	if b.prom != nil {
		b.prom.BotActive.Set(0)
	}
}

// Mode returns the selected strategy.
func (b *Bot) Mode() strategy.Mode {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mode
}

// SetMode switches the strategy and drops cached scan results so the next
// cycle evaluates fresh.
func (b *Bot) SetMode(name string) error {
	mode, err := strategy.ParseMode(name)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.mode = mode
	b.mu.Unlock()
	b.scanner.Invalidate()
	b.audit.Record(auditlog.SeverityInfo, "Strategy switched to %s", mode)
	return nil
}

// Watchlist returns a copy of the current watchlist.
func (b *Bot) Watchlist() []model.Instrument {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.Instrument(nil), b.watchlist...)
}

// AddInstrument appends an instrument. The symbol must be unique.
func (b *Bot) AddInstrument(inst model.Instrument) error {
	inst.Symbol = strings.TrimSpace(inst.Symbol)
	inst.Code = strings.TrimSpace(inst.Code)
	if inst.Symbol == "" || inst.Code == "" {
		return fmt.Errorf("instrument needs symbol and code")
	}
	if !inst.Class.Valid() {
		return fmt.Errorf("unknown asset class %q", inst.Class)
	}
	if inst.Step <= 0 {
		inst.Step = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range b.watchlist {
		if w.Symbol == inst.Symbol {
			return fmt.Errorf("instrument %s already on watchlist", inst.Symbol)
		}
	}
	b.watchlist = append(b.watchlist, inst)
	b.audit.Record(auditlog.SeverityInfo, "Watchlist add: %s (%s)", inst.Symbol, inst.Class)
	return nil
}

// RemoveInstrument removes an instrument by symbol.
func (b *Bot) RemoveInstrument(symbol string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, w := range b.watchlist {
		if w.Symbol == symbol {
			b.watchlist = append(b.watchlist[:i], b.watchlist[i+1:]...)
			b.audit.Record(auditlog.SeverityInfo, "Watchlist remove: %s", symbol)
			return nil
		}
	}
	return fmt.Errorf("instrument %s not on watchlist", symbol)
}

// SetRisk updates the engine risk parameters.
func (b *Bot) SetRisk(cfg engine.RiskConfig) error {
	if err := b.engine.SetRisk(cfg); err != nil {
		return err
	}
	b.audit.Record(auditlog.SeverityInfo,
		"Risk updated: SL %.2f%% target %.2f%% max loss %.0f qty %d",
		cfg.StopLossPct, cfg.TargetPct, cfg.MaxDailyLoss, cfg.Qty)
	return nil
}

// SetLiveTrading toggles live order routing.
func (b *Bot) SetLiveTrading(on bool) {
	b.engine.SetLiveTrading(on)
	state := "SIMULATED"
	if on {
		state = "LIVE"
	}
	b.audit.Record(auditlog.SeverityWarn, "Execution mode set to %s", state)
}

// LastScan returns the records from the most recent cycle.
func (b *Bot) LastScan() []model.ScanRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.ScanRecord(nil), b.lastScan...)
}

// Stats returns an engine state snapshot.
func (b *Bot) Stats() engine.Stats { return b.engine.GetStats() }

// Positions returns the open position book.
func (b *Bot) Positions() []model.Position { return b.engine.Positions() }

// AuditTrail returns the audit log, newest first.
func (b *Bot) AuditTrail() []auditlog.Entry { return b.audit.Snapshot() }
