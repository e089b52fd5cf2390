// Package scanner turns the watchlist into per-instrument scan records:
// fetch bars, evaluate the strategy, pick the derivative strike and side,
// resolve a tradable contract and refresh the reference price. One bad
// instrument never fails the scan; it is skipped for the cycle.
package scanner

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/metrics"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/strategy"
)

const (
	// Scan results are memoized this long to bound external call rate,
	// regardless of how often the loop or the presentation layer asks.
	cacheTTL = 10 * time.Second

	// Lookback window requested from the bar source.
	lookbackDays = 5

	// Placeholder option-premium factor applied to an index close when no
	// contract resolves. A deliberately crude stand-in, never a real quote;
	// records carry PremiumEstimated so consumers can tell.
	premiumFactor = 0.01

	fetchTimeout = 10 * time.Second
	quoteTimeout = 3 * time.Second
)

// BarSource supplies recent OHLCV bars for a data-source code.
type BarSource interface {
	Bars(ctx context.Context, code string, interval model.Interval, lookbackDays int) ([]model.Bar, error)
}

// ContractResolver maps a logical instrument (plus strike/side for
// derivatives) to a tradable contract.
type ContractResolver interface {
	Resolve(ctx context.Context, symbol string, class model.AssetClass, strike float64, opt model.OptionType) (model.Contract, error)
}

// QuoteSource supplies the last traded price for a resolved contract.
type QuoteSource interface {
	LTP(ctx context.Context, exchange, token string) (float64, error)
}

// Scanner runs the per-cycle market scan with a short-TTL result cache.
type Scanner struct {
	bars     BarSource
	resolver ContractResolver
	quotes   QuoteSource // may be nil (no broker session)
	log      *slog.Logger
	prom     *metrics.Metrics // may be nil in tests

	mu       sync.Mutex
	cacheKey string
	cached   []model.ScanRecord
	cachedAt time.Time
	now      func() time.Time
}

// New creates a Scanner. quotes may be nil when no broker session exists;
// prom may be nil.
func New(bars BarSource, resolver ContractResolver, quotes QuoteSource, log *slog.Logger, prom *metrics.Metrics) *Scanner {
	return &Scanner{
		bars:     bars,
		resolver: resolver,
		quotes:   quotes,
		log:      log,
		prom:     prom,
		now:      time.Now,
	}
}

// Scan produces one record per watchlist entry that could be evaluated this
// cycle, preserving watchlist order. Results are cached for a short TTL
// keyed by the watchlist snapshot and strategy mode.
func (s *Scanner) Scan(ctx context.Context, watchlist []model.Instrument, mode strategy.Mode) []model.ScanRecord {
	key := cacheKey(watchlist, mode)

	s.mu.Lock()
	if key == s.cacheKey && s.now().Sub(s.cachedAt) < cacheTTL {
		out := s.cached
		s.mu.Unlock()
		return out
	}
	s.mu.Unlock()

	start := s.now()
	records := make([]model.ScanRecord, 0, len(watchlist))
	for _, inst := range watchlist {
		rec, ok := s.scanOne(ctx, inst, mode)
		if !ok {
			if s.prom != nil {
				s.prom.ScanSkips.WithLabelValues(inst.Symbol).Inc()
			}
			continue
		}
		records = append(records, rec)
	}

	if s.prom != nil {
		s.prom.ScansTotal.Inc()
		s.prom.ScanDur.Observe(s.now().Sub(start).Seconds())
	}

	s.mu.Lock()
	s.cacheKey = key
	s.cached = records
	s.cachedAt = s.now()
	s.mu.Unlock()
	return records
}

// Invalidate drops the cached scan so the next Scan refetches.
func (s *Scanner) Invalidate() {
	s.mu.Lock()
	s.cacheKey = ""
	s.mu.Unlock()
}

func (s *Scanner) scanOne(ctx context.Context, inst model.Instrument, mode strategy.Mode) (model.ScanRecord, bool) {
	fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	bars, err := s.bars.Bars(fctx, inst.Code, mode.Interval(), lookbackDays)
	cancel()
	if err != nil {
		s.log.Warn("bar fetch failed, skipping", "symbol", inst.Symbol, "err", err)
		return model.ScanRecord{}, false
	}
	if len(bars) < mode.MinBars() {
		s.log.Info("insufficient bars, skipping",
			"symbol", inst.Symbol, "got", len(bars), "need", mode.MinBars())
		return model.ScanRecord{}, false
	}

	res := strategy.Evaluate(bars, mode)
	rec := model.ScanRecord{
		Label:     inst.Symbol,
		Symbol:    inst.Symbol,
		Class:     inst.Class,
		Signal:    res.Signal,
		Price:     res.LastClose,
		PctChange: model.PctChange(bars),
	}

	switch {
	case inst.Class.Derivative():
		s.resolveOption(ctx, inst, res, &rec)
	case inst.Class == model.ClassCommodity || inst.Class == model.ClassEquity:
		s.resolveDirect(ctx, inst, &rec)
	}

	if s.prom != nil {
		s.prom.SignalsTotal.WithLabelValues(string(rec.Signal)).Inc()
	}
	return rec, true
}

// resolveOption picks the nearest strike for the latest close, resolves the
// option contract on the signal's side and rewrites the signal to its
// side-qualified form.
func (s *Scanner) resolveOption(ctx context.Context, inst model.Instrument, res strategy.Result, rec *model.ScanRecord) {
	strike := math.Round(res.LastClose/inst.Step) * inst.Step
	side := res.Signal.OptionSide()

	if res.Signal != model.SignalHold {
		if side == model.OptionCall {
			rec.Signal = model.SignalBuyCall
		} else {
			rec.Signal = model.SignalBuyPut
		}
	}

	// Until a real premium quote arrives the reference price is the scaled
	// underlying close, flagged as a placeholder.
	rec.Price = res.LastClose * premiumFactor
	rec.PremiumEstimated = true

	contract, err := s.resolver.Resolve(ctx, inst.Symbol, inst.Class, strike, side)
	if err != nil {
		s.log.Info("contract unresolved", "symbol", inst.Symbol, "strike", strike, "err", err)
		return
	}
	rec.Contract = &contract
	rec.Label = contract.TradingSymbol

	if ltp, ok := s.fetchLTP(ctx, contract); ok {
		rec.Price = ltp
		rec.PremiumEstimated = false
	}
}

func (s *Scanner) resolveDirect(ctx context.Context, inst model.Instrument, rec *model.ScanRecord) {
	contract, err := s.resolver.Resolve(ctx, inst.Symbol, inst.Class, 0, "")
	if err != nil {
		s.log.Info("contract unresolved", "symbol", inst.Symbol, "err", err)
		return
	}
	rec.Contract = &contract
	rec.Label = contract.TradingSymbol

	if ltp, ok := s.fetchLTP(ctx, contract); ok {
		rec.Price = ltp
	}
}

func (s *Scanner) fetchLTP(ctx context.Context, c model.Contract) (float64, bool) {
	if s.quotes == nil {
		return 0, false
	}
	qctx, cancel := context.WithTimeout(ctx, quoteTimeout)
	defer cancel()
	ltp, err := s.quotes.LTP(qctx, c.Exchange, c.Token)
	if err != nil || ltp <= 0 {
		if err != nil {
			s.log.Info("ltp unavailable", "symbol", c.TradingSymbol, "err", err)
		}
		return 0, false
	}
	return ltp, true
}

// cacheKey covers every instrument field that shapes a scan record, so a
// watchlist edit that changes the step or class never serves stale strikes
// from within the TTL.
func cacheKey(watchlist []model.Instrument, mode strategy.Mode) string {
	var b strings.Builder
	b.WriteString(string(mode))
	for _, inst := range watchlist {
		b.WriteByte('|')
		b.WriteString(inst.Code)
		b.WriteByte(':')
		b.WriteString(string(inst.Class))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(inst.Step, 'g', -1, 64))
	}
	return b.String()
}
