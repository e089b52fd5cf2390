// Package resolver maps logical watchlist instruments to tradable Angel One
// contracts using the published scrip master file. Index entries resolve to
// the nearest-expiry option at the requested strike and side; commodities
// to the nearest-expiry future; equities to the NSE cash scrip.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
)

// DefaultScripMasterURL is Angel One's public instrument dump.
const DefaultScripMasterURL = "https://margincalculator.angelbroking.com/OpenAPI_File/files/OpenAPIScripMaster.json"

const reloadInterval = 24 * time.Hour

// ErrNotFound is returned when no tradable contract matches.
var ErrNotFound = errors.New("contract not found")

// Scrip is one scrip master row, trimmed to the fields resolution needs.
type Scrip struct {
	Token          string `json:"token"`
	Symbol         string `json:"symbol"`
	Name           string `json:"name"`
	Expiry         string `json:"expiry"`
	InstrumentType string `json:"instrumenttype"`
	ExchSeg        string `json:"exch_seg"`
}

// ScripMaster lazily downloads and indexes the scrip master, refreshing it
// daily. Safe for concurrent use.
type ScripMaster struct {
	url    string
	client *http.Client
	log    *slog.Logger

	mu       sync.RWMutex
	byName   map[string][]Scrip
	loadedAt time.Time
}

// New creates a ScripMaster resolver. url empty uses the public dump.
func New(url string, log *slog.Logger) *ScripMaster {
	if url == "" {
		url = DefaultScripMasterURL
	}
	return &ScripMaster{
		url:    url,
		client: &http.Client{Timeout: 60 * time.Second},
		log:    log,
	}
}

// Resolve maps an instrument to a tradable contract. For INDEX the strike
// and option side select the scrip; other classes ignore them. CRYPTO never
// resolves since there is no broker contract for it.
func (sm *ScripMaster) Resolve(ctx context.Context, symbol string, class model.AssetClass, strike float64, opt model.OptionType) (model.Contract, error) {
	if class == model.ClassCrypto {
		return model.Contract{}, fmt.Errorf("%w: no broker contract for %s", ErrNotFound, symbol)
	}
	if err := sm.ensureLoaded(ctx); err != nil {
		return model.Contract{}, err
	}

	switch class {
	case model.ClassIndex:
		return sm.resolveOption(symbol, strike, opt)
	case model.ClassCommodity:
		return sm.resolveFuture(symbol)
	case model.ClassEquity:
		return sm.resolveEquity(symbol)
	}
	return model.Contract{}, fmt.Errorf("%w: unsupported class %s", ErrNotFound, class)
}

// resolveOption finds the nearest-expiry NFO option whose symbol carries
// the strike and ends with the option side.
func (sm *ScripMaster) resolveOption(symbol string, strike float64, opt model.OptionType) (model.Contract, error) {
	name := underlyingName(symbol)
	strikeStr := strconv.Itoa(int(strike))

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var candidates []Scrip
	for _, s := range sm.byName[name] {
		if s.ExchSeg != "NFO" {
			continue
		}
		if !strings.HasSuffix(s.Symbol, string(opt)) || !strings.Contains(s.Symbol, strikeStr) {
			continue
		}
		candidates = append(candidates, s)
	}
	return nearestExpiry(candidates, "NFO", name)
}

// resolveFuture finds the nearest-expiry MCX commodity future.
func (sm *ScripMaster) resolveFuture(symbol string) (model.Contract, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var candidates []Scrip
	for _, s := range sm.byName[symbol] {
		if s.ExchSeg == "MCX" && s.InstrumentType == "FUTCOM" {
			candidates = append(candidates, s)
		}
	}
	return nearestExpiry(candidates, "MCX", symbol)
}

// resolveEquity finds the NSE cash scrip ("-EQ" series).
func (sm *ScripMaster) resolveEquity(symbol string) (model.Contract, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, s := range sm.byName[symbol] {
		if s.ExchSeg == "NSE" && strings.HasSuffix(s.Symbol, "-EQ") {
			return model.Contract{Token: s.Token, TradingSymbol: s.Symbol, Exchange: "NSE"}, nil
		}
	}
	return model.Contract{}, fmt.Errorf("%w: %s on NSE", ErrNotFound, symbol)
}

func (sm *ScripMaster) ensureLoaded(ctx context.Context) error {
	sm.mu.RLock()
	fresh := sm.byName != nil && time.Since(sm.loadedAt) < reloadInterval
	sm.mu.RUnlock()
	if fresh {
		return nil
	}
	return sm.load(ctx)
}

// load downloads and indexes the scrip master, keeping only the segments
// the bot trades (NFO, NSE, MCX).
func (sm *ScripMaster) load(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.byName != nil && time.Since(sm.loadedAt) < reloadInterval {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sm.url, nil)
	if err != nil {
		return fmt.Errorf("scrip master request: %w", err)
	}
	resp, err := sm.client.Do(req)
	if err != nil {
		return fmt.Errorf("scrip master fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scrip master fetch: status %d", resp.StatusCode)
	}

	var all []Scrip
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		return fmt.Errorf("scrip master decode: %w", err)
	}

	byName := make(map[string][]Scrip)
	kept := 0
	for _, s := range all {
		switch s.ExchSeg {
		case "NFO", "NSE", "MCX":
			byName[s.Name] = append(byName[s.Name], s)
			kept++
		}
	}

	sm.byName = byName
	sm.loadedAt = time.Now()
	sm.log.Info("scrip master loaded", "total", len(all), "kept", kept)
	return nil
}

// SetScrips replaces the index directly. Test hook.
func (sm *ScripMaster) SetScrips(scrips []Scrip) {
	byName := make(map[string][]Scrip)
	for _, s := range scrips {
		byName[s.Name] = append(byName[s.Name], s)
	}
	sm.mu.Lock()
	sm.byName = byName
	sm.loadedAt = time.Now()
	sm.mu.Unlock()
}

// underlyingName maps a watchlist index symbol to the scrip master's
// underlying name. BANKNIFTY is checked before NIFTY since the latter is a
// substring of the former.
func underlyingName(symbol string) string {
	u := strings.ToUpper(symbol)
	switch {
	case strings.Contains(u, "BANKNIFTY"):
		return "BANKNIFTY"
	case strings.Contains(u, "NIFTY"):
		return "NIFTY"
	}
	if fields := strings.Fields(u); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// nearestExpiry picks the candidate with the earliest parseable expiry.
func nearestExpiry(candidates []Scrip, exchange, name string) (model.Contract, error) {
	if len(candidates) == 0 {
		return model.Contract{}, fmt.Errorf("%w: %s on %s", ErrNotFound, name, exchange)
	}
	sort.Slice(candidates, func(i, j int) bool {
		ti, iok := parseExpiry(candidates[i].Expiry)
		tj, jok := parseExpiry(candidates[j].Expiry)
		if iok != jok {
			return iok // parseable expiries sort first
		}
		return ti.Before(tj)
	})
	best := candidates[0]
	return model.Contract{Token: best.Token, TradingSymbol: best.Symbol, Exchange: exchange}, nil
}

// parseExpiry parses the scrip master's DDMONYYYY expiry (e.g. "30JAN2026").
func parseExpiry(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 9 {
		return time.Time{}, false
	}
	t, err := time.Parse("02Jan2006", s[:2]+s[2:3]+strings.ToLower(s[3:5])+s[5:])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
