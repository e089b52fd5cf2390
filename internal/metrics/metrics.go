// Package metrics exposes Prometheus metrics for the trading bot and serves
// them with a health endpoint.
package metrics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the bot.
type Metrics struct {
	ScansTotal      prometheus.Counter
	ScanSkips       *prometheus.CounterVec // labels: symbol
	SignalsTotal    *prometheus.CounterVec // labels: signal
	OrdersTotal     *prometheus.CounterVec // labels: mode, status
	PositionsOpened prometheus.Counter
	PositionsClosed *prometheus.CounterVec // labels: reason

	OpenPositions prometheus.Gauge
	DailyPnL      prometheus.Gauge
	BotActive     prometheus.Gauge
	BreakerTrips  prometheus.Counter

	CycleDur prometheus.Histogram
	ScanDur  prometheus.Histogram
}

// New registers and returns all bot metrics on the default registry.
func New() *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "algobot_scans_total",
			Help: "Total market scans executed (cache misses only)",
		}),
		ScanSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "algobot_scan_skips_total",
			Help: "Watchlist entries skipped during a scan cycle",
		}, []string{"symbol"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "algobot_signals_total",
			Help: "Signals produced by the strategy engine",
		}, []string{"signal"}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "algobot_orders_total",
			Help: "Entry attempts by execution mode and status",
		}, []string{"mode", "status"}),
		PositionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "algobot_positions_opened_total",
			Help: "Positions added to the open book",
		}),
		PositionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "algobot_positions_closed_total",
			Help: "Positions closed, by reason",
		}, []string{"reason"}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "algobot_open_positions",
			Help: "Current open position count",
		}),
		DailyPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "algobot_daily_pnl",
			Help: "Cumulative realized P&L for the run, in currency units",
		}),
		BotActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "algobot_active",
			Help: "1 while the bot control loop is taking cycles",
		}),
		BreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "algobot_circuit_breaker_trips_total",
			Help: "Daily-loss circuit breaker activations",
		}),
		CycleDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "algobot_cycle_duration_seconds",
			Help:    "Full control-loop cycle duration (scan + risk pass)",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		ScanDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "algobot_scan_duration_seconds",
			Help:    "Market scan duration (cache misses only)",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}

	prometheus.MustRegister(
		m.ScansTotal, m.ScanSkips, m.SignalsTotal, m.OrdersTotal,
		m.PositionsOpened, m.PositionsClosed, m.OpenPositions,
		m.DailyPnL, m.BotActive, m.BreakerTrips, m.CycleDur, m.ScanDur,
	)
	return m
}

// HealthStatus tracks component liveness for the /healthz endpoint.
type HealthStatus struct {
	mu            sync.RWMutex
	brokerOK      bool
	redisOK       bool
	journalOK     bool
	lastCycleTime time.Time
}

// NewHealthStatus creates an empty health tracker.
func NewHealthStatus() *HealthStatus { return &HealthStatus{} }

func (h *HealthStatus) SetBrokerOK(ok bool) {
	h.mu.Lock()
	h.brokerOK = ok
	h.mu.Unlock()
}

func (h *HealthStatus) SetRedisOK(ok bool) {
	h.mu.Lock()
	h.redisOK = ok
	h.mu.Unlock()
}

func (h *HealthStatus) SetJournalOK(ok bool) {
	h.mu.Lock()
	h.journalOK = ok
	h.mu.Unlock()
}

// MarkCycle records the wall time of the latest completed cycle.
func (h *HealthStatus) MarkCycle() {
	h.mu.Lock()
	h.lastCycleTime = time.Now()
	h.mu.Unlock()
}

func (h *HealthStatus) snapshot() map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]any{
		"broker_ok":  h.brokerOK,
		"redis_ok":   h.redisOK,
		"journal_ok": h.journalOK,
		"last_cycle": h.lastCycleTime.UTC().Format(time.RFC3339),
	}
}

// Server serves /metrics and /healthz.
type Server struct {
	addr   string
	health *HealthStatus
	srv    *http.Server
}

// NewServer creates a metrics server bound to addr.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(health.snapshot())
	})
	return &Server{
		addr:   addr,
		health: health,
		srv:    &http.Server{Addr: addr, Handler: mux},
	}
}

// Start serves in the background.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server stopped", "err", err)
		}
	}()
}

// Close shuts the server down.
func (s *Server) Close() error { return s.srv.Close() }
