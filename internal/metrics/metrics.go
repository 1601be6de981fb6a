// Package metrics exposes Prometheus metrics and a health endpoint for the
// scanner and API services.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the backtest system.
type Metrics struct {
	ScansTotal      prometheus.Counter
	ScanDur         prometheus.Histogram
	ScanSymbols     *prometheus.CounterVec // labels: result=signal|no_signal|skipped
	SignalsEmitted  prometheus.Counter
	BacktestsTotal  prometheus.Counter
	BacktestDur     prometheus.Histogram
	BacktestTrades  prometheus.Histogram
	StreamClients   prometheus.Gauge
	ProviderErrors  prometheus.Counter
}

// New registers and returns all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_scans_total",
			Help: "Total watchlist scans executed",
		}),
		ScanDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_scan_duration_seconds",
			Help:    "Full watchlist scan latency",
			Buckets: prometheus.DefBuckets,
		}),
		ScanSymbols: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_symbols_total",
			Help: "Per-symbol scan outcomes",
		}, []string{"result"}),
		SignalsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_signals_emitted_total",
			Help: "Scan signals emitted",
		}),
		BacktestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backtest_runs_total",
			Help: "Backtest runs executed",
		}),
		BacktestDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "backtest_run_duration_seconds",
			Help:    "Backtest run latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		BacktestTrades: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "backtest_trades_per_run",
			Help:    "Closed trades per backtest run",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stream_connected_clients",
			Help: "Connected websocket clients",
		}),
		ProviderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "provider_fetch_errors_total",
			Help: "Candle fetch failures from the upstream provider",
		}),
	}

	prometheus.MustRegister(
		m.ScansTotal,
		m.ScanDur,
		m.ScanSymbols,
		m.SignalsEmitted,
		m.BacktestsTotal,
		m.BacktestDur,
		m.BacktestTrades,
		m.StreamClients,
		m.ProviderErrors,
	)
	return m
}

// ObserveBacktest records one completed backtest run.
func (m *Metrics) ObserveBacktest(d time.Duration, trades int) {
	m.BacktestsTotal.Inc()
	m.BacktestDur.Observe(d.Seconds())
	m.BacktestTrades.Observe(float64(trades))
}

// ObserveScan records one completed watchlist scan.
func (m *Metrics) ObserveScan(d time.Duration, signals int) {
	m.ScansTotal.Inc()
	m.ScanDur.Observe(d.Seconds())
	m.SignalsEmitted.Add(float64(signals))
}

// HealthStatus tracks dependency health for /healthz.
type HealthStatus struct {
	mu sync.RWMutex

	RedisConnected bool      `json:"redis_connected"`
	SQLiteOK       bool      `json:"sqlite_ok"`
	LastScanAt     time.Time `json:"last_scan_at"`
	StartedAt      time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetLastScan(t time.Time) {
	h.mu.Lock()
	h.LastScanAt = t
	h.mu.Unlock()
}

// SetSQLiteOK overrides the SQLite probe, for services without a database.
func (h *HealthStatus) SetSQLiteOK(v bool) {
	h.mu.Lock()
	h.SQLiteOK = v
	h.mu.Unlock()
}

// CheckRedis pings Redis and records connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	err := rdb.Ping(ctx).Err()
	h.mu.Lock()
	h.RedisConnected = err == nil
	h.mu.Unlock()
}

// CheckSQLite pings the database and records health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	err := db.PingContext(ctx)
	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency probes until ctx is done.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, db *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if db != nil {
					h.CheckSQLite(probeCtx, db)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if !h.RedisConnected || !h.SQLiteOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	resp := struct {
		Status     string `json:"status"`
		Uptime     string `json:"uptime"`
		Redis      bool   `json:"redis_connected"`
		SQLite     bool   `json:"sqlite_ok"`
		LastScanAt string `json:"last_scan_at"`
	}{
		Status:     status,
		Uptime:     time.Since(h.StartedAt).Round(time.Second).String(),
		Redis:      h.RedisConnected,
		SQLite:     h.SQLiteOK,
		LastScanAt: h.LastScanAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(resp)
}

// Serve runs an HTTP server exposing /metrics and /healthz until ctx is done.
func Serve(ctx context.Context, addr string, health *HealthStatus) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[metrics] serving /metrics and /healthz on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("[metrics] server error: %v", err)
	}
}
