package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"backtest-systemv1/internal/backtest"
	"backtest-systemv1/internal/indicator"
	"backtest-systemv1/internal/model"
	"backtest-systemv1/internal/rule"
)

// RunJournal persists completed backtest runs (satisfied by the SQLite writer).
type RunJournal interface {
	SaveRun(symbol string, config any, result *model.BacktestResult) error
}

// Observer receives API-level events for metrics (satisfied by the metrics
// package; kept as an interface so handlers test without a registry).
type Observer interface {
	ObserveBacktest(d time.Duration, trades int)
}

type handlers struct {
	deps Deps
}

type backtestRequest struct {
	Symbol    string          `json:"symbol"`
	Candles   []model.Candle  `json:"candles"`
	BuyRules  []rule.Rule     `json:"buy_rules"`
	SellRules []rule.Rule     `json:"sell_rules"`
	Config    backtest.Config `json:"config"`
}

// runBacktest executes a backtest over inline candles, or over candles
// fetched for the request symbol when none are supplied.
func (h *handlers) runBacktest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	series := model.NormalizeSeries(req.Candles)
	if len(series) == 0 {
		if req.Symbol == "" || h.deps.Provider == nil {
			httpError(w, http.StatusBadRequest, "candles or symbol required")
			return
		}
		fetched, err := h.deps.Provider.Candles(r.Context(), req.Symbol)
		if err != nil {
			httpError(w, http.StatusBadGateway, "candle fetch failed: "+err.Error())
			return
		}
		series = fetched
	}

	start := time.Now()
	result, err := backtest.Run(series, req.BuyRules, req.SellRules, req.Config)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, indicator.ErrUnknownKind) {
			status = http.StatusBadRequest
		}
		httpError(w, status, err.Error())
		return
	}
	if h.deps.Metrics != nil {
		h.deps.Metrics.ObserveBacktest(time.Since(start), result.Stats.TotalTrades)
	}

	if h.deps.Store != nil {
		if err := h.deps.Store.SaveRun(req.Symbol, req.Config, result); err != nil {
			log.Printf("[api] run journal write failed: %v", err)
		}
	}
	writeJSON(w, result)
}

type indicatorRequest struct {
	Candles []model.Candle `json:"candles"`
	Spec    indicator.Spec `json:"spec"`
}

// indicatorResponse encodes absent markers as JSON nulls; encoding/json
// rejects NaN, so every series goes through jsonFloats.
type indicatorResponse struct {
	Name       string     `json:"name"`
	Shape      string     `json:"shape"`
	Line       []*float64 `json:"line"`
	Upper      []*float64 `json:"upper,omitempty"`
	Middle     []*float64 `json:"middle,omitempty"`
	Lower      []*float64 `json:"lower,omitempty"`
	SignalLine []*float64 `json:"signal_line,omitempty"`
	Histogram  []*float64 `json:"histogram,omitempty"`
	Uptrend    []bool     `json:"uptrend,omitempty"`
}

// jsonFloats maps a series to pointers, nil where the value is absent.
func jsonFloats(xs []float64) []*float64 {
	if xs == nil {
		return nil
	}
	out := make([]*float64, len(xs))
	for i := range xs {
		if !indicator.IsAbsent(xs[i]) {
			v := xs[i]
			out[i] = &v
		}
	}
	return out
}

// computeIndicator evaluates one indicator spec over inline candles. NaN
// absent markers are emitted as JSON nulls via jsonFloats.
func (h *handlers) computeIndicator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req indicatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	series := model.NormalizeSeries(req.Candles)
	out, err := indicator.Compute(series, req.Spec)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := indicatorResponse{
		Name:       req.Spec.Name(),
		Shape:      string(out.Shape),
		Line:       jsonFloats(out.Line),
		Upper:      jsonFloats(out.Upper),
		Middle:     jsonFloats(out.Middle),
		Lower:      jsonFloats(out.Lower),
		SignalLine: jsonFloats(out.SignalLine),
		Histogram:  jsonFloats(out.Histogram),
		Uptrend:    out.Uptrend,
	}
	writeJSON(w, resp)
}

// recentSignals returns the retained scan signals, oldest first.
func (h *handlers) recentSignals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	signals := []model.ScanSignal{}
	if h.deps.Ring != nil {
		signals = h.deps.Ring.Recent()
	}
	writeJSON(w, signals)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] response encode failed: %v", err)
	}
}

func httpError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
