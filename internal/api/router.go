// Package api exposes the core entry points over HTTP. JSON request and
// response shapes are owned here, not by the core packages.
package api

import (
	"net/http"

	"backtest-systemv1/internal/provider"
	"backtest-systemv1/internal/ringbuf"
	"backtest-systemv1/internal/stream"
)

// Deps wires the handlers to their collaborators. Store and Hub may be nil;
// the corresponding features degrade gracefully.
type Deps struct {
	Provider provider.Provider
	Store    RunJournal
	Ring     *ringbuf.Ring
	Hub      *stream.Hub
	Metrics  Observer
}

// NewRouter sets up the HTTP routes for the API server.
func NewRouter(deps Deps) *http.ServeMux {
	h := &handlers{deps: deps}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/api/v1/backtest", h.runBacktest)
	mux.HandleFunc("/api/v1/indicator", h.computeIndicator)
	mux.HandleFunc("/api/v1/signals", h.recentSignals)
	if deps.Hub != nil {
		mux.HandleFunc("/api/v1/stream", deps.Hub.ServeWS)
	}
	return mux
}
