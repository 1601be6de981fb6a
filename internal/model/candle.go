// Package model defines the shared data types for the backtesting system:
// candles, trades, equity points, backtest results, and scan signals.
package model

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// Candle represents one OHLCV bar for a fixed time interval.
type Candle struct {
	TS     time.Time `json:"ts"` // bar open time (UTC)
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Valid reports whether the candle is well-formed: all fields finite and
// non-negative, and high >= max(open, close) >= min(open, close) >= low.
func (c *Candle) Valid() bool {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	if c.TS.IsZero() {
		return false
	}
	return c.High >= math.Max(c.Open, c.Close) && c.Low <= math.Min(c.Open, c.Close)
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// Series is an ordered candle sequence, strictly increasing by timestamp.
type Series []Candle

// NormalizeSeries sorts candles ascending by timestamp and drops malformed
// candles and duplicate timestamps. Malformed input is filtered here, at the
// collaborator boundary, so the core never sees it.
func NormalizeSeries(candles []Candle) Series {
	out := make(Series, 0, len(candles))
	for _, c := range candles {
		if c.Valid() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TS.Before(out[j].TS) })

	dedup := out[:0]
	for i, c := range out {
		if i > 0 && !c.TS.After(dedup[len(dedup)-1].TS) {
			continue
		}
		dedup = append(dedup, c)
	}
	return dedup
}

// Closes returns the closing prices of the series.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, c := range s {
		closes[i] = c.Close
	}
	return closes
}
