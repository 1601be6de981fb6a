// Package scanner applies a rule set to the latest bar of each watchlist
// symbol and emits trade signals with ATR-derived target and stop levels.
package scanner

import (
	"context"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"

	"backtest-systemv1/internal/indicator"
	"backtest-systemv1/internal/model"
	"backtest-systemv1/internal/rule"
)

// minBars is the minimum series length required to scan a symbol, matching
// the backtest warm-up.
const minBars = 50

// CandleProvider fetches the latest normalized candle series for one symbol.
// A fetch may fail per symbol; the scanner isolates such failures.
type CandleProvider interface {
	Candles(ctx context.Context, symbol string) (model.Series, error)
}

// Hooks receives per-symbol scan outcomes, e.g. for metrics. Nil funcs are
// ignored. Outcome results are "signal", "no_signal", and "skipped".
type Hooks struct {
	FetchError func(symbol string)
	Outcome    func(symbol, result string)
}

func (h Hooks) fetchError(symbol string) {
	if h.FetchError != nil {
		h.FetchError(symbol)
	}
}

func (h Hooks) outcome(symbol, result string) {
	if h.Outcome != nil {
		h.Outcome(symbol, result)
	}
}

// Scanner evaluates rule sets across a watchlist, one symbol at a time.
type Scanner struct {
	provider CandleProvider
	rng      *rand.Rand

	// Hooks may be set before the first Scan.
	Hooks Hooks
}

// New creates a Scanner reading candles from the given provider.
func New(provider CandleProvider) *Scanner {
	return &Scanner{
		provider: provider,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Scan evaluates the rule set on the last bar of every symbol, in input
// order. A failed fetch or a short series skips that symbol only; a rule
// referencing an unknown indicator kind aborts the scan, since it would fail
// identically for every symbol.
func (s *Scanner) Scan(ctx context.Context, symbols []string, rules []rule.Rule) ([]model.ScanSignal, error) {
	var signals []model.ScanSignal
	for _, symbol := range symbols {
		candles, err := s.provider.Candles(ctx, symbol)
		if err != nil {
			log.Printf("[scanner] %s: fetch failed, skipping: %v", symbol, err)
			s.Hooks.fetchError(symbol)
			s.Hooks.outcome(symbol, "skipped")
			continue
		}
		if len(candles) < minBars {
			log.Printf("[scanner] %s: only %d bars, need %d, skipping", symbol, len(candles), minBars)
			s.Hooks.outcome(symbol, "skipped")
			continue
		}

		cache := indicator.NewCache(candles)
		last := len(candles) - 1
		ok, err := rule.Satisfied(cache, rules, last)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.Hooks.outcome(symbol, "no_signal")
			continue
		}

		sig := s.buildSignal(cache, candles, symbol, rules)
		signals = append(signals, sig)
		s.Hooks.outcome(symbol, "signal")
	}
	return signals, nil
}

// buildSignal assembles the signal record for a matched symbol. Target and
// stop come from the latest ATR(14); when ATR is still absent they fall back
// to 2% of the close. Confidence is intentionally randomized (70-95) and
// excluded from any determinism guarantee.
func (s *Scanner) buildSignal(cache *indicator.Cache, candles model.Series, symbol string, rules []rule.Rule) model.ScanSignal {
	last := len(candles) - 1
	price := candles[last].Close

	direction := model.DirectionSell
	if strings.Contains(string(rules[0].Condition), "ABOVE") {
		direction = model.DirectionBuy
	}

	target := round2(price * 1.02)
	stop := round2(price * 0.98)
	if out, err := cache.Get(indicator.Spec{Kind: indicator.KindATR}); err == nil {
		if atr := out.Primary(last); !indicator.IsAbsent(atr) {
			target = round2(price + 2*atr)
			stop = round2(price - atr)
		}
	}

	return model.ScanSignal{
		Symbol:     symbol,
		Price:      price,
		Direction:  direction,
		Target:     target,
		StopLoss:   stop,
		Indicator:  rules[0].Indicator.Name(),
		Confidence: 70 + s.rng.Intn(26),
		TS:         candles[last].TS,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
