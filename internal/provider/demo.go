package provider

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"backtest-systemv1/internal/model"
)

// demoBars is the series length served per symbol in demo mode.
const demoBars = 300

// DemoProvider serves deterministic synthetic candle series so the system
// runs without upstream credentials. Each symbol gets a reproducible random
// walk seeded from its name.
type DemoProvider struct{}

// NewDemoProvider creates a synthetic candle provider.
func NewDemoProvider() *DemoProvider { return &DemoProvider{} }

// Candles generates a 5-minute random-walk series for the symbol. The walk is
// seeded from the symbol name, so repeated calls return identical data.
func (d *DemoProvider) Candles(_ context.Context, symbol string) (model.Series, error) {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	base := 100 + rng.Float64()*900
	start := time.Date(2026, 8, 21, 3, 45, 0, 0, time.UTC).Add(-demoBars * 5 * time.Minute)

	candles := make([]model.Candle, 0, demoBars)
	price := base
	for i := 0; i < demoBars; i++ {
		drift := (rng.Float64() - 0.48) * base * 0.004
		open := price
		close := price + drift
		high := math.Max(open, close) * (1 + rng.Float64()*0.002)
		low := math.Min(open, close) * (1 - rng.Float64()*0.002)

		candles = append(candles, model.Candle{
			TS:     start.Add(time.Duration(i) * 5 * time.Minute),
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(close),
			Volume: float64(1000 + rng.Intn(90000)),
		})
		price = close
	}
	return model.Series(candles), nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
