// Package provider fetches historical candle data from the upstream broker
// API and normalizes it for the core. Malformed rows are filtered here; the
// core never sees them. A deterministic synthetic provider backs demo mode.
package provider

import (
	"context"

	"backtest-systemv1/internal/model"
)

// Provider fetches the normalized candle series for one symbol. A fetch may
// fail per symbol; callers isolate such failures.
type Provider interface {
	Candles(ctx context.Context, symbol string) (model.Series, error)
}
