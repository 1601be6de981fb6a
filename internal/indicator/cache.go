package indicator

import "backtest-systemv1/internal/model"

// Cache memoizes indicator outputs per canonical spec within one evaluation
// run. Buy and sell rule sets frequently reference the same indicator, so a
// backtest or scan builds one Cache over its candle series and resolves every
// rule through it. A Cache is scoped to a single invocation and must not be
// shared across runs or goroutines.
type Cache struct {
	candles model.Series
	memo    map[Spec]Output
}

// NewCache creates a cache bound to one candle series.
func NewCache(candles model.Series) *Cache {
	return &Cache{
		candles: candles,
		memo:    make(map[Spec]Output, 8),
	}
}

// Get returns the output for spec, computing it on first use. The canonical
// spec is the map key, so equivalent parameter records (defaults spelled out
// or omitted) hit the same entry.
func (c *Cache) Get(spec Spec) (Output, error) {
	canon, err := spec.Canonical()
	if err != nil {
		return Output{}, err
	}
	if out, ok := c.memo[canon]; ok {
		return out, nil
	}
	out, err := Compute(c.candles, canon)
	if err != nil {
		return Output{}, err
	}
	c.memo[canon] = out
	return out, nil
}
