package provider

import (
	"context"

	"backtest-systemv1/internal/model"
)

// SeriesCache is the candle-cache surface the cached provider needs,
// satisfied by the Redis store.
type SeriesCache interface {
	GetSeries(ctx context.Context, symbol string) (model.Series, bool)
	SetSeries(ctx context.Context, symbol string, series model.Series)
}

// CachedProvider serves candle series from a cache, falling through to the
// inner provider on miss. Fetch failures are not cached.
type CachedProvider struct {
	inner Provider
	cache SeriesCache
}

// NewCached wraps a provider with a series cache.
func NewCached(inner Provider, cache SeriesCache) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache}
}

func (p *CachedProvider) Candles(ctx context.Context, symbol string) (model.Series, error) {
	if series, ok := p.cache.GetSeries(ctx, symbol); ok {
		return series, nil
	}
	series, err := p.inner.Candles(ctx, symbol)
	if err != nil {
		return nil, err
	}
	p.cache.SetSeries(ctx, symbol, series)
	return series, nil
}
