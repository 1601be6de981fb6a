// Package redis caches fetched candle series with a TTL and publishes scan
// signals for the websocket stream hub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"backtest-systemv1/internal/model"
)

const (
	seriesKeyPrefix  = "candles:"
	defaultSeriesTTL = 5 * time.Minute

	// SignalChannel is the pub/sub channel carrying scan signals.
	SignalChannel = "signals"
)

// Config configures the Redis cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // series cache TTL, default 5m
}

// Cache wraps a Redis client for series caching and signal publish.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
}

// New creates a Cache and pings the server.
func New(cfg Config) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultSeriesTTL
	}
	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Cache{client: client, ttl: ttl}, nil
}

// Client returns the underlying Redis client for health checks and pub/sub.
func (c *Cache) Client() *goredis.Client { return c.client }

// GetSeries returns the cached series for symbol, if present and unexpired.
func (c *Cache) GetSeries(ctx context.Context, symbol string) (model.Series, bool) {
	data, err := c.client.Get(ctx, seriesKeyPrefix+symbol).Bytes()
	if err != nil {
		return nil, false
	}
	var series model.Series
	if err := json.Unmarshal(data, &series); err != nil {
		log.Printf("[redis] corrupt cached series for %s, dropping: %v", symbol, err)
		c.client.Del(ctx, seriesKeyPrefix+symbol)
		return nil, false
	}
	return series, true
}

// SetSeries caches the series for symbol with the configured TTL.
func (c *Cache) SetSeries(ctx context.Context, symbol string, series model.Series) {
	data, err := json.Marshal(series)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, seriesKeyPrefix+symbol, data, c.ttl).Err(); err != nil {
		log.Printf("[redis] cache write for %s failed: %v", symbol, err)
	}
}

// PublishSignal fans a scan signal out on the signal channel.
func (c *Cache) PublishSignal(ctx context.Context, sig model.ScanSignal) error {
	data, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("redis marshal signal: %w", err)
	}
	if err := c.client.Publish(ctx, SignalChannel, data).Err(); err != nil {
		return fmt.Errorf("redis publish signal: %w", err)
	}
	return nil
}

// Close releases the client.
func (c *Cache) Close() error { return c.client.Close() }
