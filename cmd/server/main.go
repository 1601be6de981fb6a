// cmd/server runs the HTTP API: backtest and indicator endpoints, the recent
// signal list, and the websocket signal stream relayed from Redis.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backtest-systemv1/config"
	"backtest-systemv1/internal/api"
	"backtest-systemv1/internal/logger"
	"backtest-systemv1/internal/metrics"
	"backtest-systemv1/internal/provider"
	"backtest-systemv1/internal/ringbuf"
	redisstore "backtest-systemv1/internal/store/redis"
	sqlitestore "backtest-systemv1/internal/store/sqlite"
	"backtest-systemv1/internal/stream"
)

func main() {
	slogger := logger.Init("api-server", logger.ParseLevel(os.Getenv("LOG_LEVEL")))
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slogger.Info("shutdown requested")
		cancel()
	}()

	// Candle source: demo mode needs no credentials.
	var candleSrc provider.Provider
	if cfg.DemoMode {
		candleSrc = provider.NewDemoProvider()
		slogger.Info("demo mode: serving synthetic candles")
	} else {
		candleSrc = provider.NewClient(provider.Config{
			BaseURL:    cfg.ProviderBaseURL,
			APIKey:     cfg.ProviderAPIKey,
			ClientCode: cfg.ProviderClientCode,
			Password:   cfg.ProviderPassword,
			TOTPSecret: cfg.ProviderTOTPSecret,
		})
	}

	// Redis is optional: without it the server loses the series cache and
	// the live signal relay, but backtests still work.
	var rcache *redisstore.Cache
	if c, err := redisstore.New(redisstore.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}); err != nil {
		slogger.Warn("redis unavailable, continuing without cache/stream", slog.String("error", err.Error()))
	} else {
		rcache = c
		defer rcache.Close()
		candleSrc = provider.NewCached(candleSrc, rcache)
	}

	store, err := sqlitestore.New(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("[server] sqlite open failed: %v", err)
	}
	defer store.Close()

	m := metrics.New()
	health := metrics.NewHealthStatus()
	health.CheckSQLite(ctx, store.DB())
	if rcache != nil {
		health.CheckRedis(ctx, rcache.Client())
		health.StartLivenessChecker(ctx, rcache.Client(), store.DB(), 15*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, store.DB(), 15*time.Second)
	}
	go metrics.Serve(ctx, cfg.MetricsAddr, health)

	ring := ringbuf.New(100)
	hub := stream.NewHub()
	hub.OnCount = func(n int) { m.StreamClients.Set(float64(n)) }
	if rcache != nil {
		go hub.RunRedis(ctx, rcache.Client(), redisstore.SignalChannel, ring.Add)
	}

	mux := api.NewRouter(api.Deps{
		Provider: candleSrc,
		Store:    store,
		Ring:     ring,
		Hub:      hub,
		Metrics:  m,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slogger.Info("listening", slog.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[server] http server: %v", err)
	}
}
