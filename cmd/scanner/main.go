// cmd/scanner runs the periodic watchlist scan: every interval it fetches the
// latest candles per symbol, evaluates the rule set on the last bar, and fans
// matching signals out to Redis, the run log, and any configured webhook.
//
// Rules come from the RULES env var, e.g.
//
//	RULES="RSI:14:IS_BELOW:30"
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backtest-systemv1/config"
	"backtest-systemv1/internal/logger"
	"backtest-systemv1/internal/markethours"
	"backtest-systemv1/internal/metrics"
	"backtest-systemv1/internal/notification"
	"backtest-systemv1/internal/provider"
	"backtest-systemv1/internal/rule"
	"backtest-systemv1/internal/scanner"
	redisstore "backtest-systemv1/internal/store/redis"
)

const defaultRules = "RSI:14:IS_BELOW:30"

func main() {
	slogger := logger.Init("scanner", logger.ParseLevel(os.Getenv("LOG_LEVEL")))
	cfg := config.Load()

	ruleStr := os.Getenv("RULES")
	if ruleStr == "" {
		ruleStr = defaultRules
	}
	rules, err := rule.Parse(ruleStr)
	if err != nil {
		log.Fatalf("[scanner] bad RULES: %v", err)
	}
	if len(rules) == 0 {
		log.Fatal("[scanner] empty rule set can never signal")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slogger.Info("shutdown requested")
		cancel()
	}()

	var candleSrc provider.Provider
	if cfg.DemoMode {
		candleSrc = provider.NewDemoProvider()
		slogger.Info("demo mode: scanning synthetic candles")
	} else {
		candleSrc = provider.NewClient(provider.Config{
			BaseURL:    cfg.ProviderBaseURL,
			APIKey:     cfg.ProviderAPIKey,
			ClientCode: cfg.ProviderClientCode,
			Password:   cfg.ProviderPassword,
			TOTPSecret: cfg.ProviderTOTPSecret,
		})
	}

	var rcache *redisstore.Cache
	if c, err := redisstore.New(redisstore.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}); err != nil {
		slogger.Warn("redis unavailable, signals stay local", slog.String("error", err.Error()))
	} else {
		rcache = c
		defer rcache.Close()
		candleSrc = provider.NewCached(candleSrc, rcache)
	}

	backends := []notification.Notifier{notification.NewLogNotifier()}
	if cfg.WebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.WebhookURL))
	}
	notifier := notification.NewFanout(backends...)

	m := metrics.New()
	health := metrics.NewHealthStatus()
	health.SetSQLiteOK(true) // scanner has no sqlite dependency
	if rcache != nil {
		health.CheckRedis(ctx, rcache.Client())
		health.StartLivenessChecker(ctx, rcache.Client(), nil, 15*time.Second)
	}
	go metrics.Serve(ctx, cfg.MetricsAddr, health)

	symbols := cfg.ParseWatchlist()
	sc := scanner.New(candleSrc)
	sc.Hooks = scanner.Hooks{
		FetchError: func(string) { m.ProviderErrors.Inc() },
		Outcome:    func(_, result string) { m.ScanSymbols.WithLabelValues(result).Inc() },
	}
	slogger.Info("scanning",
		slog.Int("symbols", len(symbols)),
		slog.String("rules", ruleStr),
		slog.Duration("interval", cfg.ScanInterval))

	ticker := time.NewTicker(cfg.ScanInterval)
	defer ticker.Stop()

	runScan(ctx, sc, symbols, rules, rcache, notifier, m, health, cfg.DemoMode)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runScan(ctx, sc, symbols, rules, rcache, notifier, m, health, cfg.DemoMode)
		}
	}
}

// runScan executes one watchlist pass. Outside demo mode the scan is skipped
// while the market is closed.
func runScan(
	ctx context.Context,
	sc *scanner.Scanner,
	symbols []string,
	rules []rule.Rule,
	rcache *redisstore.Cache,
	notifier notification.Notifier,
	m *metrics.Metrics,
	health *metrics.HealthStatus,
	demoMode bool,
) {
	if !demoMode && !markethours.IsMarketOpen(time.Now()) {
		log.Printf("[scanner] market closed, next open %s",
			markethours.NextOpen(time.Now()).Format(time.RFC3339))
		return
	}

	start := time.Now()
	signals, err := sc.Scan(ctx, symbols, rules)
	if err != nil {
		log.Printf("[scanner] scan aborted: %v", err)
		return
	}
	m.ObserveScan(time.Since(start), len(signals))
	health.SetLastScan(time.Now())

	for _, sig := range signals {
		if rcache != nil {
			if err := rcache.PublishSignal(ctx, sig); err != nil {
				log.Printf("[scanner] publish failed: %v", err)
			}
		}
		notifier.Notify(ctx, sig)
	}
	log.Printf("[scanner] pass done: %d symbols, %d signals in %v",
		len(symbols), len(signals), time.Since(start).Round(time.Millisecond))
}
