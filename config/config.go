package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Upstream market-data API credentials
	ProviderAPIKey     string
	ProviderClientCode string
	ProviderPassword   string
	ProviderTOTPSecret string
	ProviderBaseURL    string

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
	HTTPAddr      string
	WebhookURL    string

	// Scanner
	Watchlist    string // comma-separated symbols
	ScanInterval time.Duration
	DemoMode     bool // serve synthetic candles instead of hitting the provider

	// Backtest defaults
	InitialCapital float64
}

// Load reads configuration from environment variables with sensible defaults.
// Provider credentials are only required when demo mode is off.
func Load() *Config {
	cfg := &Config{
		ProviderAPIKey:     getEnv("PROVIDER_API_KEY", ""),
		ProviderClientCode: getEnv("PROVIDER_CLIENT_CODE", ""),
		ProviderPassword:   getEnv("PROVIDER_PASSWORD", ""),
		ProviderTOTPSecret: getEnv("PROVIDER_TOTP_SECRET", ""),
		ProviderBaseURL:    getEnv("PROVIDER_BASE_URL", "https://apiconnect.angelone.in"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/backtest.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),

		Watchlist:    getEnv("WATCHLIST", "RELIANCE,TCS,INFY,HDFCBANK,ICICIBANK"),
		ScanInterval: getDuration("SCAN_INTERVAL", 5*time.Minute),
		DemoMode:     getBool("DEMO_MODE", true),

		InitialCapital: getFloat("INITIAL_CAPITAL", 100000),
	}

	if !cfg.DemoMode {
		for _, kv := range []struct{ key, val string }{
			{"PROVIDER_API_KEY", cfg.ProviderAPIKey},
			{"PROVIDER_CLIENT_CODE", cfg.ProviderClientCode},
			{"PROVIDER_PASSWORD", cfg.ProviderPassword},
			{"PROVIDER_TOTP_SECRET", cfg.ProviderTOTPSecret},
		} {
			if kv.val == "" {
				log.Fatalf("[config] required env var %s not set (DEMO_MODE=false)", kv.key)
			}
		}
	}
	return cfg
}

// ParseWatchlist splits the watchlist into trimmed, non-empty symbols.
func (c *Config) ParseWatchlist() []string {
	parts := strings.Split(c.Watchlist, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			symbols = append(symbols, p)
		}
	}
	return symbols
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[config] invalid bool for %s: %q, using %v", key, v, fallback)
		return fallback
	}
	return b
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("[config] invalid float for %s: %q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] invalid duration for %s: %q, using %v", key, v, fallback)
		return fallback
	}
	return d
}
