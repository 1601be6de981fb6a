package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"

	"backtest-systemv1/internal/model"
)

const (
	loginPath   = "/rest/auth/angelbroking/user/v1/loginByPassword"
	candlesPath = "/rest/secure/angelbroking/historical/v1/getCandleData"

	candleInterval = "FIVE_MINUTE"
	lookbackBars   = 300
)

// Config holds the upstream API credentials and endpoint.
type Config struct {
	BaseURL    string
	APIKey     string
	ClientCode string
	Password   string
	TOTPSecret string // base32 secret used to mint login TOTP codes
	Timeout    time.Duration
}

// Client is an HTTP client for the broker's historical-data API. Sessions are
// established lazily with a password + TOTP login and reused until a request
// comes back unauthorized.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
}

// NewClient creates a provider client. Timeout defaults to 10s.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Candles fetches the recent candle series for symbol, logging in first if no
// session is active. The response is normalized: malformed rows dropped,
// ascending timestamp order, duplicates removed.
func (c *Client) Candles(ctx context.Context, symbol string) (model.Series, error) {
	token, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	to := time.Now().UTC()
	from := to.Add(-time.Duration(lookbackBars) * 5 * time.Minute)
	reqBody, _ := json.Marshal(map[string]string{
		"exchange":    "NSE",
		"symboltoken": symbol,
		"interval":    candleInterval,
		"fromdate":    from.Format("2006-01-02 15:04"),
		"todate":      to.Format("2006-01-02 15:04"),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+candlesPath, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("provider: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-PrivateKey", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider: fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.expireSession()
		return nil, fmt.Errorf("provider: session expired fetching %s (status %d)", symbol, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider: fetch %s: unexpected status %d", symbol, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("provider: read response: %w", err)
	}
	return parseCandles(symbol, body)
}

// session returns the current access token, performing the TOTP login flow on
// first use.
func (c *Client) session(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" {
		return c.accessToken, nil
	}

	code, err := totp.GenerateCode(c.cfg.TOTPSecret, time.Now())
	if err != nil {
		return "", fmt.Errorf("provider: generate totp: %w", err)
	}

	reqBody, _ := json.Marshal(map[string]string{
		"clientcode": c.cfg.ClientCode,
		"password":   c.cfg.Password,
		"totp":       code,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+loginPath, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("provider: create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-PrivateKey", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider: login: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Status bool `json:"status"`
		Data   struct {
			JWTToken string `json:"jwtToken"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("provider: decode login response: %w", err)
	}
	if !parsed.Status || parsed.Data.JWTToken == "" {
		return "", fmt.Errorf("provider: login rejected (status %d)", resp.StatusCode)
	}

	c.accessToken = parsed.Data.JWTToken
	log.Printf("[provider] session established for %s", c.cfg.ClientCode)
	return c.accessToken, nil
}

func (c *Client) expireSession() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

// parseCandles decodes the upstream row format
// [timestamp, open, high, low, close, volume] and normalizes the series.
// Rows with missing or non-numeric fields are dropped, not zero-filled.
func parseCandles(symbol string, body []byte) (model.Series, error) {
	var parsed struct {
		Status bool              `json:"status"`
		Data   [][]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("provider: decode candles for %s: %w", symbol, err)
	}

	candles := make([]model.Candle, 0, len(parsed.Data))
	dropped := 0
	for _, row := range parsed.Data {
		c, ok := parseRow(row)
		if !ok {
			dropped++
			continue
		}
		candles = append(candles, c)
	}
	if dropped > 0 {
		log.Printf("[provider] %s: dropped %d malformed rows", symbol, dropped)
	}
	return model.NormalizeSeries(candles), nil
}

func parseRow(row []json.RawMessage) (model.Candle, bool) {
	if len(row) < 6 {
		return model.Candle{}, false
	}
	var tsStr string
	if err := json.Unmarshal(row[0], &tsStr); err != nil {
		return model.Candle{}, false
	}
	ts, err := time.Parse(time.RFC3339, tsStr)
	if err != nil {
		return model.Candle{}, false
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		if err := json.Unmarshal(row[i+1], &vals[i]); err != nil {
			return model.Candle{}, false
		}
	}
	c := model.Candle{
		TS:     ts.UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}
	return c, c.Valid()
}
