package model

import "time"

// ExitReason explains why a position was closed.
type ExitReason string

const (
	ExitStopLoss  ExitReason = "STOP_LOSS"
	ExitTargetHit ExitReason = "TARGET_HIT"
	ExitSignal    ExitReason = "SIGNAL_EXIT"
	ExitEndOfData ExitReason = "END_OF_DATA"
)

// Position represents the single open position during a backtest run.
// Only long positions are modeled.
type Position struct {
	EntryPrice float64   `json:"entry_price"`
	EntryTS    time.Time `json:"entry_ts"`
	EntryIndex int       `json:"entry_index"`
	Qty        int64     `json:"qty"` // share count, >= 1
}

// UnrealizedPnL returns the open profit/loss at the given price.
func (p *Position) UnrealizedPnL(price float64) float64 {
	return (price - p.EntryPrice) * float64(p.Qty)
}

// UnrealizedPnLPct returns the open profit/loss as a percentage of entry.
func (p *Position) UnrealizedPnLPct(price float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	return (price - p.EntryPrice) / p.EntryPrice * 100
}

// Trade is an immutable record of a closed position.
type Trade struct {
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  float64    `json:"exit_price"`
	EntryTS    time.Time  `json:"entry_ts"`
	ExitTS     time.Time  `json:"exit_ts"`
	Qty        int64      `json:"qty"`
	PnL        float64    `json:"pnl"`
	PnLPct     float64    `json:"pnl_pct"`
	ExitReason ExitReason `json:"exit_reason"`
	BarsHeld   int        `json:"bars_held"`
}

// EquityPoint is one sample of the running account value: realized capital
// plus the unrealized P&L of any open position.
type EquityPoint struct {
	Index  int       `json:"index"`
	TS     time.Time `json:"ts"`
	Equity float64   `json:"equity"`
}

// Stats summarizes backtest performance over the full trade list.
type Stats struct {
	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRatePct     float64 `json:"win_rate_pct"`
	TotalPnL       float64 `json:"total_pnl"`
	NetReturnPct   float64 `json:"net_return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	AverageWin     float64 `json:"average_win"`
	AverageLoss    float64 `json:"average_loss"`
	ProfitFactor   float64 `json:"profit_factor"`
}

// BacktestResult is the read-only snapshot produced by one backtest run.
// Trades keeps only the most recent 100 closed trades for presentation;
// Stats is computed over the full trade list before truncation.
type BacktestResult struct {
	Trades      []Trade       `json:"trades"`
	EquityCurve []EquityPoint `json:"equity_curve"`
	Stats       Stats         `json:"stats"`
}
