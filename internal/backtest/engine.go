// Package backtest simulates a single-position trading strategy over a
// candle series and computes performance statistics.
//
// The simulator is a two-state machine (flat / in position) driven by a
// linear scan. Entries come from the buy rule set, exits from stop-loss,
// target, the sell rule set, or end of data, checked in that fixed order.
package backtest

import (
	"math"

	"backtest-systemv1/internal/indicator"
	"backtest-systemv1/internal/model"
	"backtest-systemv1/internal/rule"
)

const (
	// warmupBars are skipped at the start of every run so that indicators
	// with long periods are defined before the first evaluated bar.
	warmupBars = 50

	// maxReportedTrades bounds the trade list kept in the result for
	// presentation. Statistics are computed over the full list.
	maxReportedTrades = 100
)

// Config holds the simulator parameters. Zero fields fall back to defaults.
type Config struct {
	InitialCapital       float64 `json:"initial_capital"`        // default 100000
	PositionSizeFraction float64 `json:"position_size_fraction"` // default 0.10 of capital per trade
	StopLossPct          float64 `json:"stop_loss_pct"`          // default 2
	TargetPct            float64 `json:"target_pct"`             // default 4
}

// withDefaults fills unset config fields.
func (c Config) withDefaults() Config {
	if c.InitialCapital <= 0 {
		c.InitialCapital = 100000
	}
	if c.PositionSizeFraction <= 0 {
		c.PositionSizeFraction = 0.10
	}
	if c.StopLossPct <= 0 {
		c.StopLossPct = 2
	}
	if c.TargetPct <= 0 {
		c.TargetPct = 4
	}
	return c
}

// Run executes a backtest of the buy/sell rule sets over the candle series.
// Fewer bars than the warm-up yields an empty trade list, not an error; an
// unknown indicator kind in any rule fails the run.
func Run(candles model.Series, buyRules, sellRules []rule.Rule, cfg Config) (*model.BacktestResult, error) {
	cfg = cfg.withDefaults()
	cache := indicator.NewCache(candles)

	capital := cfg.InitialCapital
	var pos *model.Position
	var trades []model.Trade
	equity := make([]model.EquityPoint, 0, len(candles)+1)

	if len(candles) > 0 {
		equity = append(equity, model.EquityPoint{Index: 0, TS: candles[0].TS, Equity: capital})
	}

	closeAt := func(i int, reason model.ExitReason) {
		c := candles[i]
		pnl := pos.UnrealizedPnL(c.Close)
		capital += pnl
		trades = append(trades, model.Trade{
			EntryPrice: pos.EntryPrice,
			ExitPrice:  c.Close,
			EntryTS:    pos.EntryTS,
			ExitTS:     c.TS,
			Qty:        pos.Qty,
			PnL:        round2(pnl),
			PnLPct:     round2(pos.UnrealizedPnLPct(c.Close)),
			ExitReason: reason,
			BarsHeld:   i - pos.EntryIndex,
		})
		pos = nil
	}

	for i := warmupBars; i < len(candles); i++ {
		c := candles[i]

		if pos != nil {
			// Exit checks in fixed precedence: stop-loss, target, signal.
			pnlPct := pos.UnrealizedPnLPct(c.Close)
			switch {
			case pnlPct <= -cfg.StopLossPct:
				closeAt(i, model.ExitStopLoss)
			case pnlPct >= cfg.TargetPct:
				closeAt(i, model.ExitTargetHit)
			default:
				sell, err := rule.Satisfied(cache, sellRules, i)
				if err != nil {
					return nil, err
				}
				if sell {
					closeAt(i, model.ExitSignal)
				}
			}
		} else {
			buy, err := rule.Satisfied(cache, buyRules, i)
			if err != nil {
				return nil, err
			}
			if buy {
				qty := int64(math.Floor(capital * cfg.PositionSizeFraction / c.Close))
				if qty >= 1 {
					pos = &model.Position{
						EntryPrice: c.Close,
						EntryTS:    c.TS,
						EntryIndex: i,
						Qty:        qty,
					}
				}
			}
		}

		eq := capital
		if pos != nil {
			eq += pos.UnrealizedPnL(c.Close)
		}
		equity = append(equity, model.EquityPoint{Index: i, TS: c.TS, Equity: round2(eq)})
	}

	if pos != nil {
		closeAt(len(candles)-1, model.ExitEndOfData)
	}

	stats := computeStats(trades, equity, cfg.InitialCapital)

	reported := trades
	if len(reported) > maxReportedTrades {
		reported = reported[len(reported)-maxReportedTrades:]
	}

	return &model.BacktestResult{
		Trades:      reported,
		EquityCurve: equity,
		Stats:       stats,
	}, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
