package backtest

import (
	"math"

	"backtest-systemv1/internal/model"
)

// profitFactorCap is the saturating value reported when there are winning
// trades but no losing ones.
const profitFactorCap = 9999

// computeStats aggregates performance metrics over the full trade list and
// equity curve. Monetary figures are rounded to whole units, percentages and
// ratios to 2 decimals.
func computeStats(trades []model.Trade, equity []model.EquityPoint, initialCapital float64) model.Stats {
	var s model.Stats
	s.TotalTrades = len(trades)

	var sumWin, sumLoss float64
	for _, t := range trades {
		if t.PnL > 0 {
			s.WinningTrades++
			sumWin += t.PnL
		} else {
			s.LosingTrades++
			sumLoss += t.PnL
		}
		s.TotalPnL += t.PnL
	}

	if s.TotalTrades > 0 {
		s.WinRatePct = round2(float64(s.WinningTrades) / float64(s.TotalTrades) * 100)
	}
	if s.WinningTrades > 0 {
		s.AverageWin = math.Round(sumWin / float64(s.WinningTrades))
	}
	if s.LosingTrades > 0 {
		s.AverageLoss = math.Round(sumLoss / float64(s.LosingTrades))
	}
	if initialCapital > 0 {
		s.NetReturnPct = round2(s.TotalPnL / initialCapital * 100)
	}
	s.TotalPnL = math.Round(s.TotalPnL)

	s.ProfitFactor = profitFactor(sumWin, sumLoss)
	s.MaxDrawdownPct = maxDrawdown(equity)
	s.SharpeRatio = sharpeRatio(equity)
	return s
}

// profitFactor is |gross wins / gross losses|: 0 with no wins and no losses,
// saturating at profitFactorCap with wins but no losses.
func profitFactor(sumWin, sumLoss float64) float64 {
	if sumLoss == 0 {
		if sumWin > 0 {
			return profitFactorCap
		}
		return 0
	}
	return round2(math.Abs(sumWin / sumLoss))
}

// maxDrawdown returns the deepest peak-to-trough decline percent over the
// equity curve, recomputing the running peak forward.
func maxDrawdown(equity []model.EquityPoint) float64 {
	var peak, maxDD float64
	for _, p := range equity {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return round2(maxDD)
}

// sharpeRatio annualizes mean/stddev of per-point equity returns by sqrt(252).
// Returns 0 when fewer than 2 return samples exist or variance is zero.
func sharpeRatio(equity []model.EquityPoint) float64 {
	if len(equity) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1].Equity == 0 {
			continue
		}
		returns = append(returns, (equity[i].Equity-equity[i-1].Equity)/equity[i-1].Equity)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	if variance == 0 {
		return 0
	}

	return round2(mean / math.Sqrt(variance) * math.Sqrt(252))
}
