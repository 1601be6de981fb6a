package indicator

import "backtest-systemv1/internal/model"

// computeSMA calculates the Simple Moving Average of closing prices.
// Maintains a running window sum so the scan is O(n) regardless of period.
func computeSMA(candles model.Series, p Params) Output {
	line := absentSeries(len(candles))
	sum := 0.0
	for i, c := range candles {
		sum += c.Close
		if i >= p.Period {
			sum -= candles[i-p.Period].Close
		}
		if i >= p.Period-1 {
			line[i] = round2(sum / float64(p.Period))
		}
	}
	return Output{Shape: ShapeLine, Line: line}
}
