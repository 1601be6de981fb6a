package indicator

import (
	"math"

	"backtest-systemv1/internal/model"
)

// trueRanges returns the per-bar true range series:
// max(high-low, |high-prevClose|, |low-prevClose|), high-low for the first bar.
func trueRanges(candles model.Series) []float64 {
	tr := make([]float64, len(candles))
	for i, c := range candles {
		if i == 0 {
			tr[i] = c.High - c.Low
			continue
		}
		prevClose := candles[i-1].Close
		tr[i] = math.Max(c.High-c.Low,
			math.Max(math.Abs(c.High-prevClose), math.Abs(c.Low-prevClose)))
	}
	return tr
}

// atrSeriesRaw computes an unrounded ATR: seed = simple mean of the first
// period+1 true ranges, then Wilder smoothing
// atr[i] = (atr[i-1]*(period-1) + tr[i]) / period. Reused by SuperTrend.
func atrSeriesRaw(candles model.Series, period int) []float64 {
	line := absentSeries(len(candles))
	if len(candles) <= period {
		return line
	}
	tr := trueRanges(candles)

	seed := 0.0
	for i := 0; i <= period; i++ {
		seed += tr[i]
	}
	line[period] = seed / float64(period+1)

	for i := period + 1; i < len(candles); i++ {
		line[i] = (line[i-1]*float64(period-1) + tr[i]) / float64(period)
	}
	return line
}

// computeATR calculates the Average True Range.
func computeATR(candles model.Series, p Params) Output {
	line := atrSeriesRaw(candles, p.Period)
	for i := range line {
		line[i] = round2(line[i])
	}
	return Output{Shape: ShapeLine, Line: line}
}
