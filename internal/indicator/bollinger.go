package indicator

import (
	"math"

	"backtest-systemv1/internal/model"
)

// computeBollinger calculates Bollinger Bands: middle = SMA(period), band
// half-width = stdDev multiplier times the population standard deviation of
// the trailing window.
func computeBollinger(candles model.Series, p Params) Output {
	n := len(candles)
	upper := absentSeries(n)
	middle := absentSeries(n)
	lower := absentSeries(n)

	for i := p.Period - 1; i < n; i++ {
		window := candles[i-p.Period+1 : i+1]
		sum := 0.0
		for _, c := range window {
			sum += c.Close
		}
		mean := sum / float64(p.Period)

		variance := 0.0
		for _, c := range window {
			d := c.Close - mean
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(p.Period))

		middle[i] = round2(mean)
		upper[i] = round2(mean + p.StdDev*sd)
		lower[i] = round2(mean - p.StdDev*sd)
	}

	return Output{
		Shape:  ShapeBand,
		Line:   middle,
		Upper:  upper,
		Middle: middle,
		Lower:  lower,
	}
}
