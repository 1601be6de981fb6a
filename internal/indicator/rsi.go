package indicator

import "backtest-systemv1/internal/model"

// computeRSI calculates the Relative Strength Index using Wilder's smoothing.
// The first period bars accumulate unsmoothed gain/loss sums; afterwards
// avgGain = (avgGain*(period-1) + gain) / period per bar. RSI is 100 when the
// average loss is zero.
func computeRSI(candles model.Series, p Params) Output {
	line := absentSeries(len(candles))
	period := float64(p.Period)

	var avgGain, avgLoss float64
	for i := 1; i < len(candles); i++ {
		delta := candles[i].Close - candles[i-1].Close
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}

		switch {
		case i < p.Period:
			avgGain += gain
			avgLoss += loss
			continue
		case i == p.Period:
			avgGain = (avgGain + gain) / period
			avgLoss = (avgLoss + loss) / period
		default:
			avgGain = (avgGain*(period-1) + gain) / period
			avgLoss = (avgLoss*(period-1) + loss) / period
		}

		if avgLoss == 0 {
			line[i] = 100
		} else {
			rs := avgGain / avgLoss
			line[i] = round2(100 - 100/(1+rs))
		}
	}
	return Output{Shape: ShapeOscillator, Line: line}
}
