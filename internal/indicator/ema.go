package indicator

import "backtest-systemv1/internal/model"

// emaState carries the fold state for the EMA recurrence.
type emaState struct {
	sum    float64 // accumulating toward the SMA seed
	prev   float64 // last EMA value once seeded
	seeded bool
}

// emaStep advances the EMA fold by one close price. Seed value is the SMA of
// the first period closes; thereafter ema = close*k + prev*(1-k).
func emaStep(st emaState, close float64, i, period int, k float64) emaState {
	if !st.seeded {
		st.sum += close
		if i == period-1 {
			st.prev = st.sum / float64(period)
			st.seeded = true
		}
		return st
	}
	st.prev = close*k + st.prev*(1-k)
	return st
}

// computeEMA calculates the Exponential Moving Average of closing prices.
func computeEMA(candles model.Series, p Params) Output {
	line := emaSeriesRaw(candles.Closes(), p.Period)
	for i := range line {
		line[i] = round2(line[i])
	}
	return Output{Shape: ShapeLine, Line: line}
}

// emaSeriesRaw computes an unrounded EMA over an arbitrary value slice, with
// absent markers inside the warm-up. Reused by MACD for its component lines.
func emaSeriesRaw(values []float64, period int) []float64 {
	line := absentSeries(len(values))
	k := 2.0 / float64(period+1)
	st := emaState{}
	for i, v := range values {
		st = emaStep(st, v, i, period, k)
		if st.seeded {
			line[i] = st.prev
		}
	}
	return line
}
