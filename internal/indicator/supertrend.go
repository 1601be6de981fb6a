package indicator

import "backtest-systemv1/internal/model"

// bandTag names which band the SuperTrend is currently tracking. The tag
// replaces the float-equality trend test some implementations use; the flip
// decision never compares band values for equality.
type bandTag int

const (
	trackingLower bandTag = iota // uptrend: the lower band trails price
	trackingUpper                // downtrend: the upper band caps price
)

// superTrendState is the per-step fold state: the ratcheted bands and the
// active-band tag.
type superTrendState struct {
	upper float64
	lower float64
	tag   bandTag
}

// superTrendStep advances the state by one bar. A band only moves toward
// price, never away, unless the previous close crossed it; the trend flips
// when the close crosses the currently active band.
func superTrendStep(st superTrendState, basicUpper, basicLower, prevClose, close float64) superTrendState {
	next := st

	if basicUpper < st.upper || prevClose > st.upper {
		next.upper = basicUpper
	}
	if basicLower > st.lower || prevClose < st.lower {
		next.lower = basicLower
	}

	switch st.tag {
	case trackingLower:
		if close < next.lower {
			next.tag = trackingUpper
		}
	case trackingUpper:
		if close > next.upper {
			next.tag = trackingLower
		}
	}
	return next
}

// computeSuperTrend derives the SuperTrend from ATR and the bar midpoint
// (high+low)/2. It emits the active band value per bar plus the trend flag.
// The first defined bar starts in an uptrend tracking the lower band.
func computeSuperTrend(candles model.Series, p Params) Output {
	n := len(candles)
	line := absentSeries(n)
	uptrend := make([]bool, n)

	atr := atrSeriesRaw(candles, p.Period)
	seeded := false
	var st superTrendState
	for i, c := range candles {
		if IsAbsent(atr[i]) {
			continue
		}
		mid := (c.High + c.Low) / 2
		basicUpper := mid + p.Multiplier*atr[i]
		basicLower := mid - p.Multiplier*atr[i]

		if !seeded {
			st = superTrendState{upper: basicUpper, lower: basicLower, tag: trackingLower}
			seeded = true
		} else {
			st = superTrendStep(st, basicUpper, basicLower, candles[i-1].Close, c.Close)
		}

		uptrend[i] = st.tag == trackingLower
		if st.tag == trackingLower {
			line[i] = round2(st.lower)
		} else {
			line[i] = round2(st.upper)
		}
	}

	return Output{Shape: ShapeLine, Line: line, Uptrend: uptrend}
}
