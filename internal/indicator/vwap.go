package indicator

import "backtest-systemv1/internal/model"

// computeVWAP calculates the Volume Weighted Average Price: cumulative
// (typical price x volume) over cumulative volume from the start of the
// series, typical price = (high+low+close)/3. Bars with zero cumulative
// volume so far are absent, never zero.
func computeVWAP(candles model.Series, _ Params) Output {
	line := absentSeries(len(candles))
	var cumPV, cumVol float64
	for i, c := range candles {
		typical := (c.High + c.Low + c.Close) / 3
		cumPV += typical * c.Volume
		cumVol += c.Volume
		if cumVol > 0 {
			line[i] = round2(cumPV / cumVol)
		}
	}
	return Output{Shape: ShapeLine, Line: line}
}
