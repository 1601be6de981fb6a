package indicator

import "backtest-systemv1/internal/model"

// computeMACD calculates the MACD line (fast EMA minus slow EMA), its signal
// line, and the histogram. The signal line is an EMA of the MACD line
// computed only over its valid prefix; every derived value stays absent
// wherever either operand is absent.
func computeMACD(candles model.Series, p Params) Output {
	closes := candles.Closes()
	fast := emaSeriesRaw(closes, p.Fast)
	slow := emaSeriesRaw(closes, p.Slow)

	macd := absentSeries(len(closes))
	firstValid := -1
	for i := range closes {
		if IsAbsent(fast[i]) || IsAbsent(slow[i]) {
			continue
		}
		if firstValid < 0 {
			firstValid = i
		}
		macd[i] = fast[i] - slow[i]
	}

	signal := absentSeries(len(closes))
	if firstValid >= 0 {
		sub := emaSeriesRaw(macd[firstValid:], p.Signal)
		copy(signal[firstValid:], sub)
	}

	hist := absentSeries(len(closes))
	for i := range closes {
		if !IsAbsent(macd[i]) && !IsAbsent(signal[i]) {
			hist[i] = round2(macd[i] - signal[i])
		}
		macd[i] = round2(macd[i])
		signal[i] = round2(signal[i])
	}

	return Output{
		Shape:      ShapeOscillator,
		Line:       macd,
		SignalLine: signal,
		Histogram:  hist,
	}
}
