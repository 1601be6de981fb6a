package indicator

import (
	"math"
	"testing"
	"time"

	"backtest-systemv1/internal/model"
)

// ────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────

// series builds candles with open=high=low=close for close-only indicators.
func series(closes ...float64) model.Series {
	s := make(model.Series, len(closes))
	base := time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC)
	for i, c := range closes {
		s[i] = model.Candle{
			TS: base.Add(time.Duration(i) * time.Minute),
			Open: c, High: c, Low: c, Close: c, Volume: 1000,
		}
	}
	return s
}

func hlcSeries(bars [][3]float64) model.Series {
	s := make(model.Series, len(bars))
	base := time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC)
	for i, b := range bars {
		s[i] = model.Candle{
			TS: base.Add(time.Duration(i) * time.Minute),
			Open: b[2], High: b[0], Low: b[1], Close: b[2], Volume: 1000,
		}
	}
	return s
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f)", label, got, want, tol)
	}
}

func assertAbsent(t *testing.T, label string, got float64) {
	t.Helper()
	if !IsAbsent(got) {
		t.Errorf("%s: got %.6f, want absent", label, got)
	}
}

// ────────────────────────────────────────────────────────────
// SMA
// ────────────────────────────────────────────────────────────

func TestSMA_Correctness_Period3(t *testing.T) {
	// Closes: 100, 102, 104, 103, 105
	// SMA(3) idx 2: (100+102+104)/3 = 102.0
	// SMA(3) idx 3: (102+104+103)/3 = 103.0
	// SMA(3) idx 4: (104+103+105)/3 = 104.0
	out, err := Compute(series(100, 102, 104, 103, 105), Spec{Kind: KindSMA, Params: Params{Period: 3}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertAbsent(t, "SMA idx0", out.Line[0])
	assertAbsent(t, "SMA idx1", out.Line[1])
	expected := []float64{102, 103, 104}
	for i, want := range expected {
		assertClose(t, "SMA(3)", out.Line[i+2], want, 0.0001)
	}
}

func TestSMA_ShortSeriesAllAbsent(t *testing.T) {
	out, err := Compute(series(100, 101, 102), Spec{Kind: KindSMA, Params: Params{Period: 5}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i, v := range out.Line {
		if !IsAbsent(v) {
			t.Errorf("idx %d: got %.2f, want absent for series shorter than period", i, v)
		}
	}
}

// ────────────────────────────────────────────────────────────
// EMA
// ────────────────────────────────────────────────────────────

func TestEMA_Correctness_Period3(t *testing.T) {
	// EMA(3): k = 2/(3+1) = 0.5
	// Seed idx 2 = SMA(3) = 102.0
	// idx 3: 103*0.5 + 102.0*0.5 = 102.5
	// idx 4: 105*0.5 + 102.5*0.5 = 103.75
	out, err := Compute(series(100, 102, 104, 103, 105), Spec{Kind: KindEMA, Params: Params{Period: 3}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertAbsent(t, "EMA idx1", out.Line[1])
	assertClose(t, "EMA seed", out.Line[2], 102.0, 0.0001)
	assertClose(t, "EMA idx3", out.Line[3], 102.5, 0.0001)
	assertClose(t, "EMA idx4", out.Line[4], 103.75, 0.0001)
}

func TestSMAEMA_ConstantSeriesConverge(t *testing.T) {
	// For a constant close series both SMA and EMA equal the constant at
	// every defined index.
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 250.5
	}
	s := series(closes...)

	for _, spec := range []Spec{
		{Kind: KindSMA, Params: Params{Period: 7}},
		{Kind: KindEMA, Params: Params{Period: 7}},
	} {
		out, err := Compute(s, spec)
		if err != nil {
			t.Fatalf("Compute %s: %v", spec.Kind, err)
		}
		for i := 6; i < len(closes); i++ {
			assertClose(t, spec.Name(), out.Line[i], 250.5, 0.0001)
		}
	}
}

// ────────────────────────────────────────────────────────────
// RSI (Wilder's method)
// ────────────────────────────────────────────────────────────

func TestRSI_Correctness_Period5(t *testing.T) {
	// Closes: 44, 44.34, 44.09, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84
	// Deltas: +0.34, -0.25, -0.48, +0.72, +0.50, +0.27, +0.32, +0.42
	// idx 5 (first defined): avgGain = (0.34+0.72+0.50)/5 = 0.312,
	//   avgLoss = (0.25+0.48)/5 = 0.146, RS = 2.1370, RSI = 68.12
	// idx 6: avgGain = (0.312*4+0.27)/5 = 0.3036, avgLoss = 0.1168, RSI = 72.22
	// idx 7: avgGain = 0.30688, avgLoss = 0.09344, RSI = 76.66
	// idx 8: avgGain = 0.329504, avgLoss = 0.074752, RSI = 81.51
	out, err := Compute(series(44, 44.34, 44.09, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84),
		Spec{Kind: KindRSI, Params: Params{Period: 5}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := 0; i < 5; i++ {
		assertAbsent(t, "RSI warm-up", out.Line[i])
	}
	expected := []float64{68.12, 72.22, 76.66, 81.51}
	for i, want := range expected {
		assertClose(t, "RSI(5)", out.Line[i+5], want, 0.01)
	}
}

func TestRSI_AllGainsIs100(t *testing.T) {
	out, err := Compute(series(10, 11, 12, 13, 14, 15, 16, 17),
		Spec{Kind: KindRSI, Params: Params{Period: 5}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertClose(t, "RSI all gains", out.Line[7], 100, 0.0001)
}

func TestRSI_AlwaysWithinBounds(t *testing.T) {
	// Pseudorandom walk: RSI must stay in [0, 100] wherever defined.
	closes := make([]float64, 120)
	price := 500.0
	for i := range closes {
		price += float64((i*7919)%13) - 6
		closes[i] = price
	}
	out, err := Compute(series(closes...), Spec{Kind: KindRSI, Params: Params{}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i, v := range out.Line {
		if IsAbsent(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Errorf("idx %d: RSI %.4f out of [0,100]", i, v)
		}
	}
}

// ────────────────────────────────────────────────────────────
// MACD
// ────────────────────────────────────────────────────────────

func TestMACD_LinearSeriesConstantHistogram(t *testing.T) {
	// A linearly increasing close series has constant first difference, so
	// every EMA tracks close minus a fixed lag and the MACD line is the
	// constant (slow-1)/2 - (fast-1)/2 = 7 once both EMAs are defined.
	// The histogram is likewise constant in the fully defined region.
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	out, err := Compute(series(closes...), Spec{Kind: KindMACD, Params: Params{}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	for i := 25; i < 60; i++ {
		assertClose(t, "MACD line", out.Line[i], 7.0, 0.01)
	}
	// Signal defined from idx 25+9-1 = 33.
	assertAbsent(t, "signal idx32", out.SignalLine[32])
	first := out.Histogram[33]
	if IsAbsent(first) {
		t.Fatal("histogram absent at idx 33")
	}
	for i := 34; i < 60; i++ {
		assertClose(t, "MACD histogram constant", out.Histogram[i], first, 0.01)
	}
}

func TestMACD_AbsentAlignment(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i%5)
	}
	out, err := Compute(series(closes...), Spec{Kind: KindMACD, Params: Params{}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// MACD line absent until the slow EMA (26) is defined.
	for i := 0; i < 25; i++ {
		assertAbsent(t, "MACD warm-up", out.Line[i])
	}
	if IsAbsent(out.Line[25]) {
		t.Error("MACD line should be defined at idx 25")
	}
	// Histogram absent wherever the signal line is absent.
	for i := 0; i < 33; i++ {
		assertAbsent(t, "histogram warm-up", out.Histogram[i])
	}
}

// ────────────────────────────────────────────────────────────
// Bollinger Bands
// ────────────────────────────────────────────────────────────

func TestBollinger_Correctness_Period3(t *testing.T) {
	// Closes 100, 102, 104 at idx 2: middle = 102,
	// population variance = ((-2)^2 + 0 + 2^2)/3 = 8/3, sd = 1.63299
	// upper = 102 + 2*1.63299 = 105.27, lower = 98.73
	out, err := Compute(series(100, 102, 104),
		Spec{Kind: KindBollinger, Params: Params{Period: 3, StdDev: 2}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if out.Shape != ShapeBand {
		t.Fatalf("shape = %s, want band", out.Shape)
	}
	assertClose(t, "BB middle", out.Middle[2], 102.0, 0.001)
	assertClose(t, "BB upper", out.Upper[2], 105.27, 0.001)
	assertClose(t, "BB lower", out.Lower[2], 98.73, 0.001)
	assertAbsent(t, "BB idx1", out.Middle[1])
}

// ────────────────────────────────────────────────────────────
// ATR
// ────────────────────────────────────────────────────────────

func TestATR_Correctness_Period3(t *testing.T) {
	// Bars (H, L, C): true ranges 2, 2, 2, 2, then 4.
	// Seed idx 3 = mean of first 4 TRs = 2.0
	// idx 4: (2*2 + 4)/3 = 2.67
	s := hlcSeries([][3]float64{
		{10, 8, 9},
		{11, 9, 10},
		{12, 10, 11},
		{13, 11, 12},
		{15, 11, 14},
	})
	out, err := Compute(s, Spec{Kind: KindATR, Params: Params{Period: 3}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertAbsent(t, "ATR idx2", out.Line[2])
	assertClose(t, "ATR seed", out.Line[3], 2.0, 0.0001)
	assertClose(t, "ATR idx4", out.Line[4], 2.67, 0.001)
}

func TestATR_NeverNegative(t *testing.T) {
	closes := make([]float64, 80)
	price := 300.0
	for i := range closes {
		price += float64((i*104729)%9) - 4
		closes[i] = price
	}
	out, err := Compute(series(closes...), Spec{Kind: KindATR, Params: Params{}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i, v := range out.Line {
		if !IsAbsent(v) && v < 0 {
			t.Errorf("idx %d: ATR %.4f negative", i, v)
		}
	}
}

// ────────────────────────────────────────────────────────────
// SuperTrend
// ────────────────────────────────────────────────────────────

func TestSuperTrend_FlatSeriesStaysUptrend(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	out, err := Compute(series(closes...),
		Spec{Kind: KindSuperTrend, Params: Params{Period: 2, Multiplier: 3}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertAbsent(t, "ST idx1", out.Line[1])
	for i := 2; i < 20; i++ {
		assertClose(t, "ST flat", out.Line[i], 100, 0.0001)
		if !out.Uptrend[i] {
			t.Errorf("idx %d: expected uptrend on flat series", i)
		}
	}
}

func TestSuperTrend_FlipsOnBreakdown(t *testing.T) {
	// Period 1, multiplier 1. ATR(1) seeds at idx 1 and then equals the TR.
	// idx 1: mid=11, bands 12/10, seeded tracking-lower → line 10, uptrend.
	// idx 2: close 12 stays above the lower band → still uptrend.
	// idx 3: close 8 crosses below the ratcheted lower band (10) → flip to
	//        tracking-upper, line = upper band 12.
	s := hlcSeries([][3]float64{
		{10, 10, 10},
		{12, 10, 12},
		{13, 11, 12},
		{9, 7, 8},
	})
	out, err := Compute(s, Spec{Kind: KindSuperTrend, Params: Params{Period: 1, Multiplier: 1}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertClose(t, "ST idx1", out.Line[1], 10, 0.0001)
	if !out.Uptrend[1] || !out.Uptrend[2] {
		t.Error("expected uptrend at idx 1-2")
	}
	assertClose(t, "ST idx2", out.Line[2], 10, 0.0001)
	if out.Uptrend[3] {
		t.Error("expected downtrend after breakdown at idx 3")
	}
	assertClose(t, "ST idx3 tracks upper band", out.Line[3], 12, 0.0001)
}

// ────────────────────────────────────────────────────────────
// VWAP
// ────────────────────────────────────────────────────────────

func TestVWAP_Correctness(t *testing.T) {
	// Bar 0: tp=(12+8+10)/3=10, v=100 → 10.0
	// Bar 1: tp=(22+18+20)/3=20, v=300 → (1000+6000)/400 = 17.5
	base := time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC)
	s := model.Series{
		{TS: base, Open: 10, High: 12, Low: 8, Close: 10, Volume: 100},
		{TS: base.Add(time.Minute), Open: 20, High: 22, Low: 18, Close: 20, Volume: 300},
	}
	out, err := Compute(s, Spec{Kind: KindVWAP})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertClose(t, "VWAP idx0", out.Line[0], 10.0, 0.0001)
	assertClose(t, "VWAP idx1", out.Line[1], 17.5, 0.0001)
}

func TestVWAP_ZeroVolumeAbsent(t *testing.T) {
	base := time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC)
	s := model.Series{
		{TS: base, Open: 10, High: 10, Low: 10, Close: 10, Volume: 0},
		{TS: base.Add(time.Minute), Open: 10, High: 10, Low: 10, Close: 10, Volume: 100},
	}
	out, err := Compute(s, Spec{Kind: KindVWAP})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertAbsent(t, "VWAP zero cumulative volume", out.Line[0])
	assertClose(t, "VWAP idx1", out.Line[1], 10, 0.0001)
}

// ────────────────────────────────────────────────────────────
// Dispatch
// ────────────────────────────────────────────────────────────

func TestCompute_UnknownKindFailsLoudly(t *testing.T) {
	_, err := Compute(series(1, 2, 3), Spec{Kind: "STOCHASTIC"})
	if err == nil {
		t.Fatal("expected error for unknown kind, got nil")
	}
}
