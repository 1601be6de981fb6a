// Package indicator provides technical indicator calculations over candle data.
//
// Each indicator maps a candle series plus a parameter record to one or more
// output series aligned index-for-index with the input. Positions inside an
// indicator's warm-up hold an explicit absent marker (NaN), never zero.
// All emitted values are rounded to 2 decimal places.
package indicator

import (
	"errors"
	"fmt"
	"math"

	"backtest-systemv1/internal/model"
)

// Kind identifies an indicator from the closed supported set.
type Kind string

const (
	KindSMA        Kind = "SMA"
	KindEMA        Kind = "EMA"
	KindRSI        Kind = "RSI"
	KindMACD       Kind = "MACD"
	KindBollinger  Kind = "BOLLINGER"
	KindATR        Kind = "ATR"
	KindSuperTrend Kind = "SUPERTREND"
	KindVWAP       Kind = "VWAP"
)

// ErrUnknownKind is returned for an indicator kind outside the supported set.
// An unknown kind fails loudly; it never silently yields an empty series.
var ErrUnknownKind = errors.New("indicator: unknown kind")

// Shape tags the structure of an indicator's output.
type Shape string

const (
	ShapeLine       Shape = "line"       // single series
	ShapeOscillator Shape = "oscillator" // single bounded/unbounded series
	ShapeBand       Shape = "band"       // upper/middle/lower triple
)

// Params is the parameter record shared by all indicator kinds. Only the
// fields relevant to a kind are used; canonicalization zeroes the rest and
// fills documented defaults so that a Params value is a stable map key.
type Params struct {
	Period     int     // SMA(20), EMA(9), RSI(14), Bollinger(20), ATR(14), SuperTrend(10)
	Fast       int     // MACD fast EMA period (12)
	Slow       int     // MACD slow EMA period (26)
	Signal     int     // MACD signal EMA period (9)
	StdDev     float64 // Bollinger band width in standard deviations (2)
	Multiplier float64 // SuperTrend ATR multiplier (3)
}

// Spec names one indicator computation: a kind plus its parameters.
// Specs are comparable and, once canonicalized, usable directly as cache keys.
type Spec struct {
	Kind   Kind
	Params Params
}

// Canonical returns the spec with defaults filled and fields irrelevant to
// the kind zeroed, so that equivalent specs compare equal. Returns
// ErrUnknownKind for kinds outside the supported set.
func (s Spec) Canonical() (Spec, error) {
	p := s.Params
	out := Spec{Kind: s.Kind}
	switch s.Kind {
	case KindSMA:
		out.Params.Period = defaultInt(p.Period, 20)
	case KindEMA:
		out.Params.Period = defaultInt(p.Period, 9)
	case KindRSI:
		out.Params.Period = defaultInt(p.Period, 14)
	case KindMACD:
		out.Params.Fast = defaultInt(p.Fast, 12)
		out.Params.Slow = defaultInt(p.Slow, 26)
		out.Params.Signal = defaultInt(p.Signal, 9)
	case KindBollinger:
		out.Params.Period = defaultInt(p.Period, 20)
		out.Params.StdDev = defaultFloat(p.StdDev, 2)
	case KindATR:
		out.Params.Period = defaultInt(p.Period, 14)
	case KindSuperTrend:
		out.Params.Period = defaultInt(p.Period, 10)
		out.Params.Multiplier = defaultFloat(p.Multiplier, 3)
	case KindVWAP:
		// no parameters
	default:
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
	return out, nil
}

// Name returns a display name like "SMA_20" or "MACD_12_26_9".
func (s Spec) Name() string {
	c, err := s.Canonical()
	if err != nil {
		return string(s.Kind)
	}
	switch c.Kind {
	case KindMACD:
		return fmt.Sprintf("MACD_%d_%d_%d", c.Params.Fast, c.Params.Slow, c.Params.Signal)
	case KindVWAP:
		return "VWAP"
	default:
		return fmt.Sprintf("%s_%d", c.Kind, c.Params.Period)
	}
}

// Output holds one or more series aligned with the input candles.
// Line carries the primary series for every shape: the indicator value for
// line/oscillator shapes and the active band for SuperTrend. Band shapes
// additionally fill Upper/Middle/Lower; MACD additionally fills SignalLine
// and Histogram; SuperTrend additionally fills Uptrend.
type Output struct {
	Shape Shape
	Line  []float64

	Upper  []float64
	Middle []float64
	Lower  []float64

	SignalLine []float64
	Histogram  []float64

	Uptrend []bool
}

// Primary returns the value used for rule evaluation at index i: the middle
// line for band shapes, the Line series otherwise.
func (o *Output) Primary(i int) float64 {
	if i < 0 || i >= len(o.Line) {
		return Absent()
	}
	if o.Shape == ShapeBand {
		return o.Middle[i]
	}
	return o.Line[i]
}

// Absent returns the explicit "not yet computable" marker used for warm-up
// positions. It is distinct from zero and propagates through arithmetic.
func Absent() float64 { return math.NaN() }

// IsAbsent reports whether v is the absent marker.
func IsAbsent(v float64) bool { return math.IsNaN(v) }

// computeFn maps a candle series and canonical parameters to an Output.
type computeFn func(model.Series, Params) Output

// dispatch maps each supported kind to its computation. Adding an indicator
// means adding one Kind constant, one compute function, and one entry here.
var dispatch = map[Kind]computeFn{
	KindSMA:        computeSMA,
	KindEMA:        computeEMA,
	KindRSI:        computeRSI,
	KindMACD:       computeMACD,
	KindBollinger:  computeBollinger,
	KindATR:        computeATR,
	KindSuperTrend: computeSuperTrend,
	KindVWAP:       computeVWAP,
}

// Compute evaluates the indicator named by spec over the candle series.
// The output length always equals len(candles); a series shorter than the
// warm-up yields an all-absent output, not an error.
func Compute(candles model.Series, spec Spec) (Output, error) {
	c, err := spec.Canonical()
	if err != nil {
		return Output{}, err
	}
	fn := dispatch[c.Kind]
	return fn(candles, c.Params), nil
}

// round2 rounds to 2 decimal places at the point of emission. The absent
// marker passes through unchanged.
func round2(v float64) float64 {
	if IsAbsent(v) {
		return v
	}
	return math.Round(v*100) / 100
}

// absentSeries returns a length-n series of absent markers.
func absentSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = Absent()
	}
	return s
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func defaultFloat(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
