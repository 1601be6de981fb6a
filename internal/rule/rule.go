// Package rule defines entry/exit rules and evaluates their conditions
// against indicator values at a given bar index.
package rule

import (
	"math"

	"backtest-systemv1/internal/indicator"
)

// Condition compares an indicator value against a threshold.
type Condition string

const (
	CrossesAbove Condition = "CROSSES_ABOVE"
	CrossesBelow Condition = "CROSSES_BELOW"
	IsAbove      Condition = "IS_ABOVE"
	IsBelow      Condition = "IS_BELOW"
	Equals       Condition = "EQUALS"
)

// equalsTolerance bounds the Equals comparison of rounded indicator values.
const equalsTolerance = 0.01

// Rule ties one indicator to a condition and threshold. A rule set is the
// AND of its rules; ordering is irrelevant.
type Rule struct {
	Indicator indicator.Spec `json:"indicator"`
	Condition Condition      `json:"condition"`
	Threshold float64        `json:"threshold"`
}

// Evaluate reports whether the rule's condition holds at bar index i.
// The indicator is resolved through the cache; band-shaped outputs are
// compared on their middle line. An absent current value is never a match.
// Cross conditions additionally require a present previous value.
func Evaluate(cache *indicator.Cache, r Rule, i int) (bool, error) {
	out, err := cache.Get(r.Indicator)
	if err != nil {
		return false, err
	}

	curr := out.Primary(i)
	if indicator.IsAbsent(curr) {
		return false, nil
	}
	prev := out.Primary(i - 1)

	switch r.Condition {
	case CrossesAbove:
		return !indicator.IsAbsent(prev) && prev <= r.Threshold && curr > r.Threshold, nil
	case CrossesBelow:
		return !indicator.IsAbsent(prev) && prev >= r.Threshold && curr < r.Threshold, nil
	case IsAbove:
		return curr > r.Threshold, nil
	case IsBelow:
		return curr < r.Threshold, nil
	case Equals:
		return math.Abs(curr-r.Threshold) < equalsTolerance, nil
	default:
		return false, nil
	}
}

// Satisfied reports whether every rule in the set holds at bar index i.
// An empty rule set can never signal.
func Satisfied(cache *indicator.Cache, rules []Rule, i int) (bool, error) {
	if len(rules) == 0 {
		return false, nil
	}
	for _, r := range rules {
		ok, err := Evaluate(cache, r, i)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
