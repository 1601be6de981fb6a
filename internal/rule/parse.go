package rule

import (
	"fmt"
	"strconv"
	"strings"

	"backtest-systemv1/internal/indicator"
)

// Parse builds a rule set from a compact spec string of the form
//
//	KIND:PERIOD:CONDITION:THRESHOLD[,KIND:PERIOD:CONDITION:THRESHOLD...]
//
// e.g. "RSI:14:IS_BELOW:30,SMA:20:CROSSES_ABOVE:150". PERIOD may be 0 to use
// the kind's default; MACD always uses its fast/slow/signal defaults here.
func Parse(s string) ([]Rule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var rules []Rule
	for _, part := range strings.Split(s, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 4 {
			return nil, fmt.Errorf("rule %q: want KIND:PERIOD:CONDITION:THRESHOLD", part)
		}
		period, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil || period < 0 {
			return nil, fmt.Errorf("rule %q: invalid period %q", part, fields[1])
		}
		threshold, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("rule %q: invalid threshold %q", part, fields[3])
		}

		spec := indicator.Spec{
			Kind:   indicator.Kind(strings.ToUpper(strings.TrimSpace(fields[0]))),
			Params: indicator.Params{Period: period},
		}
		if _, err := spec.Canonical(); err != nil {
			return nil, fmt.Errorf("rule %q: %w", part, err)
		}

		cond := Condition(strings.ToUpper(strings.TrimSpace(fields[2])))
		switch cond {
		case CrossesAbove, CrossesBelow, IsAbove, IsBelow, Equals:
		default:
			return nil, fmt.Errorf("rule %q: unknown condition %q", part, fields[2])
		}

		rules = append(rules, Rule{Indicator: spec, Condition: cond, Threshold: threshold})
	}
	return rules, nil
}
