package gate

import (
	"github.com/benchgate/benchgate/pkg/baseline"
	"github.com/benchgate/benchgate/pkg/report"
)

// ViolatedRule names which check a violation tripped.
type ViolatedRule string

const (
	RuleMargin  ViolatedRule = "margin"
	RuleHardCap ViolatedRule = "hard_cap"
)

// Violation records one metric breaching its rule. Immutable once
// produced; ordered by metric key for deterministic reporting.
type Violation struct {
	MetricKey     string
	BaselineValue float64
	CurrentValue  float64
	RelativeDelta float64
	Threshold     float64
	Rule          ViolatedRule
}

// Row is one compared metric as rendered in the summary table, whether
// or not it violated.
type Row struct {
	MetricKey string
	Baseline  float64
	Current   float64
	Delta     float64
	Threshold float64
	Direction Direction
	Violated  ViolatedRule // empty when the metric passed
}

// Outcome is the terminal artifact of one gate invocation.
type Outcome struct {
	Passed        bool
	BaselineFound bool
	BaselinePath  string
	Skipped       bool
	Rationale     string
	Violations    []Violation
	Rows          []Row

	// MissingInCurrent lists baseline metrics the current run did not
	// report. They never violate, but the summary calls them out: a
	// silently vanished metric can hide a regression.
	MissingInCurrent []string
}

// Compare diffs the current document against a resolved baseline under
// the rule table. Metrics without a specific rule use the default
// margin with lower-is-better direction. Metrics present in current but
// absent from baseline are informational only: new metrics must not
// fail old baselines. Only scalar metrics are compared; the collector
// flattens every series into its .median_ms/.p90_ms/.p95_ms/.avg_ms
// scalars, which is what the rule table addresses.
func Compare(current *report.Document, res baseline.Resolution, rules RuleTable) *Outcome {
	outcome := &Outcome{
		Passed:        true,
		BaselineFound: res.Found,
		BaselinePath:  res.Path,
	}
	if !res.Found {
		return outcome
	}

	for _, key := range current.SortedMetricKeys() {
		cur, ok := current.Metrics[key].ScalarValue()
		if !ok {
			continue
		}
		baseVal, ok := res.Doc.Metrics[key]
		if !ok {
			continue
		}
		base, ok := baseVal.ScalarValue()
		if !ok {
			continue
		}
		outcome.addRow(key, base, cur, rules.RuleFor(key))
	}

	for _, key := range res.Doc.SortedMetricKeys() {
		if _, ok := res.Doc.Metrics[key].ScalarValue(); !ok {
			continue
		}
		if _, ok := current.Metrics[key]; !ok {
			outcome.MissingInCurrent = append(outcome.MissingInCurrent, key)
		}
	}

	outcome.Passed = len(outcome.Violations) == 0
	return outcome
}

func (o *Outcome) addRow(key string, base, cur float64, rule Rule) {
	row := Row{
		MetricKey: key,
		Baseline:  base,
		Current:   cur,
		Direction: rule.Direction,
	}
	if base != 0 {
		row.Delta = (cur - base) / base
	}

	// The hard cap is an absolute SLA: it wins over the relative margin
	// in both directions. A zero baseline makes the relative check
	// undefined, leaving the hard cap as the only check.
	switch rule.Direction {
	case HigherIsBetter:
		row.Threshold = base * (1 - rule.Margin)
		if rule.HardCap != nil && cur < *rule.HardCap {
			row.Violated = RuleHardCap
			row.Threshold = *rule.HardCap
		} else if base != 0 && cur < base*(1-rule.Margin) {
			row.Violated = RuleMargin
		}
	default:
		row.Threshold = base * (1 + rule.Margin)
		if rule.HardCap != nil && cur > *rule.HardCap {
			row.Violated = RuleHardCap
			row.Threshold = *rule.HardCap
		} else if base != 0 && cur > base*(1+rule.Margin) {
			row.Violated = RuleMargin
		}
	}

	o.Rows = append(o.Rows, row)
	if row.Violated != "" {
		o.Violations = append(o.Violations, Violation{
			MetricKey:     key,
			BaselineValue: base,
			CurrentValue:  cur,
			RelativeDelta: row.Delta,
			Threshold:     row.Threshold,
			Rule:          row.Violated,
		})
	}
}
