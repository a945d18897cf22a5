// Package render formats a gate outcome into the Markdown summary the
// CI job surfaces. Rendering is deterministic and never fails for a
// well-formed outcome.
package render

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/benchgate/benchgate/pkg/gate"
	"github.com/pkg/errors"
)

func fmtVal(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

func statusCell(violated gate.ViolatedRule) string {
	switch violated {
	case gate.RuleMargin:
		return "❌ REGRESSION"
	case gate.RuleHardCap:
		return "❌ HARD CAP"
	default:
		return "✅ OK"
	}
}

func thresholdCell(row gate.Row) string {
	if row.Direction == gate.HigherIsBetter {
		return ">= " + fmtVal(row.Threshold)
	}
	return "<= " + fmtVal(row.Threshold)
}

// Summary renders the verdict, the per-metric comparison table, any
// hard-cap breaches, and for skipped runs the rationale and the
// baseline path that was searched.
func Summary(o *gate.Outcome) string {
	var b strings.Builder

	switch {
	case o.Skipped:
		b.WriteString("## ⚠️ Benchmark Gate Skipped\n")
	case o.Passed:
		b.WriteString("## ✅ Benchmark Gate Passed\n")
	default:
		b.WriteString("## ❌ Benchmark Gate Failed\n")
	}

	if o.Rationale != "" {
		b.WriteString("\n")
		b.WriteString(o.Rationale)
		b.WriteString("\n")
	}
	if o.Skipped {
		fmt.Fprintf(&b, "\nSearched baseline path: `%s`\n", o.BaselinePath)
		return b.String()
	}

	if len(o.Rows) > 0 {
		b.WriteString("\n| Metric | Baseline | Current | Delta | Allowed | Status |\n")
		b.WriteString("|---|---:|---:|---:|---:|---|\n")
		for _, row := range o.Rows {
			fmt.Fprintf(&b, "| `%s` | %s | %s | %+.2f%% | %s | %s |\n",
				row.MetricKey,
				fmtVal(row.Baseline),
				fmtVal(row.Current),
				row.Delta*100,
				thresholdCell(row),
				statusCell(row.Violated),
			)
		}
	}

	var hardCaps []gate.Violation
	for _, v := range o.Violations {
		if v.Rule == gate.RuleHardCap {
			hardCaps = append(hardCaps, v)
		}
	}
	if len(hardCaps) > 0 {
		b.WriteString("\n### Hard Limit Violations\n")
		for _, v := range hardCaps {
			fmt.Fprintf(&b, "- `%s` = %s (limit %s)\n", v.MetricKey, fmtVal(v.CurrentValue), fmtVal(v.Threshold))
		}
	}

	if len(o.MissingInCurrent) > 0 {
		b.WriteString("\n### Metrics Missing From Current Run\n")
		for _, key := range o.MissingInCurrent {
			fmt.Fprintf(&b, "- `%s`\n", key)
		}
	}

	return b.String()
}

// WriteSummary persists the rendered summary, creating parent
// directories as needed. The file is overwritten each run.
func WriteSummary(path string, o *gate.Outcome) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create summary directory %s", dir)
		}
	}
	if err := ioutil.WriteFile(path, []byte(Summary(o)), 0644); err != nil {
		return errors.Wrapf(err, "write summary %s", path)
	}
	return nil
}
