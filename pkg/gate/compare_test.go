package gate

import (
	"math"
	"sort"
	"testing"

	"github.com/benchgate/benchgate/pkg/baseline"
	"github.com/benchgate/benchgate/pkg/report"
)

func doc(metrics map[string]float64) *report.Document {
	d := &report.Document{
		Metadata: report.Metadata{Mode: report.ModeSynthetic},
		Metrics:  map[string]report.Value{},
	}
	for k, v := range metrics {
		d.Metrics[k] = report.Scalar(v)
	}
	return d
}

func found(d *report.Document) baseline.Resolution {
	return baseline.Resolution{
		Path:   "benchmark/baselines/linux-synthetic.json",
		Source: baseline.SourcePlatform,
		Found:  true,
		Doc:    d,
	}
}

func TestCompareWithinMarginPasses(t *testing.T) {
	// cold_start.p95_ms has a 25% margin: 115 against 100 is inside it.
	cur := doc(map[string]float64{"cold_start.p95_ms": 115})
	base := doc(map[string]float64{"cold_start.p95_ms": 100})

	out := Compare(cur, found(base), DefaultRules())
	if !out.Passed {
		t.Fatalf("expected pass, got violations: %+v", out.Violations)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("rows: got %d want 1", len(out.Rows))
	}
	if got := out.Rows[0].Delta; math.Abs(got-0.15) > 1e-9 {
		t.Errorf("delta: got %v want 0.15", got)
	}
}

func TestCompareDefaultMarginViolation(t *testing.T) {
	// ttft.median_ms has no specific margin: default 20% puts the
	// threshold at 120, and 130 breaches it with a 0.30 delta.
	cur := doc(map[string]float64{"ttft.median_ms": 130})
	base := doc(map[string]float64{"ttft.median_ms": 100})

	out := Compare(cur, found(base), DefaultRules())
	if out.Passed {
		t.Fatalf("expected violation")
	}
	if len(out.Violations) != 1 {
		t.Fatalf("violations: got %d want 1", len(out.Violations))
	}
	v := out.Violations[0]
	if v.MetricKey != "ttft.median_ms" || v.Rule != RuleMargin {
		t.Errorf("got key=%q rule=%q", v.MetricKey, v.Rule)
	}
	if math.Abs(v.RelativeDelta-0.30) > 1e-9 {
		t.Errorf("relative delta: got %v want 0.30", v.RelativeDelta)
	}
	if math.Abs(v.Threshold-120) > 1e-9 {
		t.Errorf("threshold: got %v want 120", v.Threshold)
	}
}

func TestCompareHardCapWinsOverMargin(t *testing.T) {
	// 130 against a 110 baseline is inside cold_start's 25% margin
	// (allowed 137.5) but over the 120ms hard cap: the cap is an SLA
	// and must fire regardless.
	cur := doc(map[string]float64{"cold_start.p95_ms": 130})
	base := doc(map[string]float64{"cold_start.p95_ms": 110})

	out := Compare(cur, found(base), DefaultRules())
	if out.Passed {
		t.Fatalf("expected hard cap violation")
	}
	v := out.Violations[0]
	if v.Rule != RuleHardCap {
		t.Errorf("rule: got %q want %q", v.Rule, RuleHardCap)
	}
	if v.Threshold != 120 {
		t.Errorf("threshold: got %v want 120", v.Threshold)
	}
}

func TestCompareEqualNeverViolates(t *testing.T) {
	cur := doc(map[string]float64{
		"tool.exec.p95_ms":        50,
		"cache.response.hit_rate": 0.9,
	})
	base := doc(map[string]float64{
		"tool.exec.p95_ms":        50,
		"cache.response.hit_rate": 0.9,
	})

	out := Compare(cur, found(base), DefaultRules())
	if !out.Passed {
		t.Errorf("current == baseline must pass in both directions, got %+v", out.Violations)
	}
}

func TestCompareHigherIsBetterMirror(t *testing.T) {
	cases := []struct {
		desc    string
		current float64
		passed  bool
	}{
		{desc: "small drop inside margin", current: 0.75, passed: true},
		{desc: "drop beyond 20% margin", current: 0.60, passed: false},
		{desc: "improvement", current: 0.95, passed: true},
	}
	for _, c := range cases {
		cur := doc(map[string]float64{"cache.response.hit_rate": c.current})
		base := doc(map[string]float64{"cache.response.hit_rate": 0.80})

		out := Compare(cur, found(base), DefaultRules())
		if out.Passed != c.passed {
			t.Errorf("%s: passed=%v want %v (violations %+v)", c.desc, out.Passed, c.passed, out.Violations)
		}
	}
}

func TestCompareHardCapIsFloorForHigherIsBetter(t *testing.T) {
	floor := 0.5
	rules := RuleTable{
		DefaultMargin: 0.20,
		Rules: map[string]Rule{
			"memory.recall.hit_at_k": {Direction: HigherIsBetter, HardCap: &floor},
		},
	}
	// 0.45 is within 20% of the 0.5 baseline but under the absolute floor.
	cur := doc(map[string]float64{"memory.recall.hit_at_k": 0.45})
	base := doc(map[string]float64{"memory.recall.hit_at_k": 0.50})

	out := Compare(cur, found(base), rules)
	if out.Passed {
		t.Fatalf("expected floor violation")
	}
	if out.Violations[0].Rule != RuleHardCap {
		t.Errorf("rule: got %q want %q", out.Violations[0].Rule, RuleHardCap)
	}
}

func TestCompareZeroBaselineIsHardCapOnly(t *testing.T) {
	limit := 10.0
	rules := RuleTable{
		DefaultMargin: 0.20,
		Rules: map[string]Rule{
			"provider.retry_count": {HardCap: &limit},
		},
	}
	// Any increase over a zero baseline is an infinite relative delta;
	// the margin check is skipped and only the cap applies.
	cur := doc(map[string]float64{"provider.retry_count": 5, "circuitbreaker.open_count": 3})
	base := doc(map[string]float64{"provider.retry_count": 0, "circuitbreaker.open_count": 0})

	out := Compare(cur, found(base), rules)
	if !out.Passed {
		t.Fatalf("zero baseline under cap must pass, got %+v", out.Violations)
	}

	cur = doc(map[string]float64{"provider.retry_count": 15})
	out = Compare(cur, found(base), rules)
	if out.Passed || out.Violations[0].Rule != RuleHardCap {
		t.Errorf("expected hard cap violation over zero baseline, got %+v", out.Violations)
	}
}

func TestCompareNewMetricIsInformational(t *testing.T) {
	cur := doc(map[string]float64{"http.ttfb_ms": 250, "ttft.median_ms": 30})
	base := doc(map[string]float64{"ttft.median_ms": 30})

	out := Compare(cur, found(base), DefaultRules())
	if !out.Passed {
		t.Errorf("new metric must not fail an old baseline: %+v", out.Violations)
	}
	if len(out.Rows) != 1 {
		t.Errorf("rows: got %d want 1 (only shared metrics compared)", len(out.Rows))
	}
}

func TestCompareMissingMetricRecordedNotViolated(t *testing.T) {
	cur := doc(map[string]float64{"ttft.median_ms": 30})
	base := doc(map[string]float64{"ttft.median_ms": 30, "tool.exec.p95_ms": 12})

	out := Compare(cur, found(base), DefaultRules())
	if !out.Passed {
		t.Errorf("missing metric must not violate: %+v", out.Violations)
	}
	if len(out.MissingInCurrent) != 1 || out.MissingInCurrent[0] != "tool.exec.p95_ms" {
		t.Errorf("missing list: got %v", out.MissingInCurrent)
	}
}

func TestCompareViolationsOrderedByKey(t *testing.T) {
	cur := doc(map[string]float64{
		"zeta.p95_ms":  200,
		"alpha.p95_ms": 200,
		"mid.p95_ms":   200,
	})
	base := doc(map[string]float64{
		"zeta.p95_ms":  100,
		"alpha.p95_ms": 100,
		"mid.p95_ms":   100,
	})

	out := Compare(cur, found(base), DefaultRules())
	if len(out.Violations) != 3 {
		t.Fatalf("violations: got %d want 3", len(out.Violations))
	}
	keys := make([]string, len(out.Violations))
	for i, v := range out.Violations {
		keys[i] = v.MetricKey
	}
	if !sort.StringsAreSorted(keys) {
		t.Errorf("violations not ordered by metric key: %v", keys)
	}
}

func TestCompareAbsentBaseline(t *testing.T) {
	cur := doc(map[string]float64{"ttft.median_ms": 30})
	res := baseline.Resolution{Path: "benchmark/baselines/linux-synthetic.json"}

	out := Compare(cur, res, DefaultRules())
	if out.BaselineFound {
		t.Errorf("baseline_found must mirror the resolution")
	}
	if len(out.Rows) != 0 || len(out.Violations) != 0 {
		t.Errorf("absent baseline must not produce rows or violations")
	}
	if out.BaselinePath == "" {
		t.Errorf("outcome must record the searched path")
	}
}
