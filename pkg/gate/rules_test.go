package gate

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "benchgate-rules")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "rules.yaml")
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	return path
}

func TestRuleForDefaults(t *testing.T) {
	table := DefaultRules()

	// Unlisted key: default margin, lower-is-better, no cap.
	rule := table.RuleFor("channel.send.p95_ms")
	if rule.Margin != 0.20 || rule.Direction != LowerIsBetter || rule.HardCap != nil {
		t.Errorf("unlisted key rule: %+v", rule)
	}

	// Cap-only entry inherits the default margin.
	rule = table.RuleFor("ttft.p95_ms")
	if rule.Margin != 0.20 {
		t.Errorf("ttft.p95_ms margin: got %v want default 0.20", rule.Margin)
	}
	if rule.HardCap == nil || *rule.HardCap != 120 {
		t.Errorf("ttft.p95_ms hard cap: got %v want 120", rule.HardCap)
	}

	// Tightened entry keeps its own margin.
	rule = table.RuleFor("cost.per_task_usd")
	if rule.Margin != 0.15 {
		t.Errorf("cost margin: got %v want 0.15", rule.Margin)
	}

	rule = table.RuleFor("cache.response.hit_rate")
	if rule.Direction != HigherIsBetter {
		t.Errorf("hit rate direction: got %v want higher_is_better", rule.Direction)
	}
}

func TestLoadRulesOverlaysDefaults(t *testing.T) {
	path := writeRuleFile(t, `
default_margin: 0.10
rules:
  cold_start.p95_ms:
    margin: 0.30
    hard_cap: 150
  queue.depth:
    direction: higher_is_better
`)
	table, err := LoadRules(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.DefaultMargin != 0.10 {
		t.Errorf("default margin: got %v want 0.10", table.DefaultMargin)
	}
	rule := table.RuleFor("cold_start.p95_ms")
	if rule.Margin != 0.30 || rule.HardCap == nil || *rule.HardCap != 150 {
		t.Errorf("overridden rule: %+v", rule)
	}
	if table.RuleFor("queue.depth").Direction != HigherIsBetter {
		t.Errorf("new rule direction not parsed")
	}
	// Untouched defaults survive the overlay.
	if table.RuleFor("ttft.p95_ms").HardCap == nil {
		t.Errorf("shipped ttft hard cap lost in overlay")
	}
}

func TestLoadRulesInvalid(t *testing.T) {
	cases := []struct {
		desc    string
		content string
	}{
		{desc: "unknown direction", content: "rules:\n  x:\n    direction: sideways\n"},
		{desc: "unknown field", content: "rules:\n  x:\n    slack: 3\n"},
		{desc: "negative margin", content: "rules:\n  x:\n    margin: -0.5\n"},
		{desc: "zero hard cap", content: "rules:\n  x:\n    hard_cap: 0\n"},
		{desc: "absurd default margin", content: "default_margin: 50\n"},
	}
	for _, c := range cases {
		path := writeRuleFile(t, c.content)
		if _, err := LoadRules(path); err == nil {
			t.Errorf("%s: expected error", c.desc)
		}
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules("does/not/exist.yaml"); err == nil {
		t.Errorf("expected error for missing rule file")
	}
}
