// Package gate diffs a current benchmark snapshot against a resolved
// baseline under a per-metric rule table and decides the run's outcome.
// Violations are data, not errors: only Finalize translates them into
// pass/fail semantics.
package gate

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Direction says which way a metric is allowed to move. Latencies and
// costs are lower-is-better; rate-style metrics (cache hit rate,
// recall hit@k) are higher-is-better and mirror the margin check.
type Direction int

const (
	LowerIsBetter Direction = iota
	HigherIsBetter
)

func (d Direction) String() string {
	if d == HigherIsBetter {
		return "higher_is_better"
	}
	return "lower_is_better"
}

// UnmarshalYAML accepts the rule-file spelling of a direction. An empty
// value keeps the lower-is-better default.
func (d *Direction) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "", "lower_is_better":
		*d = LowerIsBetter
	case "higher_is_better":
		*d = HigherIsBetter
	default:
		return errors.Errorf("unknown direction %q", s)
	}
	return nil
}

// Rule is the comparison policy for one metric key. A zero Margin means
// "use the table's default margin". HardCap, when set, is an absolute
// threshold independent of the baseline: a ceiling for lower-is-better
// metrics, a floor for higher-is-better ones. Hard caps represent SLAs
// and win over the relative margin.
type Rule struct {
	Margin    float64   `yaml:"margin"`
	HardCap   *float64  `yaml:"hard_cap"`
	Direction Direction `yaml:"direction"`
}

// RuleTable is the static comparison configuration: a global default
// margin plus per-metric overrides.
type RuleTable struct {
	DefaultMargin float64         `yaml:"default_margin"`
	Rules         map[string]Rule `yaml:"rules"`
}

// RuleFor returns the effective rule for a metric key, filling in the
// default margin where the entry (or the whole key) leaves it unset.
func (t RuleTable) RuleFor(key string) Rule {
	rule, ok := t.Rules[key]
	if !ok {
		return Rule{Margin: t.DefaultMargin}
	}
	if rule.Margin == 0 {
		rule.Margin = t.DefaultMargin
	}
	return rule
}

func capOf(v float64) *float64 {
	return &v
}

// DefaultRules is the shipped rule table, protecting the project's key
// latency and cost goals.
func DefaultRules() RuleTable {
	return RuleTable{
		DefaultMargin: 0.20,
		Rules: map[string]Rule{
			"cold_start.p95_ms":             {Margin: 0.25, HardCap: capOf(120)},
			"cold_start.avg_ms":             {Margin: 0.25},
			"cost.per_task_usd":             {Margin: 0.15},
			"ttft.p95_ms":                   {HardCap: capOf(120)},
			"memory.recall.p95_ms":          {HardCap: capOf(80)},
			"cache.response.hit_rate":       {Direction: HigherIsBetter},
			"memory.recall.hit_at_k":        {Direction: HigherIsBetter},
			"memory.recall.precision_proxy": {Direction: HigherIsBetter},
		},
	}
}

// LoadRules overlays an operator-supplied YAML rule file onto the
// shipped defaults: its default_margin (when positive) and each of its
// entries replace the corresponding defaults, everything else stays.
func LoadRules(path string) (RuleTable, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return RuleTable{}, errors.Wrapf(err, "read rule table %s", path)
	}
	var loaded RuleTable
	if err := yaml.UnmarshalStrict(data, &loaded); err != nil {
		return RuleTable{}, errors.Wrapf(err, "parse rule table %s", path)
	}

	table := DefaultRules()
	if loaded.DefaultMargin > 0 {
		table.DefaultMargin = loaded.DefaultMargin
	}
	for key, rule := range loaded.Rules {
		table.Rules[key] = rule
	}
	if err := table.validate(); err != nil {
		return RuleTable{}, errors.Wrapf(err, "invalid rule table %s", path)
	}
	return table, nil
}

func (t RuleTable) validate() error {
	if t.DefaultMargin <= 0 || t.DefaultMargin >= 10 {
		return errors.Errorf("default_margin %v out of range (0,10)", t.DefaultMargin)
	}
	for key, rule := range t.Rules {
		if rule.Margin < 0 || rule.Margin >= 10 {
			return errors.Errorf("rule %q: margin %v out of range [0,10)", key, rule.Margin)
		}
		if rule.HardCap != nil && *rule.HardCap <= 0 {
			return errors.Errorf("rule %q: hard_cap must be positive", key)
		}
	}
	return nil
}
