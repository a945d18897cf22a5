// Package report defines the benchmark result document: the unit of
// exchange between the collector, the merger, and the comparison gate.
// A document is immutable once created; merging materializes a new one.
package report

import (
	"encoding/json"
	"sort"

	"github.com/benchgate/benchgate/pkg/stats"
	"github.com/pkg/errors"
)

// Benchmark modes. Synthetic runs measure simulated in-process work;
// real runs exercise live external dependencies.
const (
	ModeSynthetic = "synthetic"
	ModeReal      = "real"
)

// ValidModes lists the accepted values for Metadata.Mode.
var ValidModes = []string{ModeSynthetic, ModeReal}

// Metadata describes how a benchmark run was produced.
type Metadata struct {
	TimestampUTC string `json:"timestamp_utc,omitempty"`
	Iterations   int    `json:"iterations,omitempty"`
	Mode         string `json:"mode"`
	Note         string `json:"note,omitempty"`
}

// Value is a single metric entry: either a scalar or a full per-family
// summary ({count, median, p90, p95, avg}).
type Value struct {
	scalar *float64
	series *stats.Summary
}

// Scalar wraps a plain numeric metric value.
func Scalar(v float64) Value {
	return Value{scalar: &v}
}

// Series wraps a per-family aggregate summary.
func Series(s stats.Summary) Value {
	return Value{series: &s}
}

// ScalarValue reports the scalar and whether this entry holds one.
func (v Value) ScalarValue() (float64, bool) {
	if v.scalar == nil {
		return 0, false
	}
	return *v.scalar, true
}

// SeriesValue reports the summary and whether this entry holds one.
func (v Value) SeriesValue() (stats.Summary, bool) {
	if v.series == nil {
		return stats.Summary{}, false
	}
	return *v.series, true
}

// MarshalJSON renders a scalar as a bare number and a series as an
// object, matching the on-disk report layout.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.scalar != nil {
		return json.Marshal(*v.scalar)
	}
	if v.series != nil {
		return json.Marshal(*v.series)
	}
	return nil, errors.New("report: metric value holds neither scalar nor series")
}

// UnmarshalJSON accepts either a bare number or a summary object.
func (v *Value) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		v.scalar = &f
		v.series = nil
		return nil
	}
	var s stats.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "metric value is neither a number nor a summary object")
	}
	v.scalar = nil
	v.series = &s
	return nil
}

// Document is one benchmark snapshot: metric keys (dot-namespaced) to
// scalar or series values, raw sample arrays by metric family kept for
// post-hoc debugging, and run metadata. A baseline is a Document that
// has been persisted as an accepted performance envelope.
type Document struct {
	Metadata   Metadata             `json:"metadata"`
	Metrics    map[string]Value     `json:"metrics"`
	RawSamples map[string][]float64 `json:"raw_samples_ms,omitempty"`

	// Path records where the document was loaded from, for diagnostics.
	Path string `json:"-"`
}

// SortedMetricKeys returns the document's metric keys in ascending
// order, for deterministic iteration.
func (d *Document) SortedMetricKeys() []string {
	keys := make([]string, 0, len(d.Metrics))
	for k := range d.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedRawFamilies returns the raw sample family names in ascending order.
func (d *Document) SortedRawFamilies() []string {
	keys := make([]string, 0, len(d.RawSamples))
	for k := range d.RawSamples {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
