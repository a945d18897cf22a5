// Package stats computes the latency aggregates the benchmark gate
// reports: nearest-rank percentiles and the arithmetic mean over a batch
// of wall-clock samples.
//
// The percentile definition here (sort ascending, pick the element at
// index round((n-1)*p)) is shared by every collection point so that
// cold-start figures and suite-level figures remain comparable. It never
// interpolates or extrapolates beyond the sample range.
package stats

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// ErrEmptyInput is returned by every aggregate when given zero samples.
var ErrEmptyInput = errors.New("stats: empty input")

// Summary holds the aggregates for one metric family over a batch of
// samples. It is derived data: immutable once computed.
type Summary struct {
	Count  int     `json:"count"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	Avg    float64 `json:"avg"`
}

// Percentile returns the p-th percentile (0 <= p <= 1) of samples using
// the nearest-rank rule: the element at index round((n-1)*p) of the
// ascending-sorted sequence. The input slice is not modified.
func Percentile(samples []float64, p float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrEmptyInput
	}
	if p < 0 || p > 1 {
		return 0, errors.Errorf("stats: percentile %v out of range [0,1]", p)
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	idx := int(math.Round(float64(len(sorted)-1) * p))
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx], nil
}

// Average returns the arithmetic mean of samples.
func Average(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrEmptyInput
	}
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples)), nil
}

// Summarize computes the full aggregate set for one sample batch. Median
// is the 50th percentile, not the midpoint average, so that repeated
// summaries of the same data are bit-identical across collectors.
func Summarize(samples []float64) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, ErrEmptyInput
	}
	median, err := Percentile(samples, 0.50)
	if err != nil {
		return Summary{}, err
	}
	p90, err := Percentile(samples, 0.90)
	if err != nil {
		return Summary{}, err
	}
	p95, err := Percentile(samples, 0.95)
	if err != nil {
		return Summary{}, err
	}
	avg, err := Average(samples)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Count:  len(samples),
		Median: median,
		P90:    p90,
		P95:    p95,
		Avg:    avg,
	}, nil
}
