// Package collect samples the subject binary: it spawns the target a
// fixed number of times, timing each invocation wall-clock, and emits
// the partial result documents the merge stage consumes.
//
// Invocations run strictly sequentially on one goroutine. Parallel
// spawns would contend for CPU and OS scheduling and bias the very
// latency being measured.
package collect

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/benchgate/benchgate/pkg/report"
	"github.com/benchgate/benchgate/pkg/stats"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"
)

// MinIterations is the sample-count floor. Requests below it are raised,
// never honored: sub-60 sample batches make the proxy percentiles
// statistically unstable.
const MinIterations = 60

// Config is the collector configuration, resolved once at process start
// and passed down; inner stages never read the environment themselves.
type Config struct {
	BinPath       string   `mapstructure:"bin"`
	BinArgs       []string `mapstructure:"bin-args"`
	Iterations    int      `mapstructure:"iterations"`
	Family        string   `mapstructure:"family"`
	Mode          string   `mapstructure:"mode"`
	SamplesPerSec float64  `mapstructure:"samples-per-sec"`
	HDROut        string   `mapstructure:"hdr-out"`
	ProbeURL      string   `mapstructure:"probe-url"`
	ProbeTimeout  time.Duration
	RealRequired  bool `mapstructure:"real-required"`
}

// AddToFlagSet adds the command line flags backing the collector Config.
func (c Config) AddToFlagSet(fs *pflag.FlagSet) {
	fs.String("bin", "", "Path of the subject binary to sample")
	fs.StringSlice("bin-args", nil, "Arguments passed to the subject binary on every invocation")
	fs.Int("iterations", MinIterations, fmt.Sprintf("Number of samples to collect (floored at %d)", MinIterations))
	fs.String("family", "cold_start", "Metric family the samples are keyed under")
	fs.String("mode", report.ModeSynthetic, "Benchmark mode: synthetic or real")
	fs.Float64("samples-per-sec", 0, "Pace invocations at this rate, 0 = back to back")
	fs.String("hdr-out", "", "Write an HDR histogram of the raw latencies to this file")
	fs.String("probe-url", "", "Real mode only: provider URL for the DNS/connect/TTFB breakdown probe")
	fs.Bool("real-required", false, "Real mode only: fail instead of falling back when the probe is unavailable")
}

// SubprocessError reports a subject-binary invocation that did not exit
// cleanly. It aborts the whole collection: a partial, contaminated
// series is unusable for a regression gate.
type SubprocessError struct {
	Iteration int
	Bin       string
	Err       error
}

func (e *SubprocessError) Error() string {
	return fmt.Sprintf("subject binary %s failed on invocation %d: %v", e.Bin, e.Iteration, e.Err)
}

// Cause returns the underlying invocation error.
func (e *SubprocessError) Cause() error { return e.Err }

// Collector samples one metric family from the subject binary.
type Collector struct {
	cfg     Config
	limiter *rate.Limiter

	// test seams; production collectors use invokeOnce and ProbeHTTP
	invoke func() (float64, error)
	probe  func(url string, timeout time.Duration) (ProbeResult, error)
}

// NewCollector builds a collector, flooring the iteration count at
// MinIterations.
func NewCollector(cfg Config) *Collector {
	if cfg.Iterations < MinIterations {
		cfg.Iterations = MinIterations
	}
	if cfg.Family == "" {
		cfg.Family = "cold_start"
	}
	if cfg.Mode == "" {
		cfg.Mode = report.ModeSynthetic
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = 10 * time.Second
	}
	c := &Collector{cfg: cfg}
	if cfg.SamplesPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.SamplesPerSec), 1)
	}
	c.invoke = c.invokeOnce
	c.probe = ProbeHTTP
	return c
}

// Iterations reports the effective (floored) sample count.
func (c *Collector) Iterations() int { return c.cfg.Iterations }

func (c *Collector) invokeOnce() (float64, error) {
	cmd := exec.Command(c.cfg.BinPath, c.cfg.BinArgs...)
	// stdout/stderr stay nil: output is discarded, only the exit status
	// and the wall clock matter.
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	if err != nil {
		return 0, err
	}
	return float64(elapsed) / float64(time.Millisecond), nil
}

// Collect runs the sampling loop and returns the raw millisecond
// series. Any invocation failure aborts with *SubprocessError; no
// partial series is ever returned.
func (c *Collector) Collect(ctx context.Context) ([]float64, error) {
	samples := make([]float64, 0, c.cfg.Iterations)
	for i := 1; i <= c.cfg.Iterations; i++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, errors.Wrap(err, "sample pacing interrupted")
			}
		}
		ms, err := c.invoke()
		if err != nil {
			return nil, &SubprocessError{Iteration: i, Bin: c.cfg.BinPath, Err: err}
		}
		samples = append(samples, ms)
	}
	return samples, nil
}

// Run collects the sample series and materializes the two partial
// documents the merge stage expects: the aggregate document (family
// summary plus the flattened scalar metrics the rule table addresses)
// and the raw-samples document kept for post-hoc debugging.
func (c *Collector) Run(ctx context.Context) (agg *report.Document, raw *report.Document, err error) {
	samples, err := c.Collect(ctx)
	if err != nil {
		return nil, nil, err
	}
	summary, err := stats.Summarize(samples)
	if err != nil {
		return nil, nil, err
	}

	meta := report.Metadata{
		TimestampUTC: time.Now().UTC().Format(time.RFC3339),
		Iterations:   c.cfg.Iterations,
		Mode:         c.cfg.Mode,
	}
	family := c.cfg.Family
	agg = &report.Document{
		Metadata: meta,
		Metrics: map[string]report.Value{
			family:                 report.Series(summary),
			family + ".median_ms": report.Scalar(summary.Median),
			family + ".p90_ms":    report.Scalar(summary.P90),
			family + ".p95_ms":    report.Scalar(summary.P95),
			family + ".avg_ms":    report.Scalar(summary.Avg),
		},
	}

	if c.cfg.Mode == report.ModeReal {
		if err := c.addRealProbe(agg); err != nil {
			return nil, nil, err
		}
	}

	raw = &report.Document{
		Metadata:   agg.Metadata,
		Metrics:    map[string]report.Value{},
		RawSamples: map[string][]float64{family: samples},
	}

	if c.cfg.HDROut != "" {
		if err := writeHDRLatencies(c.cfg.HDROut, samples); err != nil {
			return nil, nil, err
		}
	}
	return agg, raw, nil
}

// addRealProbe measures the DNS/connect/TTFB breakdown against the live
// provider endpoint. Probe failure falls back with a note unless the
// caller demanded real integrations.
func (c *Collector) addRealProbe(agg *report.Document) error {
	if c.cfg.ProbeURL == "" {
		if c.cfg.RealRequired {
			return errors.New("real mode with real-required set needs a probe URL")
		}
		agg.Metadata.Note = "real probe unavailable -> synthetic fallback"
		agg.Metrics["bench.real_probe_used"] = report.Scalar(0)
		return nil
	}
	res, err := c.probe(c.cfg.ProbeURL, c.cfg.ProbeTimeout)
	if err != nil {
		if c.cfg.RealRequired {
			return errors.Wrap(err, "real probe failed with real-required set")
		}
		agg.Metadata.Note = "real probe failed -> synthetic fallback"
		agg.Metrics["bench.real_probe_used"] = report.Scalar(0)
		return nil
	}
	agg.Metadata.Note = "real probe"
	agg.Metrics["bench.real_probe_used"] = report.Scalar(1)
	agg.Metrics["http.dns_ms"] = report.Scalar(res.DNSMillis)
	agg.Metrics["http.connect_ms"] = report.Scalar(res.ConnectMillis)
	agg.Metrics["http.ttfb_ms"] = report.Scalar(res.TTFBMillis)
	return nil
}
