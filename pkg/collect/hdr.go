package collect

import (
	"bufio"
	"bytes"
	"io/ioutil"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/pkg/errors"
)

// writeHDRLatencies saves a High Dynamic Range histogram of the raw
// latencies, recorded in microseconds and printed at millisecond scale.
// The histogram is a debugging artifact alongside the raw sample array;
// the gate itself only consumes the document percentiles.
func writeHDRLatencies(path string, samplesMillis []float64) error {
	// 1µs to 1h at three significant figures.
	hist := hdrhistogram.New(1, 3600*1000*1000, 3)
	for _, ms := range samplesMillis {
		if err := hist.RecordValue(int64(ms * 1000)); err != nil {
			return errors.Wrap(err, "record latency in HDR histogram")
		}
	}
	var b bytes.Buffer
	bw := bufio.NewWriter(&b)
	if _, err := hist.PercentilesPrint(bw, 10, 1000.0); err != nil {
		return errors.Wrap(err, "print HDR percentiles")
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "flush HDR percentiles")
	}
	if err := ioutil.WriteFile(path, b.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "write HDR latencies %s", path)
	}
	return nil
}
