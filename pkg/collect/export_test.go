package collect

import "time"

// Test seams: swap the subprocess invocation and the network probe for
// deterministic stand-ins.

func (c *Collector) SetInvokeForTesting(f func() (float64, error)) {
	c.invoke = f
}

func (c *Collector) SetProbeForTesting(f func(url string, timeout time.Duration) (ProbeResult, error)) {
	c.probe = f
}
