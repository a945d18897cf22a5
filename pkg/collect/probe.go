package collect

import (
	"net"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

const probeClientName = "benchgate"

// ProbeResult breaks a single HTTP round trip to the live provider
// endpoint into its transport phases, in milliseconds.
type ProbeResult struct {
	DNSMillis     float64
	ConnectMillis float64
	TTFBMillis    float64
}

// ProbeHTTP measures DNS resolution, TCP connect, and time to first
// byte against a provider URL. The GET outcome itself is irrelevant,
// an error page answers just as well for timing, but DNS and connect
// failures are real errors: without them no latency was measured.
func ProbeHTTP(rawURL string, timeout time.Duration) (ProbeResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ProbeResult{}, errors.Wrap(err, "parse probe URL")
	}
	host := u.Hostname()
	if host == "" {
		return ProbeResult{}, errors.Errorf("probe URL %q has no host", rawURL)
	}
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	res := ProbeResult{}

	dnsStart := time.Now()
	addrs, err := net.LookupHost(host)
	res.DNSMillis = float64(time.Since(dnsStart)) / float64(time.Millisecond)
	if err != nil {
		return ProbeResult{}, errors.Wrapf(err, "resolve probe host %s", host)
	}
	if len(addrs) == 0 {
		return ProbeResult{}, errors.Errorf("no resolved address for probe host %s", host)
	}

	connectStart := time.Now()
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(addrs[0], port), timeout)
	res.ConnectMillis = float64(time.Since(connectStart)) / float64(time.Millisecond)
	if err != nil {
		return ProbeResult{}, errors.Wrapf(err, "connect to probe host %s", host)
	}
	conn.Close()

	client := &fasthttp.Client{Name: probeClientName}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	ttfbStart := time.Now()
	_ = client.DoTimeout(req, resp, timeout)
	res.TTFBMillis = float64(time.Since(ttfbStart)) / float64(time.Millisecond)

	return res, nil
}
