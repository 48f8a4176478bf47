// Package checker empirically validates relay candidates against a
// target endpoint under a bounded concurrency budget.
package checker

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/proxy"
	"h12.io/socks"

	"proxyz/proxypool/model"
)

// ProbeOptions parameterize a single connectivity attempt.
type ProbeOptions struct {
	Target    string
	Timeout   time.Duration
	UserAgent string
}

// ProbeFunc is the probing capability the coordinator drives. Injected in
// tests to decouple pool mechanics from the network.
type ProbeFunc func(ctx context.Context, cand model.Candidate, opts ProbeOptions) model.ValidationOutcome

// NormalizeTarget coerces a bare host into an HTTPS URL.
func NormalizeTarget(site string) string {
	if !strings.HasPrefix(site, "http://") && !strings.HasPrefix(site, "https://") {
		return "https://" + site
	}
	return site
}

// Probe routes one request to the target through the candidate and
// confirms the tunnel actually delivers data: success needs a 2xx/3xx
// status and at least one body byte within the timeout. Every candidate
// gets its own transport; process-wide dialing state is never touched,
// which is what makes concurrent probing of different candidates sound.
// Probe never panics or errors past its own boundary.
func Probe(ctx context.Context, cand model.Candidate, opts ProbeOptions) (outcome model.ValidationOutcome) {
	outcome = model.ValidationOutcome{Candidate: cand}
	defer func() {
		if r := recover(); r != nil {
			outcome.Reachable = false
			outcome.FailureReason = "panic"
		}
	}()

	start := time.Now()

	transport, err := transportFor(cand, opts.Timeout)
	if err != nil {
		outcome.FailureReason = "protocol"
		return outcome
	}
	defer transport.CloseIdleConnections()

	client := &http.Client{Transport: transport, Timeout: opts.Timeout}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.Target, nil)
	if err != nil {
		outcome.FailureReason = "request"
		return outcome
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		outcome.Elapsed = time.Since(start)
		outcome.FailureReason = categorize(err)
		return outcome
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		outcome.Elapsed = time.Since(start)
		outcome.FailureReason = fmt.Sprintf("status %d", resp.StatusCode)
		return outcome
	}

	// A completed CONNECT is not enough; read a prefix of the body to
	// prove the tunnel carries data.
	buf := make([]byte, 1024)
	n, readErr := resp.Body.Read(buf)
	outcome.Elapsed = time.Since(start)
	if n == 0 {
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			outcome.FailureReason = categorize(readErr)
		} else {
			outcome.FailureReason = "empty body"
		}
		return outcome
	}

	outcome.Reachable = true
	return outcome
}

// transportFor builds a transport bound to exactly one candidate.
func transportFor(cand model.Candidate, timeout time.Duration) (*http.Transport, error) {
	dialer := &net.Dialer{Timeout: timeout}
	transport := &http.Transport{
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: true},
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		DisableKeepAlives:     true,
	}

	switch cand.Hint {
	case model.ProtocolHTTP, model.ProtocolHTTPS:
		proxyURL, err := url.Parse(fmt.Sprintf("%s://%s", cand.Hint, cand.HostPort()))
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		transport.DialContext = dialer.DialContext

	case model.ProtocolSOCKS5:
		d, err := proxy.SOCKS5("tcp", cand.HostPort(), nil, dialer)
		if err != nil {
			return nil, err
		}
		transport.DialContext = d.(proxy.ContextDialer).DialContext

	case model.ProtocolSOCKS4:
		dial := socks.Dial(fmt.Sprintf("socks4://%s?timeout=%s", cand.HostPort(), timeout))
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dial(network, addr)
		}

	default:
		return nil, fmt.Errorf("unsupported protocol hint %q", cand.Hint)
	}

	return transport, nil
}

// categorize maps a transport error onto the coarse failure taxonomy
// reported in outcomes.
func categorize(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &dnsErr):
		return "dns"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "refused"
	case errors.Is(err, syscall.ECONNRESET):
		return "reset"
	case strings.Contains(err.Error(), "tls"):
		return "tls"
	default:
		return "transport"
	}
}
