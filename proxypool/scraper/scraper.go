// Package scraper discovers relay candidates from many independent,
// unreliable public sources and merges them into one deduplicated set.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"proxyz/proxypool/model"
)

// browserUserAgent is sent on every list fetch; several sources refuse
// obviously non-browser clients.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of a source response is read. Free proxy
// lists are small; anything larger is a misbehaving endpoint.
const maxBodyBytes = 8 << 20

// tokenPattern recovers IPv4 addresses optionally followed by a port from
// whatever text a strategy produced. Port-less matches survive to the
// filter, which counts them as malformed.
var tokenPattern = regexp.MustCompile(`\d{1,3}(?:\.\d{1,3}){3}(?::\d{1,5})?`)

// Fetcher is one configured proxy source. Implementations fetch their
// endpoint and reduce the response to raw address:port tokens; they never
// validate beyond shape.
type Fetcher interface {
	// Name uniquely identifies the source in stats and logs.
	Name() string

	// Protocol is the source's affinity tag. It may be the composite
	// "socks" tag for sources publishing mixed SOCKS lists.
	Protocol() model.Protocol

	// Fetch performs one bounded network request and extracts tokens.
	// Any failure returns a nil slice and a non-fatal error; the
	// coordinator treats it as a zero-result source.
	Fetch(ctx context.Context, client *http.Client) ([]string, error)
}

// Extractor reduces one raw response body to candidate-bearing text. The
// token regex is applied uniformly to its output afterwards, so a
// strategy may emit loosely formatted lines and still contribute.
type Extractor interface {
	Extract(body []byte) string
}

// Source is a descriptor-driven Fetcher sharing the harvest's pooled
// HTTP client. Immutable after construction.
type Source struct {
	name     string
	url      string
	protocol model.Protocol
	timeout  time.Duration
	extract  Extractor
}

// NewSource builds a source from a fully substituted URL. A nil extractor
// means the raw body is scanned directly.
func NewSource(name, url string, protocol model.Protocol, timeout time.Duration, extract Extractor) *Source {
	return &Source{name: name, url: url, protocol: protocol, timeout: timeout, extract: extract}
}

func (s *Source) Name() string { return s.name }

func (s *Source) Protocol() model.Protocol { return s.protocol }

// URL exposes the fetch endpoint, read-only, for reverse lookups.
func (s *Source) URL() string { return s.url }

// Fetch performs the request, applies the extraction strategy and the
// uniform token re-scan, and deduplicates within this source's result.
func (s *Source) Fetch(ctx context.Context, client *http.Client) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", s.name, err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned status %d", s.name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.name, err)
	}

	text := string(body)
	if s.extract != nil {
		text = s.extract.Extract(body)
	}
	return dedupeTokens(tokenPattern.FindAllString(text, -1)), nil
}

func dedupeTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
