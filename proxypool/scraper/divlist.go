package scraper

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"proxyz/proxypool/model"
)

// DivListSource handles sites that render their list as a div grid: a
// container with class "list" whose rows hold "td"-classed cells, address
// first and port second. It owns its collector instead of sharing the
// harvest client, following the collector-per-source pattern.
type DivListSource struct {
	name     string
	url      string
	protocol model.Protocol
	timeout  time.Duration
}

// NewDivListSource builds a div-grid source.
func NewDivListSource(name, url string, protocol model.Protocol, timeout time.Duration) *DivListSource {
	return &DivListSource{name: name, url: url, protocol: protocol, timeout: timeout}
}

func (s *DivListSource) Name() string { return s.name }

func (s *DivListSource) Protocol() model.Protocol { return s.protocol }

// URL exposes the fetch endpoint, read-only, for reverse lookups.
func (s *DivListSource) URL() string { return s.url }

// Fetch visits the page with a dedicated collector and reads the grid.
// The harvest context propagates into the collector's requests so a
// cancelled run does not keep the visit alive.
func (s *DivListSource) Fetch(ctx context.Context, _ *http.Client) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(browserUserAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.timeout)

	var mu sync.Mutex
	var tokens []string

	c.OnHTML("div.list", func(e *colly.HTMLElement) {
		e.DOM.Find("div").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("div.td")
			if cells.Length() < 2 {
				return
			}
			ip := strings.TrimSpace(cells.Eq(0).Text())
			port := strings.TrimSpace(cells.Eq(1).Text())
			if ip == "" || port == "" {
				return
			}
			mu.Lock()
			tokens = append(tokens, ip+":"+port)
			mu.Unlock()
		})
	})

	var fetchErr error
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(s.url); err != nil {
		return nil, err
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	return dedupeTokens(tokens), nil
}
