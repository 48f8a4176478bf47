package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"proxyz/internal/shared/logger"
	"proxyz/proxypool/filter"
	"proxyz/proxypool/model"
)

// ErrNoSources is returned when the protocol selector matches nothing in
// the registry; a configuration error, not a transient one.
var ErrNoSources = errors.New("no sources match the requested protocol")

// Coordinator fans a harvest out over the registry, filters every
// source's output and merges the survivors into one deduplicated set.
type Coordinator struct {
	registry     []Fetcher
	maxIdleConns int
}

// NewCoordinator builds a coordinator over the given registry.
// maxIdleConns bounds the shared client's keep-alive budget; zero means
// the stock budget of 20.
func NewCoordinator(registry []Fetcher, maxIdleConns int) *Coordinator {
	if maxIdleConns <= 0 {
		maxIdleConns = 20
	}
	return &Coordinator{registry: registry, maxIdleConns: maxIdleConns}
}

// Registry exposes the coordinator's source descriptors as a read-only
// snapshot, for reverse lookups and reporting.
func (c *Coordinator) Registry() []Fetcher {
	out := make([]Fetcher, len(c.registry))
	copy(out, c.registry)
	return out
}

type sourceResult struct {
	name   string
	hint   model.Protocol
	tokens []string
}

// Harvest fetches every source matching the selector concurrently,
// classifies all tokens, and returns the merged candidate list sorted by
// address:port together with per-source statistics. Individual source
// failures never fail the run; only an empty selection does.
func (c *Coordinator) Harvest(ctx context.Context, selector model.Protocol) ([]model.Candidate, map[string]*model.HarvestStats, error) {
	selected := c.selectSources(selector)
	if len(selected) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoSources, selector)
	}

	runID := uuid.NewString()[:8]
	l := logger.WithComponent("ProxyPool/Scraper").With().Str("run_id", runID).Logger()
	started := time.Now()
	l.Info().Int("sources", len(selected)).Str("protocol", string(selector)).Msg("Starting harvest...")

	// The client lives for exactly one harvest.
	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        c.maxIdleConns,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     30 * time.Second,
		},
	}
	defer client.CloseIdleConnections()

	var wg sync.WaitGroup
	results := make(chan sourceResult, len(selected))

	for _, src := range selected {
		wg.Add(1)
		go func(f Fetcher) {
			defer wg.Done()
			// A misbehaving adapter must never take the run down.
			defer func() {
				if r := recover(); r != nil {
					l.Debug().Str("source", f.Name()).Interface("panic", r).Msg("Source adapter panicked; treating as empty.")
					results <- sourceResult{name: f.Name(), hint: f.Protocol()}
				}
			}()

			tokens, err := f.Fetch(ctx, client)
			if err != nil {
				l.Debug().Err(err).Str("source", f.Name()).Msg("Source failed; contributing zero results.")
				results <- sourceResult{name: f.Name(), hint: f.Protocol()}
				return
			}
			results <- sourceResult{name: f.Name(), hint: f.Protocol(), tokens: tokens}
		}(src)
	}

	// Single-point aggregation: nothing is merged until every fetch has
	// resolved, successfully or not.
	wg.Wait()
	close(results)

	merged := make(map[string]model.Candidate)
	stats := make(map[string]*model.HarvestStats, len(selected))
	for res := range results {
		st := &model.HarvestStats{}
		stats[res.name] = st
		for _, token := range res.tokens {
			st.Total++
			cand, verdict := filter.ClassifyToken(token, res.hint)
			switch verdict {
			case filter.Accept:
				st.Accepted++
				if _, dup := merged[cand.HostPort()]; !dup {
					merged[cand.HostPort()] = cand
				}
			case filter.RejectMalformed:
				st.RejectedMalformed++
			case filter.RejectInfrastructure:
				st.RejectedInfrastructure++
			}
		}
		l.Debug().
			Str("source", res.name).
			Int("accepted", st.Accepted).
			Int("malformed", st.RejectedMalformed).
			Int("infrastructure", st.RejectedInfrastructure).
			Msg("Source finished.")
	}

	list := make([]model.Candidate, 0, len(merged))
	for _, cand := range merged {
		list = append(list, cand)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].HostPort() < list[j].HostPort()
	})

	l.Info().
		Int("unique", len(list)).
		Dur("elapsed", time.Since(started)).
		Msg("Harvest finished.")
	return list, stats, nil
}

func (c *Coordinator) selectSources(selector model.Protocol) []Fetcher {
	wanted := make(map[model.Protocol]struct{})
	for _, p := range selector.Expand() {
		wanted[p] = struct{}{}
	}
	var selected []Fetcher
	for _, f := range c.registry {
		if _, ok := wanted[f.Protocol()]; ok {
			selected = append(selected, f)
		}
	}
	return selected
}
