package geo

import (
	"context"
	"net/http"
	"sync"
	"time"

	"proxyz/internal/shared/logger"
	"proxyz/proxypool/model"
	"proxyz/proxypool/scraper"
)

// MapSources answers "which source is still publishing this relay?" by
// re-fetching every registry entry and intersecting its current output
// with the given candidates. It consumes the registry as a read-only
// descriptor list; it never reaches back into the harvest coordinator.
func MapSources(ctx context.Context, registry []scraper.Fetcher, candidates []model.Candidate) map[string][]string {
	l := logger.WithComponent("ProxyPool/Geo")

	wanted := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		wanted[c.HostPort()] = struct{}{}
	}

	client := &http.Client{Timeout: 30 * time.Second}
	defer client.CloseIdleConnections()

	var mu sync.Mutex
	found := make(map[string][]string)

	var wg sync.WaitGroup
	for _, src := range registry {
		wg.Add(1)
		go func(f scraper.Fetcher) {
			defer wg.Done()
			tokens, err := f.Fetch(ctx, client)
			if err != nil {
				l.Debug().Err(err).Str("source", f.Name()).Msg("Source unavailable for reverse lookup.")
				return
			}
			var hits []string
			for _, t := range tokens {
				if _, ok := wanted[t]; ok {
					hits = append(hits, t)
				}
			}
			if len(hits) > 0 {
				mu.Lock()
				found[f.Name()] = hits
				mu.Unlock()
			}
		}(src)
	}
	wg.Wait()

	return found
}
