// Package geo enriches validated relays with geographic and organization
// metadata from the ip-api.com lookup service. It is a thin, replaceable
// collaborator: failures only cost the annotation, never the run.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"proxyz/internal/shared/logger"
	"proxyz/proxypool/model"
)

const lookupTimeout = 5 * time.Second

// Location is the subset of ip-api fields worth reporting.
type Location struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Country string `json:"country"`
	Region  string `json:"regionName"`
	City    string `json:"city"`
	Org     string `json:"org"`
	ISP     string `json:"isp"`
}

// Resolver queries ip-api.com with its own dedicated client.
type Resolver struct {
	client *http.Client
}

// NewResolver builds a resolver with the stock lookup timeout.
func NewResolver() *Resolver {
	return &Resolver{client: &http.Client{Timeout: lookupTimeout}}
}

// Lookup fetches the location of one address.
func (r *Resolver) Lookup(ctx context.Context, ip string) (*Location, error) {
	url := fmt.Sprintf("http://ip-api.com/json/%s?fields=status,message,country,regionName,city,org,isp", ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var loc Location
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return nil, err
	}
	if loc.Status != "success" {
		return nil, fmt.Errorf("lookup for %s failed: %s", ip, loc.Message)
	}
	return &loc, nil
}

// Annotate logs location and organization for each relay. The free tier
// throttles aggressively, so lookups run sequentially with a small gap.
func (r *Resolver) Annotate(ctx context.Context, relays []model.Candidate) {
	l := logger.WithComponent("ProxyPool/Geo")
	for i, cand := range relays {
		if ctx.Err() != nil {
			return
		}
		loc, err := r.Lookup(ctx, cand.IP)
		if err != nil {
			l.Debug().Err(err).Str("proxy", cand.HostPort()).Msg("Geo lookup failed.")
			continue
		}
		l.Info().
			Str("proxy", cand.HostPort()).
			Str("country", loc.Country).
			Str("city", loc.City).
			Str("org", loc.Org).
			Msg("Relay location")
		if i < len(relays)-1 {
			time.Sleep(1500 * time.Millisecond)
		}
	}
}
