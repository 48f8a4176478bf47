// Package filter classifies harvested address:port tokens. Everything in
// here is pure and free of shared state, so it is safe from any number of
// concurrent scraper goroutines without synchronization.
package filter

import (
	"net/netip"
	"strconv"
	"strings"

	"proxyz/proxypool/model"
)

// Verdict is the outcome of classifying one candidate address.
type Verdict int

const (
	Accept Verdict = iota
	RejectMalformed
	RejectInfrastructure
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case RejectMalformed:
		return "malformed"
	case RejectInfrastructure:
		return "infrastructure"
	}
	return "unknown"
}

// infrastructureRanges are published edge ranges of major CDNs. Addresses
// inside them answer on proxy-looking ports but are never genuine relays.
// Static configuration data, kept sorted by operator.
var infrastructureRanges = mustPrefixes([]string{
	// Cloudflare
	"173.245.48.0/20",
	"103.21.244.0/22",
	"103.22.200.0/22",
	"103.31.4.0/22",
	"141.101.64.0/18",
	"108.162.192.0/18",
	"190.93.240.0/20",
	"188.114.96.0/20",
	"197.234.240.0/22",
	"198.41.128.0/17",
	"162.158.0.0/15",
	"104.16.0.0/13",
	"104.24.0.0/14",
	"172.64.0.0/13",
	"131.0.72.0/22",
	// Amazon CloudFront
	"13.32.0.0/15",
	"13.35.0.0/17",
	"18.160.0.0/15",
	"52.222.128.0/17",
	"54.182.0.0/16",
	"54.192.0.0/16",
	"54.230.0.0/16",
	"54.239.128.0/18",
	"99.86.0.0/16",
	"205.251.200.0/21",
	"216.137.32.0/19",
	// IETF reserved, not covered by the stdlib predicates below
	"240.0.0.0/4",
})

func mustPrefixes(cidrs []string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		out = append(out, netip.MustParsePrefix(c))
	}
	return out
}

// Classify decides whether an address/port pair is a usable relay
// candidate. Addresses must be IPv4 literals of four octets in 0-255 and
// ports must lie in 1-65535; anything else is malformed. Syntactically
// valid addresses belonging to private, loopback, link-local, multicast,
// unspecified, broadcast or known CDN ranges are infrastructure.
func Classify(address string, port int) Verdict {
	addr, err := netip.ParseAddr(address)
	if err != nil || !addr.Is4() {
		return RejectMalformed
	}
	if port < 1 || port > 65535 {
		return RejectMalformed
	}
	if isInfrastructure(addr) {
		return RejectInfrastructure
	}
	return Accept
}

// ClassifyToken splits an "ip:port" token and classifies it, returning
// the parsed candidate when accepted.
func ClassifyToken(token string, hint model.Protocol) (model.Candidate, Verdict) {
	host, portStr, ok := strings.Cut(strings.TrimSpace(token), ":")
	if !ok {
		return model.Candidate{}, RejectMalformed
	}
	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil {
		return model.Candidate{}, RejectMalformed
	}
	v := Classify(strings.TrimSpace(host), port)
	if v != Accept {
		return model.Candidate{}, v
	}
	return model.Candidate{IP: strings.TrimSpace(host), Port: port, Hint: hint}, Accept
}

func isInfrastructure(addr netip.Addr) bool {
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsMulticast() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified() {
		return true
	}
	if addr == netip.AddrFrom4([4]byte{255, 255, 255, 255}) {
		return true
	}
	for _, p := range infrastructureRanges {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
