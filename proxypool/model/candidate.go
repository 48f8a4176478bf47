package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Protocol is the tunneling flavor a relay is expected to speak.
type Protocol string

const (
	ProtocolHTTP   Protocol = "http"
	ProtocolHTTPS  Protocol = "https"
	ProtocolSOCKS4 Protocol = "socks4"
	ProtocolSOCKS5 Protocol = "socks5"

	// ProtocolSOCKS is a composite selector covering both SOCKS variants.
	// Sources tagged with it publish mixed socks4/socks5 lists.
	ProtocolSOCKS Protocol = "socks"
)

// ParseProtocol normalizes and validates a protocol selector string.
func ParseProtocol(s string) (Protocol, error) {
	p := Protocol(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProtocolHTTP, ProtocolHTTPS, ProtocolSOCKS4, ProtocolSOCKS5, ProtocolSOCKS:
		return p, nil
	}
	return "", fmt.Errorf("unsupported protocol %q (want http, https, socks, socks4 or socks5)", s)
}

// Expand resolves a composite selector into the set of tags a source may
// carry to match it. "socks" selects sources tagged socks, socks4 or socks5;
// a concrete tag selects only itself.
func (p Protocol) Expand() []Protocol {
	if p == ProtocolSOCKS {
		return []Protocol{ProtocolSOCKS, ProtocolSOCKS4, ProtocolSOCKS5}
	}
	return []Protocol{p}
}

// Candidate is one address:port pair believed to forward traffic to a
// third party. Identity is the HostPort string; the protocol hint is a
// separate dimension and never part of identity.
type Candidate struct {
	IP   string
	Port int
	Hint Protocol
}

// ParseCandidate builds a Candidate from an "ip:port" token. It only
// checks shape; classification (octet ranges, infrastructure ranges) is
// the filter package's job.
func ParseCandidate(token string, hint Protocol) (Candidate, error) {
	host, portStr, ok := strings.Cut(strings.TrimSpace(token), ":")
	if !ok {
		return Candidate{}, fmt.Errorf("token %q is not in ip:port form", token)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Candidate{}, fmt.Errorf("token %q has a non-numeric port", token)
	}
	return Candidate{IP: host, Port: port, Hint: hint}, nil
}

// HostPort returns the candidate's identity string.
func (c Candidate) HostPort() string {
	return c.IP + ":" + strconv.Itoa(c.Port)
}

func (c Candidate) String() string {
	return c.HostPort()
}

// HarvestStats counts what one source produced during a harvest run.
// Accepted + RejectedMalformed + RejectedInfrastructure always equals Total.
type HarvestStats struct {
	Total                  int
	RejectedMalformed      int
	RejectedInfrastructure int
	Accepted               int
}

// ValidationOutcome is the immutable result of a single probe attempt.
type ValidationOutcome struct {
	Candidate     Candidate
	Reachable     bool
	Elapsed       time.Duration
	FailureReason string
}
