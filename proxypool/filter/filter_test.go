package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"proxyz/proxypool/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		address string
		port    int
		want    Verdict
	}{
		{"public address", "1.2.3.4", 80, Accept},
		{"high port", "5.6.7.8", 65535, Accept},
		{"low port", "5.6.7.8", 1, Accept},
		{"port zero", "1.2.3.4", 0, RejectMalformed},
		{"port too large", "5.6.7.8", 99999, RejectMalformed},
		{"negative port", "5.6.7.8", -1, RejectMalformed},
		{"octet out of range", "256.1.1.1", 80, RejectMalformed},
		{"three octets", "1.2.3", 80, RejectMalformed},
		{"not an address", "bad-line", 80, RejectMalformed},
		{"ipv6 literal", "2001:db8::1", 80, RejectMalformed},
		{"empty", "", 80, RejectMalformed},
		{"private 10/8", "10.0.0.1", 80, RejectInfrastructure},
		{"private 192.168/16", "192.168.1.5", 3128, RejectInfrastructure},
		{"private 172.16/12", "172.16.0.9", 8080, RejectInfrastructure},
		{"loopback", "127.0.0.1", 8080, RejectInfrastructure},
		{"link local", "169.254.10.10", 80, RejectInfrastructure},
		{"multicast", "224.0.0.1", 80, RejectInfrastructure},
		{"unspecified", "0.0.0.0", 80, RejectInfrastructure},
		{"broadcast", "255.255.255.255", 80, RejectInfrastructure},
		{"reserved 240/4", "240.0.0.1", 80, RejectInfrastructure},
		{"cloudflare edge", "104.16.1.31", 80, RejectInfrastructure},
		{"cloudflare 172.64/13", "172.64.10.10", 443, RejectInfrastructure},
		{"cloudfront edge", "13.33.100.1", 80, RejectInfrastructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.address, tt.port))
		})
	}
}

func TestClassifyNeverAcceptsConfiguredRanges(t *testing.T) {
	// One probe address per configured block.
	for _, p := range infrastructureRanges {
		addr := p.Addr().String()
		assert.NotEqual(t, Accept, Classify(addr, 8080), "range %s leaked through", p)
	}
}

func TestClassifyToken(t *testing.T) {
	c, v := ClassifyToken("1.2.3.4:80", model.ProtocolHTTP)
	assert.Equal(t, Accept, v)
	assert.Equal(t, "1.2.3.4", c.IP)
	assert.Equal(t, 80, c.Port)
	assert.Equal(t, model.ProtocolHTTP, c.Hint)
	assert.Equal(t, "1.2.3.4:80", c.HostPort())

	_, v = ClassifyToken("10.0.0.1:80", model.ProtocolHTTP)
	assert.Equal(t, RejectInfrastructure, v)

	for _, token := range []string{"bad-line", "5.6.7.8:99999", "1.2.3.4", "1.2.3.4:", "1.2.3.4:http", ""} {
		_, v := ClassifyToken(token, model.ProtocolHTTP)
		assert.Equal(t, RejectMalformed, v, "token %q", token)
	}
}
