package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProtocol(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Protocol
	}{
		{"http", ProtocolHTTP},
		{"HTTPS", ProtocolHTTPS},
		{" socks4 ", ProtocolSOCKS4},
		{"Socks5", ProtocolSOCKS5},
		{"socks", ProtocolSOCKS},
	} {
		got, err := ParseProtocol(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	for _, bad := range []string{"", "ftp", "socks6", "http://"} {
		_, err := ParseProtocol(bad)
		assert.Error(t, err, bad)
	}
}

func TestProtocolExpand(t *testing.T) {
	assert.ElementsMatch(t,
		[]Protocol{ProtocolSOCKS, ProtocolSOCKS4, ProtocolSOCKS5},
		ProtocolSOCKS.Expand())
	assert.Equal(t, []Protocol{ProtocolHTTP}, ProtocolHTTP.Expand())
	assert.Equal(t, []Protocol{ProtocolSOCKS4}, ProtocolSOCKS4.Expand())
}

func TestParseCandidate(t *testing.T) {
	cand, err := ParseCandidate("1.2.3.4:8080", ProtocolHTTP)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", cand.IP)
	assert.Equal(t, 8080, cand.Port)
	assert.Equal(t, ProtocolHTTP, cand.Hint)
	assert.Equal(t, "1.2.3.4:8080", cand.HostPort())
	assert.Equal(t, "1.2.3.4:8080", cand.String())

	cand, err = ParseCandidate("  5.6.7.8:80\n", ProtocolSOCKS5)
	require.NoError(t, err)
	assert.Equal(t, "5.6.7.8:80", cand.HostPort())

	_, err = ParseCandidate("1.2.3.4", ProtocolHTTP)
	assert.Error(t, err)

	_, err = ParseCandidate("1.2.3.4:http", ProtocolHTTP)
	assert.Error(t, err)
}
