package iputil

import (
	"net"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCIDRs(t *testing.T) {
	tests := []struct {
		name        string
		input       []string
		expectError bool
		expectCount int
	}{
		{name: "Nil input", input: nil},
		{name: "Single IPv4 address", input: []string{"127.0.0.1"}, expectCount: 1},
		{name: "Single IPv6 address", input: []string{"::1"}, expectCount: 1},
		{name: "IPv4 CIDR", input: []string{"10.0.0.0/8"}, expectCount: 1},
		{name: "Mixed entries", input: []string{"127.0.0.1", "192.168.0.0/16", "::1"}, expectCount: 3},
		{name: "Invalid entry", input: []string{"localhost"}, expectError: true},
		{name: "Invalid prefix length", input: []string{"10.0.0.0/33"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseCIDRs(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Len(t, result, tt.expectCount)
		})
	}
}

func TestParseCIDRs_SingleIPMask(t *testing.T) {
	result, err := ParseCIDRs([]string{"127.0.0.1", "::1"})
	require.NoError(t, err)
	require.Len(t, result, 2)

	ones, bits := result[0].Mask.Size()
	assert.Equal(t, 32, ones)
	assert.Equal(t, 32, bits)

	ones, bits = result[1].Mask.Size()
	assert.Equal(t, 128, ones)
	assert.Equal(t, 128, bits)
}

func TestIsIPInAnyCIDR(t *testing.T) {
	cidrs, err := ParseCIDRs([]string{"127.0.0.1", "192.168.1.0/24", "2001:db8::/32"})
	require.NoError(t, err)

	assert.True(t, IsIPInAnyCIDR(net.ParseIP("127.0.0.1"), cidrs))
	assert.True(t, IsIPInAnyCIDR(net.ParseIP("192.168.1.77"), cidrs))
	assert.True(t, IsIPInAnyCIDR(net.ParseIP("2001:db8::42"), cidrs))
	assert.False(t, IsIPInAnyCIDR(net.ParseIP("127.0.0.2"), cidrs))
	assert.False(t, IsIPInAnyCIDR(nil, cidrs))
	assert.False(t, IsIPInAnyCIDR(net.ParseIP("127.0.0.1"), nil))
}

func TestRemoteIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/logger", nil)
	req.RemoteAddr = "10.1.2.3:41234"
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	assert.Equal(t, "10.1.2.3", RemoteIP(req), "forwarding headers must be ignored")

	req.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "::1", RemoteIP(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", RemoteIP(req))
}

func TestIsAllowed(t *testing.T) {
	allowed, err := ParseCIDRs([]string{"127.0.0.1", "::1"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/logger", nil)
	req.RemoteAddr = "127.0.0.1:5000"
	assert.True(t, IsAllowed(req, allowed))

	req.RemoteAddr = "[::1]:5000"
	assert.True(t, IsAllowed(req, allowed))

	req.RemoteAddr = "192.0.2.10:5000"
	assert.False(t, IsAllowed(req, allowed))
}
