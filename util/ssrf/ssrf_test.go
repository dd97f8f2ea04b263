package ssrf

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPublicAddr(t *testing.T) {
	assert := assert.New(t)

	for _, s := range []string{"8.8.8.8", "133.242.0.1", "2001:4860:4860::8888", "::ffff:1.1.1.1"} {
		assert.True(IsPublicAddr(netip.MustParseAddr(s)), s)
	}
	for _, s := range []string{
		"127.0.0.1", "10.1.2.3", "172.16.0.1", "192.168.1.1", "169.254.169.254",
		"100.64.0.1", "0.0.0.0", "255.255.255.255", "224.0.0.1", "198.51.100.7",
		"::1", "fe80::1", "fc00::1", "::ffff:127.0.0.1",
	} {
		assert.False(IsPublicAddr(netip.MustParseAddr(s)), s)
	}
}

func TestPublicOnlyControl(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(PublicOnlyControl("tcp4", "8.8.8.8:443", nil))
	assert.NoError(PublicOnlyControl("tcp6", "[2001:4860:4860::8888]:80", nil))
	assert.Error(PublicOnlyControl("tcp4", "8.8.8.8:6379", nil))
	assert.Error(PublicOnlyControl("tcp4", "127.0.0.1:443", nil))
	assert.Error(PublicOnlyControl("udp4", "8.8.8.8:443", nil))
	assert.Error(PublicOnlyControl("tcp4", "localhost:443", nil))
}
