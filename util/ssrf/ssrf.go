// Dialer controls that keep outbound requests on the public internet. LNURL endpoints come from
// user profiles, so any address a profile names must not reach the host's own network.
package ssrf

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// Ranges not covered by the netip predicates.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),   // RFC6598
	netip.MustParsePrefix("192.0.0.0/24"),    // RFC6890
	netip.MustParsePrefix("192.0.2.0/24"),    // Test, doc, examples
	netip.MustParsePrefix("192.88.99.0/24"),  // IPv6 to IPv4 relay
	netip.MustParsePrefix("198.18.0.0/15"),   // Benchmarking tests
	netip.MustParsePrefix("198.51.100.0/24"), // Test, doc, examples
	netip.MustParsePrefix("203.0.113.0/24"),  // Test, doc, examples
	netip.MustParsePrefix("240.0.0.0/4"),     // Reserved, includes broadcast
}

// IPv6 outside 2000::/3 is never global unicast.
var globalUnicastIPv6 = netip.MustParsePrefix("2000::/3")

func IsPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() || addr.IsLoopback() || addr.IsPrivate() || addr.IsMulticast() ||
		addr.IsLinkLocalUnicast() || addr.IsUnspecified() {
		return false
	}
	if addr.Is6() {
		return globalUnicastIPv6.Contains(addr)
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}

// [net.Dialer] Control function rejecting non-public addresses and ports other than 80 and 443.
func PublicOnlyControl(network string, address string, conn syscall.RawConn) error {
	if !(network == "tcp4" || network == "tcp6") {
		return fmt.Errorf("%s is not a safe network type", network)
	}
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%s is not a valid address: %w", address, err)
	}
	if !IsPublicAddr(ap.Addr()) {
		return fmt.Errorf("%s is not a public IP address", ap.Addr())
	}
	if port := ap.Port(); port != 80 && port != 443 {
		return fmt.Errorf("%d is not a safe port number", port)
	}
	return nil
}

// Standard library transport defaults, dialing through [PublicOnlyControl].
func PublicOnlyTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   PublicOnlyControl,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
