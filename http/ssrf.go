package http

import (
	"net/netip"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// reservedPrefixes are special-purpose ranges not covered by the netip
// classification methods.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("64:ff9b::/96"),
	netip.MustParsePrefix("64:ff9b:1::/48"),
	netip.MustParsePrefix("100::/64"),
	netip.MustParsePrefix("2001::/32"),
	netip.MustParsePrefix("2001:db8::/32"),
	netip.MustParsePrefix("2002::/16"),
}

// IsBlockedAddr reports whether addr must never be fetched: loopback,
// private, link-local, multicast, unspecified or reserved. IPv4-mapped
// IPv6 addresses are classified as the IPv4 address they carry.
func IsBlockedAddr(addr netip.Addr) bool {
	if !addr.IsValid() {
		return true
	}
	addr = addr.Unmap()
	if addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() {
		return true
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// HostAllowed reports whether host, or one of its parent domains down to
// the registrable domain, is in allowed. An empty set allows every host.
func HostAllowed(host string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	host = normalizeHost(host)
	if _, ok := allowed[host]; ok {
		return true
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}
	for h := host; h != registrable; {
		i := strings.IndexByte(h, '.')
		if i < 0 {
			return false
		}
		h = h[i+1:]
		if _, ok := allowed[h]; ok {
			return true
		}
	}
	return false
}

// isNumericHost reports hosts made only of decimal or 0x-hex labels, such
// as "2130706433" or "0x7f.1". Some resolvers accept these as IPv4
// shorthand, so they are refused outright.
func isNumericHost(host string) bool {
	for _, label := range strings.Split(host, ".") {
		if label == "" {
			return false
		}
		if strings.HasPrefix(label, "0x") {
			label = label[2:]
			for _, r := range label {
				if !strings.ContainsRune("0123456789abcdef", r) {
					return false
				}
			}
			continue
		}
		for _, r := range label {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
