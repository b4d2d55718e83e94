// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.
package heuristics

import (
	"fmt"
	"net/netip"

	"linkscope/go-server/internal/evidence"
)

var bogonV4 = []string{
	"0.0.0.0/8",
	"192.0.2.0/24",    // TEST-NET-1
	"198.51.100.0/24", // TEST-NET-2
	"203.0.113.0/24",  // TEST-NET-3
	"198.18.0.0/15",   // benchmarking
	"240.0.0.0/4",     // reserved
}

var transitionV6 = map[string]string{
	"2001:db8::/32": "documentation",
	"2002::/16":     "6to4",
	"2001::/32":     "Teredo",
}

// IPSignals runs the structural checks for a bare IP target. An unparseable
// address yields a single maximal-impact fail item rather than an error.
func IPSignals(ip string) []evidence.Evidence {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return []evidence.Evidence{
			evidence.Fail("Invalid IP Syntax", evidence.CategoryNetwork,
				fmt.Sprintf("%q is not a valid IPv4 or IPv6 address.", ip), 40),
		}
	}

	var out []evidence.Evidence

	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() {
		out = append(out, evidence.Pass("Non-Public Address", evidence.CategoryNetwork,
			"Address is private/loopback/link-local and not internet-exposed.", -4))
	}

	if r := bogonRange(addr); r != "" {
		out = append(out, evidence.Fail("Reserved Address Range", evidence.CategoryNetwork,
			fmt.Sprintf("Address falls in the reserved range %s, which should never appear as a legitimate public host.", r), 20))
	}

	if addr.Is6() && !addr.Is4In6() {
		if name, r := transitionRange(addr); name != "" {
			out = append(out, evidence.Warn("IPv6 Transition Range", evidence.CategoryNetwork,
				fmt.Sprintf("Address is in the %s range (%s); transition mechanisms are uncommon in benign public services.", name, r), 8))
		}
	}

	return out
}

// IsIP reports whether s parses as an IPv4 or IPv6 address.
func IsIP(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}

func bogonRange(addr netip.Addr) string {
	if !addr.Is4() && !addr.Is4In6() {
		return ""
	}
	a := addr.Unmap()
	for _, cidr := range bogonV4 {
		prefix := netip.MustParsePrefix(cidr)
		if prefix.Contains(a) {
			return cidr
		}
	}
	return ""
}

func transitionRange(addr netip.Addr) (name, cidr string) {
	// Documentation range first; it is a subset of nothing else here but
	// 2001::/32 overlaps the broader 2001::/23 allocations.
	for _, cidr := range []string{"2001:db8::/32", "2002::/16", "2001::/32"} {
		if netip.MustParsePrefix(cidr).Contains(addr) {
			return transitionV6[cidr], cidr
		}
	}
	return "", ""
}
