// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package dnsclient

import "testing"

func TestDNSTypeFromString(t *testing.T) {
	for _, rtype := range []string{"A", "AAAA", "MX", "TXT", "NS", "CNAME", "PTR", "mx", "txt"} {
		if _, err := dnsTypeFromString(rtype); err != nil {
			t.Errorf("dnsTypeFromString(%q) error: %v", rtype, err)
		}
	}
	if _, err := dnsTypeFromString("ANY"); err == nil {
		t.Error("expected error for unsupported record type")
	}
}

func TestOverviewAccessors(t *testing.T) {
	var nilOv *Overview
	if nilOv.HasNS() || nilOv.HasAddr() || nilOv.HasMX() {
		t.Error("nil overview reported records")
	}

	ov := &Overview{
		NS:    []string{"ns1.example.net."},
		AAAA:  []string{"2001:db8::1"},
		CNAME: []string{"edge.example.net."},
		TXT:   []string{"v=spf1 -all"},
	}
	if !ov.HasNS() {
		t.Error("HasNS() = false with NS records present")
	}
	if !ov.HasAddr() {
		t.Error("HasAddr() = false with AAAA records present")
	}
	if ov.HasMX() {
		t.Error("HasMX() = true with no MX records")
	}
}
