// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package dnsclient

import "testing"

func TestValidateDomain_Basic(t *testing.T) {
	valid := []string{
		"example.com",
		"sub.example.com",
		"deep.sub.example.com",
		"ietf.org",
		"apple.com",
		"whitehouse.gov",
		"münchen.de",
		"a.b.c.d.e.f.g.example.com",
	}
	for _, d := range valid {
		if !ValidateDomain(d) {
			t.Errorf("expected valid: %s", d)
		}
	}

	invalid := []string{
		"",
		"localhost",
		".example.com",
		"-example.com",
		"example..com",
	}
	for _, d := range invalid {
		if ValidateDomain(d) {
			t.Errorf("expected invalid: %s", d)
		}
	}
}

func TestValidateDomain_LabelDepth(t *testing.T) {
	if ValidateDomain("a.b.c.d.e.f.g.h.i.j.k.example.com") {
		t.Error("expected >10 labels to be rejected")
	}
	if !ValidateDomain("a.b.c.d.e.f.g.h.example.com") {
		t.Error("expected 10 labels to be accepted")
	}
}

func TestDomainToASCII(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"EXAMPLE.COM", "example.com"},
		{"münchen.de", "xn--mnchen-3ya.de"},
		{"example.com.", "example.com"},
	}
	for _, tt := range tests {
		got, err := DomainToASCII(tt.in)
		if err != nil {
			t.Errorf("DomainToASCII(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DomainToASCII(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildArpaName(t *testing.T) {
	if got := buildArpaName("8.8.4.4"); got != "4.4.8.8.in-addr.arpa" {
		t.Errorf("buildArpaName IPv4 = %q", got)
	}
	if got := buildArpaName("not-an-ip"); got != "" {
		t.Errorf("expected empty arpa name for invalid IP, got %q", got)
	}
}

func TestGetTLD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "com"},
		{"mail.example.CO.UK", "uk"},
		{"gooogle-login-secure.tk", "tk"},
		{"localhost", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := GetTLD(tt.in); got != tt.want {
			t.Errorf("GetTLD(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
