// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.

// Package heuristics contains the per-type signal producers. Every producer
// is a pure function of the normalized input (plus an optional intelligence
// snapshot) returning explainable Evidence items.
package heuristics

import "math"

// suspiciousTLDs are statistically over-represented in abuse feeds.
var suspiciousTLDs = map[string]bool{
	"top": true, "xyz": true, "tk": true, "ml": true, "ga": true,
	"cf": true, "buzz": true, "rest": true, "work": true, "date": true,
	"download": true, "review": true, "accountant": true, "zip": true,
	"mov": true, "gq": true,
}

// credentialKeywords are phishing-lure words matched against domain labels
// and URL path/query segments.
var credentialKeywords = []string{
	"login", "verify", "secure", "update", "password", "signin",
	"account", "billing", "invoice", "support", "confirm", "unlock",
	"session", "wallet", "recovery",
}

var shortenerDomains = map[string]bool{
	"bit.ly": true, "t.co": true, "tinyurl.com": true, "goo.gl": true,
	"ow.ly": true, "is.gd": true, "buff.ly": true, "rebrand.ly": true,
	"cutt.ly": true, "s.id": true, "lnkd.in": true,
}

// mobileLureKeywords indicate app-install bait.
var mobileLureKeywords = []string{
	"apk", "install-app", "app-update", "playstore", "appstore",
	"testflight", "mobileconfig",
}

var executableExtensions = map[string]bool{
	".exe": true, ".scr": true, ".bat": true, ".cmd": true, ".msi": true,
	".apk": true, ".jar": true, ".vbs": true, ".ps1": true, ".dmg": true,
}

// redirectParams are query parameters that commonly carry a forwarding
// destination.
var redirectParams = []string{
	"redirect", "redirect_uri", "redirect_url", "url", "next", "goto",
	"dest", "destination", "continue", "return", "returnto", "forward",
}

var reputableRegistrars = map[string]bool{
	"cloudflare, inc.":    true,
	"namecheap, inc.":     true,
	"godaddy.com, llc":    true,
	"gandi sas":           true,
	"tucows domains inc.": true,
	"markmonitor inc.":    true,
}

var privacyRegistrarKeywords = []string{"privacy", "protect", "whoisguard"}

var countryRisk = map[string]int{
	"RU": 8,
	"IR": 8,
	"KP": 10,
}

var hostingKeywords = []string{
	"hosting", "cloud", "datacenter", "data center", "vps",
	"colocation", "colo", "amazon", "aws", "google", "microsoft",
	"azure", "digitalocean", "ovh", "hetzner",
}

// vpnTorKeywords are matched as whole tokens so "tor" does not hit
// "monitor" or "storage".
var vpnTorKeywords = []string{"vpn", "tunnel", "proxy", "tor"}

var parkingNSKeywords = []string{
	"sedoparking", "parkingcrew", "bodis", "afternic",
	"uniregistrymarket", "namebrightdns", "domainparking",
}

// shannonEntropy returns bits per character of s.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	ent := 0.0
	for _, c := range freq {
		p := float64(c) / float64(total)
		ent -= p * math.Log2(p)
	}
	return ent
}

// editDistance is Levenshtein distance; only ever run against the small
// brand list, so the quadratic cost is fine.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(cur[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
