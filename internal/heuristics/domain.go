// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.
package heuristics

import (
	"fmt"
	"strings"

	"linkscope/go-server/internal/dnsclient"
	"linkscope/go-server/internal/evidence"
)

// DomainSignals runs the structural checks for a domain target. It covers
// only what can be read off the name itself; intelligence-derived findings
// come from IntelSignals.
func DomainSignals(domain string) []evidence.Evidence {
	domain = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(domain), "."))
	if domain == "" {
		return nil
	}

	var out []evidence.Evidence
	labels := splitLabels(domain)

	if tld := dnsclient.GetTLD(domain); suspiciousTLDs[tld] {
		out = append(out, evidence.Fail("Suspicious TLD", evidence.CategoryTLD,
			fmt.Sprintf("The .%s TLD is statistically over-represented in abuse reports.", tld), 18))
	}

	if hits := credentialHits(labels); len(hits) > 0 {
		desc := fmt.Sprintf("Domain labels contain phishing-lure keywords: %s.", strings.Join(hits, ", "))
		if len(hits) >= 2 {
			out = append(out, evidence.Fail("Credential Harvesting Keywords", evidence.CategoryCredential, desc, 18))
		} else {
			out = append(out, evidence.Warn("Credential Harvesting Keywords", evidence.CategoryCredential, desc, 12))
		}
	}

	if len(labels) >= 5 {
		out = append(out, evidence.Warn("Excessive Subdomain Depth", evidence.CategoryDomain,
			fmt.Sprintf("Hostname nests %d labels; deep chains are often used to bury a trusted-looking prefix.", len(labels)), 14))
	}

	if len(domain) >= 50 {
		out = append(out, evidence.Warn("Unusually Long Domain", evidence.CategoryDomain,
			fmt.Sprintf("Domain is %d characters long.", len(domain)), 8))
	}

	if sld := secondLevelLabel(domain); len(sld) >= 8 {
		if ent := shannonEntropy(sld); ent >= 3.8 {
			out = append(out, evidence.Warn("High-Entropy Label", evidence.CategoryDomain,
				fmt.Sprintf("Registrable label %q has entropy %.1f bits/char, suggesting machine generation.", sld, ent), 12))
		}
		if ratio := digitRatio(sld); ratio > 0.3 {
			out = append(out, evidence.Warn("Digit-Heavy Label", evidence.CategoryDomain,
				fmt.Sprintf("Registrable label %q is %.0f%% digits.", sld, ratio*100), 8))
		}
	}

	for _, label := range labels {
		if strings.HasPrefix(label, "xn--") {
			out = append(out, evidence.Warn("Punycode Label", evidence.CategoryObfuscation,
				fmt.Sprintf("Label %q is punycode-encoded; IDN labels are legitimate but also the standard homoglyph-attack vehicle.", label), 15))
			break
		}
	}

	return out
}

// GlobalReputationSignal is the single strong trust item emitted when the
// registrable domain is on the allowlist. Callers suppress it when
// preprocessing found spoofing evidence.
func GlobalReputationSignal(domain string) evidence.Evidence {
	return evidence.Pass("Global Authority Reputation", evidence.CategoryReputation,
		fmt.Sprintf("%s is recognized as a highly reputable global service.", domain), -65)
}

func splitLabels(domain string) []string {
	var labels []string
	for _, l := range strings.Split(domain, ".") {
		if l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

func credentialHits(labels []string) []string {
	var hits []string
	seen := make(map[string]bool)
	for _, label := range labels {
		for _, tok := range strings.Split(label, "-") {
			for _, kw := range credentialKeywords {
				if tok == kw && !seen[kw] {
					seen[kw] = true
					hits = append(hits, kw)
				}
			}
		}
	}
	return hits
}

func digitRatio(s string) float64 {
	if s == "" {
		return 0
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float64(digits) / float64(len(s))
}
