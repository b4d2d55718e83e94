// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.
package heuristics

import (
	"fmt"
	"math"
	"strings"

	"linkscope/go-server/internal/dnsclient"
	"linkscope/go-server/internal/evidence"
	"linkscope/go-server/internal/intel"
)

// IntelSignals translates an intelligence snapshot into Evidence via fixed
// threshold rules. Absent snapshot fields emit nothing; missing data lowers
// confidence downstream instead of guessing.
func IntelSignals(snap *intel.Snapshot) []evidence.Evidence {
	if snap == nil || snap.Empty() {
		return nil
	}

	var out []evidence.Evidence
	out = append(out, reputationSignals(snap.IPReputation)...)
	out = append(out, whoisSignals(snap.WHOIS)...)
	out = append(out, detectionSignals(snap.Detections)...)
	out = append(out, geoSignals(snap)...)
	out = append(out, dnsPostureSignals(snap.DNS)...)
	return out
}

func reputationSignals(rep *intel.IPReputation) []evidence.Evidence {
	if rep == nil {
		return nil
	}
	var out []evidence.Evidence

	if rep.AbuseConfidence > 25 {
		impact := int(math.Round(float64(rep.AbuseConfidence) / 2))
		desc := fmt.Sprintf("Community abuse confidence is %d%%.", rep.AbuseConfidence)
		if rep.AbuseConfidence >= 50 {
			out = append(out, evidence.Fail("IP Reputation Score", evidence.CategoryIntel, desc, impact))
		} else {
			out = append(out, evidence.Warn("IP Reputation Score", evidence.CategoryIntel, desc, impact))
		}
	}

	switch {
	case rep.TotalReports >= 500:
		out = append(out, evidence.Fail("Abuse Report Volume", evidence.CategoryIntel,
			fmt.Sprintf("Address has %d abuse reports on record.", rep.TotalReports), 15))
	case rep.TotalReports >= 100:
		out = append(out, evidence.Warn("Abuse Report Volume", evidence.CategoryIntel,
			fmt.Sprintf("Address has %d abuse reports on record.", rep.TotalReports), 10))
	}

	return out
}

func whoisSignals(rec *intel.WHOISRecord) []evidence.Evidence {
	if rec == nil {
		return nil
	}
	var out []evidence.Evidence

	if rec.AgeDays >= 0 {
		switch {
		case rec.AgeDays < 30:
			out = append(out, evidence.Fail("Newly Registered Domain", evidence.CategoryIntel,
				fmt.Sprintf("Domain was registered %d days ago; throwaway phishing domains cluster under 30 days.", rec.AgeDays), 30))
		case rec.AgeDays < 180:
			out = append(out, evidence.Warn("Recently Registered Domain", evidence.CategoryIntel,
				fmt.Sprintf("Domain is %d days old.", rec.AgeDays), 15))
		case rec.AgeDays < 365:
			out = append(out, evidence.Warn("Domain Under One Year", evidence.CategoryIntel,
				fmt.Sprintf("Domain is %d days old.", rec.AgeDays), 5))
		default:
			out = append(out, evidence.Pass("Established Domain", evidence.CategoryIntel,
				fmt.Sprintf("Domain age of %d days is a mild trust signal.", rec.AgeDays), -6))
		}
	}

	if reg := strings.ToLower(strings.TrimSpace(rec.Registrar)); reg != "" {
		if reputableRegistrars[reg] {
			out = append(out, evidence.Pass("Registrar Reputation", evidence.CategoryIntel,
				fmt.Sprintf("Registrar %q is commonly used by reputable organizations.", rec.Registrar), -4))
		} else if containsAny(reg, privacyRegistrarKeywords) {
			out = append(out, evidence.Warn("Registrar Reputation", evidence.CategoryIntel,
				fmt.Sprintf("Registrar %q suggests heavy privacy proxying.", rec.Registrar), 10))
		}
	}

	return out
}

func detectionSignals(det *intel.DetectionReport) []evidence.Evidence {
	if det == nil || det.Engines() == 0 {
		return nil
	}

	flagged := det.Malicious + det.Suspicious
	if flagged == 0 {
		if det.Harmless >= 10 {
			return []evidence.Evidence{evidence.Pass("Detection Engine Consensus", evidence.CategoryIntel,
				fmt.Sprintf("%d engines scanned the target; none flagged it.", det.Engines()), -5)}
		}
		return nil
	}

	impact := 5*det.Malicious + 2*det.Suspicious
	if impact > 40 {
		impact = 40
	}
	desc := fmt.Sprintf("%d of %d detection engines flag the target as malicious (%d more as suspicious).",
		det.Malicious, det.Engines(), det.Suspicious)
	if det.Malicious > 0 {
		return []evidence.Evidence{evidence.Fail("Detection Engine Consensus", evidence.CategoryIntel, desc, impact)}
	}
	return []evidence.Evidence{evidence.Warn("Detection Engine Consensus", evidence.CategoryIntel, desc, impact)}
}

func geoSignals(snap *intel.Snapshot) []evidence.Evidence {
	var out []evidence.Evidence

	// Hosting/VPN context draws on both the reputation and geo lookups;
	// whichever answered first wins, one finding each.
	var descriptors []string
	if snap.IPReputation != nil {
		descriptors = append(descriptors, snap.IPReputation.ISP, snap.IPReputation.UsageType)
	}
	var country string
	if snap.Geo != nil {
		descriptors = append(descriptors, snap.Geo.Org, snap.Geo.ReverseDNS)
		country = snap.Geo.CountryCode
	}
	if country == "" && snap.IPReputation != nil {
		country = snap.IPReputation.CountryCode
	}

	hay := strings.ToLower(strings.Join(descriptors, " "))

	if hay != "" && containsAny(hay, hostingKeywords) {
		// Neutral alone; the correlation stage re-weights this when other
		// malicious findings exist.
		out = append(out, evidence.Pass("Hosting Provider Context", evidence.CategoryInfrastructure,
			"Address belongs to hosting/cloud infrastructure rather than a consumer ISP.", 0))
	}

	if hay != "" {
		if hits := tokenHits(hay, vpnTorKeywords); len(hits) > 0 {
			out = append(out, evidence.Warn("Anonymization Infrastructure", evidence.CategoryInfrastructure,
				fmt.Sprintf("Network descriptors suggest VPN/proxy/TOR infrastructure (%s).", strings.Join(hits, ", ")), 18))
		}
	}

	if risk, ok := countryRisk[strings.ToUpper(country)]; ok {
		out = append(out, evidence.Warn("Country Risk", evidence.CategoryIntel,
			fmt.Sprintf("Address is registered in %s; a weak, threat-model-dependent signal.", strings.ToUpper(country)), risk))
	}

	return out
}

func dnsPostureSignals(ov *dnsclient.Overview) []evidence.Evidence {
	if ov == nil {
		return nil
	}
	var out []evidence.Evidence

	if !ov.HasNS() {
		out = append(out, evidence.Fail("DNS Nameservers", evidence.CategoryNetwork,
			"No NS records found; the domain may be misconfigured or newly staged.", 12))
	} else {
		out = append(out, evidence.Pass("DNS Nameservers", evidence.CategoryNetwork,
			"NS records exist.", -3))
	}

	if !ov.HasAddr() {
		out = append(out, evidence.Fail("DNS Resolution", evidence.CategoryNetwork,
			"No A/AAAA records found; the domain does not resolve.", 14))
	} else {
		out = append(out, evidence.Pass("DNS Resolution", evidence.CategoryNetwork,
			"Domain resolves to at least one address.", -2))
	}

	parkingHit := parkingNS(ov.NS)
	if parkingHit == "" {
		parkingHit = parkingNS(ov.CNAME)
	}
	if parkingHit != "" && !ov.HasMX() {
		out = append(out, evidence.Warn("Parked Domain Suspected", evidence.CategoryNetwork,
			fmt.Sprintf("Nameserver or CNAME matches parking keyword %q and no MX records exist.", parkingHit), 12))
	}

	if ov.HasMX() {
		if hasSPF(ov.TXT) {
			out = append(out, evidence.Pass("Email Authentication", evidence.CategoryNetwork,
				"Mail-enabled domain publishes an SPF policy.", -2))
		} else {
			out = append(out, evidence.Warn("Email Authentication", evidence.CategoryNetwork,
				"Domain publishes MX records but no SPF policy, which makes sender spoofing easier.", 6))
		}
	}

	return out
}

func hasSPF(txts []string) bool {
	for _, txt := range txts {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(txt)), "v=spf1") {
			return true
		}
	}
	return false
}

func parkingNS(servers []string) string {
	for _, ns := range servers {
		lower := strings.ToLower(ns)
		for _, kw := range parkingNSKeywords {
			if strings.Contains(lower, kw) {
				return kw
			}
		}
	}
	return ""
}

func containsAny(hay string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(hay, n) {
			return true
		}
	}
	return false
}

func tokenHits(hay string, keywords []string) []string {
	tokens := strings.FieldsFunc(hay, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	var hits []string
	for _, kw := range keywords {
		if set[kw] {
			hits = append(hits, kw)
		}
	}
	return hits
}
