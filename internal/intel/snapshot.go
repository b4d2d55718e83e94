// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package intel

import "linkscope/go-server/internal/dnsclient"

// Snapshot is the read-only bag of third-party lookup results one analysis
// consumes. A nil field means the lookup was unavailable or not applicable;
// the heuristics emit no evidence for absent fields.
type Snapshot struct {
	IPReputation *IPReputation       `json:"ip_reputation,omitempty"`
	WHOIS        *WHOISRecord        `json:"whois,omitempty"`
	Detections   *DetectionReport    `json:"detections,omitempty"`
	Geo          *GeoInfo            `json:"geo,omitempty"`
	DNS          *dnsclient.Overview `json:"dns,omitempty"`
}

// Empty reports whether no lookup produced anything.
func (s *Snapshot) Empty() bool {
	return s == nil || (s.IPReputation == nil && s.WHOIS == nil &&
		s.Detections == nil && s.Geo == nil && s.DNS == nil)
}

// IPReputation is an AbuseIPDB-style report for one address.
type IPReputation struct {
	AbuseConfidence int    `json:"abuse_confidence"`
	TotalReports    int    `json:"total_reports"`
	ISP             string `json:"isp,omitempty"`
	UsageType       string `json:"usage_type,omitempty"`
	CountryCode     string `json:"country_code,omitempty"`
}

// WHOISRecord carries registration facts for a domain. AgeDays is -1 when
// the registry exposes no creation date.
type WHOISRecord struct {
	Registrar string `json:"registrar,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	AgeDays   int    `json:"age_days"`
}

// DetectionReport is a multi-engine consensus in the VirusTotal shape.
type DetectionReport struct {
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Harmless   int `json:"harmless"`
	Undetected int `json:"undetected"`
}

func (d *DetectionReport) Engines() int {
	if d == nil {
		return 0
	}
	return d.Malicious + d.Suspicious + d.Harmless + d.Undetected
}

// GeoInfo is an ipinfo-style location and network ownership record.
type GeoInfo struct {
	CountryCode string `json:"country_code,omitempty"`
	City        string `json:"city,omitempty"`
	Org         string `json:"org,omitempty"`
	ReverseDNS  string `json:"reverse_dns,omitempty"`
}
