// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.
package intel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"linkscope/go-server/internal/dnsclient"
	"linkscope/go-server/internal/telemetry"
)

const (
	abuseIPDBEndpoint  = "https://api.abuseipdb.com/api/v2/check"
	virusTotalEndpoint = "https://www.virustotal.com/api/v3"
	rdapEndpoint       = "https://rdap.org/domain"
	ipInfoEndpoint     = "https://ipinfo.io"

	maxResponseBytes = 1 << 20
)

// Keys holds the optional upstream API credentials. An empty key disables
// the corresponding provider without error.
type Keys struct {
	AbuseIPDB  string
	VirusTotal string
	IPInfo     string
}

// HTTPProvider implements Provider against the public AbuseIPDB, VirusTotal,
// RDAP and ipinfo endpoints, with per-provider TTL caches and health
// telemetry.
type HTTPProvider struct {
	http      *dnsclient.SafeHTTPClient
	keys      Keys
	telemetry *telemetry.Registry

	repCache   *telemetry.TTLCache[*IPReputation]
	whoisCache *telemetry.TTLCache[*WHOISRecord]
	vtCache    *telemetry.TTLCache[*DetectionReport]
	geoCache   *telemetry.TTLCache[*GeoInfo]
}

func NewHTTPProvider(keys Keys, registry *telemetry.Registry) *HTTPProvider {
	return &HTTPProvider{
		http:       dnsclient.NewSafeHTTPClient(),
		keys:       keys,
		telemetry:  registry,
		repCache:   telemetry.NewTTLCache[*IPReputation]("ip_reputation", 2000, 1*time.Hour),
		whoisCache: telemetry.NewTTLCache[*WHOISRecord]("whois", 2000, 24*time.Hour),
		vtCache:    telemetry.NewTTLCache[*DetectionReport]("detections", 2000, 1*time.Hour),
		geoCache:   telemetry.NewTTLCache[*GeoInfo]("geo", 2000, 24*time.Hour),
	}
}

// CacheStats reports hit-rate counters for every lookup cache.
func (p *HTTPProvider) CacheStats() []telemetry.CacheStats {
	return []telemetry.CacheStats{
		p.repCache.Stats(),
		p.whoisCache.Stats(),
		p.vtCache.Stats(),
		p.geoCache.Stats(),
	}
}

func (p *HTTPProvider) record(name string, start time.Time, err error) {
	if p.telemetry == nil {
		return
	}
	if err != nil {
		p.telemetry.RecordFailure(name, err.Error())
		return
	}
	p.telemetry.RecordSuccess(name, time.Since(start))
}

func (p *HTTPProvider) IPReputation(ctx context.Context, ip string) (*IPReputation, error) {
	if p.keys.AbuseIPDB == "" {
		return nil, nil
	}
	if cached, ok := p.repCache.Get(ip); ok {
		return cached, nil
	}
	if p.telemetry != nil && p.telemetry.InCooldown("abuseipdb") {
		return nil, nil
	}

	start := time.Now()
	reqURL := fmt.Sprintf("%s?ipAddress=%s&maxAgeInDays=90", abuseIPDBEndpoint, url.QueryEscape(ip))
	resp, err := p.http.GetWithHeaders(ctx, reqURL, map[string]string{
		"Key":    p.keys.AbuseIPDB,
		"Accept": "application/json",
	})
	if err != nil {
		p.record("abuseipdb", start, err)
		return nil, err
	}
	body, err := p.http.ReadBody(resp, maxResponseBytes)
	if err != nil {
		p.record("abuseipdb", start, err)
		return nil, err
	}
	if resp.StatusCode != 200 {
		err = fmt.Errorf("abuseipdb: unexpected status %d", resp.StatusCode)
		p.record("abuseipdb", start, err)
		return nil, err
	}

	var parsed struct {
		Data struct {
			AbuseConfidenceScore int    `json:"abuseConfidenceScore"`
			TotalReports         int    `json:"totalReports"`
			ISP                  string `json:"isp"`
			UsageType            string `json:"usageType"`
			CountryCode          string `json:"countryCode"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		p.record("abuseipdb", start, err)
		return nil, err
	}

	rep := &IPReputation{
		AbuseConfidence: parsed.Data.AbuseConfidenceScore,
		TotalReports:    parsed.Data.TotalReports,
		ISP:             parsed.Data.ISP,
		UsageType:       parsed.Data.UsageType,
		CountryCode:     parsed.Data.CountryCode,
	}
	p.repCache.Set(ip, rep)
	p.record("abuseipdb", start, nil)
	return rep, nil
}

func (p *HTTPProvider) WHOIS(ctx context.Context, domain string) (*WHOISRecord, error) {
	if cached, ok := p.whoisCache.Get(domain); ok {
		return cached, nil
	}
	if p.telemetry != nil && p.telemetry.InCooldown("rdap") {
		return nil, nil
	}

	start := time.Now()
	resp, err := p.http.Get(ctx, fmt.Sprintf("%s/%s", rdapEndpoint, url.PathEscape(domain)))
	if err != nil {
		p.record("rdap", start, err)
		return nil, err
	}
	body, err := p.http.ReadBody(resp, maxResponseBytes)
	if err != nil {
		p.record("rdap", start, err)
		return nil, err
	}
	if resp.StatusCode != 200 {
		err = fmt.Errorf("rdap: unexpected status %d", resp.StatusCode)
		p.record("rdap", start, err)
		return nil, err
	}

	rec, err := parseRDAP(body)
	if err != nil {
		p.record("rdap", start, err)
		return nil, err
	}

	p.whoisCache.Set(domain, rec)
	p.record("rdap", start, nil)
	return rec, nil
}

func parseRDAP(body []byte) (*WHOISRecord, error) {
	var parsed struct {
		Events []struct {
			Action string `json:"eventAction"`
			Date   string `json:"eventDate"`
		} `json:"events"`
		Entities []struct {
			Roles      []string `json:"roles"`
			VCardArray []any    `json:"vcardArray"`
		} `json:"entities"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	rec := &WHOISRecord{AgeDays: -1}

	for _, ev := range parsed.Events {
		if ev.Action != "registration" {
			continue
		}
		rec.CreatedAt = ev.Date
		if t, err := time.Parse(time.RFC3339, ev.Date); err == nil {
			rec.AgeDays = int(time.Since(t).Hours() / 24)
		}
		break
	}

	for _, ent := range parsed.Entities {
		if !hasRole(ent.Roles, "registrar") {
			continue
		}
		if name := vcardFullName(ent.VCardArray); name != "" {
			rec.Registrar = name
			break
		}
	}

	return rec, nil
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// vcardFullName digs the "fn" property out of a jCard structure.
func vcardFullName(vcard []any) string {
	if len(vcard) < 2 {
		return ""
	}
	props, ok := vcard[1].([]any)
	if !ok {
		return ""
	}
	for _, raw := range props {
		prop, ok := raw.([]any)
		if !ok || len(prop) < 4 {
			continue
		}
		if name, _ := prop[0].(string); name != "fn" {
			continue
		}
		if value, ok := prop[3].(string); ok {
			return value
		}
	}
	return ""
}

func (p *HTTPProvider) DomainReport(ctx context.Context, domain string) (*DetectionReport, error) {
	return p.vtReport(ctx, "domains/"+url.PathEscape(domain), "domain:"+domain)
}

func (p *HTTPProvider) IPReport(ctx context.Context, ip string) (*DetectionReport, error) {
	return p.vtReport(ctx, "ip_addresses/"+url.PathEscape(ip), "ip:"+ip)
}

func (p *HTTPProvider) URLReport(ctx context.Context, rawURL string) (*DetectionReport, error) {
	id := base64.RawURLEncoding.EncodeToString([]byte(rawURL))
	return p.vtReport(ctx, "urls/"+id, "url:"+rawURL)
}

func (p *HTTPProvider) vtReport(ctx context.Context, path, cacheKey string) (*DetectionReport, error) {
	if p.keys.VirusTotal == "" {
		return nil, nil
	}
	if cached, ok := p.vtCache.Get(cacheKey); ok {
		return cached, nil
	}
	if p.telemetry != nil && p.telemetry.InCooldown("virustotal") {
		return nil, nil
	}

	start := time.Now()
	resp, err := p.http.GetWithHeaders(ctx, virusTotalEndpoint+"/"+path, map[string]string{
		"x-apikey": p.keys.VirusTotal,
	})
	if err != nil {
		p.record("virustotal", start, err)
		return nil, err
	}
	body, err := p.http.ReadBody(resp, maxResponseBytes)
	if err != nil {
		p.record("virustotal", start, err)
		return nil, err
	}
	if resp.StatusCode == 404 {
		// Unknown to VirusTotal is a valid answer, not a failure.
		p.record("virustotal", start, nil)
		return nil, nil
	}
	if resp.StatusCode != 200 {
		err = fmt.Errorf("virustotal: unexpected status %d", resp.StatusCode)
		p.record("virustotal", start, err)
		return nil, err
	}

	var parsed struct {
		Data struct {
			Attributes struct {
				LastAnalysisStats struct {
					Malicious  int `json:"malicious"`
					Suspicious int `json:"suspicious"`
					Harmless   int `json:"harmless"`
					Undetected int `json:"undetected"`
				} `json:"last_analysis_stats"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		p.record("virustotal", start, err)
		return nil, err
	}

	stats := parsed.Data.Attributes.LastAnalysisStats
	report := &DetectionReport{
		Malicious:  stats.Malicious,
		Suspicious: stats.Suspicious,
		Harmless:   stats.Harmless,
		Undetected: stats.Undetected,
	}
	p.vtCache.Set(cacheKey, report)
	p.record("virustotal", start, nil)
	return report, nil
}

func (p *HTTPProvider) GeoLocate(ctx context.Context, ip string) (*GeoInfo, error) {
	if p.keys.IPInfo == "" {
		return nil, nil
	}
	if cached, ok := p.geoCache.Get(ip); ok {
		return cached, nil
	}
	if p.telemetry != nil && p.telemetry.InCooldown("ipinfo") {
		return nil, nil
	}

	start := time.Now()
	reqURL := fmt.Sprintf("%s/%s/json?token=%s", ipInfoEndpoint, url.PathEscape(ip), url.QueryEscape(p.keys.IPInfo))
	resp, err := p.http.Get(ctx, reqURL)
	if err != nil {
		p.record("ipinfo", start, err)
		return nil, err
	}
	body, err := p.http.ReadBody(resp, maxResponseBytes)
	if err != nil {
		p.record("ipinfo", start, err)
		return nil, err
	}
	if resp.StatusCode != 200 {
		err = fmt.Errorf("ipinfo: unexpected status %d", resp.StatusCode)
		p.record("ipinfo", start, err)
		return nil, err
	}

	var parsed struct {
		Country  string `json:"country"`
		City     string `json:"city"`
		Org      string `json:"org"`
		Hostname string `json:"hostname"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		p.record("ipinfo", start, err)
		return nil, err
	}

	info := &GeoInfo{
		CountryCode: parsed.Country,
		City:        parsed.City,
		Org:         parsed.Org,
		ReverseDNS:  parsed.Hostname,
	}
	p.geoCache.Set(ip, info)
	p.record("ipinfo", start, nil)
	return info, nil
}

var _ Provider = (*HTTPProvider)(nil)
