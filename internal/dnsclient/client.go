// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package dnsclient

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"codeberg.org/miekg/dns"
	"codeberg.org/miekg/dns/dnsutil"
)

type ResolverConfig struct {
	Name string
	IP   string
}

var DefaultResolvers = []ResolverConfig{
	{Name: "Cloudflare", IP: "1.1.1.1"},
	{Name: "Google", IP: "8.8.8.8"},
	{Name: "Quad9", IP: "9.9.9.9"},
}

var UserAgent = "LinkScope-RiskAnalyzer/1.0"

func SetUserAgentVersion(version string) {
	UserAgent = fmt.Sprintf("LinkScope-RiskAnalyzer/%s", version)
}

const (
	defaultTimeout  = 2 * time.Second
	defaultCacheTTL = 5 * time.Minute
	defaultCacheMax = 1000
)

// Overview is the DNS posture of a domain as seen from public resolvers.
// It is gathered once per analysis and handed to the heuristics as part of
// the intelligence snapshot.
type Overview struct {
	NS    []string `json:"ns"`
	A     []string `json:"a"`
	AAAA  []string `json:"aaaa"`
	MX    []string `json:"mx"`
	CNAME []string `json:"cname"`
	TXT   []string `json:"txt"`
}

func (o *Overview) HasNS() bool   { return o != nil && len(o.NS) > 0 }
func (o *Overview) HasAddr() bool { return o != nil && (len(o.A) > 0 || len(o.AAAA) > 0) }
func (o *Overview) HasMX() bool   { return o != nil && len(o.MX) > 0 }

type Client struct {
	resolvers []ResolverConfig
	timeout   time.Duration

	cacheMu  sync.RWMutex
	cache    map[string]cacheEntry
	cacheTTL time.Duration
	cacheMax int
}

type cacheEntry struct {
	data      []string
	timestamp time.Time
}

type Option func(*Client)

func WithResolvers(r []ResolverConfig) Option {
	return func(c *Client) { c.resolvers = r }
}

func WithTimeout(t time.Duration) Option {
	return func(c *Client) { c.timeout = t }
}

func WithCacheTTL(t time.Duration) Option {
	return func(c *Client) { c.cacheTTL = t }
}

func New(opts ...Option) *Client {
	c := &Client{
		resolvers: DefaultResolvers,
		timeout:   defaultTimeout,
		cache:     make(map[string]cacheEntry),
		cacheTTL:  defaultCacheTTL,
		cacheMax:  defaultCacheMax,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) cacheGet(key string) ([]string, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	entry, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.timestamp) > c.cacheTTL {
		return nil, false
	}
	return entry.data, true
}

func (c *Client) cacheSet(key string, data []string) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache[key] = cacheEntry{data: data, timestamp: time.Now()}
	if len(c.cache) > c.cacheMax {
		cutoff := time.Now().Add(-c.cacheTTL)
		for k, v := range c.cache {
			if v.timestamp.Before(cutoff) {
				delete(c.cache, k)
			}
		}
	}
}

func dnsTypeFromString(recordType string) (uint16, error) {
	switch strings.ToUpper(recordType) {
	case "A":
		return dns.TypeA, nil
	case "AAAA":
		return dns.TypeAAAA, nil
	case "MX":
		return dns.TypeMX, nil
	case "TXT":
		return dns.TypeTXT, nil
	case "NS":
		return dns.TypeNS, nil
	case "CNAME":
		return dns.TypeCNAME, nil
	case "PTR":
		return dns.TypePTR, nil
	default:
		return 0, fmt.Errorf("unsupported record type: %s", recordType)
	}
}

func rrToString(rr dns.RR) string {
	switch v := rr.(type) {
	case *dns.A:
		return v.A.Addr.String()
	case *dns.AAAA:
		return v.AAAA.Addr.String()
	case *dns.MX:
		return fmt.Sprintf("%d %s", v.MX.Preference, v.MX.Mx)
	case *dns.TXT:
		return strings.Join(v.TXT.Txt, "")
	case *dns.NS:
		return v.NS.Ns
	case *dns.CNAME:
		return v.CNAME.Target
	case *dns.PTR:
		return v.PTR.Ptr
	default:
		hdr := rr.Header()
		full := rr.String()
		prefix := hdr.String()
		return strings.TrimPrefix(full, prefix)
	}
}

// QueryDNS queries the configured resolvers in order and returns the first
// non-empty answer. Failures fall through to the next resolver; a fully
// failed query returns nil, never an error.
func (c *Client) QueryDNS(ctx context.Context, recordType, domain string) []string {
	if domain == "" || recordType == "" {
		return nil
	}

	cacheKey := fmt.Sprintf("%s:%s", strings.ToUpper(recordType), strings.ToLower(domain))
	if cached, ok := c.cacheGet(cacheKey); ok {
		return cached
	}

	for _, resolver := range c.resolvers {
		results := c.udpQuery(ctx, domain, recordType, resolver.IP)
		if len(results) > 0 {
			c.cacheSet(cacheKey, results)
			return results
		}
	}

	return nil
}

func (c *Client) udpQuery(ctx context.Context, domain, recordType, resolverIP string) []string {
	qtype, err := dnsTypeFromString(recordType)
	if err != nil {
		return nil
	}

	fqdn := dnsutil.Fqdn(domain)
	msg := dns.NewMsg(fqdn, qtype)
	msg.RecursionDesired = true

	client := &dns.Client{Transport: &dns.Transport{
		Dialer:       &net.Dialer{Timeout: c.timeout},
		ReadTimeout:  c.timeout,
		WriteTimeout: c.timeout,
	}}

	r, _, err := client.Exchange(ctx, msg, "udp", net.JoinHostPort(resolverIP, "53"))
	if err != nil || r == nil {
		return nil
	}
	if r.Rcode == dns.RcodeNameError {
		return nil
	}

	var results []string
	for _, rr := range r.Answer {
		if s := rrToString(rr); s != "" {
			results = append(results, s)
		}
	}
	sort.Strings(results)
	return results
}

// GetOverview collects the NS/A/AAAA/MX/CNAME/TXT posture of a domain
// concurrently.
func (c *Client) GetOverview(ctx context.Context, domain string) *Overview {
	ov := &Overview{}
	var wg sync.WaitGroup
	var mu sync.Mutex

	lookups := map[string]func([]string){
		"NS":    func(r []string) { ov.NS = r },
		"A":     func(r []string) { ov.A = r },
		"AAAA":  func(r []string) { ov.AAAA = r },
		"MX":    func(r []string) { ov.MX = r },
		"CNAME": func(r []string) { ov.CNAME = r },
		"TXT":   func(r []string) { ov.TXT = r },
	}

	for rtype, assign := range lookups {
		wg.Add(1)
		go func(rtype string, assign func([]string)) {
			defer wg.Done()
			records := c.QueryDNS(ctx, rtype, domain)
			mu.Lock()
			assign(records)
			mu.Unlock()
		}(rtype, assign)
	}

	wg.Wait()
	return ov
}

// ReverseDNS returns the PTR name for an IP, or "" when none resolves.
func (c *Client) ReverseDNS(ctx context.Context, ip string) string {
	arpa := buildArpaName(ip)
	if arpa == "" {
		return ""
	}
	results := c.QueryDNS(ctx, "PTR", arpa)
	if len(results) == 0 {
		return ""
	}
	return strings.TrimRight(strings.ToLower(results[0]), ".")
}

func buildArpaName(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.%d.in-addr.arpa", v4[3], v4[2], v4[1], v4[0])
	}

	v6 := parsed.To16()
	const hexDigit = "0123456789abcdef"
	var b strings.Builder
	for i := len(v6) - 1; i >= 0; i-- {
		b.WriteByte(hexDigit[v6[i]&0xf])
		b.WriteByte('.')
		b.WriteByte(hexDigit[v6[i]>>4])
		b.WriteByte('.')
	}
	return b.String() + "ip6.arpa"
}
