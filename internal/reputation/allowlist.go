// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package reputation maintains the set of globally trusted registrable
// domains used to offset risk scoring for well-known destinations.
package reputation

import (
	"bufio"
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

const defaultRefreshInterval = 12 * time.Hour

// builtinAllowlist seeds the service so lookups work before (or without)
// any feed refresh. Entries are registrable domains.
var builtinAllowlist = []string{
	"google.com", "youtube.com", "facebook.com", "instagram.com",
	"twitter.com", "x.com", "wikipedia.org", "amazon.com", "apple.com",
	"microsoft.com", "live.com", "office.com", "linkedin.com",
	"netflix.com", "paypal.com", "github.com", "stackoverflow.com",
	"reddit.com", "ebay.com", "adobe.com", "dropbox.com", "salesforce.com",
	"zoom.us", "cloudflare.com", "mozilla.org", "wordpress.com",
	"shopify.com", "spotify.com", "whatsapp.com", "tiktok.com",
	"yahoo.com", "bing.com", "chase.com", "bankofamerica.com",
	"wellsfargo.com", "irs.gov", "usps.com", "fedex.com", "ups.com",
	"dhl.com",
}

// Allowlist answers whether a domain's registrable root is a globally
// recognized, high-reputation destination. Lookups are lock-free reads of
// an immutable set; refreshes swap the whole set.
type Allowlist struct {
	mu      sync.RWMutex
	domains map[string]bool

	feedPath string
	feedURL  string
	http     *http.Client
	logger   *slog.Logger
}

type AllowlistOption func(*Allowlist)

// WithFeedFile loads additional domains from a local file, one per line.
func WithFeedFile(path string) AllowlistOption {
	return func(a *Allowlist) { a.feedPath = path }
}

// WithFeedURL refreshes the list from a remote one-domain-per-line feed
// (Tranco-style) on the refresh interval.
func WithFeedURL(url string) AllowlistOption {
	return func(a *Allowlist) { a.feedURL = url }
}

func NewAllowlist(logger *slog.Logger, opts ...AllowlistOption) *Allowlist {
	a := &Allowlist{
		domains: make(map[string]bool, len(builtinAllowlist)),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
	for _, d := range builtinAllowlist {
		a.domains[d] = true
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.feedPath != "" {
		a.loadFile()
	}
	return a
}

// IsReputable reports whether the registrable root of domain is on the
// allowlist. Subdomains of listed domains match; lookalikes do not.
func (a *Allowlist) IsReputable(domain string) bool {
	root := RegistrableDomain(domain)
	if root == "" {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.domains[root]
}

// Size returns the number of listed domains.
func (a *Allowlist) Size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.domains)
}

// Run refreshes the list from the configured feed URL until ctx is done.
// It is a no-op when no feed URL is set.
func (a *Allowlist) Run(ctx context.Context) {
	if a.feedURL == "" {
		return
	}
	a.refresh(ctx)
	ticker := time.NewTicker(defaultRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.refresh(ctx)
		}
	}
}

func (a *Allowlist) loadFile() {
	f, err := os.Open(a.feedPath)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("allowlist file unavailable", "path", a.feedPath, "error", err)
		}
		return
	}
	defer f.Close()

	added := a.merge(bufio.NewScanner(f))
	if a.logger != nil {
		a.logger.Info("allowlist file loaded", "path", a.feedPath, "added", added)
	}
}

func (a *Allowlist) refresh(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, "GET", a.feedURL, nil)
	if err != nil {
		return
	}
	resp, err := a.http.Do(req)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("allowlist feed fetch failed", "error", err)
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if a.logger != nil {
			a.logger.Warn("allowlist feed fetch failed", "status", resp.StatusCode)
		}
		return
	}

	added := a.merge(bufio.NewScanner(resp.Body))
	if a.logger != nil {
		a.logger.Info("allowlist refreshed", "added", added, "total", a.Size())
	}
}

// merge folds feed lines into a fresh copy of the set and swaps it in.
// Lines may be bare domains or "rank,domain" pairs.
func (a *Allowlist) merge(scanner *bufio.Scanner) int {
	staged := make(map[string]bool)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.LastIndex(line, ","); idx >= 0 {
			line = line[idx+1:]
		}
		root := RegistrableDomain(line)
		if root != "" {
			staged[root] = true
		}
	}

	// Readers keep the old set while the union is built; the swap itself
	// is the only write under the lock.
	a.mu.RLock()
	current := a.domains
	a.mu.RUnlock()

	next := make(map[string]bool, len(current)+len(staged))
	for d := range current {
		next[d] = true
	}
	added := 0
	for d := range staged {
		if !next[d] {
			next[d] = true
			added++
		}
	}

	a.mu.Lock()
	a.domains = next
	a.mu.Unlock()
	return added
}

// RegistrableDomain lowercases the input and reduces it to its
// public-suffix-plus-one form ("mail.google.com" -> "google.com").
// It returns "" when no registrable root exists.
func RegistrableDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(domain), "."))
	if domain == "" {
		return ""
	}
	root, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return ""
	}
	return root
}
