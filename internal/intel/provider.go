// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package intel

import "context"

// Provider exposes the independent third-party lookups the analysis pipeline
// fans out over. Every method degrades to (nil, nil) when the lookup is not
// configured, and (nil, err) on transport or parse failures; callers log the
// error and continue with a partial snapshot, never abort.
type Provider interface {
	IPReputation(ctx context.Context, ip string) (*IPReputation, error)
	WHOIS(ctx context.Context, domain string) (*WHOISRecord, error)
	DomainReport(ctx context.Context, domain string) (*DetectionReport, error)
	IPReport(ctx context.Context, ip string) (*DetectionReport, error)
	URLReport(ctx context.Context, rawURL string) (*DetectionReport, error)
	GeoLocate(ctx context.Context, ip string) (*GeoInfo, error)
}
