// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package analyzer

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"linkscope/go-server/internal/audit"
	"linkscope/go-server/internal/correlation"
	"linkscope/go-server/internal/dnsclient"
	"linkscope/go-server/internal/evidence"
	"linkscope/go-server/internal/heuristics"
	"linkscope/go-server/internal/intel"
	"linkscope/go-server/internal/sanitize"
	"linkscope/go-server/internal/scoring"
)

// Analyze runs the full pipeline for one target: preprocess, gather
// intelligence, produce signals, correlate, aggregate. The stages are
// strictly linear; intelligence gathering is the only one that suspends for
// I/O. Nothing below the input checks can fail the call: malformed data
// and missing intelligence become evidence and lower confidence instead.
func (a *Analyzer) Analyze(ctx context.Context, targetType evidence.TargetType, input string) (*evidence.Result, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return nil, ErrEmptyInput
	}
	if !targetType.Valid() {
		return nil, ErrInvalidType
	}

	select {
	case a.semaphore <- struct{}{}:
		defer func() { <-a.semaphore }()
	case <-time.After(a.acquireWait):
		slog.Warn("backpressure: rejected analysis", "type", targetType, "input", raw)
		return nil, ErrBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	start := time.Now()

	san := sanitize.Sanitize(raw)
	obf := sanitize.ScoreObfuscation(san.Normalized)
	working := san.Normalized
	if obf.Level == sanitize.ObfuscationHigh {
		working = obf.Decoded
	}

	evs := make([]evidence.Evidence, 0, 16)
	evs = append(evs, san.Evidence...)
	evs = append(evs, obf.Evidence...)

	var (
		snap     *intel.Snapshot
		hostIsIP bool
	)

	switch targetType {
	case evidence.TypeIP:
		hostIsIP = true
		snap = a.gatherIntel(ctx, working, true, "")
		evs = append(evs, heuristics.IPSignals(working)...)

	case evidence.TypeDomain:
		working = a.normalizeDomain(working, &evs)
		snap = a.gatherIntel(ctx, working, false, "")
		evs = append(evs, a.domainSignals(working, &san)...)

	case evidence.TypeURL:
		urlEvs, host, isIP := heuristics.URLSignals(working)
		evs = append(evs, urlEvs...)
		hostIsIP = isIP
		if host != "" {
			snap = a.gatherIntel(ctx, host, isIP, working)
			if isIP {
				evs = append(evs, heuristics.IPSignals(host)...)
			} else {
				evs = append(evs, a.domainSignals(host, &san)...)
			}
		}
	}

	evs = append(evs, heuristics.IntelSignals(snap)...)

	corr := correlation.Correlate(evs, correlation.Context{
		TargetType: targetType,
		HostIsIP:   hostIsIP,
	})

	agg := scoring.Score(corr.Evidence)

	var echo any
	if snap != nil {
		coverage := audit.BuildReport(
			audit.ExpectedSources(targetType, hostIsIP),
			audit.ObservedSources(snap),
			a.Telemetry.AllStats(),
		)
		echo = IntelEcho{Snapshot: snap, Coverage: &coverage}
	}

	slog.Info("analysis complete",
		"type", targetType,
		"target", raw,
		"score", agg.Score,
		"level", agg.Level,
		"signals", len(corr.Evidence),
		"elapsed_ms", time.Since(start).Milliseconds())

	return &evidence.Result{
		Target:     raw,
		Normalized: working,
		Type:       targetType,
		RiskScore:  agg.Score,
		RiskLevel:  agg.Level,
		Confidence: agg.Confidence,
		Summary:    agg.Summary,
		Evidence:   corr.Evidence,
		Breakdown:  agg.Breakdown,
		Intel:      echo,
	}, nil
}

// IntelEcho pairs the consumed snapshot with a coverage grade so result
// consumers can judge how complete the intelligence behind the verdict was.
type IntelEcho struct {
	Snapshot *intel.Snapshot `json:"snapshot"`
	Coverage *audit.Report   `json:"coverage"`
}

// normalizeDomain converts an IDN to its ASCII form. A domain that cannot be
// normalized or validated is itself a strong signal, not an error.
func (a *Analyzer) normalizeDomain(domain string, evs *[]evidence.Evidence) string {
	ascii, err := dnsclient.DomainToASCII(domain)
	if err != nil {
		*evs = append(*evs, evidence.Fail("Invalid Domain Name", evidence.CategoryDomain,
			"Input declared as a domain could not be converted to a valid DNS name.", 40))
		return domain
	}
	if !dnsclient.ValidateDomain(ascii) {
		*evs = append(*evs, evidence.Fail("Invalid Domain Name", evidence.CategoryDomain,
			"Input declared as a domain does not satisfy DNS naming rules.", 40))
	}
	return ascii
}

// domainSignals runs the structural, reputation and brand producers for a
// domain-shaped host. The allowlist signal and the brand producers are
// mutually exclusive: a genuinely allowlisted domain needs no impersonation
// check, and a spoofed lookalike must not be rescued by the allowlist its
// normalized form happens to land on.
func (a *Analyzer) domainSignals(domain string, san *sanitize.Result) []evidence.Evidence {
	out := heuristics.DomainSignals(domain)

	allowlisted := a.Reputation != nil && a.Reputation.IsReputable(domain)
	if allowlisted && !san.Spoofed() {
		out = append(out, heuristics.GlobalReputationSignal(domain))
		return out
	}

	out = append(out, heuristics.BrandSignals(domain, san.HomoglyphsFolded)...)
	return out
}

type intelResult struct {
	key   string
	apply func(*intel.Snapshot)
}

// gatherIntel fans out the independent lookups for one target and races
// them against the stage deadline. Whatever completed in time is the
// snapshot; individual failures are logged and swallowed.
func (a *Analyzer) gatherIntel(ctx context.Context, host string, hostIsIP bool, rawURL string) *intel.Snapshot {
	if a.Intel == nil && a.DNS == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.intelTimeout)
	defer cancel()

	resultsCh := make(chan intelResult, 8)
	var wg sync.WaitGroup

	tasks := a.intelTasks(ctx, host, hostIsIP, rawURL)
	for name, fn := range tasks {
		wg.Add(1)
		go func(name string, fn func() intelResult) {
			defer wg.Done()
			resultsCh <- fn()
		}(name, fn)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	snap := &intel.Snapshot{}
	completed := 0
	for {
		select {
		case res, ok := <-resultsCh:
			if !ok {
				return snap
			}
			if res.apply != nil {
				res.apply(snap)
			}
			completed++
		case <-ctx.Done():
			slog.Warn("intelligence gathering deadline reached",
				"host", host, "completed", completed, "outstanding", len(tasks)-completed)
			return snap
		}
	}
}

func (a *Analyzer) intelTasks(ctx context.Context, host string, hostIsIP bool, rawURL string) map[string]func() intelResult {
	tasks := make(map[string]func() intelResult)

	if a.Intel != nil {
		if hostIsIP {
			tasks["reputation"] = func() intelResult {
				rep, err := a.Intel.IPReputation(ctx, host)
				return lookupResult("reputation", host, err, func(s *intel.Snapshot) { s.IPReputation = rep })
			}
			tasks["detections"] = func() intelResult {
				det, err := a.Intel.IPReport(ctx, host)
				return lookupResult("detections", host, err, func(s *intel.Snapshot) { s.Detections = det })
			}
			tasks["geo"] = func() intelResult {
				geo, err := a.Intel.GeoLocate(ctx, host)
				if err == nil && geo != nil && geo.ReverseDNS == "" && a.DNS != nil {
					geo.ReverseDNS = a.DNS.ReverseDNS(ctx, host)
				}
				return lookupResult("geo", host, err, func(s *intel.Snapshot) { s.Geo = geo })
			}
		} else {
			tasks["whois"] = func() intelResult {
				rec, err := a.Intel.WHOIS(ctx, host)
				return lookupResult("whois", host, err, func(s *intel.Snapshot) { s.WHOIS = rec })
			}
			tasks["detections"] = func() intelResult {
				det, err := a.Intel.DomainReport(ctx, host)
				return lookupResult("detections", host, err, func(s *intel.Snapshot) { s.Detections = det })
			}
		}
		if rawURL != "" {
			tasks["url_report"] = func() intelResult {
				det, err := a.Intel.URLReport(ctx, rawURL)
				return lookupResult("url_report", rawURL, err, func(s *intel.Snapshot) {
					// The URL verdict outranks the host verdict when both
					// answered; keep whichever flags more engines.
					if s.Detections == nil || (det != nil && det.Malicious > s.Detections.Malicious) {
						if det != nil {
							s.Detections = det
						}
					}
				})
			}
		}
	}

	if a.DNS != nil && !hostIsIP {
		tasks["dns"] = func() intelResult {
			ov := a.DNS.GetOverview(ctx, host)
			return intelResult{key: "dns", apply: func(s *intel.Snapshot) { s.DNS = ov }}
		}
	}

	return tasks
}

func lookupResult(key, target string, err error, apply func(*intel.Snapshot)) intelResult {
	if err != nil {
		slog.Warn("intelligence lookup failed", "lookup", key, "target", target, "error", err)
		return intelResult{key: key}
	}
	return intelResult{key: key, apply: apply}
}
