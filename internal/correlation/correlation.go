// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.

// Package correlation detects compound attack patterns across the evidence
// one analysis produced. Rules match on Category tags and statuses only,
// never on display names, and every rule is evaluated against the original
// evidence set: no rule can trigger another.
package correlation

import (
	"fmt"

	"linkscope/go-server/internal/evidence"
)

// Context is the immutable per-analysis state rules may consult in addition
// to the evidence set.
type Context struct {
	TargetType evidence.TargetType
	HostIsIP   bool
}

// Result carries the correlated evidence list and the total boost. Boost is
// already included in the appended synthetic items' impacts.
type Result struct {
	Evidence []evidence.Evidence
	Boost    int
}

type rule struct {
	name  string
	apply func(view, Context) (evidence.Evidence, bool)
}

// view is a precomputed index over the original evidence set.
type view struct {
	items      []evidence.Evidence
	byCategory map[evidence.Category][]evidence.Evidence
}

func (v view) has(cat evidence.Category) bool {
	return len(v.byCategory[cat]) > 0
}

func (v view) count(cat evidence.Category) int {
	return len(v.byCategory[cat])
}

func (v view) hasFail(cat evidence.Category) bool {
	for _, e := range v.byCategory[cat] {
		if e.Status == evidence.StatusFail {
			return true
		}
	}
	return false
}

func (v view) failCategories() int {
	seen := make(map[evidence.Category]bool)
	for _, e := range v.items {
		if e.Status == evidence.StatusFail {
			seen[e.Category] = true
		}
	}
	return len(seen)
}

func (v view) anyFail() bool {
	for _, e := range v.items {
		if e.Status == evidence.StatusFail {
			return true
		}
	}
	return false
}

func synthetic(name, desc string, boost int) evidence.Evidence {
	ev := evidence.Fail(name, evidence.CategoryCorrelation, desc, boost)
	return ev
}

// catalog is the ordered rule list. Synthetic evidence is appended in this
// declaration order; each rule fires at most once per run.
var catalog = []rule{
	{
		name: "brand plus credential",
		apply: func(v view, _ Context) (evidence.Evidence, bool) {
			if v.has(evidence.CategoryBrand) && v.has(evidence.CategoryCredential) {
				return synthetic("Brand Impersonation + Credential Lure",
					"A brand-impersonation finding combined with credential-harvesting keywords is the classic phishing shape.", 20), true
			}
			return evidence.Evidence{}, false
		},
	},
	{
		name: "suspicious tld plus credential",
		apply: func(v view, _ Context) (evidence.Evidence, bool) {
			if v.has(evidence.CategoryTLD) && v.has(evidence.CategoryCredential) {
				return synthetic("Suspicious TLD + Credential Pattern",
					"Credential-lure keywords on an abuse-heavy TLD; throwaway phishing domains favor free TLDs.", 15), true
			}
			return evidence.Evidence{}, false
		},
	},
	{
		name: "repeated brand findings",
		apply: func(v view, _ Context) (evidence.Evidence, bool) {
			n := v.count(evidence.CategoryBrand)
			if n < 2 {
				return evidence.Evidence{}, false
			}
			boost := 10 + 5*(n-2)
			if boost > 25 {
				boost = 25
			}
			return synthetic("Multiple Brand Indicators",
				fmt.Sprintf("%d independent brand-impersonation findings reinforce each other.", n), boost), true
		},
	},
	{
		name: "obfuscation plus brand",
		apply: func(v view, _ Context) (evidence.Evidence, bool) {
			if (v.has(evidence.CategoryObfuscation) || v.has(evidence.CategorySanitization)) && v.has(evidence.CategoryBrand) {
				return synthetic("Obfuscated Brand Impersonation",
					"Character-level obfuscation applied to a brand lookalike shows deliberate evasion.", 15), true
			}
			return evidence.Evidence{}, false
		},
	},
	{
		name: "mobile plus brand",
		apply: func(v view, _ Context) (evidence.Evidence, bool) {
			if v.has(evidence.CategoryMobile) && v.has(evidence.CategoryBrand) {
				return synthetic("Mobile Lure + Brand Impersonation",
					"A brand lookalike pushing a mobile install flow targets devices with weaker download protections.", 15), true
			}
			return evidence.Evidence{}, false
		},
	},
	{
		name: "redirect plus obfuscation",
		apply: func(v view, _ Context) (evidence.Evidence, bool) {
			if v.has(evidence.CategoryRedirect) && (v.has(evidence.CategoryObfuscation) || v.has(evidence.CategorySanitization)) {
				return synthetic("Obfuscated Redirect Chain",
					"Redirection combined with obfuscation indicates traffic laundering.", 12), true
			}
			return evidence.Evidence{}, false
		},
	},
	{
		name: "ip host plus credential",
		apply: func(v view, ctx Context) (evidence.Evidence, bool) {
			if ctx.TargetType == evidence.TypeURL && ctx.HostIsIP &&
				v.hasFail(evidence.CategoryNetwork) && v.has(evidence.CategoryCredential) {
				return synthetic("IP Host + Credential Lure",
					"Credential-harvesting keywords served from a bare IP address; no legitimate login flow does this.", 15), true
			}
			return evidence.Evidence{}, false
		},
	},
	{
		name: "multi-vector",
		apply: func(v view, _ Context) (evidence.Evidence, bool) {
			if n := v.failCategories(); n >= 4 {
				return synthetic("Multi-Vector Attack Pattern",
					fmt.Sprintf("Fail-severity findings across %d independent categories indicate a coordinated attack rather than coincidence.", n), 25), true
			}
			return evidence.Evidence{}, false
		},
	},
}

// Correlate runs the rule catalog over evs. Synthetic findings are appended
// in declaration order; the hosting-context re-weighting below is the one
// documented exception to append-only, replacing the neutral item wholesale.
func Correlate(evs []evidence.Evidence, ctx Context) Result {
	v := view{
		items:      evs,
		byCategory: make(map[evidence.Category][]evidence.Evidence),
	}
	for _, e := range evs {
		v.byCategory[e.Category] = append(v.byCategory[e.Category], e)
	}

	out := make([]evidence.Evidence, len(evs))
	copy(out, evs)
	boost := 0

	// Hosting infrastructure is neutral alone, incriminating in context.
	if v.anyFail() {
		for i, e := range out {
			if e.Category == evidence.CategoryInfrastructure && e.ScoreImpact == 0 && e.Status == evidence.StatusPass {
				out[i] = evidence.Warn(e.Name, e.Category,
					e.Description+" In combination with the malicious findings above, disposable hosting is itself a risk marker.", 8)
				boost += 8
				break
			}
		}
	}

	for _, r := range catalog {
		if ev, ok := r.apply(v, ctx); ok {
			out = append(out, ev)
			boost += ev.ScoreImpact
		}
	}

	return Result{Evidence: out, Boost: boost}
}
