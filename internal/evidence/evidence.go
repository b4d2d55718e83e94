// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package evidence

// Status is the categorical severity of a single finding.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Category tags a finding for the correlation engine. Correlation rules
// match on these tags, never on display names.
type Category string

const (
	CategorySanitization   Category = "sanitization"
	CategoryObfuscation    Category = "obfuscation"
	CategoryBrand          Category = "brand"
	CategoryCredential     Category = "credential"
	CategoryTLD            Category = "tld"
	CategoryDomain         Category = "domain"
	CategoryNetwork        Category = "network"
	CategoryRedirect       Category = "redirect"
	CategoryMobile         Category = "mobile"
	CategoryFile           Category = "file"
	CategoryReputation     Category = "reputation"
	CategoryIntel          Category = "intel"
	CategoryInfrastructure Category = "infrastructure"
	CategoryCorrelation    Category = "correlation"
)

// Evidence is one named, explainable signal. A positive ScoreImpact raises
// risk, a negative one raises trust. Items are immutable once emitted; the
// correlation stage appends new items or replaces a named item wholesale.
type Evidence struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Status      Status   `json:"status"`
	Description string   `json:"description"`
	ScoreImpact int      `json:"score_impact"`

	// Critical marks findings that carry verdict authority on their own,
	// independent of the aggregate score.
	Critical bool `json:"critical,omitempty"`
}

// RiskContribution returns the positive share of the impact.
func (e Evidence) RiskContribution() int {
	if e.ScoreImpact > 0 {
		return e.ScoreImpact
	}
	return 0
}

// TrustContribution returns the magnitude of a negative impact.
func (e Evidence) TrustContribution() int {
	if e.ScoreImpact < 0 {
		return -e.ScoreImpact
	}
	return 0
}

func Pass(name string, cat Category, desc string, impact int) Evidence {
	return Evidence{Name: name, Category: cat, Status: StatusPass, Description: desc, ScoreImpact: impact}
}

func Warn(name string, cat Category, desc string, impact int) Evidence {
	return Evidence{Name: name, Category: cat, Status: StatusWarn, Description: desc, ScoreImpact: impact}
}

func Fail(name string, cat Category, desc string, impact int) Evidence {
	return Evidence{Name: name, Category: cat, Status: StatusFail, Description: desc, ScoreImpact: impact}
}
