// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package evidence

// TargetType is the caller-declared kind of input under analysis.
type TargetType string

const (
	TypeIP     TargetType = "ip"
	TypeDomain TargetType = "domain"
	TypeURL    TargetType = "url"
)

func (t TargetType) Valid() bool {
	switch t {
	case TypeIP, TypeDomain, TypeURL:
		return true
	}
	return false
}

// RiskLevel is the final categorical verdict, ordered by severity.
type RiskLevel string

const (
	LevelSafe       RiskLevel = "Safe"
	LevelSuspicious RiskLevel = "Suspicious"
	LevelMalicious  RiskLevel = "Malicious"
)

// Breakdown splits the aggregate into its risk and trust halves for display.
type Breakdown struct {
	Risk    int `json:"risk"`
	Trust   int `json:"trust"`
	Signals int `json:"signals"`
}

// Result is the terminal aggregate of one analysis. It is constructed once
// per request and never mutated after being handed to the caller.
type Result struct {
	Target     string     `json:"target"`
	Normalized string     `json:"normalized,omitempty"`
	Type       TargetType `json:"type"`
	RiskScore  int        `json:"risk_score"`
	RiskLevel  RiskLevel  `json:"risk_level"`
	Confidence int        `json:"confidence"`
	Summary    string     `json:"summary"`
	Evidence   []Evidence `json:"evidence"`
	Breakdown  Breakdown  `json:"breakdown"`

	// Intel echoes the third-party snapshot the analysis consumed, for
	// persistence and display. Nil fields mean the lookup was unavailable.
	Intel any `json:"intel,omitempty"`
}
