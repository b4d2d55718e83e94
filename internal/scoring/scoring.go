// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.

// Package scoring turns a correlated evidence list into the final score,
// verdict, and confidence. The model is an unbounded signed sum clamped to
// [0,100]; correlation findings and critical brand findings additionally
// carry verdict authority beyond their score weight.
package scoring

import (
	"fmt"
	"strings"

	"linkscope/go-server/internal/evidence"
)

const (
	maliciousThreshold  = 70
	suspiciousThreshold = 30

	// Correlation evidence escalates the verdict at this lower bar.
	correlationAuthorityFloor = 50
)

// Aggregate holds the scored outcome before it is wrapped into a Result.
type Aggregate struct {
	Score      int
	Level      evidence.RiskLevel
	Confidence int
	Breakdown  evidence.Breakdown
	Summary    string
}

// Score aggregates evs. An empty list deterministically yields
// {0, Safe, 0}, never an error.
func Score(evs []evidence.Evidence) Aggregate {
	if len(evs) == 0 {
		return Aggregate{
			Score:      0,
			Level:      evidence.LevelSafe,
			Confidence: 0,
			Summary:    "No signals were produced for this input.",
		}
	}

	sum := 0
	risk := 0
	trust := 0
	nonPass := 0
	hasCorrelation := false
	hasCritical := false

	for _, e := range evs {
		sum += e.ScoreImpact
		risk += e.RiskContribution()
		trust += e.TrustContribution()
		if e.Status != evidence.StatusPass {
			nonPass++
		}
		if e.Category == evidence.CategoryCorrelation {
			hasCorrelation = true
		}
		if e.Critical {
			hasCritical = true
		}
	}

	score := clamp(sum, 0, 100)

	level := evidence.LevelSafe
	switch {
	case score >= maliciousThreshold:
		level = evidence.LevelMalicious
	case score >= suspiciousThreshold:
		level = evidence.LevelSuspicious
	}

	if level != evidence.LevelMalicious {
		if hasCritical || (hasCorrelation && score >= correlationAuthorityFloor) {
			level = evidence.LevelMalicious
		}
	}

	confidence := clamp(100*nonPass/len(evs), 0, 100)

	return Aggregate{
		Score:      score,
		Level:      level,
		Confidence: confidence,
		Breakdown: evidence.Breakdown{
			Risk:    clamp(risk, 0, 100),
			Trust:   clamp(trust, 0, 100),
			Signals: len(evs),
		},
		Summary: summarize(evs, score, level),
	}
}

func summarize(evs []evidence.Evidence, score int, level evidence.RiskLevel) string {
	var leads []string
	for _, e := range evs {
		if e.Status == evidence.StatusFail && len(leads) < 3 {
			leads = append(leads, e.Name)
		}
	}

	switch level {
	case evidence.LevelMalicious:
		return fmt.Sprintf("High-risk target (score %d). Key findings: %s.", score, strings.Join(leads, "; "))
	case evidence.LevelSuspicious:
		if len(leads) == 0 {
			return fmt.Sprintf("Some suspicious characteristics (score %d); review before trusting.", score)
		}
		return fmt.Sprintf("Suspicious characteristics (score %d): %s.", score, strings.Join(leads, "; "))
	default:
		return fmt.Sprintf("No significant risk indicators (score %d).", score)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
