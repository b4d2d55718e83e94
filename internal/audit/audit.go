// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
//
// Coverage audit for third-party intelligence. Answers two questions about
// the snapshot an analysis consumed: "did every expected source answer?"
// and "how trustworthy are those sources right now?" The grade travels with
// the analysis result so a reader can judge how much weight the
// intelligence-derived evidence deserves.
package audit

import (
	"fmt"

	"linkscope/go-server/internal/evidence"
	"linkscope/go-server/internal/intel"
	"linkscope/go-server/internal/telemetry"
)

const (
	DimensionCoverage     = "coverage"
	DimensionSourceHealth = "source_health"
	DimensionAvailability = "availability"

	GradeExcellent = "excellent"
	GradeGood      = "good"
	GradeAdequate  = "adequate"
	GradeDegraded  = "degraded"
	GradeStale     = "stale"
)

var DimensionDisplayNames = map[string]string{
	DimensionCoverage:     "Source Coverage",
	DimensionSourceHealth: "Source Health",
	DimensionAvailability: "Source Availability",
}

var GradeOrder = map[string]int{
	GradeExcellent: 4,
	GradeGood:      3,
	GradeAdequate:  2,
	GradeDegraded:  1,
	GradeStale:     0,
}

var GradeDisplayNames = map[string]string{
	GradeExcellent: "Excellent",
	GradeGood:      "Good",
	GradeAdequate:  "Adequate",
	GradeDegraded:  "Degraded",
	GradeStale:     "Stale",
}

type DimensionScore struct {
	Dimension string  `json:"dimension"`
	Grade     string  `json:"grade"`
	Score     float64 `json:"score"`
	Details   string  `json:"details"`
	Sources   int     `json:"sources_evaluated"`
}

type Report struct {
	OverallGrade string           `json:"overall_grade"`
	OverallScore float64          `json:"overall_score"`
	Dimensions   []DimensionScore `json:"dimensions"`
	Guidance     string           `json:"guidance"`
}

func (r Report) OverallGradeDisplay() string {
	if d, ok := GradeDisplayNames[r.OverallGrade]; ok {
		return d
	}
	return "Unknown"
}

func (d DimensionScore) DisplayName() string {
	if n, ok := DimensionDisplayNames[d.Dimension]; ok {
		return n
	}
	return d.Dimension
}

func scoreToGrade(score float64) string {
	switch {
	case score >= 90:
		return GradeExcellent
	case score >= 75:
		return GradeGood
	case score >= 50:
		return GradeAdequate
	case score >= 25:
		return GradeDegraded
	default:
		return GradeStale
	}
}

// ExpectedSources lists the lookups the gathering stage attempts for a
// given target shape. The set is the denominator for the coverage grade.
func ExpectedSources(targetType evidence.TargetType, hostIsIP bool) []string {
	if targetType == evidence.TypeIP || hostIsIP {
		return []string{"ip_reputation", "detections", "geo"}
	}
	return []string{"whois", "detections", "dns"}
}

// ObservedSources reports which snapshot fields actually carry data.
func ObservedSources(snap *intel.Snapshot) map[string]bool {
	observed := make(map[string]bool, 5)
	if snap == nil {
		return observed
	}
	if snap.IPReputation != nil {
		observed["ip_reputation"] = true
	}
	if snap.WHOIS != nil {
		observed["whois"] = true
	}
	if snap.Detections != nil {
		observed["detections"] = true
	}
	if snap.Geo != nil {
		observed["geo"] = true
	}
	if snap.DNS != nil {
		observed["dns"] = true
	}
	return observed
}

func EvaluateCoverage(expected []string, observed map[string]bool) DimensionScore {
	if len(expected) == 0 {
		return DimensionScore{
			Dimension: DimensionCoverage,
			Grade:     GradeAdequate,
			Score:     50,
			Details:   "No sources expected for this target shape",
			Sources:   0,
		}
	}

	found := 0
	for _, src := range expected {
		if observed[src] {
			found++
		}
	}

	score := (float64(found) / float64(len(expected))) * 100
	return DimensionScore{
		Dimension: DimensionCoverage,
		Grade:     scoreToGrade(score),
		Score:     score,
		Details:   coverageDetails(found, len(expected)),
		Sources:   found,
	}
}

func coverageDetails(found, total int) string {
	if found == total {
		return "All expected intelligence sources answered"
	}
	missing := total - found
	if missing == 1 {
		return "1 expected intelligence source produced no data"
	}
	return fmt.Sprintf("%d of %d expected intelligence sources produced no data", missing, total)
}

func EvaluateSourceHealth(stats []telemetry.ProviderStats) DimensionScore {
	if len(stats) == 0 {
		return DimensionScore{
			Dimension: DimensionSourceHealth,
			Grade:     GradeAdequate,
			Score:     50,
			Details:   "No provider telemetry recorded yet",
			Sources:   0,
		}
	}

	total := 0.0
	for _, ps := range stats {
		switch ps.State {
		case telemetry.Healthy:
			total += 100
		case telemetry.Degraded:
			total += 50
		}
	}

	avg := total / float64(len(stats))
	return DimensionScore{
		Dimension: DimensionSourceHealth,
		Grade:     scoreToGrade(avg),
		Score:     avg,
		Details:   healthDetails(avg),
		Sources:   len(stats),
	}
}

func healthDetails(score float64) string {
	switch scoreToGrade(score) {
	case GradeExcellent:
		return "All intelligence providers are healthy"
	case GradeGood:
		return "Most intelligence providers are healthy"
	case GradeAdequate:
		return "Some intelligence providers are degraded"
	case GradeDegraded:
		return "Multiple intelligence providers are failing"
	default:
		return "Intelligence providers are failing across the board"
	}
}

func EvaluateAvailability(stats []telemetry.ProviderStats) DimensionScore {
	if len(stats) == 0 {
		return DimensionScore{
			Dimension: DimensionAvailability,
			Grade:     GradeAdequate,
			Score:     50,
			Details:   "No provider telemetry recorded yet",
			Sources:   0,
		}
	}

	available := 0
	for _, ps := range stats {
		if !ps.InCooldown {
			available++
		}
	}

	score := (float64(available) / float64(len(stats))) * 100
	return DimensionScore{
		Dimension: DimensionAvailability,
		Grade:     scoreToGrade(score),
		Score:     score,
		Details:   availabilityDetails(len(stats)-available, len(stats)),
		Sources:   len(stats),
	}
}

func availabilityDetails(cooling, total int) string {
	if cooling == 0 {
		return "No intelligence providers are in failure cooldown"
	}
	if cooling == 1 {
		return "1 intelligence provider is in failure cooldown"
	}
	return fmt.Sprintf("%d of %d intelligence providers are in failure cooldown", cooling, total)
}

// BuildReport combines the three dimensions into one graded report.
func BuildReport(expected []string, observed map[string]bool, stats []telemetry.ProviderStats) Report {
	dims := []DimensionScore{
		EvaluateCoverage(expected, observed),
		EvaluateSourceHealth(stats),
		EvaluateAvailability(stats),
	}

	total := 0.0
	for _, d := range dims {
		total += d.Score
	}
	overall := total / float64(len(dims))

	return Report{
		OverallGrade: scoreToGrade(overall),
		OverallScore: overall,
		Dimensions:   dims,
		Guidance:     overallGuidance(overall),
	}
}

func overallGuidance(score float64) string {
	switch scoreToGrade(score) {
	case GradeExcellent:
		return "Intelligence coverage is complete and sources are healthy — high confidence in intel-derived evidence"
	case GradeGood:
		return "Intelligence coverage is mostly complete — good confidence in intel-derived evidence"
	case GradeAdequate:
		return "Intelligence coverage has gaps — weigh intel-derived evidence accordingly"
	case GradeDegraded:
		return "Intelligence coverage is degraded — the verdict leans on structural signals"
	default:
		return "Intelligence was largely unavailable — the verdict rests on structural signals alone"
	}
}
