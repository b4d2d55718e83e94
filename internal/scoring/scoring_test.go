package scoring

import (
	"testing"

	"linkscope/go-server/internal/evidence"
)

func TestScoreEmptyEvidence(t *testing.T) {
	agg := Score(nil)
	if agg.Score != 0 || agg.Level != evidence.LevelSafe || agg.Confidence != 0 {
		t.Errorf("empty evidence = {%d %s %d}, want {0 Safe 0}", agg.Score, agg.Level, agg.Confidence)
	}
}

func TestScoreBounds(t *testing.T) {
	// Stacked positive impacts saturate at 100.
	var evs []evidence.Evidence
	for i := 0; i < 10; i++ {
		evs = append(evs, evidence.Fail("x", evidence.CategoryDomain, "", 40))
	}
	if agg := Score(evs); agg.Score != 100 {
		t.Errorf("score = %d, want saturation at 100", agg.Score)
	}

	// Strong trust saturates at 0, never below.
	evs = []evidence.Evidence{
		evidence.Pass("trusted", evidence.CategoryReputation, "", -65),
	}
	if agg := Score(evs); agg.Score != 0 {
		t.Errorf("score = %d, want floor at 0", agg.Score)
	}
}

func TestScoreVerdictThresholds(t *testing.T) {
	tests := []struct {
		impact int
		want   evidence.RiskLevel
	}{
		{10, evidence.LevelSafe},
		{29, evidence.LevelSafe},
		{30, evidence.LevelSuspicious},
		{69, evidence.LevelSuspicious},
		{70, evidence.LevelMalicious},
		{100, evidence.LevelMalicious},
	}
	for _, tt := range tests {
		agg := Score([]evidence.Evidence{
			evidence.Fail("x", evidence.CategoryDomain, "", tt.impact),
		})
		if agg.Level != tt.want {
			t.Errorf("impact %d: level = %s, want %s", tt.impact, agg.Level, tt.want)
		}
	}
}

func TestScoreMonotonicity(t *testing.T) {
	base := []evidence.Evidence{
		evidence.Fail("a", evidence.CategoryDomain, "", 20),
		evidence.Warn("b", evidence.CategoryNetwork, "", 10),
	}
	baseScore := Score(base).Score

	withFail := append(append([]evidence.Evidence{}, base...),
		evidence.Fail("c", evidence.CategoryTLD, "", 15))
	if got := Score(withFail).Score; got < baseScore {
		t.Errorf("adding positive evidence decreased score: %d -> %d", baseScore, got)
	}

	withPass := append(append([]evidence.Evidence{}, base...),
		evidence.Pass("d", evidence.CategoryReputation, "", -10))
	if got := Score(withPass).Score; got > baseScore {
		t.Errorf("adding negative evidence increased score: %d -> %d", baseScore, got)
	}
}

func TestScoreCorrelationAuthority(t *testing.T) {
	// Score in [50,70) plus correlation evidence escalates to Malicious.
	evs := []evidence.Evidence{
		evidence.Fail("a", evidence.CategoryBrand, "", 40),
		evidence.Fail("compound", evidence.CategoryCorrelation, "", 15),
	}
	if agg := Score(evs); agg.Level != evidence.LevelMalicious {
		t.Errorf("level = %s, want Malicious via correlation authority at score %d", agg.Level, agg.Score)
	}

	// Below the authority floor, correlation alone does not escalate.
	evs = []evidence.Evidence{
		evidence.Fail("a", evidence.CategoryBrand, "", 20),
		evidence.Fail("compound", evidence.CategoryCorrelation, "", 15),
	}
	if agg := Score(evs); agg.Level != evidence.LevelSuspicious {
		t.Errorf("level = %s, want Suspicious below authority floor", agg.Level)
	}
}

func TestScoreCriticalAuthority(t *testing.T) {
	critical := evidence.Fail("Brand Homoglyph Match", evidence.CategoryBrand, "", 40)
	critical.Critical = true

	if agg := Score([]evidence.Evidence{critical}); agg.Level != evidence.LevelMalicious {
		t.Errorf("level = %s, want Malicious on critical evidence regardless of score", agg.Level)
	}
}

func TestScoreConfidence(t *testing.T) {
	evs := []evidence.Evidence{
		evidence.Fail("a", evidence.CategoryDomain, "", 20),
		evidence.Warn("b", evidence.CategoryNetwork, "", 10),
		evidence.Pass("c", evidence.CategoryIntel, "", -5),
		evidence.Pass("d", evidence.CategoryIntel, "", -5),
	}
	if agg := Score(evs); agg.Confidence != 50 {
		t.Errorf("confidence = %d, want 50 for 2 of 4 non-pass", agg.Confidence)
	}
}

func TestScoreAllowlistDominance(t *testing.T) {
	evs := []evidence.Evidence{
		evidence.Pass("Global Authority Reputation", evidence.CategoryReputation, "", -65),
		evidence.Warn("noise", evidence.CategoryDomain, "", 14),
		evidence.Warn("more noise", evidence.CategoryNetwork, "", 12),
	}
	agg := Score(evs)
	if agg.Level != evidence.LevelSafe {
		t.Errorf("level = %s, want Safe: allowlist must dominate structural noise", agg.Level)
	}
	if agg.Score != 0 {
		t.Errorf("score = %d, want 0", agg.Score)
	}
}

func TestBreakdown(t *testing.T) {
	evs := []evidence.Evidence{
		evidence.Fail("a", evidence.CategoryDomain, "", 30),
		evidence.Pass("b", evidence.CategoryReputation, "", -10),
	}
	agg := Score(evs)
	if agg.Breakdown.Risk != 30 || agg.Breakdown.Trust != 10 || agg.Breakdown.Signals != 2 {
		t.Errorf("breakdown = %+v, want {30 10 2}", agg.Breakdown)
	}
}
