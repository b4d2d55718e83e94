package heuristics

import (
	"testing"

	"linkscope/go-server/internal/evidence"
)

func TestBrandLookalike(t *testing.T) {
	tests := []struct {
		domain     string
		wantName   string
		wantImpact int
	}{
		{"gooogle-login-secure.tk", "Brand Lookalike Domain", 32}, // repetition typo of google, distance 1
		{"paypa1.com", "Brand Homoglyph Match", 40},               // 1 folds to i... skeleton match
		{"micros0ft.com", "Brand Homoglyph Match", 40},
		{"arnazon.com", "Brand Homoglyph Match", 40}, // rn folds to m
		{"gogle.com", "Brand Lookalike Domain", 32},  // omission, distance 1
		{"faceb00k.com", "Brand Homoglyph Match", 40},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			evs := BrandSignals(tt.domain, false)
			ev := findByName(t, evs, tt.wantName)
			if ev == nil {
				t.Fatalf("BrandSignals(%q): missing %q in %+v", tt.domain, tt.wantName, evs)
			}
			if ev.ScoreImpact != tt.wantImpact {
				t.Errorf("impact = %d, want %d", ev.ScoreImpact, tt.wantImpact)
			}
			if ev.Status != evidence.StatusFail {
				t.Errorf("status = %s, want fail", ev.Status)
			}
			if ev.Category != evidence.CategoryBrand {
				t.Errorf("category = %s, want brand", ev.Category)
			}
		})
	}
}

func TestBrandHomoglyphCritical(t *testing.T) {
	// Preprocessing folded Cyrillic characters, so the normalized label is
	// the brand itself. That exact match is the spoofing finding.
	evs := BrandSignals("paypal.com", true)
	ev := findByName(t, evs, "Brand Homoglyph Match")
	if ev == nil {
		t.Fatalf("expected homoglyph match for folded paypal, got %+v", evs)
	}
	if !ev.Critical {
		t.Error("tier-one homoglyph match should carry the critical flag")
	}
	if ev.ScoreImpact != 40 {
		t.Errorf("impact = %d, want 40", ev.ScoreImpact)
	}
}

func TestBrandExactMatchWithoutFolding(t *testing.T) {
	// The genuine brand domain is not impersonation.
	for _, domain := range []string{"paypal.com", "google.com", "github.com"} {
		if evs := BrandSignals(domain, false); len(evs) != 0 {
			t.Errorf("BrandSignals(%q, false) = %+v, want none", domain, evs)
		}
	}
}

func TestBrandEmbedded(t *testing.T) {
	evs := BrandSignals("paypal-billing-center.com", false)
	ev := findByName(t, evs, "Brand Name Embedded")
	if ev == nil {
		t.Fatalf("expected embedded-brand evidence, got %+v", evs)
	}
	if ev.ScoreImpact != 24 {
		t.Errorf("tier-one embedded impact = %d, want 24", ev.ScoreImpact)
	}
}

func TestBrandNoFalsePositives(t *testing.T) {
	for _, domain := range []string{"example.com", "weather.com", "blog.io", "app.net"} {
		if evs := BrandSignals(domain, false); len(evs) != 0 {
			t.Errorf("BrandSignals(%q) = %+v, want none", domain, evs)
		}
	}
}

func TestSkeleton(t *testing.T) {
	tests := []struct{ in, want string }{
		{"paypa1", "paypai"},
		{"arnazon", "amazon"},
		{"micros0ft", "microsoft"},
		{"google", "googie"},
	}
	for _, tt := range tests {
		if got := skeleton(tt.in); got != tt.want {
			t.Errorf("skeleton(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"google", "google", 0},
		{"gooogle", "google", 1},
		{"gogle", "google", 1},
		{"goolge", "google", 2},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
