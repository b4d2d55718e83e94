package sanitize

import (
	"strings"
	"testing"

	"linkscope/go-server/internal/evidence"
)

func hasEvidence(evs []evidence.Evidence, name string) bool {
	for _, e := range evs {
		if e.Name == name {
			return true
		}
	}
	return false
}

func TestSanitizePipeline(t *testing.T) {
	tests := []struct {
		name           string
		in             string
		wantNormalized string
		wantEvidence   []string
	}{
		{
			name:           "clean domain",
			in:             "example.com",
			wantNormalized: "example.com",
		},
		{
			name:           "percent encoded",
			in:             "example%2Ecom",
			wantNormalized: "example.com",
			wantEvidence:   []string{"URL Encoding"},
		},
		{
			name:           "html entities",
			in:             "example&#46;com",
			wantNormalized: "example.com",
			wantEvidence:   []string{"HTML Entities"},
		},
		{
			name:           "cyrillic homoglyph",
			in:             "pаypal.com",
			wantNormalized: "paypal.com",
			wantEvidence:   []string{"Unicode Homoglyphs"},
		},
		{
			name:           "defanged",
			in:             "hxxp://evil[.]example",
			wantNormalized: "http://evil.example",
			wantEvidence:   []string{"Defanged Notation"},
		},
		{
			name:           "zero width",
			in:             "paypal​.com",
			wantNormalized: "paypal.com",
			wantEvidence:   []string{"Zero-Width Characters"},
		},
		{
			name:           "homoglyph plus zero width",
			in:             "pаypal​.com",
			wantNormalized: "paypal.com",
			wantEvidence:   []string{"Unicode Homoglyphs", "Zero-Width Characters"},
		},
		{
			name:           "surrounding whitespace",
			in:             "  example.com\n",
			wantNormalized: "example.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Sanitize(tt.in)
			if res.Normalized != tt.wantNormalized {
				t.Errorf("normalized = %q, want %q", res.Normalized, tt.wantNormalized)
			}
			for _, name := range tt.wantEvidence {
				if !hasEvidence(res.Evidence, name) {
					t.Errorf("missing evidence %q in %+v", name, res.Evidence)
				}
			}
			if len(tt.wantEvidence) == 0 && len(res.Evidence) != 0 {
				t.Errorf("unexpected evidence: %+v", res.Evidence)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"example.com",
		"pаypal​.com",
		"hxxp://evil[.]example/l0gin",
		"example%2Ecom",
		"example%252Ecom",
		"%2525example.com",
	}
	for _, in := range inputs {
		first := Sanitize(in)
		second := Sanitize(first.Normalized)
		if len(second.Evidence) != 0 {
			t.Errorf("Sanitize(%q) not idempotent: second pass produced %+v", in, second.Evidence)
		}
		if second.Normalized != first.Normalized {
			t.Errorf("Sanitize(%q) second pass changed string: %q -> %q", in, first.Normalized, second.Normalized)
		}
	}
}

func TestSanitizeDoubleEncoded(t *testing.T) {
	first := Sanitize("example%252Ecom")
	if first.Normalized != "example.com" {
		t.Errorf("double-encoded input decoded to %q, want %q", first.Normalized, "example.com")
	}
	if !hasEvidence(first.Evidence, "URL Encoding") {
		t.Fatalf("expected encoding evidence, got %+v", first.Evidence)
	}

	second := Sanitize(first.Normalized)
	if len(second.Evidence) != 0 {
		t.Errorf("second pass over decoded output produced %+v", second.Evidence)
	}
}

func TestSanitizeStripsByteOrderMark(t *testing.T) {
	res := Sanitize("\uFEFFexample\u200B.com")
	if strings.ContainsRune(res.Normalized, '\uFEFF') || strings.ContainsRune(res.Normalized, '\u200B') {
		t.Errorf("invisible runes survived: %q", res.Normalized)
	}
	if !res.ZeroWidthFound {
		t.Error("zero-width runes not flagged")
	}
}

func TestSanitizeMalformedPercent(t *testing.T) {
	res := Sanitize("example%2Gcom%41")
	if !hasEvidence(res.Evidence, "URL Encoding") {
		t.Fatalf("expected malformed-encoding evidence, got %+v", res.Evidence)
	}
	for _, e := range res.Evidence {
		if e.Name == "URL Encoding" && e.Status != evidence.StatusFail {
			t.Errorf("malformed encoding = %s, want fail", e.Status)
		}
	}
}

func TestSpoofed(t *testing.T) {
	if Sanitize("example.com").Spoofed() {
		t.Error("clean input reported as spoofed")
	}
	if !Sanitize("pаypal.com").Spoofed() {
		t.Error("homoglyph input not reported as spoofed")
	}
	if !Sanitize("paypal​.com").Spoofed() {
		t.Error("zero-width input not reported as spoofed")
	}
}

func TestScoreObfuscation(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantLevel ObfuscationLevel
	}{
		{"plain", "example.com", ObfuscationNone},
		{"leet", "paypa1-l0gin.example", ObfuscationLow},
		// "aHR0cHM6Ly9ldmlsLmV4YW1wbGUvbG9naW4=" is a base64 layer over a URL.
		{"encoded", "aHR0cHM6Ly9ldmlsLmV4YW1wbGUvbG9naW4=", ObfuscationLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := ScoreObfuscation(tt.in)
			if rep.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s (report %+v)", rep.Level, tt.wantLevel, rep)
			}
		})
	}
}

func TestScoreObfuscationDecodes(t *testing.T) {
	rep := ScoreObfuscation("aHR0cHM6Ly9ldmlsLmV4YW1wbGUvbG9naW4=")
	if rep.Layers != 1 {
		t.Fatalf("layers = %d, want 1", rep.Layers)
	}
	if rep.Decoded != "https://evil.example/login" {
		t.Errorf("decoded = %q", rep.Decoded)
	}
}
