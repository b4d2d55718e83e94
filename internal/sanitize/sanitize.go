// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.
package sanitize

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"unicode"

	"linkscope/go-server/internal/evidence"
)

// Result carries the normalized input plus everything the pipeline observed
// along the way. Flags let downstream producers react to spoofing that the
// normalization itself has already erased from the string.
type Result struct {
	Original   string
	Normalized string
	Evidence   []evidence.Evidence

	HomoglyphsFolded bool
	ZeroWidthFound   bool
	MixedScript      bool
}

// Cyrillic, Greek and mathematical-alphanumeric lookalikes folded to ASCII.
// Multi-rune confusables ("rn" style) are handled by the skeleton fold in
// the brand matcher, not here.
var homoglyphFold = map[rune]rune{
	'а': 'a', 'е': 'e', 'о': 'o', 'р': 'p', 'с': 'c', 'х': 'x', 'у': 'y',
	'і': 'i', 'ј': 'j', 'ѕ': 's', 'ԁ': 'd', 'ɡ': 'g', 'ʏ': 'y',
	'α': 'a', 'ο': 'o', 'ν': 'v', 'ι': 'i', 'κ': 'k', 'ρ': 'p', 'τ': 't',
	'〇': 'o',
	'𝐚': 'a', '𝐛': 'b', '𝐜': 'c', '𝐨': 'o', '𝐞': 'e', '𝐢': 'i', '𝐥': 'l',
	'𝗮': 'a', '𝗼': 'o', '𝗲': 'e', '𝗶': 'i',
}

var zeroWidthRunes = map[rune]bool{
	'\u200B': true, // zero width space
	'\u200C': true, // zero width non-joiner
	'\u200D': true, // zero width joiner
	'\u2060': true, // word joiner
	'\uFEFF': true, // byte order mark
}

var visualSubstitutions = []struct {
	from, to string
}{
	{"[.]", "."},
	{"(.)", "."},
	{"[dot]", "."},
	{"(dot)", "."},
	{" dot ", "."},
	{"d0t", "."},
	{"hxxps://", "https://"},
	{"hxxp://", "http://"},
	{"0rg", "org"},
}

// Sanitize runs the de-obfuscation pipeline over raw input. Each technique
// runs exactly once, in a fixed order, over the output of the previous step.
// One pass per technique bounds the cost and avoids decode loops; an input
// that is already clean produces zero evidence.
func Sanitize(raw string) Result {
	r := Result{Original: raw, Normalized: strings.TrimSpace(raw)}

	r.decodePercent()
	r.decodeHTMLEntities()
	r.foldHomoglyphs()
	r.cleanVisualTricks()
	r.stripZeroWidth()
	r.detectMixedScript()

	return r
}

func (r *Result) emit(e evidence.Evidence) {
	r.Evidence = append(r.Evidence, e)
}

func (r *Result) decodePercent() {
	s := r.Normalized
	if !strings.Contains(s, "%") {
		return
	}
	if !percentEncodedPattern(s) {
		return
	}

	// Decode to a fixpoint so a double-encoded input comes out fully
	// decoded in this single step. The layer bound stops decode bombs.
	decoded := s
	layers := 0
	for layers < maxDecodeLayers && percentEncodedPattern(decoded) {
		next, err := url.QueryUnescape(decoded)
		if err != nil {
			if layers == 0 {
				r.emit(evidence.Fail("URL Encoding", evidence.CategorySanitization,
					"Input contains malformed percent-encoding, a common filter-evasion trick.", 15))
				return
			}
			break
		}
		if next == decoded {
			break
		}
		decoded = next
		layers++
	}

	if layers > 0 {
		r.Normalized = decoded
		desc := "Input was percent-encoded and has been decoded for analysis."
		if layers > 1 {
			desc = fmt.Sprintf("Input was percent-encoded %d layers deep and has been decoded for analysis.", layers)
		}
		r.emit(evidence.Warn("URL Encoding", evidence.CategorySanitization, desc, 8))
	}
}

// percentEncodedPattern reports whether the string holds at least one valid
// %XX escape, so bare percent signs don't trigger a decode attempt.
func percentEncodedPattern(s string) bool {
	for i := 0; i+2 < len(s); i++ {
		if s[i] == '%' && isHexByte(s[i+1]) && isHexByte(s[i+2]) {
			return true
		}
	}
	return false
}

func isHexByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (r *Result) decodeHTMLEntities() {
	s := r.Normalized
	if !strings.Contains(s, "&") {
		return
	}
	decoded := html.UnescapeString(s)
	if decoded != s {
		r.Normalized = decoded
		r.emit(evidence.Warn("HTML Entities", evidence.CategorySanitization,
			"Input contained HTML character entities, which can disguise the real target.", 8))
	}
}

func (r *Result) foldHomoglyphs() {
	var b strings.Builder
	folded := 0
	for _, ru := range r.Normalized {
		if ascii, ok := homoglyphFold[ru]; ok {
			b.WriteRune(ascii)
			folded++
			continue
		}
		b.WriteRune(ru)
	}
	if folded > 0 {
		r.Normalized = b.String()
		r.HomoglyphsFolded = true
		r.emit(evidence.Fail("Unicode Homoglyphs", evidence.CategorySanitization,
			"Input contains Unicode characters that visually imitate ASCII letters.", 20))
	}
}

func (r *Result) cleanVisualTricks() {
	s := r.Normalized
	lower := strings.ToLower(s)
	hit := false
	for _, sub := range visualSubstitutions {
		if strings.Contains(lower, sub.from) {
			lower = strings.ReplaceAll(lower, sub.from, sub.to)
			hit = true
		}
	}
	if hit {
		r.Normalized = lower
		r.emit(evidence.Warn("Defanged Notation", evidence.CategorySanitization,
			"Input uses defanged or visually obfuscated notation (e.g. hxxp, [.]).", 10))
	}
}

func (r *Result) stripZeroWidth() {
	var b strings.Builder
	stripped := 0
	for _, ru := range r.Normalized {
		if zeroWidthRunes[ru] {
			stripped++
			continue
		}
		b.WriteRune(ru)
	}
	if stripped > 0 {
		r.Normalized = b.String()
		r.ZeroWidthFound = true
		r.emit(evidence.Fail("Zero-Width Characters", evidence.CategorySanitization,
			"Input hides zero-width characters, which are invisible and have no legitimate use in a target.", 25))
	}
}

// detectMixedScript inspects the current string and emits only; it never
// mutates, since script mixing cannot be safely auto-corrected.
func (r *Result) detectMixedScript() {
	hasLatin := false
	hasOther := false
	for _, ru := range r.Normalized {
		switch {
		case unicode.In(ru, unicode.Latin):
			hasLatin = true
		case unicode.In(ru, unicode.Cyrillic), unicode.In(ru, unicode.Greek):
			hasOther = true
		}
	}
	if hasLatin && hasOther {
		r.MixedScript = true
		r.emit(evidence.Fail("Mixed Script", evidence.CategorySanitization,
			"Input mixes Latin with Cyrillic or Greek script, a hallmark of lookalike attacks.", 20))
	}
}

// Spoofed reports whether the pipeline saw fail-severity tampering. The
// reputation allowlist must not vouch for inputs that only resemble a
// trusted domain after normalization.
func (r Result) Spoofed() bool {
	return r.HomoglyphsFolded || r.ZeroWidthFound || r.MixedScript
}
