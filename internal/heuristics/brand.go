// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.
package heuristics

import (
	"fmt"
	"strings"

	"linkscope/go-server/internal/evidence"
)

// tierOneBrands are the highest-value impersonation targets; a confirmed
// skeleton match against one of these carries verdict authority.
var tierOneBrands = []string{
	"google", "paypal", "microsoft", "apple", "amazon", "facebook",
}

var tierTwoBrands = []string{
	"instagram", "netflix", "github", "dropbox", "steam", "discord",
	"spotify", "bankofamerica", "chase", "wellsfargo", "icloud",
	"outlook", "office", "telegram", "youtube", "linkedin", "twitter",
	"whatsapp", "coinbase", "binance",
}

// skeletonFolds collapse multi-character visual lookalikes before the
// single-character map is applied.
var skeletonFolds = strings.NewReplacer("rn", "m", "vv", "w", "cl", "d")

var skeletonRunes = map[rune]rune{
	'l': 'i', '1': 'i', '|': 'i', 'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i', 'ı': 'i',
	'0': 'o', 'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o', 'ø': 'o',
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a', 'ɑ': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ś': 's', 'š': 's', 'ş': 's',
	'5': 's', '3': 'e', '4': 'a',
}

// skeleton reduces a label to its visual-lookalike normal form.
func skeleton(s string) string {
	s = skeletonFolds.Replace(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if folded, ok := skeletonRunes[r]; ok {
			b.WriteRune(folded)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BrandSignals examines the registrable label of a domain (split on hyphens
// into tokens) for impersonation of a known brand. homoglyphsFolded reports
// that preprocessing already substituted lookalike characters, so an exact
// brand match is itself a spoofing finding rather than the brand.
func BrandSignals(domain string, homoglyphsFolded bool) []evidence.Evidence {
	sld := secondLevelLabel(domain)
	if len(sld) < 3 {
		return nil
	}

	var out []evidence.Evidence
	tokens := strings.Split(sld, "-")

	for _, tok := range tokens {
		if len(tok) < 3 {
			continue
		}
		if ev, ok := matchToken(tok, sld, homoglyphsFolded); ok {
			out = append(out, ev)
		}
	}

	// A brand embedded alongside extra tokens ("paypal-secure") is a
	// separate finding from a typo of the brand itself.
	if len(tokens) > 1 {
		for _, tok := range tokens {
			if brand, tier1 := exactBrand(tok); brand != "" {
				impact := 20
				if tier1 {
					impact = 24
				}
				out = append(out, evidence.Warn("Brand Name Embedded", evidence.CategoryBrand,
					fmt.Sprintf("Label %q embeds the brand %q among unrelated tokens, a common impersonation shape.", sld, brand), impact))
				break
			}
		}
	}

	return out
}

func matchToken(tok, sld string, homoglyphsFolded bool) (evidence.Evidence, bool) {
	tokSkel := skeleton(tok)

	for _, brand := range tierOneBrands {
		if tok == brand {
			if homoglyphsFolded {
				ev := evidence.Fail("Brand Homoglyph Match", evidence.CategoryBrand,
					fmt.Sprintf("After lookalike-character folding, %q is exactly the protected brand %q.", sld, brand), 40)
				ev.Critical = true
				return ev, true
			}
			return evidence.Evidence{}, false
		}
		if tokSkel == skeleton(brand) {
			ev := evidence.Fail("Brand Homoglyph Match", evidence.CategoryBrand,
				fmt.Sprintf("%q is visually identical to the protected brand %q under lookalike-character folding.", tok, brand), 40)
			ev.Critical = true
			return ev, true
		}
		if d := editDistance(tok, brand); d <= 2 && len(tok) >= 4 {
			impact := 22
			if d == 1 {
				impact = 32
			}
			return evidence.Fail("Brand Lookalike Domain", evidence.CategoryBrand,
				fmt.Sprintf("%q is within edit distance %d of the protected brand %q.", tok, d, brand), impact), true
		}
	}

	for _, brand := range tierTwoBrands {
		if tok == brand {
			if homoglyphsFolded {
				return evidence.Fail("Brand Homoglyph Match", evidence.CategoryBrand,
					fmt.Sprintf("After lookalike-character folding, %q is exactly the brand %q.", sld, brand), 35), true
			}
			return evidence.Evidence{}, false
		}
		if tokSkel == skeleton(brand) {
			return evidence.Fail("Brand Homoglyph Match", evidence.CategoryBrand,
				fmt.Sprintf("%q is visually identical to the brand %q under lookalike-character folding.", tok, brand), 35), true
		}
		if d := editDistance(tok, brand); d <= 2 && len(tok) >= 4 {
			impact := 15
			if d == 1 {
				impact = 25
			}
			return evidence.Fail("Brand Lookalike Domain", evidence.CategoryBrand,
				fmt.Sprintf("%q is within edit distance %d of the brand %q.", tok, d, brand), impact), true
		}
	}

	return evidence.Evidence{}, false
}

func exactBrand(tok string) (string, bool) {
	for _, b := range tierOneBrands {
		if tok == b {
			return b, true
		}
	}
	for _, b := range tierTwoBrands {
		if tok == b {
			return b, false
		}
	}
	return "", false
}

// secondLevelLabel returns the label left of the public TLD, lowercased.
func secondLevelLabel(domain string) string {
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))
	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return domain
	}
	return parts[len(parts)-2]
}
