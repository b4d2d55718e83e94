// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.
package sanitize

import (
	"encoding/base64"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"

	"linkscope/go-server/internal/evidence"
)

// ObfuscationLevel grades how aggressively an input hides its content.
type ObfuscationLevel string

const (
	ObfuscationNone   ObfuscationLevel = "none"
	ObfuscationLow    ObfuscationLevel = "low"
	ObfuscationMedium ObfuscationLevel = "medium"
	ObfuscationHigh   ObfuscationLevel = "high"
)

// maxDecodeLayers bounds the encoding-layer probe. Three layers is already
// far beyond anything benign.
const maxDecodeLayers = 3

// ObfuscationReport is the outcome of the scoring stage. Decoded holds the
// best-effort decoded payload; downstream analysis only trusts it when Level
// is high, to avoid over-decoding benign inputs.
type ObfuscationReport struct {
	Level    ObfuscationLevel
	Decoded  string
	Layers   int
	Evidence []evidence.Evidence
}

var (
	base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/_-]{16,}={0,2}$`)
	hexPattern    = regexp.MustCompile(`^(?:0x)?[0-9a-fA-F]{16,}$`)
)

var leetFold = strings.NewReplacer(
	"0", "o", "1", "l", "3", "e", "4", "a", "5", "s", "7", "t", "@", "a", "$", "s",
)

var suspectWords = []string{
	"login", "password", "verify", "account", "secure", "update", "bank",
	"paypal", "wallet", "signin",
}

// ScoreObfuscation grades encoding tricks in the input. It never mutates the
// caller's string; the report says what was found and what it decodes to.
func ScoreObfuscation(input string) ObfuscationReport {
	rep := ObfuscationReport{Level: ObfuscationNone, Decoded: input}
	points := 0

	decoded, layers := peelEncodings(input)
	if layers > 0 {
		rep.Decoded = decoded
		rep.Layers = layers
		points += 2 * layers
		status := evidence.StatusWarn
		if layers >= 2 {
			status = evidence.StatusFail
		}
		rep.Evidence = append(rep.Evidence, evidence.Evidence{
			Name:        "Encoded Payload",
			Category:    evidence.CategoryObfuscation,
			Status:      status,
			Description: "Input decodes as base64/hex, concealing its real content.",
			ScoreImpact: 10 * layers,
		})
	}

	if hit := leetSpeakHit(input); hit != "" {
		points += 2
		rep.Evidence = append(rep.Evidence, evidence.Warn("Leet-Speak Substitution",
			evidence.CategoryObfuscation,
			"Input uses number-for-letter substitution spelling a sensitive word ("+hit+").", 8))
	}

	if reversedHit(input) {
		points += 2
		rep.Evidence = append(rep.Evidence, evidence.Warn("Reversed String",
			evidence.CategoryObfuscation,
			"Input reads as a sensitive word when reversed.", 8))
	}

	switch {
	case points >= 5:
		rep.Level = ObfuscationHigh
	case points >= 3:
		rep.Level = ObfuscationMedium
	case points > 0:
		rep.Level = ObfuscationLow
	}

	return rep
}

// peelEncodings strips up to maxDecodeLayers of base64/hex encoding. A layer
// only counts when the decoded bytes are printable text, so random tokens
// that merely look base64-ish don't inflate the count.
func peelEncodings(s string) (string, int) {
	current := strings.TrimSpace(s)
	layers := 0

	for layers < maxDecodeLayers {
		next, ok := decodeOnce(current)
		if !ok {
			break
		}
		current = next
		layers++
	}

	return current, layers
}

func decodeOnce(s string) (string, bool) {
	if hexPattern.MatchString(s) {
		raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		if b, err := hex.DecodeString(raw); err == nil && printableText(b) {
			return string(b), true
		}
	}

	if base64Pattern.MatchString(s) {
		for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
			if b, err := enc.DecodeString(s); err == nil && printableText(b) {
				return string(b), true
			}
		}
	}

	return "", false
}

func printableText(b []byte) bool {
	if len(b) < 4 || !utf8.Valid(b) {
		return false
	}
	printable := 0
	for _, c := range string(b) {
		if c >= 0x20 && c < 0x7f {
			printable++
		}
	}
	return printable*10 >= len(b)*9
}

func leetSpeakHit(s string) string {
	folded := leetFold.Replace(strings.ToLower(s))
	if folded == strings.ToLower(s) {
		return ""
	}
	for _, w := range suspectWords {
		if strings.Contains(folded, w) && !strings.Contains(strings.ToLower(s), w) {
			return w
		}
	}
	return ""
}

func reversedHit(s string) bool {
	lower := strings.ToLower(s)
	runes := []rune(lower)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	reversed := string(runes)
	for _, w := range suspectWords {
		if strings.Contains(reversed, w) && !strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
