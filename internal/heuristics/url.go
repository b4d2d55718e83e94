// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.
package heuristics

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"linkscope/go-server/internal/evidence"
)

// URLSignals runs the structural checks for a URL target and reports the
// extracted host so the caller can chain the domain or IP producers. An
// unparseable URL yields a single maximal-impact fail item.
func URLSignals(rawURL string) (signals []evidence.Evidence, host string, hostIsIP bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return []evidence.Evidence{
			evidence.Fail("Unparseable URL", evidence.CategoryNetwork,
				"Input declared as a URL could not be parsed into scheme and host.", 40),
		}, "", false
	}

	host = strings.ToLower(strings.Trim(parsed.Hostname(), "[]"))
	hostIsIP = IsIP(host)

	var out []evidence.Evidence

	switch parsed.Scheme {
	case "https":
		// expected
	case "http":
		out = append(out, evidence.Warn("Unencrypted Scheme", evidence.CategoryNetwork,
			"URL uses plain http; credential prompts over http are a strong phishing tell.", 8))
	case "data", "javascript":
		out = append(out, evidence.Fail("Script Scheme", evidence.CategoryObfuscation,
			fmt.Sprintf("URL uses the %s: scheme, which executes content rather than fetching it.", parsed.Scheme), 30))
	default:
		out = append(out, evidence.Warn("Uncommon Scheme", evidence.CategoryNetwork,
			fmt.Sprintf("URL uses the uncommon scheme %q.", parsed.Scheme), 10))
	}

	if parsed.User != nil {
		out = append(out, evidence.Fail("Userinfo Deception", evidence.CategoryObfuscation,
			"URL carries a userinfo section before the host, a classic trick to fake the visible destination.", 25))
	}

	if hostIsIP {
		out = append(out, evidence.Fail("IP-Based URL", evidence.CategoryNetwork,
			"URL host is a bare IP address, common in throwaway phishing and malware infrastructure.", 30))
	}

	if port := parsed.Port(); port != "" && port != "80" && port != "443" {
		out = append(out, evidence.Warn("Non-Standard Port", evidence.CategoryNetwork,
			fmt.Sprintf("URL targets port %s instead of the standard web ports.", port), 10))
	}

	if !hostIsIP && shortenerDomains[host] {
		out = append(out, evidence.Warn("URL Shortener", evidence.CategoryRedirect,
			fmt.Sprintf("%s is a link shortener; the final destination is hidden.", host), 20))
	}

	hay := strings.ToLower(parsed.Path + "?" + parsed.RawQuery)
	if hits := keywordHits(hay, credentialKeywords); len(hits) > 0 {
		desc := fmt.Sprintf("URL path/query contains phishing-lure keywords: %s.", strings.Join(hits, ", "))
		if len(hits) >= 2 {
			out = append(out, evidence.Fail("Credential Harvesting Keywords", evidence.CategoryCredential, desc, 18))
		} else {
			out = append(out, evidence.Warn("Credential Harvesting Keywords", evidence.CategoryCredential, desc, 12))
		}
	}

	if hits := keywordHits(hay, mobileLureKeywords); len(hits) > 0 {
		out = append(out, evidence.Warn("Mobile App Lure", evidence.CategoryMobile,
			fmt.Sprintf("URL suggests a mobile app install flow (%s), a vector that sidesteps desktop protections.", strings.Join(hits, ", ")), 15))
	}

	if ext := strings.ToLower(path.Ext(parsed.Path)); executableExtensions[ext] {
		out = append(out, evidence.Fail("Executable Download", evidence.CategoryFile,
			fmt.Sprintf("URL path ends in %s, a directly executable payload type.", ext), 20))
	}

	if target := embeddedRedirect(parsed.Query()); target != "" {
		out = append(out, evidence.Warn("Embedded Redirect Target", evidence.CategoryRedirect,
			fmt.Sprintf("Query parameter forwards to %q; open redirects are used to launder trusted domains.", target), 12))
	}

	if l := len(rawURL); l >= 120 {
		out = append(out, evidence.Warn("Very Long URL", evidence.CategoryObfuscation,
			fmt.Sprintf("URL is %d characters long.", l), 12))
	}
	if q := parsed.RawQuery; len(q) >= 35 && shannonEntropy(q) >= 4.0 {
		out = append(out, evidence.Warn("High-Entropy Query", evidence.CategoryObfuscation,
			"Query string is unusually high-entropy, suggesting an encoded payload or tracking blob.", 12))
	}

	return out, host, hostIsIP
}

func keywordHits(hay string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if strings.Contains(hay, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

// embeddedRedirect returns the first absolute URL found in a known
// forwarding parameter.
func embeddedRedirect(query url.Values) string {
	for _, param := range redirectParams {
		for _, v := range query[param] {
			lower := strings.ToLower(v)
			if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "//") {
				return v
			}
		}
	}
	return ""
}
