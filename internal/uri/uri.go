// Package uri validates Link and Image destinations against the scheme
// allowlist required by the document model's invariants: only http,
// https, mailto, ftp, and relative references are admitted outright;
// javascript:, data:, vbscript:, and file: with a host or an absolute
// path are rejected whenever the active policy asks for URI validation.
package uri

import "net/url"

var allowedSchemes = map[string]struct{}{
	"http":   {},
	"https":  {},
	"mailto": {},
	"ftp":    {},
}

var blockedSchemes = map[string]struct{}{
	"javascript": {},
	"data":       {},
	"vbscript":   {},
}

// Validate reports whether raw is an admissible Link/Image destination.
// A relative reference (no scheme) is always admissible. file: is
// admissible only when it names neither a host nor an absolute path:
// "file://server/share" and "file:///etc/passwd" are rejected, a bare
// "file:name" passes.
func Validate(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if u.Scheme == "" {
		return true
	}

	scheme := normalizeScheme(u.Scheme)

	if _, blocked := blockedSchemes[scheme]; blocked {
		return false
	}

	if scheme == "file" {
		return u.Host == "" && !(len(u.Path) > 0 && u.Path[0] == '/')
	}

	_, ok := allowedSchemes[scheme]
	return ok
}

func normalizeScheme(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
