// Package uri validates the URIs that discovery is allowed to dereference.
package uri

import (
	"net/url"
	"strings"
	"unicode"
)

// Valid reports whether s is an absolute URI that can be fetched or used as a
// namespace name. Relative references, strings containing whitespace or
// control characters, and http(s) URIs without a host are rejected. The xri
// scheme is an identifier form, not a location, and is rejected as well.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	if strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) >= 0 {
		return false
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}

	switch strings.ToLower(u.Scheme) {
	case "xri":
		return false
	case "http", "https":
		return u.Host != ""
	}
	return u.Opaque != "" || u.Host != "" || u.Path != ""
}

// ValidNamespace is like Valid but accepts the xri scheme, which the XRDS
// namespaces themselves use.
func ValidNamespace(s string) bool {
	if strings.HasPrefix(strings.ToLower(s), "xri://") {
		return len(s) > len("xri://") && strings.IndexFunc(s, unicode.IsSpace) < 0
	}
	return Valid(s)
}
