// Package canonical normalizes user supplied URLs into a comparison-only form.
// The output is lossy (scheme and a leading "www." label are dropped) and must
// never be shown back to users.
package canonical

import "strings"

const schemeToken = "http://"

var schemes = []string{"https://", "http://"}

// Canonicalize trims and lower-cases raw, collapses http/https into a single
// scheme token, strips a leading "www." host label and exactly one trailing
// path slash. Query strings and fragments are kept verbatim. Blank input maps
// to blank output.
func Canonicalize(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return ""
	}

	prefix := ""
	for _, scheme := range schemes {
		if strings.HasPrefix(value, scheme) {
			prefix = schemeToken
			value = strings.TrimPrefix(value, scheme)
			break
		}
	}
	value = strings.TrimPrefix(value, "www.")

	path, suffix := value, ""
	if idx := strings.IndexAny(value, "?#"); idx >= 0 {
		path, suffix = value[:idx], value[idx:]
	}
	path = strings.TrimSuffix(path, "/")

	return prefix + path + suffix
}

// Equal reports whether two raw URLs canonicalize to the same value.
func Equal(a, b string) bool {
	return Canonicalize(a) == Canonicalize(b)
}
