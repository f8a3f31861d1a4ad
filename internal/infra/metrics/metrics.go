package metrics

import "strings"

// norm keeps label values bounded and predictable.
func norm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}
