package observability

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field length caps for values copied from requests into log lines.
const (
	maxRouteLen  = 180
	maxMethodLen = 10
	maxIDLen     = 64
)

// clip removes control runes and keeps at most limit runes.
func clip(value string, limit int) string {
	out := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
	if utf8.RuneCountInString(out) <= limit {
		return out
	}
	return string([]rune(out)[:limit])
}

// SanitizeRoute cleans a route pattern or path. Empty becomes "/".
func SanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return clip(route, maxRouteLen)
}

// SanitizeMethod cleans an HTTP method.
func SanitizeMethod(method string) string {
	return clip(strings.ToUpper(method), maxMethodLen)
}

// SanitizeID clips a profile or user id.
func SanitizeID(id string) string {
	return clip(id, maxIDLen)
}
