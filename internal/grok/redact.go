package grok

import (
	"net/http"
	"strings"
)

const redacted = "[REDACTED]"

var secretHeaders = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
}

// RedactHeaders flattens h for logging with credentials masked.
// The auth scheme of an Authorization header is kept.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		value := strings.Join(values, ", ")
		if secretHeaders[http.CanonicalHeaderKey(name)] {
			value = redactCredential(value)
		}
		out[name] = value
	}
	return out
}

func redactCredential(value string) string {
	scheme, _, found := strings.Cut(value, " ")
	if found && strings.EqualFold(scheme, "Bearer") {
		return scheme + " " + redacted
	}
	return redacted
}
