// Package redact provides utilities for scrubbing provider credentials
// from strings before they are logged or published on the event stream.
// Provider errors often echo the failing request back, URL and key
// included, so any text derived from an external error goes through here
// first.
package redact

import "regexp"

// RedactedKeyPlaceholder replaces credential material in scrubbed text.
const RedactedKeyPlaceholder = "[REDACTED_KEY]"

// Precompiled regex patterns
var (
	// Vendor-prefixed key material as used by the completion and video
	// search providers
	groqKeyRegex   = regexp.MustCompile(`\bgsk_[A-Za-z0-9]{12,}\b`)
	googleKeyRegex = regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{10,}\b`)

	// key=... query parameters echoed back inside request URLs
	urlKeyRegex = regexp.MustCompile(`(?i)([?&](?:key|api_key|apikey|access_token)=)[^&\s"']+`)

	// Generic credential assignments
	apiKeyRegex = regexp.MustCompile(`(?i)(api[_-]?key|token|secret|bearer)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`)
)

// String redacts credential material from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := groqKeyRegex.ReplaceAllString(input, RedactedKeyPlaceholder)
	result = googleKeyRegex.ReplaceAllString(result, RedactedKeyPlaceholder)
	result = urlKeyRegex.ReplaceAllString(result, "${1}"+RedactedKeyPlaceholder)
	result = apiKeyRegex.ReplaceAllString(result, RedactedKeyPlaceholder)
	return result
}

// Error redacts credential material from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
