package generation

import "errors"

// Common errors returned by provider implementations
var (
	// ErrNoClient is returned when a provider has no API keys configured
	ErrNoClient = errors.New("no API client configured")

	// ErrQuotaExceeded is returned when a provider rejected the call for
	// rate or quota reasons on the credential used
	ErrQuotaExceeded = errors.New("provider quota exceeded")

	// ErrTransientFailure is returned for temporary errors that might
	// resolve on retry
	ErrTransientFailure = errors.New("transient provider error")

	// ErrRetriesExhausted is returned when the full retry budget was
	// spent without a usable answer
	ErrRetriesExhausted = errors.New("retry budget exhausted")
)
