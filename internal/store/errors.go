package store

import "errors"

// Common store errors.
var (
	// ErrNoSnapshot is returned when a requested snapshot file does not
	// exist on disk.
	ErrNoSnapshot = errors.New("snapshot file not found")

	// ErrMalformedSnapshot is returned when a snapshot file exists but
	// cannot be decoded as a question bank document. Check the wrapped
	// error text for the decoder's detail.
	ErrMalformedSnapshot = errors.New("snapshot is not valid JSON")
)
