// Package keyring tracks a pool of API credentials for one provider and
// rotates through them when quotas run out. A Ring is owned by a single
// goroutine; the worker that makes provider calls advances it and nothing
// else touches it.
package keyring

import "strings"

// Ring cycles through a fixed, ordered set of API keys. The cursor starts
// at the first key and Advance moves it one position forward, wrapping
// around at the end so a pool of n keys can absorb n quota exhaustions
// before the caller has to back off.
type Ring struct {
	keys   []string
	cursor int
	notify func(position, total int)
}

// New builds a Ring over the given keys. Blank entries are dropped. The
// optional notify hook runs after every advance with the new one-based
// position and the ring size; pass nil when no notification is needed.
func New(keys []string, notify func(position, total int)) *Ring {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	return &Ring{keys: cleaned, notify: notify}
}

// Len returns the number of keys in the ring.
func (r *Ring) Len() int {
	return len(r.keys)
}

// Position returns the one-based position of the current key. It is 1 even
// for an empty ring, matching how a fresh cursor is reported.
func (r *Ring) Position() int {
	return r.cursor + 1
}

// Current returns the key under the cursor, or "" for an empty ring.
func (r *Ring) Current() string {
	if len(r.keys) == 0 {
		return ""
	}
	return r.keys[r.cursor]
}

// Advance moves the cursor to the next key, wrapping past the end, and
// returns it. The notify hook fires after the move. Advancing an empty
// ring is a no-op that returns "".
func (r *Ring) Advance() string {
	if len(r.keys) == 0 {
		return ""
	}
	r.cursor = (r.cursor + 1) % len(r.keys)
	if r.notify != nil {
		r.notify(r.cursor+1, len(r.keys))
	}
	return r.keys[r.cursor]
}
