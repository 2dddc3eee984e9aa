package task

import "sync/atomic"

// StopFlag is the cooperative cancellation signal shared between the HTTP
// layer and the background walker. Setting it never interrupts an
// in-flight provider call; the walker consults the flag only at its named
// checkpoints.
type StopFlag struct {
	set atomic.Bool
}

// Set requests cancellation.
func (f *StopFlag) Set() {
	f.set.Store(true)
}

// Clear withdraws a previous cancellation request.
func (f *StopFlag) Clear() {
	f.set.Store(false)
}

// IsSet reports whether cancellation has been requested.
func (f *StopFlag) IsSet() bool {
	return f.set.Load()
}
