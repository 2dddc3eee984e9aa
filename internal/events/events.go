package events

import "encoding/json"

// Event is the marker interface for everything that can travel over the
// progress stream. Each event type marshals itself into the exact wire
// object the stream consumer expects, including its discriminator field.
type Event interface {
	event()
}

// KeyState describes the lifecycle of one provider credential as seen by
// the stream consumer.
type KeyState string

// Possible credential states.
const (
	KeyStateActive    KeyState = "Active"
	KeyStateExhausted KeyState = "Exhausted"
	KeyStateSwitching KeyState = "Switching"
)

// Terminal run states carried by a Status event.
const (
	StatusComplete = "Complete"
	StatusStopped  = "Stopped"
)

// Display fields carried by Detail events. The values are panel labels
// consumed by the frontend, not machine identifiers.
const (
	FieldText         = "text"
	FieldSearchQuery  = "searchQuery"
	FieldCharCount    = "charCount"
	FieldAnomaly      = "anomaly"
	FieldVideoTime    = "videoTime"
	FieldSolutionTime = "solutionTime"
	FieldTotalTime    = "totalTime"
)

// Progress reports how far the walk has advanced through the bank.
type Progress struct {
	CurrentQ   int    `json:"current_q"`
	TotalQs    int    `json:"total_qs"`
	ActiveStep string `json:"active_step,omitempty"`
}

func (Progress) event() {}

// MarshalJSON adds the type discriminator expected on the wire.
func (p Progress) MarshalJSON() ([]byte, error) {
	type alias Progress
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"progress", alias(p)})
}

// APIKey reports the state of one provider credential, identified by its
// one-based position in the configured pool.
type APIKey struct {
	Service string   `json:"service"`
	Current int      `json:"current"`
	Total   int      `json:"total"`
	Status  KeyState `json:"status"`
}

func (APIKey) event() {}

// MarshalJSON adds the type discriminator expected on the wire.
func (k APIKey) MarshalJSON() ([]byte, error) {
	type alias APIKey
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"api_key", alias(k)})
}

// Detail carries one display field for the question currently in flight.
type Detail struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (Detail) event() {}

// MarshalJSON adds the type discriminator expected on the wire.
func (d Detail) MarshalJSON() ([]byte, error) {
	type alias Detail
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"q_details", alias(d)})
}

// ActiveStep names the pipeline step now running, for display.
type ActiveStep struct {
	Step string `json:"step"`
}

func (ActiveStep) event() {}

// MarshalJSON adds the type discriminator expected on the wire.
func (s ActiveStep) MarshalJSON() ([]byte, error) {
	type alias ActiveStep
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"active_step", alias(s)})
}

// Status reports the terminal state of a finished run, either
// StatusComplete or StatusStopped.
type Status struct {
	Value string `json:"value"`
}

func (Status) event() {}

// MarshalJSON adds the type discriminator expected on the wire.
func (s Status) MarshalJSON() ([]byte, error) {
	type alias Status
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"status", alias(s)})
}

// Message is a plain console line mirrored onto the stream.
type Message struct {
	Text string `json:"message"`
}

func (Message) event() {}

// End terminates the stream for one run. Consumers stop reading when they
// see it.
type End struct{}

func (End) event() {}

// MarshalJSON encodes the end-of-stream sentinel.
func (End) MarshalJSON() ([]byte, error) {
	return json.Marshal(Message{Text: "[DONE]"})
}

// IsEnd reports whether the event is the end-of-stream sentinel.
func IsEnd(e Event) bool {
	_, ok := e.(End)
	return ok
}
