package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// QuestionBank is the root document the service operates on: one subject's
// question paper bank, organized as units that each hold an ordered list of
// questions. The walker mutates it in place and the store writes it back out
// in the same shape it was read in.
type QuestionBank struct {
	Title string  `json:"title,omitempty"`
	Units []*Unit `json:"units,omitzero"`
}

// Unit is one syllabus unit of a subject with its questions.
type Unit struct {
	Title     string      `json:"title,omitempty"`
	Questions []*Question `json:"questions,omitzero"`
}

// Question is a single question paper entry. Video and Solution start out
// unset and are filled in by the enrichment pipeline; History is read-only
// context used to pick the target answer depth.
type Question struct {
	Text     string       `json:"text"`
	History  []MarkRecord `json:"history,omitzero"`
	Video    VideoOutcome `json:"video,omitzero"`
	Solution string       `json:"solution,omitempty"`
}

// MarkRecord is one historical appearance of a question in an exam paper.
type MarkRecord struct {
	Marks Marks `json:"marks,omitzero"`
}

// TotalQuestions counts every question across all units.
func (b *QuestionBank) TotalQuestions() int {
	total := 0
	for _, u := range b.Units {
		total += len(u.Questions)
	}
	return total
}

// HasSolution reports whether a non-empty solution has been stored.
func (q *Question) HasSolution() bool {
	return q.Solution != ""
}

// Marks holds the marks awarded for one past appearance of a question.
// Bank files in the wild carry the value both as a JSON number and as a
// numeric string, so decoding accepts either form; the original token is
// kept and written back unchanged.
type Marks struct {
	raw   json.RawMessage
	value int
	valid bool
}

// NewMarks returns a Marks carrying the given value.
func NewMarks(v int) Marks {
	return Marks{value: v, valid: true}
}

// Value returns the numeric marks value. The second return is false when
// the underlying token could not be read as an integer.
func (m Marks) Value() (int, bool) {
	return m.value, m.valid
}

// IsZero reports whether the marks field was absent from the source
// document. It also makes a zero Marks drop out of encoded output.
func (m Marks) IsZero() bool {
	return m.raw == nil && !m.valid
}

// MarshalJSON writes the original token back when one was decoded, so a
// string-typed marks value survives a load/save round trip unchanged.
func (m Marks) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	if m.valid {
		return json.Marshal(m.value)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. Anything else is
// retained verbatim but reported as invalid through Value.
func (m *Marks) UnmarshalJSON(data []byte) error {
	m.raw = append(json.RawMessage(nil), data...)
	m.valid = false

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		m.value = int(f)
		m.valid = true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			m.value = v
			m.valid = true
		}
	}
	return nil
}

// VideoRef identifies a video selected for a question, along with the query
// that surfaced it.
type VideoRef struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	SearchQuery  string `json:"searchQuery"`
}

// VideoOutcome records the result of the video step for a question. The
// bank file distinguishes three states and all of them must survive a
// round trip:
//
//   - the key is absent: the step has not been attempted yet
//   - the key is null: a search concluded without a usable result
//   - the key is an object: a video was found
type VideoOutcome struct {
	// Attempted reports whether a search has concluded for this question.
	Attempted bool

	// Ref is the selected video, or nil when the search came up empty.
	Ref *VideoRef
}

// FoundVideo returns an outcome carrying the given video.
func FoundVideo(ref *VideoRef) VideoOutcome {
	return VideoOutcome{Attempted: true, Ref: ref}
}

// NoVideoFound returns an outcome recording a search that found nothing.
// It encodes as an explicit null so the question is not retried on resume.
func NoVideoFound() VideoOutcome {
	return VideoOutcome{Attempted: true}
}

// IsZero reports whether the step is still unattempted, which drops the
// video key from encoded output entirely.
func (v VideoOutcome) IsZero() bool {
	return !v.Attempted
}

// MarshalJSON encodes a found video as an object and a concluded-but-empty
// search as null.
func (v VideoOutcome) MarshalJSON() ([]byte, error) {
	if v.Ref == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v.Ref)
}

// UnmarshalJSON restores the attempted/empty/found distinction from the
// stored form.
func (v *VideoOutcome) UnmarshalJSON(data []byte) error {
	v.Attempted = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.Ref = nil
		return nil
	}
	ref := &VideoRef{}
	if err := json.Unmarshal(data, ref); err != nil {
		return err
	}
	v.Ref = ref
	return nil
}
