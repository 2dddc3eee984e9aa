package generation

import (
	"context"

	"github.com/Saurabhkg03/saraavdata-backend/internal/domain"
)

// Role tags one segment of a chat prompt.
type Role string

// Prompt roles understood by the completion providers.
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one role-tagged segment of an ordered prompt.
type Message struct {
	Role    Role
	Content string
}

// SystemMessage builds a system-role prompt segment.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role prompt segment.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Params carries per-call generation options. Zero values mean the
// provider default.
type Params struct {
	// MaxTokens caps the completion length. Zero leaves the cap unset.
	MaxTokens int
}

// Generator produces completion text from an ordered prompt. This
// interface is the boundary between the processing pipeline and the
// external language model service; implementations own retries, key
// rotation, and backoff so callers see a single attempt.
type Generator interface {
	// Generate returns the completion text for the given prompt, trimmed
	// of surrounding whitespace. It returns an error from this package's
	// taxonomy when the provider cannot be made to answer (see errors.go).
	Generate(ctx context.Context, messages []Message, params Params) (string, error)
}

// VideoSearcher finds the single best matching video for a search query.
// A nil ref with a nil error means the search ran cleanly and found
// nothing usable; callers record that outcome so the question is not
// retried on resume.
type VideoSearcher interface {
	Search(ctx context.Context, query string) (*domain.VideoRef, error)
}
