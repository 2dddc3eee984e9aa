package groq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Saurabhkg03/saraavdata-backend/internal/events"
	"github.com/Saurabhkg03/saraavdata-backend/internal/generation"
	"github.com/Saurabhkg03/saraavdata-backend/internal/keyring"
	"github.com/Saurabhkg03/saraavdata-backend/internal/redact"
	openai "github.com/sashabaranov/go-openai"
)

// BaseURL is the OpenAI-compatible endpoint completions are sent to.
const BaseURL = "https://api.groq.com/openai/v1"

// Config contains tunables for the completion client and its retry loop.
type Config struct {
	// Model is the chat model requested for every completion.
	Model string

	// Temperature and TopP are the sampling parameters sent with every
	// request.
	Temperature float32
	TopP        float32

	// MaxAttempts bounds how many provider calls a single Generate may
	// make, counting rotations and transient failures.
	MaxAttempts int

	// RotatePause is slept after switching to the next key.
	RotatePause time.Duration

	// Cooldown is slept once every configured key has been rate limited
	// back to back, to let the per-minute quotas reset.
	Cooldown time.Duration

	// TransientPause is slept after a non-quota provider error.
	TransientPause time.Duration
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		Model:          "llama-3.3-70b-versatile",
		Temperature:    0.3,
		TopP:           0.8,
		MaxAttempts:    10,
		RotatePause:    time.Second,
		Cooldown:       20 * time.Second,
		TransientPause: 5 * time.Second,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.Temperature == 0 {
		c.Temperature = def.Temperature
	}
	if c.TopP == 0 {
		c.TopP = def.TopP
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.RotatePause <= 0 {
		c.RotatePause = def.RotatePause
	}
	if c.Cooldown <= 0 {
		c.Cooldown = def.Cooldown
	}
	if c.TransientPause <= 0 {
		c.TransientPause = def.TransientPause
	}
	return c
}

// completionClient is the slice of the provider SDK the generator calls.
// Tests substitute it to simulate provider responses.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator implements generation.Generator against Groq's
// OpenAI-compatible chat completion API. A single Generate call absorbs
// rate limits internally by rotating through the configured key pool and
// backing off, so callers see one attempt that either yields text or an
// error from the generation taxonomy.
type Generator struct {
	cfg     Config
	logger  *slog.Logger
	emitter *events.Emitter
	ring    *keyring.Ring

	// client always targets the key currently under the ring cursor.
	client    completionClient
	newClient func(apiKey string) completionClient
	sleep     func(time.Duration)
}

// Compile-time check that Generator satisfies the pipeline contract.
var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator over the given key pool. An empty pool
// is allowed: the service still boots and every Generate call reports
// ErrNoClient instead.
func NewGenerator(cfg Config, apiKeys []string, emitter *events.Emitter, logger *slog.Logger) (*Generator, error) {
	if emitter == nil {
		return nil, errors.New("emitter cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	g := &Generator{
		cfg:       cfg.withDefaults(),
		logger:    logger.With("component", "groq_generator"),
		emitter:   emitter,
		newClient: newAPIClient,
		sleep:     time.Sleep,
	}
	g.ring = keyring.New(apiKeys, func(position, total int) {
		g.emitter.Message("Switching to Groq API key #%d...", position)
		g.emitter.KeyStatus("Groq", position, total, events.KeyStateSwitching)
	})
	if g.ring.Len() > 0 {
		g.client = g.newClient(g.ring.Current())
	}
	return g, nil
}

// Generate sends the prompt and returns the trimmed completion text.
// Rate-limited keys are marked exhausted, the ring advances, and once the
// whole pool has been limited back to back the generator sits out the
// cooldown before going around again. Other provider errors are retried
// on the same key after a short pause. When the attempt budget runs out
// the last failure is reported wrapped in ErrRetriesExhausted.
func (g *Generator) Generate(ctx context.Context, messages []generation.Message, params generation.Params) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("%w: no Groq API keys configured", generation.ErrNoClient)
	}

	req := g.buildRequest(messages, params)
	consecutiveRotations := 0
	var lastErr error

	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		g.logger.Debug("calling completion API",
			"attempt", attempt,
			"max_attempts", g.cfg.MaxAttempts,
			"model", g.cfg.Model,
			"key_position", g.ring.Position())

		resp, err := g.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				lastErr = fmt.Errorf("%w: empty response from provider", generation.ErrTransientFailure)
				g.emitter.Message("[Groq error] empty response, retrying...")
				g.sleep(g.cfg.TransientPause)
				continue
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		if isRateLimit(err) {
			lastErr = fmt.Errorf("%w: %s", generation.ErrQuotaExceeded, redact.Error(err))
			g.emitter.Message("Groq API key #%d rate limited.", g.ring.Position())
			g.emitter.KeyStatus("Groq", g.ring.Position(), g.ring.Len(), events.KeyStateExhausted)

			g.rotate()
			consecutiveRotations++
			if consecutiveRotations >= g.ring.Len() {
				g.emitter.Message("All Groq API keys rate limited. Waiting %s for quota reset...", g.cfg.Cooldown)
				g.sleep(g.cfg.Cooldown)
				consecutiveRotations = 0
			} else {
				g.sleep(g.cfg.RotatePause)
			}
			continue
		}

		lastErr = fmt.Errorf("%w: %s", generation.ErrTransientFailure, redact.Error(err))
		g.emitter.Message("[Groq error] %s", redact.Error(err))
		g.logger.Error("completion call failed",
			"attempt", attempt,
			"error", redact.Error(err))
		g.sleep(g.cfg.TransientPause)
	}

	return "", fmt.Errorf("%w after %d attempts: %v", generation.ErrRetriesExhausted, g.cfg.MaxAttempts, lastErr)
}

// Keys exposes the credential pool so callers can report its state.
func (g *Generator) Keys() *keyring.Ring {
	return g.ring
}

// rotate advances the key ring and rebuilds the client for the new key.
func (g *Generator) rotate() {
	if key := g.ring.Advance(); key != "" {
		g.client = g.newClient(key)
	}
}

func (g *Generator) buildRequest(messages []generation.Message, params generation.Params) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		Temperature: g.cfg.Temperature,
		TopP:        g.cfg.TopP,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = params.MaxTokens
	}
	return req
}

// newAPIClient builds the real SDK client pointed at the Groq endpoint.
func newAPIClient(apiKey string) completionClient {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = BaseURL
	return openai.NewClientWithConfig(clientConfig)
}

// isRateLimit reports whether the provider rejected the call for quota
// reasons. The SDK surfaces those as API or request errors carrying the
// HTTP 429 status.
func isRateLimit(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
