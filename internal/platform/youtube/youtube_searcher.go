package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Saurabhkg03/saraavdata-backend/internal/domain"
	"github.com/Saurabhkg03/saraavdata-backend/internal/events"
	"github.com/Saurabhkg03/saraavdata-backend/internal/generation"
	"github.com/Saurabhkg03/saraavdata-backend/internal/keyring"
	"github.com/Saurabhkg03/saraavdata-backend/internal/redact"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// Searcher implements generation.VideoSearcher using the YouTube Data
// API. Quota failures rotate through the key pool at most once per key
// and then give up; unlike the completion side there is no cooldown loop,
// since a question can simply be left without a video and the walk moves
// on.
type Searcher struct {
	logger  *slog.Logger
	emitter *events.Emitter
	ring    *keyring.Ring

	// search runs one query with one key. The default implementation
	// builds an API service for the key; tests substitute it.
	search func(ctx context.Context, apiKey, query string) ([]*yt.SearchResult, error)
}

// Compile-time check that Searcher satisfies the pipeline contract.
var _ generation.VideoSearcher = (*Searcher)(nil)

// NewSearcher creates a Searcher over the given key pool. An empty pool
// is allowed: the service still boots and every Search call reports
// ErrNoClient instead.
func NewSearcher(apiKeys []string, emitter *events.Emitter, logger *slog.Logger) (*Searcher, error) {
	if emitter == nil {
		return nil, errors.New("emitter cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	s := &Searcher{
		logger:  logger.With("component", "youtube_searcher"),
		emitter: emitter,
		search:  searchOnce,
	}
	s.ring = keyring.New(apiKeys, func(position, total int) {
		s.emitter.Message("Switching to YouTube API key #%d...", position)
		s.emitter.KeyStatus("YouTube", position, total, events.KeyStateSwitching)
	})
	return s, nil
}

// Search returns the top embeddable video for the query, or nil without
// an error when the API answers cleanly with no results. HTTP 403 and 400
// are treated as a spent or invalid key: the ring advances and the query
// retries on the next key until the pool is exhausted. Any other failure
// aborts immediately so one flaky query cannot stall the whole walk.
func (s *Searcher) Search(ctx context.Context, query string) (*domain.VideoRef, error) {
	if s.ring.Len() == 0 {
		return nil, fmt.Errorf("%w: no YouTube API keys configured", generation.ErrNoClient)
	}
	if query == "" {
		return nil, nil
	}

	attempts := s.ring.Len()
	for tried := 0; tried < attempts; tried++ {
		s.logger.Debug("searching videos",
			"query", query,
			"key_position", s.ring.Position())

		items, err := s.search(ctx, s.ring.Current(), query)
		if err == nil {
			if len(items) == 0 {
				return nil, nil
			}
			item := items[0]
			if item.Id == nil || item.Snippet == nil {
				return nil, fmt.Errorf("%w: malformed search result", generation.ErrTransientFailure)
			}
			return &domain.VideoRef{
				VideoID:      item.Id.VideoId,
				Title:        item.Snippet.Title,
				ChannelTitle: item.Snippet.ChannelTitle,
				SearchQuery:  query,
			}, nil
		}

		if code, ok := quotaStatus(err); ok {
			s.emitter.Message("[YouTube error %d] key #%d failed.", code, s.ring.Position())
			if s.ring.Len() > 1 {
				s.ring.Advance()
				continue
			}
			s.emitter.Message("No other YouTube API keys available.")
			return nil, fmt.Errorf("%w: %s", generation.ErrQuotaExceeded, redact.Error(err))
		}

		s.emitter.Message("[YouTube API error] %s", redact.Error(err))
		s.logger.Error("video search failed", "error", redact.Error(err))
		return nil, fmt.Errorf("%w: %s", generation.ErrTransientFailure, redact.Error(err))
	}

	s.emitter.Message("All YouTube API keys exhausted for this query.")
	return nil, fmt.Errorf("%w: every YouTube key quota-limited", generation.ErrRetriesExhausted)
}

// Keys exposes the credential pool so callers can report its state.
func (s *Searcher) Keys() *keyring.Ring {
	return s.ring
}

// searchOnce runs a single search call with a service built for the given
// key. One result is enough: the pipeline only ever attaches the top hit.
func searchOnce(ctx context.Context, apiKey, query string) ([]*yt.SearchResult, error) {
	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("building YouTube service: %w", err)
	}

	resp, err := svc.Search.List([]string{"snippet"}).
		Q(query).
		MaxResults(1).
		Type("video").
		VideoEmbeddable("true").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// quotaStatus reports whether the error is an API rejection that means
// the key is spent or unusable rather than the query being bad.
func quotaStatus(err error) (int, bool) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusForbidden || gerr.Code == http.StatusBadRequest {
			return gerr.Code, true
		}
	}
	return 0, false
}
