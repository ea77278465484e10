// Package scrape implements the cache-or-fetch pipeline: a URL's content is
// fetched and normalized at most once, persisted, and served from the cache
// on every later request.
package scrape

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/duksosleepy/scraper/internal/fetch"
	"github.com/duksosleepy/scraper/internal/models"
	"github.com/duksosleepy/scraper/internal/normalize"
	"github.com/duksosleepy/scraper/internal/storage"
)

// Service coordinates the persistent cache, the fetcher, and the normalizer.
// Concurrent misses for the same URL are collapsed into one fetch; callers
// that joined an in-flight fetch receive the same content with cached=false.
type Service struct {
	storage   storage.Storage
	fetcher   fetch.Fetcher
	normalize normalize.Func
	logger    *slog.Logger
	group     singleflight.Group
}

// Option configures optional Service behavior.
type Option func(*Service)

// WithNormalizer overrides the markup normalizer.
func WithNormalizer(fn normalize.Func) Option {
	return func(s *Service) {
		s.normalize = fn
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a scrape service with the given storage backend and
// fetcher. The HTML normalizer is used unless overridden.
func NewService(store storage.Storage, fetcher fetch.Fetcher, opts ...Option) *Service {
	s := &Service{
		storage:   store,
		fetcher:   fetcher,
		normalize: normalize.HTML,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrFetch returns the content for a URL and whether it was served from
// the cache. The URL is used verbatim as the cache key. A cache hit never
// invokes the fetcher. On a miss the content is fetched, normalized,
// persisted, and returned. Failures surface as *ServiceError: retrieval
// errors for fetch failures, storage errors for store failures.
func (s *Service) GetOrFetch(ctx context.Context, url string) (string, bool, error) {
	page, err := s.storage.GetPage(ctx, url)
	if err == nil {
		return page.Content, true, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("cache lookup failed", "url", url, "error", err)
		return "", false, NewStorageError(err)
	}

	// Collapse concurrent misses for the same URL into one fetch. The
	// winning call's context drives the fetch; joiners share its result.
	content, err, shared := s.group.Do(url, func() (interface{}, error) {
		return s.fetchAndStore(ctx, url)
	})
	if err != nil {
		return "", false, err
	}
	if shared {
		s.logger.Debug("joined in-flight fetch", "url", url)
	}

	return content.(string), false, nil
}

func (s *Service) fetchAndStore(ctx context.Context, url string) (interface{}, error) {
	raw, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Error("fetch failed", "url", url, "error", err)
		return nil, NewRetrievalError(url, err)
	}

	content := s.normalize(raw)

	page := &models.Page{
		URL:       url,
		Content:   content,
		FetchedAt: time.Now(),
	}
	if err := s.storage.SavePage(ctx, page); err != nil {
		s.logger.Error("cache write failed", "url", url, "error", err)
		return nil, NewStorageError(err)
	}

	s.logger.Info("page fetched and cached", "url", url, "bytes", len(content))
	return content, nil
}
