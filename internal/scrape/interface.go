package scrape

import "context"

// ServiceInterface defines the interface for scrape service operations.
type ServiceInterface interface {
	// GetOrFetch returns the content for a URL and whether it was served
	// from the persistent cache.
	GetOrFetch(ctx context.Context, url string) (content string, cached bool, err error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
