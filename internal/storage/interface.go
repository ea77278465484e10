package storage

import (
	"context"

	"github.com/duksosleepy/scraper/internal/models"
)

// Storage defines the interface for persisting fetched pages. It provides a
// clean abstraction that can be implemented by different backends such as
// in-memory maps or databases. The URL string is the key exactly as given.
type Storage interface {
	// GetPage retrieves the cached page for a URL.
	// Returns ErrNotFound when no entry exists for the key.
	GetPage(ctx context.Context, url string) (*models.Page, error)

	// SavePage stores a fetched page. A concurrent write to the same URL
	// may overwrite; last writer wins.
	SavePage(ctx context.Context, page *models.Page) error

	// Ping verifies the storage backend is reachable and operational.
	Ping(ctx context.Context) error

	// Close closes the storage connection and cleans up resources.
	Close() error
}

// Config holds configuration for storage backends.
type Config struct {
	// Type specifies the storage backend type (memory, sqlite, postgres).
	Type string

	// Path is used for file-based backends.
	Path string

	// ConnectionString is used for database backends.
	ConnectionString string

	// MaxOpenConns and MaxIdleConns bound the database connection pool.
	MaxOpenConns int
	MaxIdleConns int
}
