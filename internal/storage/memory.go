package storage

import (
	"context"
	"sync"

	"github.com/duksosleepy/scraper/internal/models"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// This provider is ideal for development and testing; data is lost on
// restart.
type MemoryStorage struct {
	mu    sync.RWMutex
	pages map[string]*models.Page
}

// NewMemoryStorage creates a new memory-based storage instance.
func NewMemoryStorage(config Config) (*MemoryStorage, error) {
	return &MemoryStorage{
		pages: make(map[string]*models.Page),
	}, nil
}

// GetPage retrieves the cached page for a URL.
func (m *MemoryStorage) GetPage(ctx context.Context, url string) (*models.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	page, exists := m.pages[url]
	if !exists {
		return nil, ErrNotFound
	}

	// Return a copy to prevent external modification
	pageCopy := *page
	return &pageCopy, nil
}

// SavePage stores a fetched page, overwriting any existing entry.
func (m *MemoryStorage) SavePage(ctx context.Context, page *models.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pageCopy := *page
	m.pages[page.URL] = &pageCopy
	return nil
}

// Ping verifies the storage backend is reachable and operational.
func (m *MemoryStorage) Ping(_ context.Context) error {
	return nil
}

// Close clears all data.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = make(map[string]*models.Page)
	return nil
}
