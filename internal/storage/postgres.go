package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duksosleepy/scraper/internal/models"
)

// PostgresStorage implements the Storage interface using PostgreSQL.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a PostgreSQL storage instance, creating the
// schema if it does not exist.
func NewPostgresStorage(config Config) (*PostgresStorage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for PostgreSQL storage")
	}

	pool, err := pgxpool.New(context.Background(), config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(context.Background(), `CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL
	)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

// GetPage retrieves the cached page for a URL.
func (ps *PostgresStorage) GetPage(ctx context.Context, url string) (*models.Page, error) {
	var content string
	var fetchedAt time.Time
	err := ps.pool.QueryRow(ctx,
		"SELECT content, fetched_at FROM pages WHERE url = $1", url,
	).Scan(&content, &fetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	return &models.Page{
		URL:       url,
		Content:   content,
		FetchedAt: fetchedAt,
	}, nil
}

// SavePage stores a fetched page (upsert; last writer wins).
func (ps *PostgresStorage) SavePage(ctx context.Context, page *models.Page) error {
	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := ps.pool.Exec(ctx,
		`INSERT INTO pages (url, content, fetched_at) VALUES ($1, $2, $3)
		 ON CONFLICT (url) DO UPDATE SET content = EXCLUDED.content, fetched_at = EXCLUDED.fetched_at`,
		page.URL, page.Content, fetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}
	return nil
}

// Ping verifies the storage backend is reachable and operational.
func (ps *PostgresStorage) Ping(ctx context.Context) error {
	return ps.pool.Ping(ctx)
}

// Close closes the storage connection.
func (ps *PostgresStorage) Close() error {
	ps.pool.Close()
	return nil
}
