package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/duksosleepy/scraper/internal/models"
)

// SQLiteStorage implements the Storage interface on a local SQLite file.
// The journal runs in WAL mode so concurrent readers are not blocked by the
// single writer.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a SQLite storage instance, creating the schema
// if it does not exist. The DSN falls back to Path when unset.
func NewSQLiteStorage(config Config) (*SQLiteStorage, error) {
	dsn := config.ConnectionString
	if dsn == "" {
		dsn = config.Path
	}
	if dsn == "" {
		return nil, fmt.Errorf("path or connection string is required for SQLite storage")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// GetPage retrieves the cached page for a URL.
func (ss *SQLiteStorage) GetPage(ctx context.Context, url string) (*models.Page, error) {
	var content string
	var fetchedAt int64
	err := ss.db.QueryRowContext(ctx,
		"SELECT content, fetched_at FROM pages WHERE url = ?", url,
	).Scan(&content, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	return &models.Page{
		URL:       url,
		Content:   content,
		FetchedAt: time.Unix(fetchedAt, 0),
	}, nil
}

// SavePage stores a fetched page. A racing write to the same URL replaces
// the row; the table never holds two rows for one key.
func (ss *SQLiteStorage) SavePage(ctx context.Context, page *models.Page) error {
	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := ss.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO pages (url, content, fetched_at) VALUES (?, ?, ?)",
		page.URL, page.Content, fetchedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}
	return nil
}

// Ping verifies the storage backend is reachable and operational.
func (ss *SQLiteStorage) Ping(ctx context.Context) error {
	return ss.db.PingContext(ctx)
}

// Close closes the storage connection.
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}
