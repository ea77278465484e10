// Package models - API request types and input validation.
package models

import (
	"errors"
	"fmt"
	"net/url"
)

// ScrapeRequest asks the service to retrieve one URL.
//
// The URL is never normalized: it becomes the cache key exactly as
// submitted. Time is an optional client-side hint carried by existing
// clients; the server accepts it but does not act on it.
type ScrapeRequest struct {
	URL  string `json:"url" validate:"required"`
	Time int    `json:"time,omitempty"`
}

// Validate checks that the request carries a usable absolute HTTP(S) URL.
// It does not mutate the URL string.
func (r *ScrapeRequest) Validate() error {
	if r.URL == "" {
		return errors.New("url is required")
	}

	parsed, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme: %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return errors.New("url host is required")
	}

	return nil
}
