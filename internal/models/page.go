package models

import "time"

// Page is a cached fetch result. The URL string is used verbatim as the
// cache key: no scheme/host case folding, trailing-slash stripping, or
// query reordering is performed, so lexically distinct URLs for the same
// resource are cached as distinct entries.
type Page struct {
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	FetchedAt time.Time `json:"fetched_at"`
}
