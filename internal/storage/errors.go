package storage

import "errors"

// ErrNotFound is returned when no page exists for the requested URL.
var ErrNotFound = errors.New("page not found")
