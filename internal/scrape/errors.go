package scrape

import (
	"fmt"
	"net/http"

	"github.com/duksosleepy/scraper/internal/models"
)

// ServiceError represents errors from the scrape service with HTTP context.
// The wrapped cause is for internal logging; handlers return only the code
// and message to callers.
type ServiceError struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewRetrievalError wraps an outbound fetch failure.
func NewRetrievalError(url string, err error) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeRetrievalFailed,
		Message:    fmt.Sprintf("failed to retrieve %s", url),
		StatusCode: http.StatusBadGateway,
		Err:        err,
	}
}

// NewStorageError wraps a persistent store failure.
func NewStorageError(err error) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeStorageFailed,
		Message:    "storage operation failed",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewInvalidRequestError wraps a request validation failure.
func NewInvalidRequestError(message string, err error) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}
