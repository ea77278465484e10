package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/duksosleepy/scraper/internal/admission"
	"github.com/duksosleepy/scraper/internal/models"
	"github.com/duksosleepy/scraper/internal/scrape"
	"github.com/duksosleepy/scraper/internal/storage"
)

// Handlers contains HTTP handlers for the scraper API
type Handlers struct {
	scraper   scrape.ServiceInterface
	storage   storage.Storage
	startTime time.Time
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handlers)

// WithStorage provides a storage backend for health check probing.
func WithStorage(store storage.Storage) HandlerOption {
	return func(h *Handlers) {
		h.storage = store
	}
}

// NewHandlers creates a new handlers instance
func NewHandlers(scraper scrape.ServiceInterface, opts ...HandlerOption) *Handlers {
	h := &Handlers{
		scraper:   scraper,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Scrape handles page retrieval requests
// POST /api/v1/scrape
// Requires an admitted request (rate limit passed, token validated).
func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	var req models.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid JSON body")
		return
	}

	if err := req.Validate(); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeInvalidRequest, err.Error())
		return
	}

	slog.Debug("Scrape request admitted",
		"url", req.URL,
		"fingerprint", admission.FingerprintFrom(r.Context()))

	content, cached, err := h.scraper.GetOrFetch(r.Context(), req.URL)
	if err != nil {
		var svcErr *scrape.ServiceError
		if errors.As(err, &svcErr) {
			h.writeErrorResponse(w, svcErr.StatusCode, svcErr.Code, svcErr.Message)
			return
		}
		h.writeErrorResponse(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, &models.ScrapeResponse{
		Status:  http.StatusOK,
		Content: content,
		Cached:  cached,
	})
}

// HealthCheck handles health check requests
// GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := models.NewHealthCheckResponse(models.StatusHealthy)
	response.Uptime = time.Since(h.startTime).Round(time.Second).String()

	response.AddComponent("api", models.StatusHealthy, "API is operational")

	if h.storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := h.storage.Ping(ctx); err != nil {
			response.Status = models.StatusDegraded
			response.AddComponent("storage", models.StatusUnhealthy, err.Error())
		} else {
			response.AddComponent("storage", models.StatusHealthy, "Storage is operational")
		}
	}

	statusCode := http.StatusOK
	if response.Status == models.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	h.writeJSONResponse(w, statusCode, response)
}

// writeJSONResponse writes a JSON response
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; nothing more to send.
		return
	}
}

// writeErrorResponse writes an error response
func (h *Handlers) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	errorResp := models.NewErrorResponse(message, errorCode)
	h.writeJSONResponse(w, statusCode, errorResp)
}
