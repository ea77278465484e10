package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duksosleepy/scraper/internal/models"
	"github.com/duksosleepy/scraper/internal/scrape"
)

// mockScraper implements scrape.ServiceInterface for handler tests.
type mockScraper struct {
	content string
	cached  bool
	err     error
	lastURL string
}

func (m *mockScraper) GetOrFetch(ctx context.Context, url string) (string, bool, error) {
	m.lastURL = url
	if m.err != nil {
		return "", false, m.err
	}
	return m.content, m.cached, nil
}

// mockPinger implements storage.Storage for health checks.
type mockPinger struct {
	pingErr error
}

func (m *mockPinger) GetPage(ctx context.Context, url string) (*models.Page, error) {
	return nil, errors.New("not implemented")
}
func (m *mockPinger) SavePage(ctx context.Context, page *models.Page) error {
	return errors.New("not implemented")
}
func (m *mockPinger) Ping(ctx context.Context) error { return m.pingErr }
func (m *mockPinger) Close() error                   { return nil }

func postScrape(t *testing.T, handlers *Handlers, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest("POST", "/api/v1/scrape", &buf)
	rr := httptest.NewRecorder()
	handlers.Scrape(rr, req)
	return rr
}

func TestScrape_Success(t *testing.T) {
	scraper := &mockScraper{content: "<html>\n</html>\n", cached: false}
	handlers := NewHandlers(scraper)

	rr := postScrape(t, handlers, models.ScrapeRequest{URL: "http://example.com", Time: 1})

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "<html>\n</html>\n", resp.Content)
	assert.False(t, resp.Cached)
	assert.Equal(t, "http://example.com", scraper.lastURL)
}

func TestScrape_CachedResponse(t *testing.T) {
	scraper := &mockScraper{content: "stored", cached: true}
	handlers := NewHandlers(scraper)

	rr := postScrape(t, handlers, models.ScrapeRequest{URL: "http://example.com"})

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)
}

func TestScrape_InvalidJSON(t *testing.T) {
	handlers := NewHandlers(&mockScraper{})

	rr := postScrape(t, handlers, "{not json")

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.ErrorCodeBadRequest, resp.Code)
}

func TestScrape_InvalidURL(t *testing.T) {
	handlers := NewHandlers(&mockScraper{})

	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"relative", "/path/only"},
		{"bad scheme", "ftp://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postScrape(t, handlers, models.ScrapeRequest{URL: tt.url})
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, models.ErrorCodeInvalidRequest, resp.Code)
		})
	}
}

func TestScrape_RetrievalError(t *testing.T) {
	scraper := &mockScraper{
		err: scrape.NewRetrievalError("http://example.com", errors.New("connection refused")),
	}
	handlers := NewHandlers(scraper)

	rr := postScrape(t, handlers, models.ScrapeRequest{URL: "http://example.com"})

	assert.Equal(t, http.StatusBadGateway, rr.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.ErrorCodeRetrievalFailed, resp.Code)
	assert.NotContains(t, resp.Message, "connection refused", "internal cause must not leak to callers")
}

func TestScrape_StorageError(t *testing.T) {
	scraper := &mockScraper{err: scrape.NewStorageError(errors.New("disk failure"))}
	handlers := NewHandlers(scraper)

	rr := postScrape(t, handlers, models.ScrapeRequest{URL: "http://example.com"})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.ErrorCodeStorageFailed, resp.Code)
}

func TestScrape_UnknownError(t *testing.T) {
	scraper := &mockScraper{err: errors.New("unexpected")}
	handlers := NewHandlers(scraper)

	rr := postScrape(t, handlers, models.ScrapeRequest{URL: "http://example.com"})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.ErrorCodeInternalError, resp.Code)
}

func TestHealthCheck_NoStorage(t *testing.T) {
	handlers := NewHandlers(&mockScraper{})

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	handlers.HealthCheck(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.HealthCheckResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusHealthy, resp.Status)
	assert.Contains(t, resp.Components, "api")
}

func TestHealthCheck_HealthyStorage(t *testing.T) {
	handlers := NewHandlers(&mockScraper{}, WithStorage(&mockPinger{}))

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	handlers.HealthCheck(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.HealthCheckResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusHealthy, resp.Status)
	assert.Equal(t, models.StatusHealthy, resp.Components["storage"].Status)
}

func TestHealthCheck_UnhealthyStorage(t *testing.T) {
	handlers := NewHandlers(&mockScraper{}, WithStorage(&mockPinger{pingErr: errors.New("connection lost")}))

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	handlers.HealthCheck(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, "degraded service still reports 200")

	var resp models.HealthCheckResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusDegraded, resp.Status)
	assert.Equal(t, models.StatusUnhealthy, resp.Components["storage"].Status)
}
