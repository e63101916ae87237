package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortly/internal/database"
	"shortly/internal/database/memory"
	"shortly/internal/entity"
	"shortly/internal/service"
	"shortly/internal/worker"
)

func newTestRouter(t *testing.T) (*gin.Engine, *worker.ChannelCollector) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	linkRepo := memory.NewLinkRepository()
	clickRepo := memory.NewClickRepository(linkRepo)
	collector := worker.NewChannelCollector(64)

	linkService := service.NewLinkService(linkRepo, nil, service.NewClickRecorder(collector), service.LinkServiceConfig{
		BaseURL: "http://sho.rt",
	})
	analyticsService := service.NewAnalyticsService(linkRepo, clickRepo)

	return InitRoutes(NewLinkHandler(linkService), NewAnalyticsHandler(analyticsService)), collector
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func shorten(t *testing.T, router *gin.Engine, req entity.ShortenRequest) entity.ShortenResponse {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/shorten", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp entity.ShortenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestShortenEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := shorten(t, router, entity.ShortenRequest{URL: "example.com/a/b/c", Algorithm: "hash"})

	assert.Equal(t, "https://example.com/a/b/c", resp.Link.OriginalURL)
	assert.Len(t, resp.Link.ShortCode, 6)
	assert.Equal(t, "http://sho.rt/"+resp.Link.ShortCode, resp.ShortURL)
}

func TestShortenEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/shorten", entity.ShortenRequest{URL: "ftp://example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"validation_error"`)

	w = doJSON(t, router, http.MethodPost, "/api/shorten", gin.H{"note": "no url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRedirectEndpoint(t *testing.T) {
	router, collector := newTestRouter(t)

	resp := shorten(t, router, entity.ShortenRequest{URL: "https://example.com/target"})

	req := httptest.NewRequest(http.MethodGet, "/"+resp.Link.ShortCode, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	req.Header.Set("Referer", "https://search.example.net")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "https://example.com/target", w.Header().Get("Location"))

	// The click event was handed off without blocking the redirect.
	select {
	case click := <-collector.Events():
		assert.Equal(t, resp.Link.ID, click.LinkID)
		assert.Equal(t, entity.DeviceDesktop, click.DeviceClass)
		assert.Equal(t, "https://search.example.net", click.Referrer)
	case <-time.After(time.Second):
		t.Fatal("expected a collected click event")
	}
}

func TestRedirectUnknownCode(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/does-not-exist-code", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"not_found"`)
}

func TestRedirectMalformedCode(t *testing.T) {
	router, _ := newTestRouter(t)

	// 21 chars: over the maximum a code can ever have.
	w := doJSON(t, router, http.MethodGet, "/"+strings.Repeat("a", 21), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"validation_error"`)
}

// unavailableRepo fails every read the way an unreachable database would.
type unavailableRepo struct {
	database.LinkRepository
}

func (r *unavailableRepo) GetByCode(ctx context.Context, code string) (*entity.Link, error) {
	return nil, fmt.Errorf("%w: connection refused", entity.ErrStorage)
}

func TestRedirectStorageUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mem := memory.NewLinkRepository()
	linkRepo := &unavailableRepo{LinkRepository: mem}
	clickRepo := memory.NewClickRepository(mem)
	collector := worker.NewChannelCollector(64)

	linkService := service.NewLinkService(linkRepo, nil, service.NewClickRecorder(collector), service.LinkServiceConfig{
		BaseURL: "http://sho.rt",
	})
	analyticsService := service.NewAnalyticsService(linkRepo, clickRepo)
	router := InitRoutes(NewLinkHandler(linkService), NewAnalyticsHandler(analyticsService))

	w := doJSON(t, router, http.MethodGet, "/abc123", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"storage_unavailable"`)
}

func TestRedirectExpiredLink(t *testing.T) {
	router, _ := newTestRouter(t)

	past := time.Now().Add(-time.Second)
	resp := shorten(t, router, entity.ShortenRequest{URL: "https://example.com", ExpiresAt: &past})

	w := doJSON(t, router, http.MethodGet, "/"+resp.Link.ShortCode, nil)
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestDeactivateReactivateFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := shorten(t, router, entity.ShortenRequest{URL: "https://example.com/toggle"})

	w := doJSON(t, router, http.MethodPatch, "/api/links/"+resp.Link.ID, gin.H{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/"+resp.Link.ShortCode, nil)
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Contains(t, w.Body.String(), "disabled")

	w = doJSON(t, router, http.MethodPatch, "/api/links/"+resp.Link.ID, gin.H{"is_active": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/"+resp.Link.ShortCode, nil)
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "https://example.com/toggle", w.Header().Get("Location"))
}

func TestCustomCodeConflictEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	shorten(t, router, entity.ShortenRequest{URL: "https://example.com/1", CustomCode: "branded"})

	w := doJSON(t, router, http.MethodPost, "/api/shorten", entity.ShortenRequest{URL: "https://example.com/2", CustomCode: "branded"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"code_taken"`)
}

func TestBatchShortenEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/shorten/batch", entity.BatchShortenRequest{
		URLs: []string{"https://example.com/1", "not a url", "example.com/3"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Results []entity.BatchShortenItem `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Results, 3)

	assert.NotEmpty(t, body.Results[0].Code)
	assert.NotEmpty(t, body.Results[1].Error)
	assert.NotEmpty(t, body.Results[2].Code)
}

func TestDeleteLinkEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := shorten(t, router, entity.ShortenRequest{URL: "https://example.com/gone"})

	w := doJSON(t, router, http.MethodDelete, "/api/links/"+resp.Link.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/"+resp.Link.ShortCode, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/links/%s/stats", resp.Link.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := shorten(t, router, entity.ShortenRequest{URL: "https://example.com/stats"})

	w := doJSON(t, router, http.MethodGet, "/api/analytics/"+resp.Link.ShortCode, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var analytics entity.Analytics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analytics))
	assert.Equal(t, resp.Link.ShortCode, analytics.ShortCode)
	assert.Zero(t, analytics.TotalClicks)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
