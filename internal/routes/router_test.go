package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framecheck/internal/middleware"
	"framecheck/internal/models"
	"framecheck/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testDeps(t *testing.T) Dependencies {
	t.Helper()
	telemetry := services.NewTelemetry()
	history := services.NewEstimationHistory(10)
	catalog := services.NewCatalog([]models.CatalogGame{{
		GameRequirement: models.GameRequirement{Name: "Fortnite", RecommendedRAM: 16, RecommendedGPU: "GTX 1060"},
		FpsProfiles: map[string]models.FpsTiers{
			"1080p": {Low: 144, Medium: 110, High: 80},
			"1440p": {Low: 110, Medium: 80, High: 60},
			"4k":    {Low: 60, Medium: 45, High: 35},
		},
	}})
	return Dependencies{
		Estimator: services.NewEstimationService(
			services.NewMemoryCache(time.Hour, services.WithCacheTelemetry(telemetry)),
			services.WithTelemetry(telemetry),
			services.WithObservers(history),
		),
		Scorer:            services.NewCompatibilityScorer(telemetry),
		Catalog:           catalog,
		History:           history,
		Telemetry:         telemetry,
		Limiter:           middleware.NewRateLimiter(100, 100),
		SecurityLogger:    middleware.NewSecurityLogger(),
		MetricsAllowedIPs: []string{"10.0.0.1"},
		StartTime:         time.Now(),
	}
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func estimateRequest() *http.Request {
	body := `{"system":{"gpu":"RTX 4090"},"game":{"name":"Fortnite"},"resolution":"1080p","quality":"high"}`
	req := httptest.NewRequest(http.MethodPost, "/api/fps/estimate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestEstimateThroughRouter(t *testing.T) {
	deps := testDeps(t)
	r := NewRouter(deps)

	w := do(r, estimateRequest())
	require.Equal(t, http.StatusOK, w.Code)
	// catalog baseline 80, RTX 4090 is x1.8
	assert.JSONEq(t, `{"fps":144,"estimated":true}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	assert.Equal(t, 1, deps.History.Len())
}

func TestAuthProtectsAPI(t *testing.T) {
	deps := testDeps(t)
	deps.Auth = services.NewAuthService("router-test-secret-0123456789abcdef", time.Hour)
	r := NewRouter(deps)

	w := do(r, estimateRequest())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := deps.Auth.GenerateToken("listing-site")
	require.NoError(t, err)
	req := estimateRequest()
	req.Header.Set("Authorization", "Bearer "+token)
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// health stays open
	w = do(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogCacheHeaders(t *testing.T) {
	deps := testDeps(t)
	deps.CatalogCacheAge = 10 * time.Minute
	r := NewRouter(deps)

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/games", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cc := w.Header().Get("Cache-Control")
	assert.Contains(t, cc, "public")
	assert.Contains(t, cc, "max-age=600")

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/games/fortnite", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCompatibilityThroughRouter(t *testing.T) {
	r := NewRouter(testDeps(t))

	body := `{"system":{"gpu":"RTX 3060","ram":"16GB"},"gameNames":["Fortnite"],"resolution":"1080p","quality":"high"}`
	req := httptest.NewRequest(http.MethodPost, "/api/compatibility", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := do(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isCompatible":true,"score":100,"issues":[],"recommendations":[]}`, w.Body.String())
}

func TestMetricsWhitelist(t *testing.T) {
	deps := testDeps(t)
	r := NewRouter(deps)
	do(r, estimateRequest())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "192.0.2.10:40000"
	w := do(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "10.0.0.1:40000"
	w = do(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `framecheck_estimation_results_total{source="estimated"} 1`)
}

func TestMetricsAbsentWithoutTelemetry(t *testing.T) {
	deps := testDeps(t)
	deps.Telemetry = nil
	r := NewRouter(deps)

	w := do(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGzipResponses(t *testing.T) {
	r := NewRouter(testDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/api/games", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := do(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}

func TestRateLimitThroughRouter(t *testing.T) {
	deps := testDeps(t)
	deps.Limiter = middleware.NewRateLimiter(1, 1)
	r := NewRouter(deps)

	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/api/stats", nil)).Code)
	w := do(r, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
