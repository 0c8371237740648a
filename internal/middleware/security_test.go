package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framecheck/internal/models"
	"framecheck/internal/services"
	"framecheck/internal/util"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"request_id": util.RequestID(c.Request.Context()),
			"client":     c.GetString(ClientNameKey),
		})
	})
	return r
}

func get(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimitMiddleware(NewRateLimiter(1, 2)))

	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)

	w := get(r, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimiterCleanupStale(t *testing.T) {
	rl := NewRateLimiter(5, 10)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.GetLimiter("10.0.0.1")
	now = now.Add(2 * time.Hour)
	rl.GetLimiter("10.0.0.2")

	assert.Equal(t, 1, rl.CleanupStale(time.Hour))
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "10.0.0.2")
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newRouter(RequestIDMiddleware())

	w := get(r, "/ping", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "abc-123", body["request_id"])

	w = get(r, "/ping", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := get(r, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error)
	assert.Equal(t, "boom", body.Detail)
}

func TestCORSMiddleware(t *testing.T) {
	r := newRouter(CORSMiddleware([]string{"https://shop.example", "localhost:3000"}))

	w := get(r, "/ping", map[string]string{"Origin": "https://shop.example/"})
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(r, "/ping", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(r, "/ping", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestIPWhitelist(t *testing.T) {
	wl := NewIPWhitelist([]string{"10.0.0.5", " "})
	assert.True(t, wl.IsAllowed("127.0.0.1"))
	assert.True(t, wl.IsAllowed("10.0.0.5"))
	assert.True(t, wl.IsAllowed("10.0.0.5:4000"))
	assert.False(t, wl.IsAllowed("10.0.0.6"))

	assert.True(t, NewIPWhitelist(nil).IsAllowed("8.8.8.8"))
}

func TestAuthMiddleware(t *testing.T) {
	auth := services.NewAuthService("0123456789abcdef0123456789abcdef-test", time.Hour)
	token, _, err := auth.GenerateToken("price-scraper")
	require.NoError(t, err)

	r := newRouter(AuthMiddleware(auth, NewSecurityLogger()))

	assert.Equal(t, http.StatusUnauthorized, get(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/ping", map[string]string{"Authorization": "Bearer nonsense"}).Code)

	w := get(r, "/ping", map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "price-scraper", body["client"])

	assert.Equal(t, http.StatusOK, get(r, "/ping?token="+token, nil).Code)
}

func TestInputValidator(t *testing.T) {
	iv := NewInputValidator()
	assert.True(t, iv.ValidateClientName("price-scraper_01.prod"))
	assert.False(t, iv.ValidateClientName(""))
	assert.False(t, iv.ValidateClientName("bad name"))
	assert.False(t, iv.ValidateToken("a.b"))
	assert.True(t, iv.ValidateToken("aaaaaaaaaa.bbbbbbbbbb.cccc"))
}

func TestSecurityHeaders(t *testing.T) {
	w := get(newRouter(SecurityHeadersMiddleware()), "/ping", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
