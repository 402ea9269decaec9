package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/rencard-user/internal/infra/config"
	apperrors "github.com/yanqian/rencard-user/pkg/errors"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func TestIPRateLimiter_RefillsOverTime(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2}, clock.Now)

	_, ok := limiter.take("10.0.0.1")
	require.True(t, ok)
	_, ok = limiter.take("10.0.0.1")
	require.True(t, ok)

	wait, ok := limiter.take("10.0.0.1")
	require.False(t, ok)
	require.Equal(t, time.Second, wait)

	_, ok = limiter.take("10.0.0.2")
	require.True(t, ok, "buckets are per client")

	clock.now = clock.now.Add(time.Second)
	_, ok = limiter.take("10.0.0.1")
	require.True(t, ok)
}

func TestIPRateLimiter_SweepsIdleClients(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 1}, clock.Now)

	limiter.take("10.0.0.1")
	clock.now = clock.now.Add(visitorTTL + time.Minute)
	limiter.take("10.0.0.2")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	require.NotContains(t, limiter.buckets, "10.0.0.1")
	require.Contains(t, limiter.buckets, "10.0.0.2")
}

func TestRateLimitMiddleware_SetsRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(errorHandlingMiddleware(newTestLogger()))
	limited := rateLimitMiddleware(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}, newTestLogger())
	router.POST("/limited", limited, func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/limited", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/limited", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(corsMiddleware([]string{"https://app.rencard.example/"}))
	router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://app.rencard.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://app.rencard.example", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestFailure_MapsStorageErrorsToServiceUnavailable(t *testing.T) {
	err := failure("login_failed", "login failed", apperrors.Wrap(apperrors.CodeStorage, "valkey down", nil))
	require.Equal(t, http.StatusServiceUnavailable, err.Status)
	require.Equal(t, "storage_unavailable", err.Code)

	err = failure("login_failed", "login failed", apperrors.Wrap(apperrors.CodeAuth, "boom", nil))
	require.Equal(t, http.StatusInternalServerError, err.Status)
	require.Equal(t, "login_failed", err.Code)
}

func TestFailure_FindsStorageCodeUnderDomainCode(t *testing.T) {
	storage := apperrors.Wrap(apperrors.CodeStorage, "query about", errors.New("dial tcp: connection refused"))
	nested := apperrors.Wrap(apperrors.CodeProfile, "failed to load profile", fmt.Errorf("section: %w", storage))

	err := failure("profile_failed", "failed to load profile", nested)
	require.Equal(t, http.StatusServiceUnavailable, err.Status)
	require.Equal(t, "storage_unavailable", err.Code)
}
