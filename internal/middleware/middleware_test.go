package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/freight_quoting_app/internal/middleware"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))))
	r.GET("/me", middleware.AuthMiddleware(testSecret), func(c *gin.Context) {
		userID, ok := middleware.GetUserIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, userID)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, "operator-1", time.Hour), http.StatusOK, "operator-1"},
		{"missing header", "", http.StatusUnauthorized, "Authorization header required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Bearer {token}"},
		{"wrong secret", "Bearer " + signToken(t, "other", "operator-1", time.Hour), http.StatusUnauthorized, "Invalid token"},
		{"expired", "Bearer " + signToken(t, testSecret, "operator-1", -time.Minute), http.StatusUnauthorized, "Token has expired"},
		{"no subject", "Bearer " + signToken(t, testSecret, "", time.Hour), http.StatusUnauthorized, "Invalid token claims"},
	}

	router := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestStructuredLoggingMiddleware_RequestID(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewJSONHandler(&buf, nil))))
	r.GET("/ping", func(c *gin.Context) {
		middleware.GetLoggerFromCtx(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, generated)
	assert.Contains(t, buf.String(), generated)
	assert.Contains(t, buf.String(), "inside handler")
	assert.Contains(t, buf.String(), "Request completed")

	const incoming = "9f3a8f5e-4f44-4b1e-9a55-0d8f4a7c2b11"
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get("X-Request-ID"))
}

func TestGetLoggerFromCtx_Fallback(t *testing.T) {
	assert.Equal(t, slog.Default(), middleware.GetLoggerFromCtx(context.Background()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, logger, middleware.GetLoggerFromCtx(middleware.WithLogger(context.Background(), logger)))
}

func rateLimitedRouter(t *testing.T, client *redis.Client) *gin.Engine {
	t.Helper()
	lim, err := middleware.NewRateLimiter("2-M", client)
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.RateLimit(lim))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func hit(r *gin.Engine) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	return w.Code
}

func TestRateLimit_MemoryStore(t *testing.T) {
	r := rateLimitedRouter(t, nil)

	assert.Equal(t, http.StatusNoContent, hit(r))
	assert.Equal(t, http.StatusNoContent, hit(r))
	assert.Equal(t, http.StatusTooManyRequests, hit(r))
}

func TestRateLimit_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	first := rateLimitedRouter(t, client)
	second := rateLimitedRouter(t, client)

	assert.Equal(t, http.StatusNoContent, hit(first))
	assert.Equal(t, http.StatusNoContent, hit(second))
	assert.Equal(t, http.StatusTooManyRequests, hit(first), "counters are shared through redis")
}

func TestNewRateLimiter_InvalidFormat(t *testing.T) {
	_, err := middleware.NewRateLimiter("lots", nil)
	assert.Error(t, err)
}
