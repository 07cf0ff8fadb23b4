package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/aihub/backend/internal/auth"
	"github.com/zfogg/aihub/backend/internal/config"
	"github.com/zfogg/aihub/backend/internal/handlers"
	"github.com/zfogg/aihub/backend/internal/testutil"
)

func newTestRouter(t *testing.T, requests int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := testutil.NewStore(t)
	authService := auth.NewService([]byte("router-secret"), time.Hour, st.Users)
	return NewRouter(Options{
		Config: &config.Config{
			Telemetry: config.TelemetryConfig{ServiceName: "aihub-test"},
			RateLimit: config.RateLimitConfig{Requests: requests, Window: time.Minute},
		},
		Handlers: handlers.NewHandlers(st, authService),
		Tokens:   authService,
	})
}

func serve(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, 100)

	w := serve(r, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(r, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t, 100)
	w := serve(r, "GET", "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t, 100)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/v1/auth/me"},
		{"POST", "/api/v1/tools"},
		{"GET", "/api/v1/recommendations"},
		{"GET", "/api/v1/users/me/favorites"},
		{"POST", "/api/v1/logs"},
		{"GET", "/api/v1/permissions"},
	} {
		w := serve(r, route.method, route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter(t, 100)

	for _, path := range []string{"/api/v1/tools", "/api/v1/categories", "/api/v1/tags", "/api/v1/tags/popular", "/api/v1/configs"} {
		w := serve(r, "GET", path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRegisterThenMe(t *testing.T) {
	r := newTestRouter(t, 100)

	w := serve(r, "POST", "/api/v1/auth/register", gin.H{
		"username": "router",
		"email":    "router@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp auth.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"router"`)
}

func TestRateLimitHeaders(t *testing.T) {
	r := newTestRouter(t, 2)

	w := serve(r, "GET", "/api/v1/tools", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	serve(r, "GET", "/api/v1/tools", nil)
	w = serve(r, "GET", "/api/v1/tools", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	w = serve(r, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code, "operational routes are not limited")
}
