// AngelaMos | 2026
// router_test.go

package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/yamdb/internal/admin"
	"github.com/carterperez-dev/yamdb/internal/auth"
	"github.com/carterperez-dev/yamdb/internal/catalog"
	"github.com/carterperez-dev/yamdb/internal/config"
	"github.com/carterperez-dev/yamdb/internal/health"
	"github.com/carterperez-dev/yamdb/internal/review"
	"github.com/carterperez-dev/yamdb/internal/server"
	"github.com/carterperez-dev/yamdb/internal/user"
)

func testConfig(metrics bool) *config.Config {
	return &config.Config{
		App:    config.AppConfig{Environment: "development"},
		Server: config.ServerConfig{APIPrefix: "/api/v1", ShutdownTimeout: time.Second},
		RateLimit: config.RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
			Burst:    20,
		},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		Metrics: config.MetricsConfig{Enabled: metrics, Path: "/metrics"},
	}
}

func passthrough(next http.Handler) http.Handler {
	return next
}

// buildRouter assembles the production stack with handlers whose services
// are never reached by the requests below.
func buildRouter(t *testing.T, cfg *config.Config) *chi.Mux {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	healthHandler := health.NewHandler()

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	require.NotPanics(t, func() {
		mountRoutes(srv.Router(), routeDeps{
			Config: cfg,
			Logger: logger,
			Redis:  rdb,
			Health: healthHandler,
			JWKS: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			Authenticator: passthrough,
			OptionalAuth:  passthrough,
			Auth:          auth.NewHandler(nil),
			Users:         user.NewHandler(nil),
			Catalog:       catalog.NewHandler(nil, nil, nil),
			Reviews:       review.NewHandler(nil),
			Admin:         admin.NewHandler(admin.HandlerConfig{}),
		})
	})

	return srv.Router()
}

func get(router http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestMountRoutesAppliesMiddlewareStack(t *testing.T) {
	router := buildRouter(t, testConfig(true))

	rec := get(router, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))

	rec = get(router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "yamdb_http_requests_total")

	assert.Equal(t, http.StatusOK, get(router, http.MethodGet, "/.well-known/jwks.json").Code)
}

func TestMountRoutesWithoutMetrics(t *testing.T) {
	router := buildRouter(t, testConfig(false))

	assert.Equal(t, http.StatusNotFound, get(router, http.MethodGet, "/metrics").Code)
	assert.Equal(t, http.StatusOK, get(router, http.MethodGet, "/livez").Code)
}

func TestMountRoutesRegistersAPI(t *testing.T) {
	router := buildRouter(t, testConfig(true))

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/auth/signup"},
		{http.MethodPost, "/api/v1/auth/token"},
		{http.MethodPut, "/api/v1/titles/1"},
		{http.MethodPatch, "/api/v1/titles/1"},
		{http.MethodPut, "/api/v1/titles/1/reviews/2"},
		{http.MethodPatch, "/api/v1/titles/1/reviews/2"},
		{http.MethodPut, "/api/v1/titles/1/reviews/2/comments/3"},
		{http.MethodPut, "/api/v1/users/bob"},
		{http.MethodPut, "/api/v1/users/me"},
		{http.MethodDelete, "/api/v1/genres/drama"},
		{http.MethodGet, "/api/v1/admin/stats"},
	}

	for _, rt := range routes {
		rctx := chi.NewRouteContext()
		assert.True(t, router.Match(rctx, rt.method, rt.path), "%s %s", rt.method, rt.path)
	}
}

func TestMountRoutesGuardsWrites(t *testing.T) {
	router := buildRouter(t, testConfig(true))

	assert.Equal(t, http.StatusUnauthorized, get(router, http.MethodPost, "/api/v1/titles").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, http.MethodPut, "/api/v1/titles/1").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, http.MethodDelete, "/api/v1/titles/1/reviews/2").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, http.MethodGet, "/api/v1/admin/stats").Code)
}
