// AngelaMos | 2026
// router.go

package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/yamdb/internal/admin"
	"github.com/carterperez-dev/yamdb/internal/auth"
	"github.com/carterperez-dev/yamdb/internal/catalog"
	"github.com/carterperez-dev/yamdb/internal/config"
	"github.com/carterperez-dev/yamdb/internal/health"
	"github.com/carterperez-dev/yamdb/internal/middleware"
	"github.com/carterperez-dev/yamdb/internal/review"
	"github.com/carterperez-dev/yamdb/internal/user"
)

const (
	metricsNamespace = "yamdb"

	authRequestsPerMinute    = 10
	authBurst                = 5
	accountRequestsPerMinute = 5
	accountBurst             = 3
)

type routeDeps struct {
	Config        *config.Config
	Logger        *slog.Logger
	Redis         *redis.Client
	Health        *health.Handler
	JWKS          http.HandlerFunc
	Authenticator func(http.Handler) http.Handler
	OptionalAuth  func(http.Handler) http.Handler

	Auth    *auth.Handler
	Users   *user.Handler
	Catalog *catalog.Handler
	Reviews *review.Handler
	Admin   *admin.Handler
}

// mountRoutes installs the middleware stack and every route on router.
// chi rejects middleware added after the first route, so all Use calls
// come first.
func mountRoutes(router chi.Router, deps routeDeps) {
	cfg := deps.Config

	var metrics *middleware.Metrics
	if cfg.Metrics.Enabled {
		metrics = middleware.NewMetrics(metricsNamespace)
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(deps.Logger))
	if metrics != nil {
		router.Use(metrics.Handler)
	}
	router.Use(middleware.NewRateLimiter(deps.Redis, middleware.RateLimitConfig{
		Scope: "global",
		Limit: middleware.Window(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		FailOpen: true,
	}).Handler)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	if metrics != nil {
		router.Handle(cfg.Metrics.Path, metrics.Exporter())
	}
	deps.Health.RegisterRoutes(router)
	router.Get("/.well-known/jwks.json", deps.JWKS)

	authByAddress := middleware.NewRateLimiter(deps.Redis, middleware.RateLimitConfig{
		Scope:    "auth",
		Limit:    middleware.PerMinute(authRequestsPerMinute, authBurst),
		KeyFunc:  middleware.KeyByUserAndEndpoint,
		FailOpen: true,
	})
	authByAccount := middleware.NewRateLimiter(deps.Redis, middleware.RateLimitConfig{
		Scope:    "auth-account",
		Limit:    middleware.PerMinute(accountRequestsPerMinute, accountBurst),
		KeyFunc:  middleware.KeyByAccount,
		FailOpen: true,
	})

	router.Route(cfg.Server.APIPrefix, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authByAddress.Handler)
			r.Use(authByAccount.Handler)
			deps.Auth.RegisterRoutes(r, deps.Authenticator)
		})

		deps.Users.RegisterRoutes(r, deps.Authenticator)
		deps.Catalog.RegisterRoutes(r, deps.OptionalAuth)
		deps.Reviews.RegisterRoutes(r, deps.OptionalAuth)
		deps.Admin.RegisterRoutes(r, deps.Authenticator)
	})
}
