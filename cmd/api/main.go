// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carterperez-dev/yamdb/internal/admin"
	"github.com/carterperez-dev/yamdb/internal/auth"
	"github.com/carterperez-dev/yamdb/internal/catalog"
	"github.com/carterperez-dev/yamdb/internal/config"
	"github.com/carterperez-dev/yamdb/internal/core"
	"github.com/carterperez-dev/yamdb/internal/health"
	"github.com/carterperez-dev/yamdb/internal/middleware"
	"github.com/carterperez-dev/yamdb/internal/notify"
	"github.com/carterperez-dev/yamdb/internal/review"
	"github.com/carterperez-dev/yamdb/internal/server"
	"github.com/carterperez-dev/yamdb/internal/user"
	"github.com/carterperez-dev/yamdb/migrations"
)

const drainDelay = 5 * time.Second

type options struct {
	configPath     string
	migrateOnly    bool
	generateKeys   bool
	superuser      string
	superuserEmail string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	flag.BoolVar(&opts.migrateOnly, "migrate", false, "apply database migrations and exit")
	flag.BoolVar(&opts.generateKeys, "generate-keys", false, "write a new ES256 key pair and exit")
	flag.StringVar(&opts.superuser, "create-superuser", "", "create a superuser with this username and exit")
	flag.StringVar(&opts.superuserEmail, "email", "", "email for -create-superuser")
	flag.Parse()

	if err := run(opts); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(opts options) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	if opts.generateKeys {
		if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
			return err
		}
		logger.Info("key pair written",
			"private_key", cfg.JWT.PrivateKeyPath,
			"public_key", cfg.JWT.PublicKeyPath,
		)
		return nil
	}

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if opts.migrateOnly || cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, db.DB.DB); err != nil {
			return err
		}
		logger.Info("migrations applied")
		if opts.migrateOnly {
			return nil
		}
	}

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)

	if opts.superuser != "" {
		return createSuperuser(ctx, logger, userSvc, opts)
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}()
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	codes, err := auth.NewCodeIssuer(cfg.Auth)
	if err != nil {
		return err
	}

	sender, err := notify.New(cfg.Mail, logger)
	if err != nil {
		return err
	}
	logger.Info("mail sender configured", "backend", cfg.Mail.Backend)

	authSvc := auth.NewService(auth.ServiceConfig{
		Users:   userSvc,
		Codes:   codes,
		JWT:     jwtManager,
		Revoker: redis,
		Sender:  sender,
		Mail:    cfg.Mail,
		Logger:  logger,
	})

	categorySvc := catalog.NewTermService(
		catalog.Categories,
		catalog.NewTermRepository(db.DB, catalog.Categories),
	)
	genreSvc := catalog.NewTermService(
		catalog.Genres,
		catalog.NewTermRepository(db.DB, catalog.Genres),
	)
	titleSvc := catalog.NewTitleService(
		catalog.NewTitleRepository(db.DB),
		catalog.NewTermRepository(db.DB, catalog.Categories),
		catalog.NewTermRepository(db.DB, catalog.Genres),
		catalog.NewRatingRepository(db.DB),
	)
	reviewSvc := review.NewService(review.NewRepository(db.DB), titleSvc)

	checks := []health.Check{
		{Name: "database", Checker: db},
		{Name: "redis", Checker: redis},
	}
	if broker, ok := sender.(health.Checker); ok {
		checks = append(checks, health.Check{Name: "mail_broker", Checker: broker})
	}
	healthHandler := health.NewHandler(checks...)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Users:      userSvc,
		Titles:     titleSvc,
		Reviews:    reviewSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	mountRoutes(srv.Router(), routeDeps{
		Config:        cfg,
		Logger:        logger,
		Redis:         redis.Client,
		Health:        healthHandler,
		JWKS:          jwtManager.GetJWKSHandler(),
		Authenticator: middleware.Authenticator(authSvc, userSvc),
		OptionalAuth:  middleware.OptionalAuth(authSvc, userSvc),
		Auth:          auth.NewHandler(authSvc),
		Users:         user.NewHandler(userSvc),
		Catalog:       catalog.NewHandler(categorySvc, genreSvc, titleSvc),
		Reviews:       review.NewHandler(reviewSvc),
		Admin:         adminHandler,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

// createSuperuser bootstraps the first administrator. The superuser signs
// in through the normal confirmation-code flow.
func createSuperuser(
	ctx context.Context,
	logger *slog.Logger,
	users *user.Service,
	opts options,
) error {
	if opts.superuserEmail == "" {
		return errors.New("-email is required with -create-superuser")
	}

	u, err := users.CreateSuperuser(ctx, opts.superuser, opts.superuserEmail)
	if err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}

	logger.Info("superuser created", "username", u.Username, "id", u.ID)
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
