// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/roadassist-api/internal/account"
	"github.com/carterperez-dev/roadassist-api/internal/admin"
	"github.com/carterperez-dev/roadassist-api/internal/alerts"
	"github.com/carterperez-dev/roadassist-api/internal/assist"
	"github.com/carterperez-dev/roadassist-api/internal/auth"
	"github.com/carterperez-dev/roadassist-api/internal/config"
	"github.com/carterperez-dev/roadassist-api/internal/core"
	"github.com/carterperez-dev/roadassist-api/internal/export"
	"github.com/carterperez-dev/roadassist-api/internal/health"
	"github.com/carterperez-dev/roadassist-api/internal/investigate"
	"github.com/carterperez-dev/roadassist-api/internal/middleware"
	"github.com/carterperez-dev/roadassist-api/internal/rbac"
	"github.com/carterperez-dev/roadassist-api/internal/server"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

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
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
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

	// The account directory serves reads from memory; load it once at
	// startup, then every confirmed mutation writes through.
	accountRepo := account.NewRepository(db.DB)
	directory, err := accountRepo.LoadAll(ctx)
	if err != nil {
		return err
	}
	store := account.NewStore(directory)
	logger.Info("account directory loaded", "accounts", store.Len())

	accountSvc := account.NewService(store, accountRepo)
	accountHandler := account.NewHandler(accountSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, jwtManager, accountSvc, redis.Client)
	authHandler := auth.NewHandler(authSvc)
	accountSvc.SetPasswordRotator(authSvc)

	alertFeed := alerts.NewFeed(redis.Client, cfg.Alerts, logger)
	alertHandler := alerts.NewHandler(alertFeed)

	assistRepo := assist.NewRepository(db.DB)
	assistSvc := assist.NewService(assistRepo, alertFeed)
	assistHandler := assist.NewHandler(assistSvc)

	healthHandler := health.NewHandler(db, redis)

	var exportSink *export.Sink
	if cfg.ObjectStore.Enabled {
		exportSink, err = export.NewSink(cfg.ObjectStore)
		if err != nil {
			return err
		}
		if err := exportSink.EnsureBucket(ctx); err != nil {
			return err
		}
		healthHandler.AddCheck("object_store", exportSink)
		logger.Info("object store connected",
			"endpoint", cfg.ObjectStore.Endpoint,
			"bucket", cfg.ObjectStore.ExportBucket,
		)
	}
	exportHandler := export.NewHandler(accountSvc, exportSink)

	investigateClient := investigate.NewClient(cfg.Investigate)
	investigateHandler := investigate.NewHandler(investigateClient)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Directory:  store,
		Requests:   assistSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	// Authenticated routes get a second, per-operator budget on top of the
	// global IP limit; it runs inside the authenticator so the role is known.
	roleLimiter := middleware.RoleRateLimiter(
		redis.Client,
		middleware.DefaultRoleBudgets,
	)
	verify := middleware.Authenticator(jwtManager, authSvc)
	authenticator := func(next http.Handler) http.Handler {
		return verify(roleLimiter(next))
	}
	superAdminOnly := middleware.RequireRole(rbac.RoleSuperAdmin)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		accountHandler.RegisterRoutes(r, authenticator)
		assistHandler.RegisterRoutes(r, authenticator)
		alertHandler.RegisterRoutes(r, authenticator)
		exportHandler.RegisterRoutes(r, authenticator)
		investigateHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator, superAdminOnly)
	})

	go tokenCleanupLoop(ctx, authSvc, logger)

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

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func tokenCleanupLoop(
	ctx context.Context,
	authSvc *auth.Service,
	logger *slog.Logger,
) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := authSvc.CleanupExpiredTokens(ctx)
			if err != nil {
				logger.Warn("refresh token cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("expired refresh tokens removed", "count", removed)
			}
		}
	}
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
