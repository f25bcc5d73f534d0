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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/angelamos/scoreshop/internal/auth"
	"github.com/angelamos/scoreshop/internal/bundle"
	"github.com/angelamos/scoreshop/internal/checkout"
	"github.com/angelamos/scoreshop/internal/config"
	"github.com/angelamos/scoreshop/internal/core"
	"github.com/angelamos/scoreshop/internal/dev"
	"github.com/angelamos/scoreshop/internal/download"
	"github.com/angelamos/scoreshop/internal/entitlement"
	"github.com/angelamos/scoreshop/internal/health"
	"github.com/angelamos/scoreshop/internal/middleware"
	"github.com/angelamos/scoreshop/internal/server"
	"github.com/angelamos/scoreshop/internal/storage"
	"github.com/angelamos/scoreshop/internal/user"
	"github.com/angelamos/scoreshop/internal/webhook"
)

const (
	drainDelay   = 5 * time.Second
	webhookRoute = "/stripe/webhook"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	runMigrations := flag.Bool("migrate", false, "run schema migrations and continue")
	flag.Parse()

	if err := run(*configPath, *runMigrations); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string, runMigrations bool) error {
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

	if runMigrations {
		if err := core.RunMigrations(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("schema migrations applied")
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

	store, err := storage.NewR2Store(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("object store configured",
		"bucket", cfg.Storage.Bucket,
	)

	stripeClient := &client.API{}
	stripeClient.Init(cfg.Stripe.SecretKey, nil)

	verifier := auth.NewVerifier(cfg.Auth)
	logger.Info("identity verifier initialized",
		"issuer", cfg.Auth.IssuerURL,
		"jwks_cache_ttl", cfg.Auth.JWKSCacheTTL.String(),
	)

	userRepo := user.NewRepository(db.DB)

	bundleRepo := bundle.NewRepository(db.DB)
	bundleSvc := bundle.NewService(bundleRepo, store)
	bundleHandler := bundle.NewHandler(bundleSvc)

	entitlementRepo := entitlement.NewRepository(db.DB)
	entitlementSvc := entitlement.NewService(entitlementRepo)
	entitlementHandler := entitlement.NewHandler(entitlementSvc)

	checkoutSvc := checkout.NewService(
		stripeClient.CheckoutSessions,
		cfg.Site.BaseURL,
	)
	checkoutHandler := checkout.NewHandler(checkoutSvc, bundleSvc, userRepo)

	webhookProcessor := webhook.NewProcessor(
		cfg.Stripe.WebhookSecret,
		webhook.NewRecorder(db.DB),
	)
	webhookHandler := webhook.NewHandler(webhookProcessor)

	downloadSvc := download.NewService(
		entitlementSvc,
		bundleSvc,
		store,
		cfg.Storage.DownloadTTL,
	)
	downloadHandler := download.NewHandler(downloadSvc)

	devHandler := dev.NewHandler(
		!cfg.IsProduction(),
		bundleSvc,
		userRepo,
		entitlementSvc,
	)

	healthHandler := health.NewHandler(db, redis)

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
			// Provider retries must never be throttled away.
			BypassFunc: func(r *http.Request) bool {
				return r.URL.Path == webhookRoute
			},
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authenticator := middleware.Authenticator(verifier)

	bundleHandler.RegisterRoutes(router)
	entitlementHandler.RegisterRoutes(router, authenticator)
	checkoutHandler.RegisterRoutes(router, authenticator)
	downloadHandler.RegisterRoutes(router, authenticator)
	webhookHandler.RegisterRoutes(router)
	devHandler.RegisterRoutes(router)

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
