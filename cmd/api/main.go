// Package main is the entrypoint for the Hookstash API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hookstash/hookstash/internal/auth"
	"github.com/hookstash/hookstash/internal/cache"
	"github.com/hookstash/hookstash/internal/config"
	"github.com/hookstash/hookstash/internal/handler"
	"github.com/hookstash/hookstash/internal/metrics"
	"github.com/hookstash/hookstash/internal/middleware"
	"github.com/hookstash/hookstash/internal/repository"
	"github.com/hookstash/hookstash/internal/server"
	"github.com/hookstash/hookstash/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	if err := repository.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Error("failed to run migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenExpiresIn, cfg.RefreshTokenExpiresIn)

	metricsRecorder := metrics.NewInMemory()
	authService := service.NewAuthService(repo, repo, tokenManager, logger, metricsRecorder)
	webhookService := service.NewWebhookService(repo, logger, metricsRecorder)

	// Sweep refresh tokens whose expiry already passed. Rotation removes
	// them one by one; this catches tokens that were simply abandoned.
	if removed, err := authService.CleanupExpiredTokens(ctx); err != nil {
		logger.Warn("expired token sweep failed", slog.String("error", err.Error()))
	} else if removed > 0 {
		logger.Info("expired refresh tokens removed", slog.Int64("count", removed))
	}

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	authHandler := handler.NewAuthHandler(authService, logger)
	webhookHandler := handler.NewWebhookHandler(webhookService, logger)

	r := setupRouter(routerDeps{
		base:     h,
		health:   healthHandler,
		metrics:  metricsHandler,
		auth:     authHandler,
		webhooks: webhookHandler,
		authSvc:  authService,
		cache:    cacheClient,
		cfg:      cfg,
		logger:   logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"api_prefix", cfg.APIPrefix,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	base     *handler.Handler
	health   *handler.HealthHandler
	metrics  *handler.MetricsHandler
	auth     *handler.AuthHandler
	webhooks *handler.WebhookHandler
	authSvc  *service.AuthService
	cache    *cache.Cache
	cfg      *config.Config
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	cfg := deps.cfg

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
	}))

	// Probe endpoints live outside the API prefix
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metricsz", deps.metrics.Metrics)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	if methods := cfg.GetCORSMethods(); len(methods) > 0 {
		corsCfg.AllowedMethods = methods
	}
	if headers := cfg.GetCORSAllowedHeaders(); len(headers) > 0 {
		corsCfg.AllowedHeaders = headers
	}
	if exposed := cfg.GetCORSExposedHeaders(); len(exposed) > 0 {
		corsCfg.ExposedHeaders = exposed
	}
	corsCfg.AllowCredentials = cfg.CORSCredentials
	corsCfg.MaxAge = cfg.CORSMaxAge

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  deps.logger,
		Limiter: deps.cache,
		Enabled: cfg.ThrottleEnabled,
		Limit:   cfg.ThrottleLimit,
		Window:  cfg.ThrottleWindow,
	}

	r.Route(cfg.APIPrefix, func(r chi.Router) {
		r.Use(middleware.CORS(corsCfg))
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.auth.Register)
			r.Post("/login", deps.auth.Login)
			r.Post("/refresh", deps.auth.Refresh)

			r.With(middleware.Auth(deps.authSvc, deps.logger)).Post("/logout", deps.auth.Logout)
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Use(middleware.Auth(deps.authSvc, deps.logger))

			r.Post("/", deps.webhooks.Create)
			r.Get("/", deps.webhooks.List)
			r.Get("/{id}", deps.webhooks.Get)
			r.Delete("/{id}", deps.webhooks.Delete)
		})
	})

	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
