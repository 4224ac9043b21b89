// Package main is the entrypoint for the CampusJobs API server.
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

	"github.com/campusjobs/campusjobs/internal/auth"
	"github.com/campusjobs/campusjobs/internal/cache"
	"github.com/campusjobs/campusjobs/internal/config"
	"github.com/campusjobs/campusjobs/internal/handler"
	"github.com/campusjobs/campusjobs/internal/metrics"
	"github.com/campusjobs/campusjobs/internal/middleware"
	"github.com/campusjobs/campusjobs/internal/model"
	"github.com/campusjobs/campusjobs/internal/repository"
	"github.com/campusjobs/campusjobs/internal/server"
	"github.com/campusjobs/campusjobs/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	recorder := metrics.NewInMemory()

	// Identity provider
	keys := auth.NewKeySet(auth.KeySetConfig{
		URL:             cfg.AuthJWKSURL,
		RefreshInterval: cfg.AuthJWKSRefreshInterval,
		TTL:             cfg.AuthJWKSCacheTTL,
		Logger:          logger,
	})
	verifier := auth.NewVerifier(keys, auth.VerifierConfig{
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
		Leeway:   cfg.AuthClockSkew,
	})
	resolver := auth.NewResolver(verifier, cacheClient, recorder, logger)

	// Initialize services
	userService := service.NewUserService(repo, cacheClient, cacheClient, recorder, logger)
	jobService := service.NewJobService(repo, cacheClient, cfg.JobCacheTTL, recorder, logger)
	applicationService := service.NewApplicationService(repo, cacheClient, recorder, logger)

	r := setupRouter(routes{
		base:         handler.New(),
		health:       handler.NewHealthHandler(repo, cacheClient, logger),
		metrics:      handler.NewMetricsHandler(recorder),
		users:        handler.NewUserHandler(userService, logger),
		jobs:         handler.NewJobHandler(jobService, logger),
		applications: handler.NewApplicationHandler(applicationService, logger),
		resolver:     resolver,
		roles:        userService,
		limiter:      cacheClient,
	}, cfg, logger)

	// Create and run server
	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first so it closes last.
	srv.OnShutdown("database", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"jwks_url", redactURL(cfg.AuthJWKSURL),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With(slog.String("service", "campusjobs-api"))
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// routes bundles the handlers and collaborators the router mounts.
type routes struct {
	base         *handler.Handler
	health       *handler.HealthHandler
	metrics      *handler.MetricsHandler
	users        *handler.UserHandler
	jobs         *handler.JobHandler
	applications *handler.ApplicationHandler

	resolver middleware.IdentityResolver
	roles    middleware.RoleResolver
	limiter  middleware.RateLimiter
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(rt routes, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health endpoints (no auth required)
	r.Get("/healthz", rt.health.Healthz)
	r.Get("/readyz", rt.health.Readyz)
	r.Get("/metrics", rt.metrics.Metrics)

	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Resolver: rt.resolver,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:    logger,
		Limiter:   rt.limiter,
		Enabled:   cfg.RateLimitEnabled,
		UserRPM:   cfg.RateLimitUserRPM,
		UserBurst: cfg.RateLimitUserBurst,
		IPRPS:     cfg.RateLimitIPRPS,
		IPBurst:   cfg.RateLimitIPBurst,
	}

	roleCfg := middleware.RoleConfig{
		Logger: logger,
		Roles:  rt.roles,
	}
	company := middleware.RequireRole(roleCfg, model.RoleCompany)
	student := middleware.RequireRole(roleCfg, model.RoleStudent)

	// Public job board
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Get("/jobs", rt.jobs.List)
		r.Get("/jobs/{id}", rt.jobs.Get)
		r.Get("/jobs/company/{companyId}", rt.jobs.ListByCompany)
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(authCfg))
		r.Use(middleware.RateLimitUser(rateLimitCfg))

		r.Post("/auth/register", rt.users.Register)
		r.Get("/auth/me", rt.users.Me)

		r.Route("/users/profile", func(r chi.Router) {
			r.Get("/", rt.users.Profile)
			r.Patch("/student", rt.users.UpdateStudentProfile)
			r.Patch("/company", rt.users.UpdateCompanyProfile)
		})

		// Company-only
		r.Group(func(r chi.Router) {
			r.Use(company)

			r.Get("/jobs/company/my-jobs", rt.jobs.ListMine)
			r.Post("/jobs", rt.jobs.Create)
			r.Patch("/jobs/{id}", rt.jobs.Update)
			r.Delete("/jobs/{id}", rt.jobs.Delete)

			r.Get("/applications/received", rt.applications.ListReceived)
			r.Get("/applications/job/{jobId}", rt.applications.ListForJob)
			r.Patch("/applications/{id}/status", rt.applications.UpdateStatus)
		})

		// Student-only
		r.Group(func(r chi.Router) {
			r.Use(student)

			r.Get("/applications/my", rt.applications.ListMine)
			r.Post("/applications", rt.applications.Create)
		})
	})

	// 404 and 405 handlers
	r.NotFound(rt.base.NotFound)
	r.MethodNotAllowed(rt.base.MethodNotAllowed)

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
