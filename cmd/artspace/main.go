// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/olegiv/artspace-console/internal/apiclient"
	"github.com/olegiv/artspace-console/internal/config"
	"github.com/olegiv/artspace-console/internal/handler"
	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/logging"
	"github.com/olegiv/artspace-console/internal/middleware"
	"github.com/olegiv/artspace-console/internal/render"
	"github.com/olegiv/artspace-console/internal/scheduler"
	"github.com/olegiv/artspace-console/internal/search"
	"github.com/olegiv/artspace-console/internal/service"
	"github.com/olegiv/artspace-console/internal/session"
	"github.com/olegiv/artspace-console/internal/store"
	"github.com/olegiv/artspace-console/internal/version"
	"github.com/olegiv/artspace-console/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// requestTimeout bounds every request except the session event stream.
const requestTimeout = 30 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Artspace console - web front end for the Artspace gallery API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ARTSPACE_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ARTSPACE_API_URL          Gallery API origin (default: http://localhost:8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ARTSPACE_API_PREFIX       Path prefix of the API (default: none)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ARTSPACE_DB_PATH          SQLite database path (default: ./data/artspace.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ARTSPACE_SERVER_PORT      Server port (default: 5000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ARTSPACE_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ARTSPACE_REDIS_URL        Redis URL for visitor sessions (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Optional Redis for console sessions
	var redisClient *redis.Client
	if cfg.UseRedisSessions() {
		redisClient, err = newRedisClient(cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, sessions stay in sqlite", "error", err)
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
			slog.Info("session store initialized", "backend", "redis")
		}
	}

	sessionManager := session.New(db, session.ManagerOptions{
		Lifetime: cfg.SessionLifetime,
		IsDev:    cfg.IsDevelopment(),
		Redis:    redisClient,
	})

	clientFactory, err := apiclient.NewFactory(apiclient.Config{
		BaseURL: cfg.APIBaseURL(),
		Timeout: cfg.APITimeout,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("creating api client: %w", err)
	}
	slog.Info("gallery api configured", "base_url", cfg.APIBaseURL())

	registry := session.NewRegistry(clientFactory, session.RegistryConfig{
		Logger:  logger,
		IdleTTL: cfg.VisitorIdleTTL,
	})

	debounceCfg := search.DefaultConfig()
	debounceCfg.Interval = cfg.SearchDebounce
	debouncer := search.NewDebouncer(debounceCfg)
	defer debouncer.Stop()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	staticFS, err := web.StaticFiles()
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	eventService := service.NewEventService(db, logger)
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	sched := scheduler.New(logger)
	for _, job := range []scheduler.Job{
		scheduler.SweepVisitorsJob(registry),
		scheduler.PruneEventsJob(eventService, cfg.EventRetentionDays),
		scheduler.LoginProtectionJob(loginProtection),
	} {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("scheduling %s: %w", job.Name, err)
		}
	}
	sched.Start()
	defer sched.Stop()

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr()))

	app := handler.NewRouter(handler.RouterConfig{
		DB:              db,
		Renderer:        renderer,
		SessionManager:  sessionManager,
		Registry:        registry,
		EventService:    eventService,
		LoginProtection: loginProtection,
		Debouncer:       debouncer,
		StaticFS:        staticFS,
		GuardWait:       cfg.GuardWait,
		Version:         versionInfo.Version,
		Logger:          logger,
		Middlewares: []func(http.Handler) http.Handler{
			middleware.RequestPath,
			csrfMiddleware,
		},
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(requestTimeout, handler.RouteSessionEventsPrefix))
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Mount("/", app)

	// Cancelled on shutdown so open session streams end.
	baseCtx, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Zero so the session event stream is not cut off; handlers are
		// bounded by the timeout middleware instead.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "version", versionInfo.Version, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	stopStreams()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newRedisClient(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}
