package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/sentrysite/internal/adapter/driven/backend"
	"github.com/ericfisherdev/sentrysite/internal/adapter/driven/recaptcha"
	sqliteadapter "github.com/ericfisherdev/sentrysite/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/sentrysite/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/sentrysite/internal/adapter/driving/web"
	"github.com/ericfisherdev/sentrysite/internal/application"
	"github.com/ericfisherdev/sentrysite/internal/config"
)

const (
	sweepInterval = 10 * time.Minute
	// viewIdle is how long a session's cached list pages outlive its last visit.
	viewIdle = 30 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on a missing secret key).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"api_url", cfg.APIURL,
		"stats_interval", cfg.StatsInterval,
		"verify_tokens", cfg.VerifyTokens,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	kvStore := sqliteadapter.NewKVRepo(db, cfg.SecretKey)
	statsStore := sqliteadapter.NewStatsRepo(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	apiClient := backend.NewClient(cfg.APIURL, cfg.APITimeout,
		backend.WithMetrics(backend.NewMetrics(registry)),
		backend.WithLogger(slog.Default()),
	)
	captcha := recaptcha.NewVerifier(cfg.RecaptchaSecret, "", cfg.APITimeout, slog.Default())
	if !captcha.Enabled() {
		slog.Info("no recaptcha secret configured, contact form captcha disabled")
	}

	// 6. Create application services.
	tokenStores := application.NewTokenStores(kvStore, slog.Default())
	guard := application.NewAuthGuard(apiClient, cfg.VerifyTokens, slog.Default())
	contactSvc := application.NewContactService(apiClient, captcha, slog.Default())

	// 7. Start the visitor stats loop.
	visitorSvc := application.NewVisitorService(apiClient, statsStore, cfg.StatsInterval, slog.Default())
	go visitorSvc.Start(ctx)

	limiter := httphandler.NewRateLimiter(cfg.ContactRatePerMinute, cfg.TrustedProxies)

	// 7.5. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(visitorSvc, contactSvc, limiter, registry, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	// 7.6. Create web handler and register site routes.
	sessions := webhandler.NewSessions(cfg.SessionKey, cfg.CookieSecure, slog.Default())
	webHandler := webhandler.NewHandler(apiClient, tokenStores, guard, visitorSvc, contactSvc, sessions,
		webhandler.Options{
			BlogsPerPage: cfg.BlogsPerPage,
			AdminPerPage: cfg.AdminPerPage,
			CookieSecure: cfg.CookieSecure,
			Proxies:      cfg.TrustedProxies,
		},
		slog.Default(),
	)
	webhandler.RegisterRoutes(mux, webHandler, limiter)

	// Drop idle limiter buckets, cached list views and expired session namespaces.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Sweep()
				webHandler.SweepViews(viewIdle)
				n, err := kvStore.PruneIdle(ctx, webhandler.SessionMaxAge)
				if err != nil {
					slog.Error("prune idle sessions", "error", err)
				} else if n > 0 {
					slog.Info("pruned idle session entries", "count", n)
				}
			}
		}
	}()

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.APITimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 8. Log startup complete.
	slog.Info("sentrysite started",
		"listen_addr", cfg.ListenAddr,
		"api_url", cfg.APIURL,
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	// 11. Log shutdown complete.
	slog.Info("shutdown complete")
	return nil
}
