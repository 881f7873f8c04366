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

	"github.com/p-n-ai/pai-quiz/internal/document"
	"github.com/p-n-ai/pai-quiz/internal/platform/cache"
	"github.com/p-n-ai/pai-quiz/internal/platform/config"
	"github.com/p-n-ai/pai-quiz/internal/platform/database"
	"github.com/p-n-ai/pai-quiz/internal/platform/logging"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
	"github.com/p-n-ai/pai-quiz/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	deps, err := setup(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer deps.close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      deps.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "document", cfg.Quiz.DocumentPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

type dependencies struct {
	handler http.Handler
	closers []func()
}

func (d *dependencies) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// setup connects the optional database and cache and builds the HTTP handler.
func setup(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	deps := &dependencies{}
	checks := map[string]web.HealthChecker{}

	svcCfg := quiz.ServiceConfig{
		Source:   document.NewPDFSource(cfg.Quiz.DocumentPath),
		Document: cfg.Quiz.DocumentPath,
		CacheTTL: time.Duration(cfg.Cache.TTLSeconds) * time.Second,
	}

	if cfg.HasDatabase() {
		db, err := database.New(ctx, cfg.Database.URL, database.Options{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, db.Close)

		if err := db.Migrate(ctx, quiz.Schema); err != nil {
			deps.close()
			return nil, err
		}
		store, err := quiz.NewPostgresStore(db.Pool)
		if err != nil {
			deps.close()
			return nil, err
		}
		svcCfg.Store = store
		svcCfg.Events = quiz.NewPostgresEventLogger(db.Pool)
		checks["database"] = db
	} else {
		slog.Info("no database configured, attempts are kept in memory")
	}

	if cfg.HasCache() {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			deps.close()
			return nil, err
		}
		deps.closers = append(deps.closers, func() { _ = c.Close() })
		svcCfg.Cache = c
		checks["cache"] = c
	}

	svc, err := quiz.NewService(svcCfg)
	if err != nil {
		deps.close()
		return nil, err
	}

	server, err := web.NewServer(web.Config{
		Title:       cfg.Quiz.Title,
		Quiz:        svc,
		CORSOrigins: cfg.CORS.Origins,
		Admin: web.AdminCredentials{
			User:     cfg.Admin.User,
			PassHash: cfg.Admin.PassHash,
		},
		Checks: checks,
	})
	if err != nil {
		deps.close()
		return nil, err
	}
	if !cfg.ExportEnabled() {
		slog.Info("results export disabled, set QUIZ_ADMIN_PASS_HASH to enable")
	}

	deps.handler = server.Routes()
	return deps, nil
}
