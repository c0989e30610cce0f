// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mohae/deepcopy"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/starford/formbind/internal/api"
	"github.com/starford/formbind/internal/binding"
	"github.com/starford/formbind/internal/drafts"
	"github.com/starford/formbind/internal/formservice"
	"github.com/starford/formbind/internal/mcpserver"
	"github.com/starford/formbind/internal/models"
	"github.com/starford/formbind/internal/prompt"
	"github.com/starford/formbind/internal/rules"
	"github.com/starford/formbind/internal/seeds"
	"github.com/starford/formbind/internal/sse"
	"github.com/starford/formbind/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// openSeeds prepares the seed directory and loads the catalog from it.
func openSeeds(cfg *Config, logger *slog.Logger) (storage.Provider, *seeds.Catalog, error) {
	if err := os.MkdirAll(cfg.Seeds.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create seeds dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Seeds.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	catalog := seeds.NewCatalog()
	if err := seeds.Sync(catalog, store, logger, nil); err != nil {
		logger.Warn("initial seed sync failed", slog.String("error", err.Error()))
	}
	return store, catalog, nil
}

// openService builds the form service over the draft database and restores
// the drafts it holds.
func openService(ctx context.Context, cfg *Config, store storage.Provider, catalog *seeds.Catalog, logger *slog.Logger, opts ...formservice.Option) (*formservice.Service, *drafts.DB, error) {
	db, err := drafts.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init drafts: %w", err)
	}
	opts = append(opts, formservice.WithLogger(logger))
	svc := formservice.New(catalog, store, db, opts...)
	if err := svc.Restore(ctx); err != nil {
		logger.Warn("draft restore failed", slog.String("error", err.Error()))
	}
	return svc, db, nil
}

// Run starts the HTTP server and the seed watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("seeds_path", cfg.Seeds.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, catalog, err := openSeeds(cfg, logger)
	if err != nil {
		return err
	}

	broker := sse.NewBroker(cfg.Events.SummaryThrottle)
	defer broker.Close()

	svc, db, err := openService(ctx, cfg, store, catalog, logger, formservice.WithPublisher(broker))
	if err != nil {
		return err
	}
	defer db.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Seed changes reach the catalog, SSE clients and pristine forms.
	g.Go(func() error {
		return seeds.Watch(gCtx, catalog, store, logger, func(kind string, seed models.Seed) {
			broker.PublishSeedEvent(kind, seed.Name)
			if kind == seeds.KindUpdated {
				if n := svc.ReloadSeed(gCtx, seed); n > 0 {
					logger.Info("forms rebased", slog.String("seed", seed.Name), slog.Int("count", n))
				}
			}
		})
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the form tools over stdio. Logs go to stderr because stdout
// carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(os.Stderr, cfg.App.LogLevel)

	store, catalog, err := openSeeds(cfg, logger)
	if err != nil {
		return err
	}
	svc, db, err := openService(ctx, cfg, store, catalog, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("MCP server starting", slog.String("seeds_path", cfg.Seeds.Path))
	return mcpserver.New(svc).ServeStdio()
}

// Fill prompts for every profile field starting from the selected seed and
// writes the finished profile as YAML. Nothing is persisted.
func Fill(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if app.seed == "" {
		return fmt.Errorf("seed is required")
	}
	if app.driver == nil {
		app.driver = prompt.NewSurveyDriver()
	}
	if app.out == nil {
		app.out = os.Stdout
	}
	cfg := app.config
	logger := newLogger(os.Stderr, slog.LevelWarn)

	_, catalog, err := openSeeds(cfg, logger)
	if err != nil {
		return err
	}
	seed, err := catalog.Get(app.seed)
	if err != nil {
		return fmt.Errorf("seed %s: %w", app.seed, err)
	}

	initial := deepcopy.Copy(seed.Model).(models.Profile)
	root := binding.New(initial, rules.For[models.Profile](),
		binding.WithName("profile"),
		binding.WithFields(models.ProfileFields),
		binding.WithLogger(logger),
	)
	if err := prompt.Fill(ctx, root, app.driver); err != nil {
		return fmt.Errorf("fill %s: %w", app.seed, err)
	}
	if !root.Validate() {
		return fmt.Errorf("fill %s: invalid fields: %s", app.seed, strings.Join(root.Report().Invalid(), ", "))
	}

	data, err := yaml.Marshal(root.Model())
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = app.out.Write(data)
	return err
}
