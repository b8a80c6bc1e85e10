// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/starford/metaviz/internal/api"
	"github.com/starford/metaviz/internal/datawatch"
	"github.com/starford/metaviz/internal/mcpserver"
	"github.com/starford/metaviz/internal/sse"
	"github.com/starford/metaviz/internal/statscache"
	"github.com/starford/metaviz/internal/storage"
	"github.com/starford/metaviz/internal/viewer"
	"github.com/starford/metaviz/web"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOut: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger initializes the structured JSON logger and makes it the default.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// provider opens the configured data root.
func (a *application) provider() (storage.Provider, error) {
	if a.config.Data.URL != "" {
		return storage.NewHTTP(a.config.Data.URL, nil)
	}
	return storage.NewFS(a.config.Data.Root)
}

// storeFactory returns the cache store constructor and a cleanup func.
func (a *application) storeFactory(ctx context.Context) (viewer.StoreFactory, func(), error) {
	cfg := a.config.Cache
	if cfg.Backend != CacheBackendRedis {
		return func(string, string) statscache.Store { return statscache.NewMemory() }, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}
	ttl := cfg.Redis.TTL()
	factory := func(session, kind string) statscache.Store {
		return statscache.NewRedis(client, session+":"+kind, ttl)
	}
	return factory, func() { _ = client.Close() }, nil
}

// service builds the viewer service and loads the first session. A failed
// initial load is fatal.
func (a *application) service(ctx context.Context, logger *slog.Logger) (*viewer.Service, func(), error) {
	cfg := a.config

	provider, err := a.provider()
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	newStore, cleanup, err := a.storeFactory(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("init stats cache: %w", err)
	}

	svc := viewer.NewService(viewer.Options{
		Provider:         provider,
		WithRelations:    cfg.Data.WithRelations,
		CuratedNodes:     cfg.Viewer.CuratedNodes,
		CuratedRelations: cfg.Viewer.CuratedRelations,
		DefaultLimit:     cfg.Viewer.DefaultLimit,
		NewStore:         newStore,
		Logger:           logger,
	})

	if _, err := svc.Load(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("load indexes: %w", err)
	}
	return svc, cleanup, nil
}

// Run starts the HTTP dashboard with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_root", cfg.Data.Root),
		slog.String("data_url", cfg.Data.URL),
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, cleanup, err := app.service(ctx, logger)
	if err != nil {
		logger.Error("initialization failed", slog.String("error", err.Error()))
		return err
	}
	defer cleanup()

	// SSE broker.
	broker := sse.NewBroker(cfg.Viewer.ReloadThrottle())
	defer broker.Close()

	handler, err := api.NewServer(api.ServerOptions{
		Service:     svc,
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		Events:      broker,
		SpritesDir:  cfg.Viewer.SpritesDir,
		Templates:   web.Templates(),
		Static:      web.Static(),
		Sprites:     web.Sprites(),
	})
	if err != nil {
		return fmt.Errorf("init http handler: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload the session when the index documents change.
	if cfg.Data.Watch && cfg.Data.Root != "" {
		g.Go(func() error {
			return datawatch.Watch(gCtx, svc, datawatch.Options{
				Root:     cfg.Data.Root,
				Debounce: cfg.Data.Debounce(),
				Logger:   logger,
				OnChange: broker.PublishDataChanged,
				OnReload: func(sess *viewer.Session) {
					latest, _ := sess.Stats.Latest()
					broker.PublishReload(sse.Reload{
						Generation: sess.Generation,
						Snapshots:  len(sess.Stats.Snapshots),
						Latest:     latest.Date,
					})
				},
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

// errShutdown cancels the group context so the watcher stops with the
// server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the read-only views over MCP on stdin/stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	svc, cleanup, err := app.service(ctx, logger)
	if err != nil {
		logger.Error("initialization failed", slog.String("error", err.Error()))
		return err
	}
	defer cleanup()

	logger.Info("MCP server starting", slog.String("version", app.version))
	return mcpserver.New(svc, app.version).ServeStdio()
}
