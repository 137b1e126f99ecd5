// Package app provides the main application struct for centralized dependency management
// and lifecycle control of the bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"speechmeme/config"
	"speechmeme/internal/bot"
	"speechmeme/internal/cache"
	"speechmeme/internal/httpclient"
	"speechmeme/internal/memes"
	"speechmeme/internal/observability"
	"speechmeme/internal/server"
	"speechmeme/internal/upstream"
	"speechmeme/internal/version"
)

// App represents the main application with all its dependencies.
type App struct {
	config   *config.Config
	cache    *cache.Result
	slot     *cache.Slot
	provider *memes.Provider
	bot      *bot.Bot
	server   *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// Config holds the options for creating an App.
type Config struct {
	AppConfig *config.Config

	// Registerer and Gatherer back the Prometheus metrics.
	// Both default to the prometheus package globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(ctx context.Context, cfg Config) (*App, error) {
	appCfg := cfg.AppConfig
	if appCfg == nil {
		return nil, fmt.Errorf("app config is required")
	}

	app := &App{config: appCfg}

	var metrics *observability.Metrics
	if appCfg.Metrics.Enabled {
		reg := cfg.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		metrics = observability.NewMetrics(reg)
	}

	cacheResult, err := cache.New(ctx, appCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	app.cache = cacheResult
	app.slot = cache.NewSlot(cacheResult.Store)

	clientCfg := httpclient.DefaultConfig()
	clientCfg.UserAgent = version.UserAgent()
	fetcher, err := upstream.NewFetcher(upstream.Config{
		URL:        appCfg.Upstream.URL,
		Collection: appCfg.Upstream.Collection,
		OrderBy:    appCfg.Upstream.OrderBy,
		Limit:      appCfg.Upstream.Limit,
	}, httpclient.NewHTTPClient(&clientCfg))
	if err != nil {
		return nil, app.closeOnError(fmt.Errorf("failed to initialize upstream fetcher: %w", err))
	}

	app.provider = memes.NewProvider(app.slot, fetcher, appCfg.Cache.Duration(), metrics)

	app.bot, err = bot.New(bot.Config{
		Token:   appCfg.Discord.Token,
		Source:  app.provider,
		Metrics: metrics,
	})
	if err != nil {
		return nil, app.closeOnError(fmt.Errorf("failed to initialize bot: %w", err))
	}

	if appCfg.Server.Enabled {
		app.server = server.New(app.provider, &server.Config{
			MasterKey:       appCfg.Server.MasterKey,
			MetricsEnabled:  appCfg.Metrics.Enabled,
			MetricsEndpoint: appCfg.Metrics.Endpoint,
			Gatherer:        cfg.Gatherer,
		})
	}

	app.logStartupInfo()

	return app, nil
}

func (a *App) closeOnError(err error) error {
	if closeErr := a.cache.Close(); closeErr != nil {
		return fmt.Errorf("%w (also: cache close error: %v)", err, closeErr)
	}
	return err
}

// Provider returns the cache-or-fetch data provider.
func (a *App) Provider() *memes.Provider {
	return a.provider
}

// Run opens the Discord session, starts the ops server when enabled, and
// blocks until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if err := a.bot.Open(); err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	if a.server != nil {
		addr := ":" + a.config.Server.Port
		go func() {
			slog.Info("starting ops server", "address", addr)
			if err := a.server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- fmt.Errorf("server failed to start: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErr:
		return err
	}
}

// Shutdown gracefully shuts down all components. Safe to call more than once.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	var errs []error

	if a.bot != nil {
		if err := a.bot.Close(); err != nil {
			slog.Error("discord session close error", "error", err)
			errs = append(errs, fmt.Errorf("bot close: %w", err))
		}
	}

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Error("cache close error", "error", err)
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	slog.Info("application shutdown complete")
	return nil
}

func (a *App) logStartupInfo() {
	cfg := a.config

	slog.Info("cache configured",
		"type", cfg.Cache.Type,
		"duration", cfg.Cache.Duration().String(),
	)
	slog.Info("upstream configured", "url", cfg.Upstream.URL, "collection", cfg.Upstream.Collection)

	if cfg.Metrics.Enabled {
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		slog.Info("prometheus metrics disabled")
	}

	if !cfg.Server.Enabled {
		slog.Info("ops server disabled")
		return
	}
	if cfg.Server.MasterKey == "" {
		slog.Warn("SECURITY WARNING: SPEECHMEME_MASTER_KEY not set - ops API is unauthenticated",
			"recommendation", "set SPEECHMEME_MASTER_KEY to protect /v1/snapshot")
	} else {
		slog.Info("authentication enabled", "mode", "master_key")
	}
}
