// ABOUTME: Serve command wiring config, logger, caches, transports and handlers
// ABOUTME: Runs the HTTP server until a signal triggers graceful shutdown

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"diagnostic-report-api/api"
	"diagnostic-report-api/api/handlers"
	"diagnostic-report-api/api/middleware"
	"diagnostic-report-api/core/assets"
	"diagnostic-report-api/core/diagnostics"
	"diagnostic-report-api/core/interfaces"
	"diagnostic-report-api/core/message"
	"diagnostic-report-api/core/render"
	memcache "diagnostic-report-api/infrastructure/cache/memory"
	rediscache "diagnostic-report-api/infrastructure/cache/redis"
	sqlitecache "diagnostic-report-api/infrastructure/cache/sqlite"
	"diagnostic-report-api/infrastructure/logger/structured"
	membus "diagnostic-report-api/infrastructure/transport/memory"
	wsclient "diagnostic-report-api/infrastructure/transport/websocket"
	"diagnostic-report-api/pkg/config"
	"diagnostic-report-api/pkg/featureflags"
)

const busBufferSize = 64

var servePort string

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE:  runServe,
	}
	cmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Server.Port = servePort
	}

	logger, err := structured.New(structured.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := featureflags.NewEnvManager("")
	ctx = featureflags.WithManager(ctx, flags)

	dc, err := cfg.DeploymentContext()
	if err != nil {
		return err
	}
	logger.Info("Starting Diagnostic Report API", map[string]interface{}{
		"port":       cfg.Server.Port,
		"work_dir":   dc.WorkDir,
		"name_roots": dc.NameRoots,
		"path_roots": dc.PathRoots,
		"flags":      flags.GetAllFlags(),
	})

	var resolverOpts []assets.Option
	if flags.IsEnabled(ctx, featureflags.AssetLookupCache) {
		cache, closeCache, err := buildCache(cfg, logger)
		if err != nil {
			return err
		}
		defer closeCache()
		resolverOpts = append(resolverOpts, assets.WithLookupCache(
			assets.NewLookupCache(cache, cfg.Cache.LookupTTL, logger),
		))
	}
	resolver := assets.NewResolver(logger, resolverOpts...)

	bus := membus.New(busBufferSize, logger)
	defer bus.Close()

	consumer := diagnostics.NewConsumer(logger)
	sub, err := consumer.Subscribe(ctx, bus)
	if err != nil {
		return err
	}
	defer sub.Close()

	if flags.IsEnabled(ctx, featureflags.DiagnosticsWebSocket) && cfg.Diagnostics.WebSocketURL != "" {
		client, err := wsclient.NewClient(wsclient.Config{
			URL:          cfg.Diagnostics.WebSocketURL,
			ReconnectMin: cfg.Diagnostics.ReconnectMin,
			ReconnectMax: cfg.Diagnostics.ReconnectMax,
		}, bus, logger)
		if err != nil {
			return err
		}
		go client.Run(ctx)
	}

	apiConfig := api.APIConfig{
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if flags.IsEnabled(ctx, featureflags.RateLimitEnabled) {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		defer limiter.Stop()
		apiConfig.RateLimiter = limiter
	}
	humaAPI, router := api.NewAPIWithMiddleware(apiConfig)

	renderer := render.NewRenderer(render.DefaultOptions())
	api.RegisterRoutes(humaAPI, router, api.Handlers{
		Assets:      handlers.NewAssetHandler(resolver, dc, logger),
		Messages:    handlers.NewMessageHandler(message.NewDecoder(), renderer),
		Diagnostics: handlers.NewDiagnosticsHandler(consumer, bus, renderer),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	logger.Info("Server stopped", nil)
	return nil
}

// buildCache selects the lookup cache backend. Redis falls back to memory
// when the server is unreachable.
func buildCache(cfg *config.Config, logger interfaces.Logger) (interfaces.Cache, func(), error) {
	noop := func() {}

	switch cfg.Cache.Type {
	case "redis":
		cache, err := rediscache.NewRedisCache(cfg.Cache.Redis)
		if err != nil {
			logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			return memcache.NewMemoryCache(cfg.Cache.Memory), noop, nil
		}
		logger.Info("Using Redis cache", map[string]interface{}{
			"address": cfg.Cache.Redis.Address,
		})
		return cache, func() { _ = cache.Close() }, nil
	case "sqlite":
		cache, err := sqlitecache.NewSQLiteCache(cfg.Cache.SQLite.Path, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create SQLite cache: %w", err)
		}
		logger.Info("Using SQLite cache", map[string]interface{}{
			"path": cfg.Cache.SQLite.Path,
		})
		return cache, func() { _ = cache.Close() }, nil
	default:
		logger.Info("Using memory cache", nil)
		return memcache.NewMemoryCache(cfg.Cache.Memory), noop, nil
	}
}
