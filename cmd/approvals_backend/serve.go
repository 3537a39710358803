package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/approval_engine/internal/core/ports"
	"github.com/SscSPs/approval_engine/internal/core/services"
	"github.com/SscSPs/approval_engine/internal/core/workflow"
	"github.com/SscSPs/approval_engine/internal/handlers"
	"github.com/SscSPs/approval_engine/internal/middleware"
	"github.com/SscSPs/approval_engine/internal/notification"
	"github.com/SscSPs/approval_engine/internal/platform/config"
	"github.com/SscSPs/approval_engine/internal/repositories/cache"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(cc *commandContext) *cobra.Command {
	var skipMigrations bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cc.cfg, cc.logger, !skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply schema migrations on startup")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) error {
	repos, closeStore, err := openStore(ctx, cfg, logger, migrate)
	if err != nil {
		return err
	}
	defer closeStore()

	registry, err := workflow.LoadDefinitions(cfg.WorkflowDefinitionsPath)
	if err != nil {
		return err
	}
	logger.Info("Workflow definitions loaded", slog.Any("request_types", registry.RequestTypes()))

	var redisClient *redis.Client
	var permCache ports.PermissionCache
	if cfg.RedisURL != "" {
		redisCache, client, err := cache.NewRedisFromURL(cfg.RedisURL, cfg.PermissionCacheTTL)
		if err != nil {
			return fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		defer client.Close()
		redisClient, permCache = client, redisCache
		logger.Info("Using Redis permission cache")
	} else {
		permCache = cache.NewLRU(cfg.PermissionCacheSize, cfg.PermissionCacheTTL)
	}

	var sink ports.Notifier = notification.NewLogNotifier(logger)
	if cfg.NATSURL != "" {
		conn, err := notification.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer conn.Close()
		sink = notification.NewNATSNotifier(conn, cfg.NATSSubjectPrefix)
		logger.Info("Publishing notifications to NATS", slog.String("url", conn.ConnectedUrl()))
	}
	notifier := notification.NewAsync(sink, cfg.NotificationBuffer, logger)

	container := services.NewServiceContainer(cfg, repos, registry,
		services.WithPermissionCache(permCache),
		services.WithNotifier(notifier),
	)

	rateLimit, err := newRateLimiter(cfg, redisClient)
	if err != nil {
		return err
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, container, repos.Health, middleware.RateLimit(rateLimit))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	if err := notifier.Close(shutdownCtx); err != nil {
		logger.Warn("Notifications still queued at shutdown", slog.String("error", err.Error()))
	}
	return nil
}

func newRateLimiter(cfg *config.Config, client *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", cfg.RateLimit, err)
	}
	if client == nil {
		return limiter.New(memory.NewStore(), rate), nil
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   "approvals:ratelimit",
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}
	return limiter.New(store, rate), nil
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", "X-Request-ID")
	c.ExposeHeaders = []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return c
}
