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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	"github.com/sagabat/transaction-manage/internal/core/services"
	"github.com/sagabat/transaction-manage/internal/handlers"
	"github.com/sagabat/transaction-manage/internal/middleware"
	"github.com/sagabat/transaction-manage/internal/platform/config"
	"github.com/sagabat/transaction-manage/internal/platform/redisclient"
	"github.com/sagabat/transaction-manage/internal/repositories/database/memory"
	"github.com/sagabat/transaction-manage/internal/repositories/database/pgsql"
	"github.com/sagabat/transaction-manage/internal/repositories/tokenstore"
	"github.com/sagabat/transaction-manage/pkg/database"
)

func logLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is shared by the token store and the listing caches when either asks for it.
	var redisClient *redis.Client
	if cfg.TokenStore == config.TokenStoreRedis || cfg.CacheDriver == config.CacheRedis {
		redisClient, err = redisclient.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			fatal(logger, "Failed to connect to Redis", err)
		}
		defer redisClient.Close()
		logger.Info("Redis connection established.", slog.String("addr", cfg.RedisAddr))
	}

	var tokens portsrepo.TokenStore
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		tokens = tokenstore.NewRedisStore(redisClient, cfg.TokenEvictionGrace)
	default:
		memTokens := tokenstore.NewMemoryStore(cfg.TokenEvictionGrace)
		memTokens.StartJanitor(ctx, cfg.TokenEvictionInterval)
		defer memTokens.Close()
		tokens = memTokens
	}

	var repos portsrepo.RepositoryProvider
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; data is lost on restart.")
		repos = memory.NewRepositoryProvider(memory.NewStore(), tokens)
	default:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			fatal(logger, "Failed to initialize database pool", err)
		}
		defer database.ClosePgxPool(dbPool)

		logger.Info("Running database migrations...", slog.String("path", cfg.MigrationsPath))
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			fatal(logger, "Failed to apply migrations", err)
		}
		repos = pgsql.NewRepositoryProvider(dbPool, tokens)
	}

	var caches services.LegCaches
	switch cfg.CacheDriver {
	case config.CacheRedis:
		caches = services.NewRedisLegCaches(redisClient, cfg.CacheTTL)
	default:
		caches = services.NewLRULegCaches(cfg.CacheSize, cfg.CacheTTL)
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, caches)

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		fatal(logger, "Failed to configure rate limiter", err)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		fatal(logger, "Failed to set trusted proxies", err)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, rateLimiter)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			slog.String("port", cfg.Port),
			slog.String("storage", cfg.StorageDriver),
			slog.String("token_store", cfg.TokenStore),
			slog.String("cache", cfg.CacheDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
		}
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped")
}
