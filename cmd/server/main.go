package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fixora/oauth-service/application/usecase"
	"github.com/fixora/oauth-service/infrastructure/adapter/postgres"
	"github.com/fixora/oauth-service/infrastructure/adapter/rediscache"
	"github.com/fixora/oauth-service/infrastructure/config"
	apphttp "github.com/fixora/oauth-service/infrastructure/http"
	"github.com/fixora/oauth-service/infrastructure/http/handler"
	"github.com/fixora/oauth-service/infrastructure/http/middleware"
	"github.com/fixora/oauth-service/infrastructure/service/jwt"
	"github.com/fixora/oauth-service/infrastructure/service/logger"
	"github.com/fixora/oauth-service/infrastructure/service/password"
	"github.com/fixora/oauth-service/infrastructure/service/ratelimit"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "oauth-service",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env": cfg.Environment,
	})

	// Connect to database
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to connect to database", err, nil)
		os.Exit(1)
	}
	defer db.Close()
	structuredLogger.Info(ctx, "Database connection established", nil)

	if cfg.AutoMigrate {
		if err := postgres.MigrateUp(ctx, db); err != nil {
			structuredLogger.Error(ctx, "Failed to apply migrations", err, nil)
			os.Exit(1)
		}
		structuredLogger.Info(ctx, "Database migrations applied", nil)
	}

	// Connect to Redis; the refresh token cache and the rate limiter share the client
	redisClient, err := rediscache.NewClient(ctx, rediscache.ClientConfig{
		URL:      cfg.RedisURL,
		Password: cfg.RedisPassword,
		Timeout:  cfg.StoreTimeout,
	})
	if err != nil {
		structuredLogger.Error(ctx, "Failed to connect to Redis", err, nil)
		os.Exit(1)
	}
	defer redisClient.Close()
	structuredLogger.Info(ctx, "Redis connection established", nil)

	// Initialize adapters and services
	userRepo := postgres.NewUserRepositoryAdapter(db, cfg.StoreTimeout)
	tokenCache := rediscache.NewTokenCacheAdapter(redisClient, cfg.RedisKeyPrefix, cfg.StoreTimeout)

	tokenService, err := jwt.NewJWTService(cfg.JWTSecret)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize JWT service", err, nil)
		os.Exit(1)
	}
	passwordService := password.NewBcryptPasswordService(cfg.BcryptCost)

	rateLimitService := ratelimit.NewRateLimitService(redisClient, ratelimit.RateLimitConfig{
		Enabled:  cfg.RateLimitEnabled,
		Attempts: cfg.RateLimitAttempts,
		Window:   cfg.RateLimitWindow,
	}, structuredLogger)

	// Initialize use case
	authUseCase := usecase.NewAuthUseCase(
		userRepo,
		tokenCache,
		tokenService,
		passwordService,
		structuredLogger,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	server := apphttp.NewServer(apphttp.ServerConfig{
		Addr:                 cfg.Addr(),
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		CORSAllowCredentials: cfg.CORSAllowCredentials,
	}, apphttp.Dependencies{
		AuthHandler: handler.NewAuthHandler(authUseCase, handler.CookieConfig{
			Secure: cfg.IsProduction(),
			MaxAge: cfg.AccessTokenTTL,
		}, structuredLogger),
		AuthMiddleware: middleware.NewAuthMiddleware(tokenService, structuredLogger),
		RateLimit:      middleware.NewRateLimitMiddleware(rateLimitService, structuredLogger, cfg.TrustProxyHeaders),
		Logger:         structuredLogger,
	})

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			structuredLogger.Error(ctx, "Server failed", err, nil)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}
