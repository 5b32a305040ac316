package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foundr-auth/config"
	"foundr-auth/internal/adapter/gateway"
	"foundr-auth/internal/adapter/handler"
	"foundr-auth/internal/domain"
	"foundr-auth/internal/infrastructure/cache"
	"foundr-auth/internal/infrastructure/localstore"
	"foundr-auth/internal/infrastructure/provider"
	"foundr-auth/internal/infrastructure/store"
	"foundr-auth/internal/infrastructure/token"
	"foundr-auth/internal/validation"
	appmw "foundr-auth/middleware"
	"foundr-auth/utils/logger"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	log.InfoContext(ctx, "configuration loaded",
		"provider_url", cfg.ProviderURL,
		"port", cfg.Port,
		"profile_cache_ttl", cfg.ProfileCacheTTL)

	// Local store: redis when configured, in-memory otherwise.
	var local domain.LocalStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.ErrorContext(ctx, "invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		local = localstore.NewRedis(redis.NewClient(opts), "default", 0)
		log.InfoContext(ctx, "redis local store initialized")
	} else {
		local = localstore.NewMemory()
		log.InfoContext(ctx, "in-memory local store initialized")
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	profiles := store.NewProfileRepository(pool, log)
	profileCache := cache.NewProfileCache(cfg.ProfileCacheTTL)
	providerClient := provider.NewClient(cfg.ProviderURL, cfg.ProviderAnonKey, local, log)
	authGateway := gateway.New(providerClient, profiles, profileCache, local, log)

	verifier, err := token.NewVerifier(cfg.JWTSecret, cfg.JWTAudience)
	if err != nil {
		log.ErrorContext(ctx, "failed to initialize token verifier", "error", err)
		os.Exit(1)
	}

	validator := validation.New()

	authHandler := handler.NewAuthHandler(authGateway, validator, log)
	profileHandler := handler.NewProfileHandler(authGateway, validator, log)
	validateHandler := handler.NewValidateHandler(verifier)
	healthHandler := handler.NewHealthHandler()

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error == nil {
				log.InfoContext(ctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				log.ErrorContext(ctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())
	e.Use(appmw.SecurityHeaders())

	// Credential endpoints get a tight per-IP budget.
	credentialLimiter := appmw.NewRateLimiter(rate.Limit(1), 5)
	generalLimiter := appmw.NewRateLimiter(rate.Limit(10), 20)

	auth := e.Group("/v1/auth", generalLimiter.Middleware())
	auth.POST("/register", authHandler.Register, credentialLimiter.Middleware())
	auth.POST("/login", authHandler.Login, credentialLimiter.Middleware())
	auth.GET("/google", authHandler.Google)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/password/reset", authHandler.ResetPassword, credentialLimiter.Middleware())
	auth.PUT("/password", authHandler.UpdatePassword)
	auth.GET("/exists", authHandler.Exists)
	auth.POST("/password/strength", authHandler.PasswordStrength)

	profile := e.Group("/v1/profile", appmw.BearerAuth(verifier))
	profile.GET("", profileHandler.Get)
	profile.PUT("", profileHandler.Update)

	e.GET("/validate", validateHandler.Handle)
	e.GET("/health", healthHandler.Handle)

	address := fmt.Sprintf(":%s", cfg.Port)

	go func() {
		log.InfoContext(ctx, "starting foundr-auth server", "address", address)
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.ErrorContext(ctx, "server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.InfoContext(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.InfoContext(ctx, "server exited properly")
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8890"
	}

	client := &http.Client{
		Timeout: 2 * time.Second,
	}

	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}

	return nil
}
