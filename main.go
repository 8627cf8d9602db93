package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"essay-auth/config"
	"essay-auth/internal/adapter/handler"
	"essay-auth/internal/domain"
	"essay-auth/internal/driver/postgres"
	"essay-auth/internal/gateway"
	"essay-auth/internal/infrastructure/password"
	"essay-auth/internal/infrastructure/token"
	"essay-auth/internal/usecase"
	"essay-auth/middleware"
	"essay-auth/utils/logger"
)

func main() {
	// Healthcheck subcommand for the Docker healthcheck in distroless images.
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Missing .env is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := postgres.NewConnection(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	store := postgres.NewPrincipalRepository(db.Pool(), log)
	hasher := password.NewBcryptHasher(0)
	issuer := token.NewJWTIssuer(token.JWTConfig{
		Secret:     cfg.SigningKey,
		Issuer:     cfg.TokenIssuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})

	authHandler := handler.NewAuthHandler(
		usecase.NewSignupLocal(store, hasher, log),
		usecase.NewSigninLocal(store, hasher, issuer, log),
		usecase.NewReissue(store, issuer, log),
		cfg.RefreshTokenTTL, cfg.SecureCookies, log,
	)
	adminHandler := handler.NewAdminHandler(usecase.NewListPrincipals(store))
	healthHandler := handler.NewHealthHandler(db)
	gate := middleware.NewSessionGate(issuer)
	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			if v.Error == nil {
				log.Info("request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				log.Error("request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())

	auth := e.Group("/auth", limiter.Middleware())
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/signin", authHandler.Signin)
	auth.POST("/reissue", authHandler.Reissue)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/check", authHandler.Check, gate.Middleware())

	if cfg.FederatedEnabled() {
		provider, err := gateway.NewGoogleProvider(ctx, gateway.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			IssuerURL:    cfg.GoogleIssuerURL,
		}, log)
		if err != nil {
			log.Error("failed to initialize Google provider", "error", err)
			os.Exit(1)
		}

		federatedHandler := handler.NewFederatedHandler(
			usecase.NewFederatedSignIn(store, issuer, provider, log),
			usecase.NewCompleteRegistration(store, issuer, log),
			cfg.AppURL, cfg.RefreshTokenTTL, cfg.SecureCookies, log,
		)
		auth.GET("/google/login", federatedHandler.Login)
		auth.GET("/google/callback", federatedHandler.Callback)
		auth.POST("/google/signup", federatedHandler.Signup)
	} else {
		log.Warn("Google credentials not configured, federated sign-in disabled")
	}

	e.GET("/admin/users", adminHandler.ListUsers,
		gate.Middleware(), middleware.RequireRole(domain.RoleAdmin))
	e.GET("/health", healthHandler.Health)

	address := fmt.Sprintf(":%s", cfg.Port)
	go func() {
		log.Info("starting essay-auth server", "address", address)
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exited properly")
}

// runHealthcheck probes the local server's health endpoint.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	client := &http.Client{Timeout: 2 * time.Second}
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
