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

	"github.com/damacus/iron-drive/internal/config"
	"github.com/damacus/iron-drive/internal/handlers"
	"github.com/damacus/iron-drive/internal/logging"
	"github.com/damacus/iron-drive/internal/metrics"
	customMiddleware "github.com/damacus/iron-drive/internal/middleware"
	"github.com/damacus/iron-drive/internal/services"
	"github.com/damacus/iron-drive/internal/store"
	"github.com/damacus/iron-drive/internal/workspace"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logging.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := buildStore(ctx, cfg, &services.RealMinioFactory{})
	if err != nil {
		logging.L().Fatal("failed to set up store", logging.Err(err))
	}

	e, registry := newServer(cfg, store.Instrument(backend), services.LogCodeSender{})
	defer registry.Close()

	go func() {
		logging.L().Info("listening", logging.String("addr", cfg.ListenAddr), logging.String("backend", cfg.StoreBackend))
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Fatal("server stopped", logging.Err(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.L().Error("shutdown", logging.Err(err))
	}
}

// buildStore connects the configured remote store backend
func buildStore(ctx context.Context, cfg *config.Config, factory services.MinioClientFactory) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendHTTP:
		return store.NewHTTPStore(store.HTTPConfig{BaseURL: cfg.StoreURL, Timeout: cfg.StoreTimeout}), nil
	case config.BackendS3:
		creds := services.Credentials{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
		}
		client, err := factory.NewClient(creds)
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		admin, err := factory.NewAdminClient(creds)
		if err != nil {
			// Quotas are optional; the configured maximum still applies.
			logging.L().Warn("minio admin client unavailable", logging.Err(err))
			admin = nil
		}

		s3 := store.NewS3Store(client, store.S3Config{
			Bucket:       cfg.MinioBucket,
			MaxStorageMB: cfg.MaxStorageMB,
			Admin:        admin,
		})
		ensureCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		if err := s3.EnsureBucket(ensureCtx); err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func bodyLimit(maxStorageMB int64) string {
	return fmt.Sprintf("%dM", maxStorageMB+1)
}

func newServer(cfg *config.Config, s store.Store, sender services.CodeSender) (*echo.Echo, *handlers.Registry) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Services
	authService := services.NewAuthService(cfg.SessionKey)
	otpService := services.NewOTPService(sender, cfg.OTPTTL)
	registry := handlers.NewRegistry(s, workspace.Options{
		NotificationTTL: cfg.NotificationTTL,
		UploadTick:      cfg.UploadTick,
		UploadSettle:    cfg.UploadSettle,
	})
	authHandler := handlers.NewAuthHandler(authService, otpService, registry)
	driveHandler := handlers.NewDriveHandler(registry)

	// Middleware
	e.Use(middleware.Recover())
	e.Use(customMiddleware.RequestLogger())
	e.Use(customMiddleware.SecurityHeaders())
	// Uploads are buffered in memory; no request may exceed the storage maximum plus form overhead.
	e.Use(middleware.BodyLimit(bodyLimit(cfg.MaxStorageMB)))
	e.Use(customMiddleware.CSRF())
	e.Use(customMiddleware.CSRFTokenHeader())
	// Apply auth middleware globally - it will skip public routes internally
	e.Use(customMiddleware.AuthMiddleware(authService))

	// Public Routes (auth middleware will skip these)
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.POST("/auth/code", authHandler.RequestCode)
	e.POST("/auth/verify", authHandler.VerifyCode)
	e.GET("/logout", authHandler.Logout)

	// Protected Routes
	driveHandler.Register(e.Group("/api"))

	return e, registry
}
