package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightadvisor/internal/advisor"
	"github.com/dharmasatrya/flightadvisor/internal/config"
	"github.com/dharmasatrya/flightadvisor/internal/handler"
	"github.com/dharmasatrya/flightadvisor/internal/logger"
	"github.com/dharmasatrya/flightadvisor/internal/models"
	"github.com/dharmasatrya/flightadvisor/internal/tracing"
)

func main() {
	cfg, err := config.Load(config.New())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	shutdownTracing, err := tracing.Init(context.Background(), tracing.Config{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		zl.Fatal("Failed to init tracing", zap.Error(err))
	}
	defer func() {
		if err := tracing.Shutdown(shutdownTracing); err != nil {
			zl.Warn("Failed to shut down tracing", zap.Error(err))
		}
	}()

	if cfg.ScraperAPIKey == "" || cfg.LLMAPIKey == "" {
		zl.Warn("API keys not configured; requests must supply them via headers",
			zap.String("scraper_header", handler.HeaderScraperAPIKey),
			zap.String("llm_header", handler.HeaderLLMAPIKey),
		)
	}

	builder := advisor.NewBuilder(cfg, advisor.NewLimiter(cfg), zl)
	recommendHandler := handler.NewRecommendHandler(func(creds models.Credentials, model string) (handler.Recommender, error) {
		a, err := builder.Build(creds, model)
		if err != nil {
			return nil, err
		}
		return a, nil
	}, zl.Named("handler"))

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	api := e.Group("/api/v1")
	api.POST("/flights/recommend", recommendHandler.Recommend)
	e.GET("/health", handler.HealthHandler)

	go func() {
		zl.Info("Starting flight advisor server",
			zap.String("port", cfg.Port),
			zap.String("default_model", cfg.DefaultModel),
			zap.Strings("allowed_models", cfg.AllowedModels),
		)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zl.Error("Failed to shut down server", zap.Error(err))
	}
}
