package main

import (
	"context"
	"log"
	"time"

	"returns-portal/internal/core/cache"
	"returns-portal/internal/core/config"
	"returns-portal/internal/core/logger"
	"returns-portal/internal/core/ratelimit"
	"returns-portal/internal/core/server"
	orderadapter "returns-portal/internal/features/orders/adapters"
	orderhandler "returns-portal/internal/features/orders/handler"
	orderservice "returns-portal/internal/features/orders/service"
	returnadapter "returns-portal/internal/features/returns/adapters"
	returnhandler "returns-portal/internal/features/returns/handler"
	returnservice "returns-portal/internal/features/returns/service"
	settingsadapter "returns-portal/internal/features/settings/adapters"
	settingshandler "returns-portal/internal/features/settings/handler"
	settingsservice "returns-portal/internal/features/settings/service"

	"go.uber.org/zap"
)

// @title Returns Portal API
// @version 1.0
// @description Self-service returns and exchange portal backed by Shopify.
// @contact.name API Support
// @contact.email support@returnsportal.io
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// Initialize Shopify order adapter and run Health Check
	shopifyAdapter := orderadapter.NewShopifyAdapter(cfg.Shopify)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := shopifyAdapter.HealthCheck(ctx); err != nil {
		cancel()
		l.Fatal("Shopify Health Check Failed", zap.Error(err))
	}
	cancel()
	l.Info("Shopify connection verified")

	// Initialize Redis-backed storage
	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	settingsRepo := settingsadapter.NewRedisSettingsRepository(redisCache)
	returnRepo := returnadapter.NewRedisReturnRepository(redisCache)

	// Initialize Settings Service & Handler
	settingsSvc := settingsservice.NewSettingsService(settingsRepo)
	settingsHdl := settingshandler.NewSettingsHandler(settingsSvc)

	// Initialize Order Service & Handler
	orderService := orderservice.NewOrderService(shopifyAdapter)
	lookupLimiter := ratelimit.NewFixedWindowLimiter(
		cfg.RateLimit.LookupMax,
		time.Duration(cfg.RateLimit.LookupWindowSeconds)*time.Second,
	)
	orderHandler := orderhandler.NewOrderHandler(orderService, settingsSvc, lookupLimiter)

	// Initialize Returns Service & Handler
	returnsPlatform := returnadapter.NewShopifyReturnsAdapter(cfg.Shopify)
	fraudScorer := returnservice.NewFraudScorer(returnRepo)
	submissionSvc := returnservice.NewSubmissionService(shopifyAdapter, returnsPlatform, returnRepo, fraudScorer)
	submitLimiter := ratelimit.NewFixedWindowLimiter(
		cfg.RateLimit.SubmitMax,
		time.Duration(cfg.RateLimit.SubmitWindowSeconds)*time.Second,
	)
	returnHandler := returnhandler.NewReturnHandler(submissionSvc, settingsSvc, submitLimiter)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Get("/orders/:id", orderHandler.GetOrder)
	srv.App.Post("/returns", returnHandler.SubmitReturn)
	srv.App.Get("/returns", returnHandler.ListReturns)
	srv.App.Get("/returns/:id", returnHandler.GetReturn)
	srv.App.Get("/settings", settingsHdl.GetSettings)
	srv.App.Put("/settings", settingsHdl.UpdateSettings)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
