package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"budgetbuddy/internal/auth"
	"budgetbuddy/internal/backend"
	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/config"
	"budgetbuddy/internal/core"
	apphttp "budgetbuddy/internal/http"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
)

const summaryCacheSize = 256

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)
	cats := cli.LoadCatalogs(logger, cfg)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	caches := cache.NewManager()
	var summaries cache.Cache[core.Summary]
	if cfg.SummaryCacheTTL > 0 {
		lru := cache.NewLRUCache[core.Summary](summaryCacheSize, cfg.SummaryCacheTTL)
		caches.Register(lru)
		caches.StartCleanup(cfg.SummaryCacheTTL)
		summaries = lru
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	svc := services.New(services.Deps{
		Repo:         res.Repo,
		Categories:   cats.Categories,
		Sources:      cats.Sources,
		Publisher:    res.Publisher(),
		Passwords:    auth.Passwords{},
		Tokens:       tokens,
		SummaryCache: summaries,
	})

	srv := apphttp.NewServer(":"+cfg.Port, svc, tokens, apphttp.Options{
		RateLimit:      cfg.RateLimit,
		Ready:          res.Ready,
		Caches:         caches,
		Logger:         logger,
		TrustedProxies: cfg.TrustedProxies,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting budgetbuddy server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"async_activity", res.AMQP != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
