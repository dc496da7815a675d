package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/backend"
	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/config"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting activity-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	// The worker consumes the queue itself, so the factory must not open a
	// second broker connection.
	backendCfg.AMQPURL = ""
	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	w := worker.NewActivityWorker(services.NewActivityService(res.Repo))

	runCtx, stopRun := context.WithCancel(context.Background())
	finished := make(chan struct{})
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		stopRun()
		select {
		case <-finished:
		case <-ctx.Done():
		}
		if err := client.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	go func() {
		defer close(finished)
		logger.Info("Consuming activity events", "queue", cfg.AMQPQueue)
		if err := w.Run(runCtx, client); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Activity consumption failed", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	processed, failed := w.Stats()
	logger.Info("Activity worker stopped", "processed", processed, "failed", failed)
}
