package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"budgetbuddy/internal/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewApp(version).Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
