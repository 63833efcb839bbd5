package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"conectaloja/config"
	"conectaloja/internal/cli"
	"conectaloja/internal/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadClientConfig()
	log := logger.NewLoggerWithOutput(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cfg, log).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		stop()
		os.Exit(1)
	}
}
