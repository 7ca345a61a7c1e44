package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/feedsift/feedsift/internal/app"
	"github.com/feedsift/feedsift/internal/config"
	"github.com/feedsift/feedsift/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sifter start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	log.InfoObj("sifter starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sifter, err := app.NewSifter(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize sifter", "error", err)
		return err
	}

	if err := sifter.Run(ctx); err != nil {
		return fmt.Errorf("sifter run: %w", err)
	}

	return nil
}
