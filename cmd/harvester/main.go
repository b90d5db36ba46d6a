package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-blog-archiver/internal/app"
	"github.com/samvad-hq/samvad-blog-archiver/internal/config"
	"github.com/samvad-hq/samvad-blog-archiver/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "harvester start failed: %v\n", err)
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
	defer logger.Close()

	logger.InfoObj("harvester starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archiver, err := app.NewArchiver(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize archiver", "error", err.Error())
		return err
	}
	defer func() {
		if cerr := archiver.Close(); cerr != nil {
			logger.ErrorObj("archiver close failed", "error", cerr.Error())
		}
	}()

	if err := archiver.Run(ctx); err != nil {
		return fmt.Errorf("harvester run: %w", err)
	}

	return nil
}
