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

// archiver scrapes the oldest batch of each configured blog once and exits.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "archiver failed: %v\n", err)
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

	summary, err := archiver.RunOnce(ctx)
	if err != nil && summary.AllSourcesFailed() {
		return fmt.Errorf("archive run: %w", err)
	}
	if err != nil {
		logger.WarnObj("archive run finished with source errors", "error", err.Error())
	}

	fmt.Printf("saved %d, skipped %d, failed %d of %d candidates\n",
		summary.Saved, summary.Skipped, summary.Failed, summary.Candidates)
	return nil
}
