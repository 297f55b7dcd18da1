package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/hn-contract-checks/internal/app"
	"github.com/samvad-hq/hn-contract-checks/internal/config"
	"github.com/samvad-hq/hn-contract-checks/internal/logger"
)

var errChecksFailed = errors.New("contract checks failed")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hncheck: %v\n", err)
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

	logger.InfoObj("hncheck starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checker, err := app.NewChecker(cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize checker", "error", err.Error())
		return err
	}

	// The report already carries the per-check errors.
	if err := checker.Run(ctx); err != nil || checker.Failed() {
		return errChecksFailed
	}
	return nil
}
