package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samvad-hq/hn-contract-checks/internal/checks"
	"github.com/samvad-hq/hn-contract-checks/internal/config"
	"github.com/samvad-hq/hn-contract-checks/internal/logger"
	"github.com/samvad-hq/hn-contract-checks/internal/session"
	"github.com/samvad-hq/hn-contract-checks/pkg/hnapi"
)

// Checker is the contract check runtime. It runs the suite once or on a fixed
// interval and reports every run.
type Checker struct {
	cfg      *config.Config
	client   *hnapi.Client
	service  *checks.Service
	interval time.Duration
	timeout  time.Duration
	log      logger.Logger
	out      io.Writer

	lastFailed bool
}

// NewChecker builds a checker from config.
func NewChecker(cfg *config.Config, log logger.Logger, opts ...hnapi.Option) (*Checker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	client, err := session.Build(cfg, log, opts...)
	if err != nil {
		return nil, fmt.Errorf("build hn api client: %w", err)
	}

	reg := checks.Default(checks.Options{})
	if _, err := reg.Select(cfg.Checks...); err != nil {
		client.Close()
		return nil, fmt.Errorf("select checks: %w", err)
	}
	log.InfoObj("check suite loaded", "suite_meta", map[string]any{
		"registered": len(reg.All()),
		"selected":   cfg.Checks,
	})

	return &Checker{
		cfg:      cfg,
		client:   client,
		service:  checks.NewService(reg, client, log),
		interval: cfg.CheckInterval,
		timeout:  cfg.CheckTimeout,
		log:      log,
		out:      os.Stdout,
	}, nil
}

// SetOutput redirects the report.
func (c *Checker) SetOutput(w io.Writer) {
	if w != nil {
		c.out = w
	}
}

// Failed reports whether the last completed run had failures.
func (c *Checker) Failed() bool { return c.lastFailed }

// Run executes the suite once, or every interval until ctx is cancelled when
// an interval is configured.
func (c *Checker) Run(ctx context.Context) error {
	if c == nil || c.service == nil {
		return fmt.Errorf("checker is not initialized")
	}
	defer c.client.Close()

	if c.interval <= 0 {
		return c.runOnce(ctx)
	}

	c.log.InfoObj("checker loop starting", "checker_state", map[string]any{
		"profile":        c.client.Profile().Name,
		"check_interval": c.interval.String(),
	})

	if err := c.runOnce(ctx); err != nil {
		c.log.ErrorObj("initial check run failed", "error", err.Error())
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.InfoObj("checker loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := c.runOnce(ctx); err != nil {
				c.log.ErrorObj("scheduled check run failed", "error", err.Error())
			}
		}
	}
}

// runOnce performs a single pass over the selected checks and prints the report.
func (c *Checker) runOnce(ctx context.Context) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	c.log.InfoObj("check run started", "run_meta", map[string]any{
		"profile":    c.client.Profile().Name,
		"base_url":   c.client.BaseURL(),
		"started_at": start.UTC(),
	})

	results, err := c.service.Run(ctx, c.cfg.Checks...)
	summary := Summarize(results, time.Since(start))
	c.lastFailed = err != nil || summary.Failed > 0

	WriteReport(c.out, c.client.Profile().Name, results, summary)
	c.log.InfoObj("check run completed", "run_meta", map[string]any{
		"passed":     summary.Passed,
		"failed":     summary.Failed,
		"elapsed_ms": summary.Elapsed.Milliseconds(),
	})
	return err
}
