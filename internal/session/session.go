// Package session holds the process-wide HN API client. Configuration is
// resolved and the client built on first use; later callers share it.
package session

import (
	"fmt"
	"os"
	"sync"

	"github.com/samvad-hq/hn-contract-checks/internal/config"
	"github.com/samvad-hq/hn-contract-checks/internal/logger"
	"github.com/samvad-hq/hn-contract-checks/pkg/hnapi"
	"github.com/samvad-hq/hn-contract-checks/pkg/profile"
)

var (
	once   sync.Once
	shared *hnapi.Client
	errOne error

	loadConfig = config.Load
)

// Client returns the shared client, building it from the environment on the
// first call. A failed build is cached as well.
func Client() (*hnapi.Client, error) {
	once.Do(func() {
		cfg, err := loadConfig()
		if err != nil {
			errOne = fmt.Errorf("load config: %w", err)
			return
		}
		shared, errOne = Build(cfg, logger.New(cfg.LogLevel, os.Stderr))
	})
	return shared, errOne
}

// Build resolves the profile named by cfg and builds a client for it.
func Build(cfg *config.Config, log logger.Logger, opts ...hnapi.Option) (*hnapi.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	set, err := profile.Load(cfg.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	p, err := profile.Resolve(cfg.Env, set)
	if err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}

	client, err := hnapi.New(p, append([]hnapi.Option{hnapi.WithLogger(log)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("build client: %w", err)
	}

	log.InfoObj("hn api client ready", "profile", map[string]any{
		"name":        p.Name,
		"base_url":    client.BaseURL(),
		"timeout_ms":  p.Timeout.Milliseconds(),
		"max_retries": p.MaxRetries,
		"backoff":     p.Backoff,
	})
	return client, nil
}
