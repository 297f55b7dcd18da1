package checks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/hn-contract-checks/internal/logger"
)

// Result is the outcome of one check.
type Result struct {
	ID      string
	Passed  bool
	Err     error
	Elapsed time.Duration
}

// Service runs checks against an API and aggregates the results.
type Service struct {
	registry Registry
	api      API
	log      logger.Logger
}

// NewService wires a check runner.
func NewService(reg Registry, api API, log logger.Logger) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{registry: reg, api: api, log: log}
}

// Run executes the selected checks (all when ids is empty) in order. Every
// check runs even after a failure; the returned error joins all failures.
func (s *Service) Run(ctx context.Context, ids ...string) ([]Result, error) {
	if s == nil || s.registry == nil || s.api == nil {
		return nil, fmt.Errorf("check service is not initialized")
	}

	selected, err := s.registry.Select(ids...)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no checks registered")
	}

	results, errs := s.runAll(ctx, selected)
	if len(errs) > 0 {
		return results, errors.Join(errs...)
	}
	return results, nil
}

func (s *Service) runAll(ctx context.Context, selected []Check) ([]Result, []error) {
	results := make([]Result, 0, len(selected))
	errs := make([]error, 0, len(selected))

	for _, c := range selected {
		if ctxErr := ctx.Err(); ctxErr != nil {
			errs = append(errs, fmt.Errorf("check run interrupted before %s: %w", c.ID(), ctxErr))
			break
		}

		res := s.runCheck(ctx, c)
		results = append(results, res)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("check %s: %w", res.ID, res.Err))
			s.log.ErrorObj("check failed", "check_result", map[string]any{
				"check_id":   res.ID,
				"elapsed_ms": res.Elapsed.Milliseconds(),
				"error":      res.Err.Error(),
			})
			continue
		}
		s.log.InfoObj("check passed", "check_result", map[string]any{
			"check_id":   res.ID,
			"elapsed_ms": res.Elapsed.Milliseconds(),
		})
	}

	return results, errs
}

func (s *Service) runCheck(ctx context.Context, c Check) (res Result) {
	start := time.Now()
	res.ID = c.ID()
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("panic: %v", p)
		}
		res.Elapsed = time.Since(start)
		res.Passed = res.Err == nil
	}()

	res.Err = c.Run(ctx, s.api)
	return res
}
