package checks

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type checkFunc struct {
	id  string
	run func(context.Context, API) error
}

func (c checkFunc) ID() string                             { return c.id }
func (c checkFunc) Run(ctx context.Context, api API) error { return c.run(ctx, api) }

// NewCheck wraps fn as a Check.
func NewCheck(id string, fn func(ctx context.Context, api API) error) Check {
	return checkFunc{id: id, run: fn}
}

// checkRegistry implements Registry.
type checkRegistry struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]Check
}

// NewRegistry builds a registry. A later check with the same id replaces the
// earlier one in place.
func NewRegistry(checks ...Check) Registry {
	reg := &checkRegistry{byID: make(map[string]Check)}
	for _, c := range checks {
		reg.register(c)
	}
	return reg
}

func (r *checkRegistry) register(c Check) {
	if c == nil {
		return
	}
	key := normalizeID(c.ID())
	if key == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[key]; !ok {
		r.order = append(r.order, key)
	}
	r.byID[key] = c
}

// All returns every check in registration order.
func (r *checkRegistry) All() []Check {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Check, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byID[key])
	}
	return out
}

// Select returns the checks matching ids in registration order. An id ending
// in "/" selects the whole group, so "top-stories/" picks every top-stories
// check. No ids selects everything.
func (r *checkRegistry) Select(ids ...string) ([]Check, error) {
	wanted := make([]string, 0, len(ids))
	for _, id := range ids {
		if key := normalizeID(id); key != "" {
			wanted = append(wanted, key)
		}
	}
	if len(wanted) == 0 {
		return r.All(), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	picked := make(map[string]bool, len(r.order))
	for _, want := range wanted {
		matched := false
		for _, key := range r.order {
			if key == want || (strings.HasSuffix(want, "/") && strings.HasPrefix(key, want)) {
				picked[key] = true
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("no check registered for %q", want)
		}
	}

	out := make([]Check, 0, len(picked))
	for _, key := range r.order {
		if picked[key] {
			out = append(out, r.byID[key])
		}
	}
	return out, nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
