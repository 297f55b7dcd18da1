package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/hn-contract-checks/pkg/hnapi"
)

func (s suite) missingItem(ctx context.Context, api API) error {
	id := s.opts.MissingItemID
	_, resp, err := api.ItemWithResponse(ctx, id)
	var nf *hnapi.NotFoundError
	if !errors.As(err, &nf) {
		return fmt.Errorf("item %d: want not found, got %v", id, err)
	}
	if resp == nil {
		return fmt.Errorf("item %d: no response recorded", id)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("item %d: status %d, want 200 for a missing item", id, resp.StatusCode)
	}
	if raw := bytes.TrimSpace(resp.Body); string(raw) != "null" {
		return fmt.Errorf("item %d: body %q, want null", id, raw)
	}

	if _, err := api.Item(ctx, 0); !errors.As(err, &nf) {
		return fmt.Errorf("item 0: want not found, got %v", err)
	}

	var arg *hnapi.ArgumentError
	if _, err := api.Item(ctx, -1); !errors.As(err, &arg) {
		return fmt.Errorf("item -1: want invalid argument, got %v", err)
	}
	return nil
}

func (s suite) missingUser(ctx context.Context, api API) error {
	_, err := api.User(ctx, s.opts.MissingUser)
	var nf *hnapi.NotFoundError
	if !errors.As(err, &nf) {
		return fmt.Errorf("user %q: want not found, got %v", s.opts.MissingUser, err)
	}
	return nil
}
