package checks

import (
	"context"

	"github.com/samvad-hq/hn-contract-checks/pkg/hnapi"
)

// API is the part of the HN client the checks exercise. *hnapi.Client satisfies it.
type API interface {
	TopStoryIDs(ctx context.Context, limit int) ([]int64, error)
	StoryIDsWithResponse(ctx context.Context, list hnapi.StoryList, limit int) ([]int64, *hnapi.Response, error)
	Item(ctx context.Context, id int64) (*hnapi.Item, error)
	ItemWithResponse(ctx context.Context, id int64) (*hnapi.Item, *hnapi.Response, error)
	User(ctx context.Context, username string) (*hnapi.User, error)
}

// Check is a single contract assertion against the API.
type Check interface {
	ID() string
	Run(ctx context.Context, api API) error
}

// Registry resolves checks by id, keeping registration order.
type Registry interface {
	All() []Check
	Select(ids ...string) ([]Check, error)
}

var _ API = (*hnapi.Client)(nil)
