package hnapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// StoryList names one of the upstream story ID lists.
type StoryList string

const (
	TopStories  StoryList = "topstories"
	NewStories  StoryList = "newstories"
	BestStories StoryList = "beststories"
	AskStories  StoryList = "askstories"
	ShowStories StoryList = "showstories"
	JobStories  StoryList = "jobstories"
)

// Valid reports whether l is a known list.
func (l StoryList) Valid() bool {
	switch l {
	case TopStories, NewStories, BestStories, AskStories, ShowStories, JobStories:
		return true
	}
	return false
}

const defaultDetailsLimit = 10

// Item fetches an item by id. A negative id is rejected without a request;
// zero is sent and comes back as not found.
func (c *Client) Item(ctx context.Context, id int64) (*Item, error) {
	it, _, err := c.ItemWithResponse(ctx, id)
	return it, err
}

// ItemWithResponse is Item plus the raw response. The response is also
// returned with a *NotFoundError caused by a null payload.
func (c *Client) ItemWithResponse(ctx context.Context, id int64) (*Item, *Response, error) {
	if id < 0 {
		return nil, nil, &ArgumentError{Name: "item_id", Value: id, Reason: "must be a non-negative integer"}
	}
	key := strconv.FormatInt(id, 10)
	resp, err := c.do(ctx, "item", key, "item/"+key+".json", nil)
	if err != nil {
		return nil, nil, err
	}

	resource := "item " + key
	it, kind, err := parseItem(resource, resp.Body)
	if err != nil {
		return nil, resp, err
	}
	if kind == payloadNull {
		return nil, resp, &NotFoundError{Resource: "item", ID: key}
	}
	if it.ID != id {
		return nil, resp, &ValidationError{
			Resource:   resource,
			Body:       resp.Body,
			Violations: []Violation{{Field: "id", Message: fmt.Sprintf("must equal requested id %d, got %d", id, it.ID)}},
		}
	}
	return it, resp, nil
}

// User fetches a user by username.
func (c *Client) User(ctx context.Context, username string) (*User, error) {
	u, _, err := c.UserWithResponse(ctx, username)
	return u, err
}

// UserWithResponse is User plus the raw response.
func (c *Client) UserWithResponse(ctx context.Context, username string) (*User, *Response, error) {
	if strings.TrimSpace(username) == "" {
		return nil, nil, &ArgumentError{Name: "username", Value: strconv.Quote(username), Reason: "must not be empty"}
	}
	resp, err := c.do(ctx, "user", username, "user/"+url.PathEscape(username)+".json", nil)
	if err != nil {
		return nil, nil, err
	}

	u, kind, err := parseUser("user "+username, resp.Body)
	if err != nil {
		return nil, resp, err
	}
	if kind == payloadNull {
		return nil, resp, &NotFoundError{Resource: "user", ID: username}
	}
	return u, resp, nil
}

// TopStoryIDs returns the top story ids in upstream order. A positive limit
// truncates the list; zero or negative returns all of it.
func (c *Client) TopStoryIDs(ctx context.Context, limit int) ([]int64, error) {
	return c.StoryIDs(ctx, TopStories, limit)
}

// StoryIDs returns the ids of the given list, truncated like TopStoryIDs.
func (c *Client) StoryIDs(ctx context.Context, list StoryList, limit int) ([]int64, error) {
	ids, _, err := c.StoryIDsWithResponse(ctx, list, limit)
	return ids, err
}

// StoryIDsWithResponse is StoryIDs plus the raw response.
func (c *Client) StoryIDsWithResponse(ctx context.Context, list StoryList, limit int) ([]int64, *Response, error) {
	if !list.Valid() {
		return nil, nil, &ArgumentError{Name: "story list", Value: list, Reason: "unknown list"}
	}
	resp, err := c.do(ctx, "list", string(list), string(list)+".json", nil)
	if err != nil {
		return nil, nil, err
	}
	ids, err := parseIDList(string(list), resp.Body)
	if err != nil {
		return nil, resp, err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, resp, nil
}

// MaxItemID returns the current largest item id.
func (c *Client) MaxItemID(ctx context.Context) (int64, error) {
	resp, err := c.do(ctx, "maxitem", "", "maxitem.json", nil)
	if err != nil {
		return 0, err
	}
	return parseID("maxitem", resp.Body)
}

// TopStoriesWithDetails fetches the first limit top stories (10 when limit
// is not positive) and each of their items. Items that fail are logged and
// skipped; only list failures and cancellation are returned.
func (c *Client) TopStoriesWithDetails(ctx context.Context, limit int) ([]*Item, error) {
	if limit <= 0 {
		limit = defaultDetailsLimit
	}
	ids, err := c.TopStoryIDs(ctx, limit)
	if err != nil {
		return nil, err
	}

	stories := make([]*Item, 0, len(ids))
	for _, id := range ids {
		it, err := c.Item(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stories, errors.Join(ctxErr, err)
			}
			c.log.WarnObj("skipping story", "story_error", map[string]any{
				"story_id": id,
				"error":    err.Error(),
			})
			continue
		}
		stories = append(stories, it)
	}
	return stories, nil
}
