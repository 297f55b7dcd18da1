package checks

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/samvad-hq/hn-contract-checks/pkg/hnapi"
)

// topStory fetches the current top story.
func topStory(ctx context.Context, api API) (*hnapi.Item, *hnapi.Response, error) {
	ids, err := api.TopStoryIDs(ctx, 1)
	if err != nil {
		return nil, nil, wrapf(err, "fetch top story id")
	}
	if len(ids) != 1 {
		return nil, nil, fmt.Errorf("top stories: got %d ids, want exactly 1", len(ids))
	}
	if ids[0] <= 0 {
		return nil, nil, fmt.Errorf("top story id %d is not positive", ids[0])
	}
	it, resp, err := api.ItemWithResponse(ctx, ids[0])
	if err != nil {
		return nil, resp, wrapf(err, "fetch top story %d", ids[0])
	}
	return it, resp, nil
}

func (s suite) topStorySchema(ctx context.Context, api API) error {
	story, resp, err := topStory(ctx, api)
	if err != nil {
		return err
	}
	what := fmt.Sprintf("story %d", story.ID)
	if err := expectJSON(what, resp); err != nil {
		return err
	}
	if err := hnapi.ValidateStory(story); err != nil {
		return err
	}

	title := story.Title
	switch n := utf8.RuneCountInString(title); {
	case n < minTitleLen:
		return fmt.Errorf("%s: title %q shorter than %d characters", what, title, minTitleLen)
	case n > maxTitleLen:
		return fmt.Errorf("%s: title longer than %d characters", what, maxTitleLen)
	case strings.TrimSpace(title) != title:
		return fmt.Errorf("%s: title %q has surrounding whitespace", what, title)
	case allUpper(title):
		return fmt.Errorf("%s: title %q is all upper case", what, title)
	}
	return expectAuthor(what, story.By)
}

func (s suite) topStoryTimestamp(ctx context.Context, api API) error {
	story, _, err := topStory(ctx, api)
	if err != nil {
		return err
	}
	what := fmt.Sprintf("story %d", story.ID)
	if story.Time < hnLaunch {
		return fmt.Errorf("%s: timestamp %d predates Hacker News", what, story.Time)
	}
	return s.expectNotFuture(what, story.Time)
}

func (s suite) topStoryAuthor(ctx context.Context, api API) error {
	story, _, err := topStory(ctx, api)
	if err != nil {
		return err
	}
	if story.By == "" {
		return fmt.Errorf("story %d has no author", story.ID)
	}
	u, err := api.User(ctx, story.By)
	if err != nil {
		return wrapf(err, "fetch author %q of story %d", story.By, story.ID)
	}
	if u.ID != story.By {
		return fmt.Errorf("user %q returned for author %q", u.ID, story.By)
	}
	return nil
}
