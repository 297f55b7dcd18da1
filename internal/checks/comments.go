package checks

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/samvad-hq/hn-contract-checks/pkg/hnapi"
)

// storyWithComments returns the first of the top stories that has kids.
func storyWithComments(ctx context.Context, api API) (*hnapi.Item, error) {
	ids, err := api.TopStoryIDs(ctx, commentSearchWindow)
	if err != nil {
		return nil, wrapf(err, "fetch top %d stories", commentSearchWindow)
	}
	for _, id := range ids {
		story, err := api.Item(ctx, id)
		if err != nil {
			return nil, wrapf(err, "fetch story %d", id)
		}
		if len(story.Kids) > 0 {
			return story, nil
		}
	}
	return nil, fmt.Errorf("no top stories with comments found in the first %d stories", commentSearchWindow)
}

func (s suite) firstComment(ctx context.Context, api API) error {
	story, err := storyWithComments(ctx, api)
	if err != nil {
		return err
	}
	if story.Type != hnapi.TypeStory {
		return fmt.Errorf("story %d: type %q, want %q", story.ID, story.Type, hnapi.TypeStory)
	}
	id := story.Kids[0]
	if id <= 0 {
		return fmt.Errorf("story %d: first comment id %d is not positive", story.ID, id)
	}

	comment, resp, err := api.ItemWithResponse(ctx, id)
	if err != nil {
		return wrapf(err, "fetch comment %d", id)
	}
	what := fmt.Sprintf("comment %d", id)
	if err := expectJSON(what, resp); err != nil {
		return err
	}
	if err := hnapi.ValidateComment(comment); err != nil {
		return err
	}

	if *comment.Parent != story.ID {
		return fmt.Errorf("%s: parent %d, want story %d", what, *comment.Parent, story.ID)
	}
	if !slices.Contains(story.Kids, comment.ID) {
		return fmt.Errorf("%s: not listed in kids of story %d", what, story.ID)
	}
	if n := utf8.RuneCountInString(comment.Text); n < 1 || n > maxCommentLen {
		return fmt.Errorf("%s: text has %d characters, want 1..%d", what, n, maxCommentLen)
	}
	if strings.TrimSpace(comment.PlainText()) == "" {
		return fmt.Errorf("%s: text has no readable content", what)
	}
	if err := expectAuthor(what, comment.By); err != nil {
		return err
	}
	if comment.Time < story.Time {
		return fmt.Errorf("%s: posted at %d before story %d at %d", what, comment.Time, story.ID, story.Time)
	}
	return s.expectNotFuture(what, comment.Time)
}
