package checks

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/samvad-hq/hn-contract-checks/pkg/hnapi"
)

func (s suite) topStoriesContract(ctx context.Context, api API) error {
	ids, resp, err := api.StoryIDsWithResponse(ctx, hnapi.TopStories, 0)
	if err != nil {
		return wrapf(err, "fetch top stories")
	}
	if err := expectJSON("top stories", resp); err != nil {
		return err
	}
	if len(ids) < 1 || len(ids) > maxTopStories {
		return fmt.Errorf("top stories: got %d ids, want 1..%d", len(ids), maxTopStories)
	}
	return expectPositiveIDs("top stories", ids)
}

func (s suite) topStoriesLimits(ctx context.Context, api API) error {
	all, err := api.TopStoryIDs(ctx, 0)
	if err != nil {
		return wrapf(err, "fetch all top stories")
	}
	if len(all) <= 10 {
		return fmt.Errorf("full list has %d ids, want more than a limit of 10", len(all))
	}

	for _, limit := range listLimits {
		got, err := api.TopStoryIDs(ctx, limit)
		if err != nil {
			return wrapf(err, "fetch top stories with limit %d", limit)
		}
		if len(got) != limit || len(all) < limit {
			return fmt.Errorf("limit %d: got %d ids from a list of %d", limit, len(got), len(all))
		}
		if err := expectPositiveIDs(fmt.Sprintf("limit %d", limit), got); err != nil {
			return err
		}
		if !slices.Equal(got, all[:limit]) {
			return fmt.Errorf("limit %d: ids are not the head of the full list", limit)
		}
	}

	for _, limit := range invalidLimits {
		got, resp, err := api.StoryIDsWithResponse(ctx, hnapi.TopStories, limit)
		if err != nil {
			return wrapf(err, "fetch top stories with invalid limit %d", limit)
		}
		if resp == nil || resp.StatusCode != 200 {
			return fmt.Errorf("invalid limit %d: want status 200", limit)
		}
		if got == nil {
			return fmt.Errorf("invalid limit %d: got no list", limit)
		}
	}

	got, err := api.TopStoryIDs(ctx, 1000)
	if err != nil {
		return wrapf(err, "fetch top stories with limit 1000")
	}
	if len(got) > maxTopStories {
		return fmt.Errorf("limit 1000: got %d ids, want at most %d", len(got), maxTopStories)
	}
	return nil
}

func (s suite) topStoriesUnique(ctx context.Context, api API) error {
	ids, err := api.TopStoryIDs(ctx, uniqueSample)
	if err != nil {
		return wrapf(err, "fetch top %d stories", uniqueSample)
	}
	seen := make(map[int64]int, len(ids))
	for i, id := range ids {
		if first, dup := seen[id]; dup {
			return fmt.Errorf("id %d repeated at index %d and %d", id, first, i)
		}
		seen[id] = i
	}
	return nil
}

func (s suite) topStoriesLatency(ctx context.Context, api API) error {
	start := time.Now()
	if _, err := api.TopStoryIDs(ctx, 10); err != nil {
		return wrapf(err, "fetch top 10 stories")
	}
	if elapsed := time.Since(start); elapsed >= s.opts.MaxListLatency {
		return fmt.Errorf("top 10 stories took %s, want under %s", elapsed, s.opts.MaxListLatency)
	}
	return nil
}

func (s suite) topStoriesConsistency(ctx context.Context, api API) error {
	first, err := api.TopStoryIDs(ctx, consistencySample)
	if err != nil {
		return wrapf(err, "fetch top stories (first call)")
	}
	second, err := api.TopStoryIDs(ctx, consistencySample)
	if err != nil {
		return wrapf(err, "fetch top stories (second call)")
	}
	if len(first) != consistencySample || len(second) != consistencySample {
		return fmt.Errorf("got %d and %d ids, want %d each", len(first), len(second), consistencySample)
	}

	common := 0
	for _, id := range first {
		if slices.Contains(second, id) {
			common++
		}
	}
	if overlap := float64(common) / float64(len(first)); overlap < minOverlap {
		return fmt.Errorf("consecutive calls overlap %.0f%%, want at least %.0f%%", overlap*100, minOverlap*100)
	}
	return nil
}
