package checks

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/samvad-hq/hn-contract-checks/pkg/hnapi"
)

// Check ids of the default suite.
const (
	TopStoriesContract    = "top-stories/contract"
	TopStoriesLimits      = "top-stories/limits"
	TopStoriesUnique      = "top-stories/unique"
	TopStoriesLatency     = "top-stories/latency"
	TopStoriesConsistency = "top-stories/consistency"
	TopStorySchema        = "top-story/schema"
	TopStoryTimestamp     = "top-story/timestamp"
	TopStoryAuthor        = "top-story/author"
	CommentsFirst         = "comments/first"
	NegativeMissingItem   = "negative/missing-item"
	NegativeMissingUser   = "negative/missing-user"
)

// hnLaunch is 2007-01-01T00:00:00Z; no item can be older.
const hnLaunch int64 = 1167609600

const (
	clockSkew             = time.Hour
	maxTopStories         = 500
	minTitleLen           = 3
	maxTitleLen           = 300
	maxAuthorLen          = 50
	maxCommentLen         = 10000
	uniqueSample          = 50
	consistencySample     = 5
	minOverlap            = 0.8
	commentSearchWindow   = 10
	defaultMissingItemID  = 999999999
	defaultMissingUser    = "zz-no-such-user-0"
	defaultMaxListLatency = time.Second
)

var (
	listLimits    = []int{1, 5, 10, 25, 100}
	invalidLimits = []int{0, -1, -10}
)

// Options tunes the default suite.
type Options struct {
	// Now is the clock used for timestamp bounds.
	Now func() time.Time
	// MissingItemID is an id that must not exist upstream.
	MissingItemID int64
	// MissingUser is a username that must not exist upstream.
	MissingUser string
	// MaxListLatency bounds a top-10 list fetch. Negative disables the check.
	MaxListLatency time.Duration
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.MissingItemID <= 0 {
		o.MissingItemID = defaultMissingItemID
	}
	if strings.TrimSpace(o.MissingUser) == "" {
		o.MissingUser = defaultMissingUser
	}
	if o.MaxListLatency == 0 {
		o.MaxListLatency = defaultMaxListLatency
	}
	return o
}

// Default returns the HN contract suite.
func Default(opts Options) Registry {
	opts = opts.withDefaults()
	s := suite{opts: opts}

	checks := []Check{
		NewCheck(TopStoriesContract, s.topStoriesContract),
		NewCheck(TopStoriesLimits, s.topStoriesLimits),
		NewCheck(TopStoriesUnique, s.topStoriesUnique),
	}
	if opts.MaxListLatency > 0 {
		checks = append(checks, NewCheck(TopStoriesLatency, s.topStoriesLatency))
	}
	checks = append(checks,
		NewCheck(TopStoriesConsistency, s.topStoriesConsistency),
		NewCheck(TopStorySchema, s.topStorySchema),
		NewCheck(TopStoryTimestamp, s.topStoryTimestamp),
		NewCheck(TopStoryAuthor, s.topStoryAuthor),
		NewCheck(CommentsFirst, s.firstComment),
		NewCheck(NegativeMissingItem, s.missingItem),
		NewCheck(NegativeMissingUser, s.missingUser),
	)
	return NewRegistry(checks...)
}

type suite struct {
	opts Options
}

// expectJSON asserts a 200 response with a JSON content type.
func expectJSON(what string, resp *hnapi.Response) error {
	if resp == nil {
		return fmt.Errorf("%s: no response recorded", what)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("%s: status %d, want 200", what, resp.StatusCode)
	}
	if !resp.IsJSON() {
		return fmt.Errorf("%s: content type %q, want application/json", what, resp.Header.Get("Content-Type"))
	}
	return nil
}

func expectPositiveIDs(what string, ids []int64) error {
	for i, id := range ids {
		if id <= 0 {
			return fmt.Errorf("%s: id at index %d is %d, want positive", what, i, id)
		}
	}
	return nil
}

func expectAuthor(what, author string) error {
	n := utf8.RuneCountInString(author)
	switch {
	case n < 1:
		return fmt.Errorf("%s: author is empty", what)
	case n > maxAuthorLen:
		return fmt.Errorf("%s: author %q longer than %d characters", what, author, maxAuthorLen)
	case strings.TrimSpace(author) != author:
		return fmt.Errorf("%s: author %q has surrounding whitespace", what, author)
	}
	return nil
}

func (s suite) expectNotFuture(what string, ts int64) error {
	limit := s.opts.Now().Add(clockSkew).Unix()
	if ts > limit {
		return fmt.Errorf("%s: timestamp %d is in the future (limit %d)", what, ts, limit)
	}
	return nil
}

// allUpper reports whether s has cased letters and all of them are upper case.
func allUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
