package hnapi_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/hn-contract-checks/pkg/hnapi"
	"github.com/samvad-hq/hn-contract-checks/pkg/hnapi/hnapitest"
	"github.com/samvad-hq/hn-contract-checks/pkg/httpclient"
	"github.com/samvad-hq/hn-contract-checks/pkg/profile"
	"github.com/samvad-hq/hn-contract-checks/pkg/retry"
)

func intPtr(v int) *int    { return &v }
func idPtr(v int64) *int64 { return &v }
func bg() context.Context  { return context.Background() }

func unavailable() hnapitest.Fault {
	return hnapitest.Fault{Status: http.StatusServiceUnavailable, Body: `{"error":"unavailable"}`}
}

func newClient(t *testing.T, srv *hnapitest.Server, mutate func(*profile.Profile), opts ...hnapi.Option) *hnapi.Client {
	t.Helper()
	p := srv.Profile()
	if mutate != nil {
		mutate(&p)
	}
	c, err := hnapi.New(p, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func startServer(t *testing.T) *hnapitest.Server {
	t.Helper()
	srv := hnapitest.New()
	t.Cleanup(srv.Close)
	return srv
}

func TestItemReturnsTypedStory(t *testing.T) {
	srv := startServer(t)
	srv.AddItem(hnapi.Item{ID: 8863, Type: hnapi.TypeStory, By: "dhouston", Time: 1175714200, Title: "Dropbox", Score: intPtr(111), Descendants: intPtr(71), Kids: []int64{8952, 9224}})
	c := newClient(t, srv, nil)

	it, resp, err := c.ItemWithResponse(bg(), 8863)
	require.NoError(t, err)
	assert.Equal(t, int64(8863), it.ID)
	assert.Equal(t, hnapi.TypeStory, it.Type)
	assert.Equal(t, []int64{8952, 9224}, it.Kids)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.IsJSON())
	assert.Equal(t, 1, resp.Attempts)
	assert.Equal(t, srv.BaseURL()+"item/8863.json", resp.URL)
}

func TestItemNullPayloadIsNotFound(t *testing.T) {
	srv := startServer(t)
	c := newClient(t, srv, nil)

	for _, id := range []int64{999999999, 0} {
		it, resp, err := c.ItemWithResponse(bg(), id)
		assert.Nil(t, it)
		var nf *hnapi.NotFoundError
		require.ErrorAs(t, err, &nf, "id %d", id)
		assert.Equal(t, "item", nf.Resource)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "null", string(resp.Body))
	}
}

func TestItemRejectsNegativeIDWithoutRequest(t *testing.T) {
	srv := startServer(t)
	c := newClient(t, srv, nil)

	_, err := c.Item(bg(), -1)
	var argErr *hnapi.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "item_id", argErr.Name)
	assert.Zero(t, srv.Hits(hnapitest.ItemPath(-1)))
}

func TestItemMissingIDIsValidationError(t *testing.T) {
	srv := startServer(t)
	srv.AddItemJSON(42, `{"type":"story","by":"x","time":1}`)
	c := newClient(t, srv, nil)

	_, err := c.Item(bg(), 42)
	var verr *hnapi.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"id"}, verr.Fields())
}

func TestItemMismatchedIDIsValidationError(t *testing.T) {
	srv := startServer(t)
	srv.AddItemJSON(42, `{"id":43,"type":"story"}`)
	c := newClient(t, srv, nil)

	_, err := c.Item(bg(), 42)
	var verr *hnapi.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasViolation("id"))
}

func TestItemMalformedBodyIsValidationError(t *testing.T) {
	srv := startServer(t)
	srv.AddItemJSON(7, `{"id": 7,`)
	c := newClient(t, srv, nil)

	_, err := c.Item(bg(), 7)
	var verr *hnapi.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, `{"id": 7,`, string(verr.Body))
	assert.Error(t, verr.Err)
}

func TestTransientFailuresAreRetried(t *testing.T) {
	srv := startServer(t)
	srv.AddItem(hnapi.Item{ID: 1, Type: hnapi.TypeStory})
	srv.FailNext(hnapitest.ItemPath(1), unavailable(), hnapitest.Fault{Status: http.StatusBadGateway})
	c := newClient(t, srv, nil)

	it, resp, err := c.ItemWithResponse(bg(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), it.ID)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, 3, srv.Hits(hnapitest.ItemPath(1)))
}

func TestRetriesExhaustAfterMaxRetriesPlusOne(t *testing.T) {
	srv := startServer(t)
	srv.AddItem(hnapi.Item{ID: 1})
	srv.FailNext(hnapitest.ItemPath(1), unavailable(), unavailable(), unavailable(), unavailable(), unavailable())
	c := newClient(t, srv, func(p *profile.Profile) { p.MaxRetries = 3 })

	_, err := c.Item(bg(), 1)
	var te *hnapi.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 4, te.Attempts)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	assert.Contains(t, string(te.Body), "unavailable")
	assert.ErrorIs(t, err, hnapi.ErrTransport)
	assert.Equal(t, 4, srv.Hits(hnapitest.ItemPath(1)))
}

func TestNonTransientStatusIsNotRetried(t *testing.T) {
	srv := startServer(t)
	srv.FailNext("topstories.json", hnapitest.Fault{Status: http.StatusBadRequest, Body: `{"error":"bad"}`})
	c := newClient(t, srv, nil)

	_, err := c.TopStoryIDs(bg(), 5)
	var te *hnapi.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, te.Attempts)
	assert.Equal(t, http.StatusBadRequest, te.StatusCode)
	assert.Equal(t, 1, srv.Hits("topstories.json"))
}

func TestUnknownPathIsTransportError(t *testing.T) {
	srv := startServer(t)
	c := newClient(t, srv, nil)

	_, err := c.Raw(bg(), "nosuchthing.json", nil)
	var te *hnapi.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
	assert.Equal(t, 1, te.Attempts)
}

func TestNotFoundStatusIsNotRetried(t *testing.T) {
	srv := startServer(t)
	srv.FailNext(hnapitest.UserPath("ghost"), hnapitest.Fault{Status: http.StatusNotFound})
	c := newClient(t, srv, nil)

	_, err := c.User(bg(), "ghost")
	var nf *hnapi.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user", nf.Resource)
	assert.Equal(t, "ghost", nf.ID)
	assert.Equal(t, 1, srv.Hits(hnapitest.UserPath("ghost")))
}

func TestTooManyRequestsIsRetried(t *testing.T) {
	srv := startServer(t)
	srv.SetList(hnapi.TopStories, 3, 2, 1)
	srv.FailNext("topstories.json", hnapitest.Fault{Status: http.StatusTooManyRequests})
	c := newClient(t, srv, nil)

	ids, err := c.TopStoryIDs(bg(), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, ids)
	assert.Equal(t, 2, srv.Hits("topstories.json"))
}

func TestDroppedConnectionsExhaustRetries(t *testing.T) {
	srv := startServer(t)
	faults := make([]hnapitest.Fault, 20)
	for i := range faults {
		faults[i] = hnapitest.Fault{Drop: true}
	}
	srv.FailNext("maxitem.json", faults...)
	c := newClient(t, srv, nil)

	_, err := c.MaxItemID(bg())
	var te *hnapi.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 3, te.Attempts)
	assert.Zero(t, te.StatusCode)
	assert.Error(t, te.Unwrap())
}

func TestTimeoutIsTransientAndReported(t *testing.T) {
	srv := startServer(t)
	srv.SetBody("maxitem.json", "100")
	slow := hnapitest.Fault{Delay: 500 * time.Millisecond, Status: http.StatusOK, Body: "100"}
	srv.FailNext("maxitem.json", slow, slow)
	c := newClient(t, srv, func(p *profile.Profile) {
		p.Timeout = 50 * time.Millisecond
		p.MaxRetries = 1
	})

	_, err := c.MaxItemID(bg())
	var te *hnapi.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 2, te.Attempts)
	assert.True(t, te.Timeout())
}

func TestElapsedReflectsFixedBackoff(t *testing.T) {
	srv := startServer(t)
	srv.SetList(hnapi.NewStories, 5)
	srv.FailNext("newstories.json", unavailable(), unavailable())
	c := newClient(t, srv, func(p *profile.Profile) {
		p.Backoff = retry.StrategyFixed
		p.BackoffDelay = 30 * time.Millisecond
		p.MaxRetries = 3
	})

	_, resp, err := c.StoryIDsWithResponse(bg(), hnapi.NewStories, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Attempts)
	assert.GreaterOrEqual(t, resp.Elapsed, 60*time.Millisecond)
}

// retryLog records the retry events the client logs.
type retryLog struct {
	events []map[string]any
}

func (l *retryLog) InfoObj(string, string, interface{})  {}
func (l *retryLog) DebugObj(string, string, interface{}) {}
func (l *retryLog) ErrorObj(string, string, interface{}) {}
func (l *retryLog) WarnObj(msg, _ string, obj interface{}) {
	if msg == "hnapi request retry" {
		l.events = append(l.events, obj.(map[string]any))
	}
}

func TestExponentialBackoffDelays(t *testing.T) {
	srv := startServer(t)
	srv.SetList(hnapi.TopStories, 1)
	srv.FailNext("topstories.json", unavailable(), unavailable(), unavailable(), unavailable(), unavailable())
	log := &retryLog{}
	c := newClient(t, srv, func(p *profile.Profile) {
		p.MaxRetries = 4
		p.Backoff = retry.StrategyExponential
		p.BackoffDelay = 10 * time.Millisecond
		p.MaxBackoffDelay = 30 * time.Millisecond
	}, hnapi.WithLogger(log))

	start := time.Now()
	_, err := c.TopStoryIDs(bg(), 10)
	elapsed := time.Since(start)

	var te *hnapi.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 5, te.Attempts)
	assert.Equal(t, 5, srv.Hits("topstories.json"))
	require.Len(t, log.events, 4)
	var waits []int64
	for i, ev := range log.events {
		assert.Equal(t, i+1, ev["attempt"])
		assert.Equal(t, http.StatusServiceUnavailable, ev["status"])
		waits = append(waits, ev["wait_ms"].(int64))
	}
	assert.Equal(t, []int64{10, 20, 30, 30}, waits)
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
}

func TestInjectedClientIsCalledOnce(t *testing.T) {
	var calls atomic.Int32
	fake := httpclient.ClientFunc(func(context.Context, string, map[string]string) (httpclient.Response, error) {
		calls.Add(1)
		return nil, errors.New("dial tcp: connection refused")
	})
	c, err := hnapi.New(profile.Defaults()[profile.Prod], hnapi.WithHTTPClient(fake))
	require.NoError(t, err)

	_, err = c.TopStoryIDs(bg(), 10)
	var te *hnapi.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, te.Attempts)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, te.Error(), "connection refused")

	retried := httpclient.ClientFunc(func(context.Context, string, map[string]string) (httpclient.Response, error) {
		return httpclient.StaticResponse{Status: http.StatusOK, Payload: []byte(`[3,2,1]`), Tries: 3}, nil
	})
	c, err = hnapi.New(profile.Defaults()[profile.Prod], hnapi.WithHTTPClient(retried))
	require.NoError(t, err)
	_, resp, err := c.StoryIDsWithResponse(bg(), hnapi.TopStories, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Attempts)
}

func TestCancelledContextStopsRetrying(t *testing.T) {
	fake := httpclient.ClientFunc(func(context.Context, string, map[string]string) (httpclient.Response, error) {
		return httpclient.StaticResponse{Status: http.StatusServiceUnavailable}, nil
	})
	c, err := hnapi.New(profile.Defaults()[profile.Stage], hnapi.WithHTTPClient(fake))
	require.NoError(t, err)

	cctx, cancel := context.WithCancel(bg())
	cancel()
	_, err = c.Item(cctx, 1)
	var te *hnapi.TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, te.Attempts)
}

func TestTopStoryIDsLimitPreservesOrder(t *testing.T) {
	srv := startServer(t)
	all := []int64{50, 40, 30, 20, 10, 9, 8, 7, 6, 5, 4, 3}
	srv.SetList(hnapi.TopStories, all...)
	c := newClient(t, srv, nil)

	ids, err := c.TopStoryIDs(bg(), 10)
	require.NoError(t, err)
	assert.Equal(t, all[:10], ids)

	for _, limit := range []int{0, -1, -10, 1000} {
		ids, err := c.TopStoryIDs(bg(), limit)
		require.NoError(t, err)
		assert.Equal(t, all, ids, "limit %d", limit)
	}
}

func TestStoryIDsRejectsUnknownList(t *testing.T) {
	srv := startServer(t)
	c := newClient(t, srv, nil)

	_, err := c.StoryIDs(bg(), hnapi.StoryList("hotstories"), 1)
	var argErr *hnapi.ArgumentError
	assert.ErrorAs(t, err, &argErr)
}

func TestUser(t *testing.T) {
	srv := startServer(t)
	srv.AddUser(hnapi.User{ID: "jl", Created: 1173923446, Karma: 2937, Submitted: []int64{8265435}})
	srv.SetBody(hnapitest.UserPath("broken"), `{"id":"broken","karma":"lots"}`)
	c := newClient(t, srv, nil)

	u, err := c.User(bg(), "jl")
	require.NoError(t, err)
	assert.Equal(t, "jl", u.ID)
	assert.Equal(t, 2937, u.Karma)

	_, err = c.User(bg(), "nobody-here")
	var nf *hnapi.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = c.User(bg(), "broken")
	var verr *hnapi.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"created", "karma"}, verr.Fields())

	_, err = c.User(bg(), "  ")
	var argErr *hnapi.ArgumentError
	assert.ErrorAs(t, err, &argErr)
}

func TestTopStoriesWithDetailsSkipsFailures(t *testing.T) {
	srv := startServer(t)
	srv.SetList(hnapi.TopStories, 1, 2, 3)
	srv.AddItem(hnapi.Item{ID: 1, Type: hnapi.TypeStory})
	srv.AddItem(hnapi.Item{ID: 3, Type: hnapi.TypeJob})
	c := newClient(t, srv, nil)

	stories, err := c.TopStoriesWithDetails(bg(), 0)
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, int64(1), stories[0].ID)
	assert.Equal(t, int64(3), stories[1].ID)
}

func TestItemCommentRoundTrip(t *testing.T) {
	srv := startServer(t)
	srv.AddItem(hnapi.Item{ID: 2921983, Type: hnapi.TypeComment, By: "norvig", Time: 1314211127, Text: "Aw shucks", Parent: idPtr(2921506)})
	c := newClient(t, srv, nil)

	it, err := c.Item(bg(), 2921983)
	require.NoError(t, err)
	assert.NoError(t, hnapi.ValidateComment(it))
	assert.Equal(t, int64(2921506), *it.Parent)
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	p := profile.Defaults()[profile.Prod]
	for _, raw := range []string{"", "not a url", "ftp://example.com/v0/", "/v0/"} {
		p.BaseURL = raw
		_, err := hnapi.New(p)
		assert.Error(t, err, "base url %q", raw)
	}

	p.BaseURL = "https://hacker-news.firebaseio.com/v0"
	c, err := hnapi.New(p)
	require.NoError(t, err)
	assert.Equal(t, "https://hacker-news.firebaseio.com/v0/", c.BaseURL())
}
