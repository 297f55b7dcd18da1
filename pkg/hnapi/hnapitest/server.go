// Package hnapitest runs an in-process fake of the Hacker News API.
//
// The fake mirrors upstream quirks: unknown items and users answer 200 with
// a null body, unknown paths answer 401. Faults can be queued per path to
// exercise the retry contract.
package hnapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/hn-contract-checks/pkg/hnapi"
	"github.com/samvad-hq/hn-contract-checks/pkg/profile"
	"github.com/samvad-hq/hn-contract-checks/pkg/retry"
)

const prefix = "/v0/"

// Fault is a canned failure served instead of the normal response.
type Fault struct {
	Status int
	Body   string
	Delay  time.Duration
	// Drop closes the connection without a response.
	Drop bool
}

// Server is a fake HN API backed by in-memory fixtures.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	bodies map[string]string
	faults map[string][]Fault
	hits   map[string]int
}

// New starts a fake server. Callers must Close it.
func New() *Server {
	s := &Server{
		bodies: make(map[string]string),
		faults: make(map[string][]Fault),
		hits:   make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// BaseURL is the API root, with a trailing slash.
func (s *Server) BaseURL() string { return s.URL + prefix }

// Profile returns a profile pointed at the fake with fast fixed backoff.
func (s *Server) Profile() profile.Profile {
	return profile.Profile{
		Name:            profile.Stage,
		BaseURL:         s.BaseURL(),
		Timeout:         2 * time.Second,
		MaxRetries:      2,
		Backoff:         retry.StrategyFixed,
		BackoffDelay:    time.Millisecond,
		MaxBackoffDelay: 10 * time.Millisecond,
		UserAgent:       "hnapitest",
	}
}

// AddItem serves it at item/<id>.json.
func (s *Server) AddItem(it hnapi.Item) {
	raw, _ := json.Marshal(it)
	s.AddItemJSON(it.ID, string(raw))
}

// AddItemJSON serves raw verbatim at item/<id>.json.
func (s *Server) AddItemJSON(id int64, raw string) {
	s.SetBody(ItemPath(id), raw)
}

// AddUser serves u at user/<id>.json.
func (s *Server) AddUser(u hnapi.User) {
	raw, _ := json.Marshal(u)
	s.SetBody(UserPath(u.ID), string(raw))
}

// SetList serves ids at <list>.json.
func (s *Server) SetList(list hnapi.StoryList, ids ...int64) {
	if ids == nil {
		ids = []int64{}
	}
	raw, _ := json.Marshal(ids)
	s.SetBody(string(list)+".json", string(raw))
}

// SetBody serves raw verbatim at path (relative to the API root).
func (s *Server) SetBody(path, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[strings.TrimPrefix(path, "/")] = raw
}

// FailNext queues faults for path; each request consumes one.
func (s *Server) FailNext(path string, faults ...Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path = strings.TrimPrefix(path, "/")
	s.faults[path] = append(s.faults[path], faults...)
}

// Hits reports how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[strings.TrimPrefix(path, "/")]
}

// ItemPath is the API path of an item.
func ItemPath(id int64) string { return "item/" + strconv.FormatInt(id, 10) + ".json" }

// UserPath is the API path of a user.
func UserPath(id string) string { return "user/" + id + ".json" }

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || !strings.HasPrefix(r.URL.Path, prefix) {
		writeJSON(w, http.StatusUnauthorized, `{"error":"Permission denied"}`)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, prefix)

	s.mu.Lock()
	s.hits[path]++
	var fault *Fault
	if queued := s.faults[path]; len(queued) > 0 {
		f := queued[0]
		fault = &f
		s.faults[path] = queued[1:]
	}
	body, ok := s.bodies[path]
	s.mu.Unlock()

	if fault != nil {
		if fault.Delay > 0 {
			select {
			case <-time.After(fault.Delay):
			case <-r.Context().Done():
				return
			}
		}
		if fault.Drop {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
					return
				}
			}
		}
		if fault.Status != 0 {
			writeJSON(w, fault.Status, fault.Body)
			return
		}
	}

	switch {
	case ok:
		writeJSON(w, http.StatusOK, body)
	case strings.HasPrefix(path, "item/"), strings.HasPrefix(path, "user/"):
		writeJSON(w, http.StatusOK, "null")
	default:
		writeJSON(w, http.StatusUnauthorized, `{"error":"Permission denied"}`)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
