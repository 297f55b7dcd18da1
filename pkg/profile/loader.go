package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/hn-contract-checks/pkg/retry"
)

// fileEntry is a single profile override as written in a profiles file.
// Zero values leave the built-in default untouched.
type fileEntry struct {
	BaseURL           string  `json:"base_url" yaml:"base_url"`
	TimeoutSeconds    float64 `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries        *int    `json:"max_retries" yaml:"max_retries"`
	Backoff           string  `json:"backoff" yaml:"backoff"`
	BackoffDelayMs    int     `json:"backoff_delay_ms" yaml:"backoff_delay_ms"`
	MaxBackoffDelayMs int     `json:"max_backoff_delay_ms" yaml:"max_backoff_delay_ms"`
	UserAgent         string  `json:"user_agent" yaml:"user_agent"`
}

// Load reads an optional profiles file (YAML or JSON, keyed by profile name)
// and overlays it on Defaults. An empty path returns Defaults.
//
//	PROD:
//	  base_url: https://hacker-news.firebaseio.com/v0/
//	  timeout_seconds: 10
//	  max_retries: 3
//	  backoff: exponential
func Load(path string) (Set, error) {
	set := Defaults()
	path = strings.TrimSpace(path)
	if path == "" {
		return set, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	entries, err := parseProfiles(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	for key, entry := range entries {
		name, ok := ParseName(key)
		if !ok {
			// Unknown sections are ignored the same way unknown ENV values are.
			continue
		}
		p, err := entry.apply(set[name])
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		p.Name = name
		set[name] = p
	}
	return set, nil
}

func (e fileEntry) apply(p Profile) (Profile, error) {
	if v := strings.TrimSpace(e.BaseURL); v != "" {
		p.BaseURL = v
	}
	if e.TimeoutSeconds > 0 {
		p.Timeout = time.Duration(e.TimeoutSeconds * float64(time.Second))
	}
	if e.MaxRetries != nil {
		p.MaxRetries = *e.MaxRetries
	}
	if strings.TrimSpace(e.Backoff) != "" {
		s, err := retry.ParseStrategy(e.Backoff)
		if err != nil {
			return Profile{}, err
		}
		p.Backoff = s
	}
	if e.BackoffDelayMs > 0 {
		p.BackoffDelay = time.Duration(e.BackoffDelayMs) * time.Millisecond
	}
	if e.MaxBackoffDelayMs > 0 {
		p.MaxBackoffDelay = time.Duration(e.MaxBackoffDelayMs) * time.Millisecond
	}
	if v := strings.TrimSpace(e.UserAgent); v != "" {
		p.UserAgent = v
	}
	return p, nil
}

type unmarshalFn func([]byte, any) error

func parseProfiles(data []byte, ext string) (map[string]fileEntry, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var entries map[string]fileEntry
		if err := d.fn(data, &entries); err != nil {
			lastErr = fmt.Errorf("decode %s profiles: %w", d.name, err)
			continue
		}
		return entries, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("profiles file format not recognized (expected YAML or JSON)")
}
