package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/internal/options"
	"github.com/erraggy/oasref/loader"
	"github.com/erraggy/oasref/oaserrors"
	"github.com/erraggy/oasref/source"
)

// specInput represents the three ways a document can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a JSON or YAML document on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch the document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline document content (JSON or YAML)"`
}

// cacheEntry holds a cached load result with LRU ordering and TTL expiry.
type cacheEntry struct {
	result    *loader.Result
	insertAt  time.Time
	expiresAt time.Time
}

// specCacheStore provides a session-scoped cache of loaded filesystems.
// File inputs are keyed by (absolutePath, modTime). Content inputs are keyed
// by a SHA-256 hash. URL inputs are keyed by URL string.
// Entries have per-type TTLs and a background sweeper removes expired entries.
// Cached filesystems are shared: callers must not mutate the documents.
type specCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var specCache = &specCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached result or nil. Expired entries are lazily removed.
func (c *specCacheStore) get(key string) *loader.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		// Touch entry for LRU.
		e.insertAt = time.Now()
		return e.result
	}
	return nil
}

// putWithTTL stores a result with a specific TTL, evicting the oldest entry if at capacity.
func (c *specCacheStore) putWithTTL(key string, result *loader.Result, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{result: result, insertAt: now, expiresAt: now.Add(ttl)}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *specCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes expired entries.
// It is safe to call multiple times; only the first call spawns a sweeper.
// It stops when ctx is cancelled.
func (c *specCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *specCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *specCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// makeCacheKey creates a cache key for the given spec input, or "" when the
// input should not be cached.
func makeCacheKey(s specInput) string {
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		return "content:" + hex.EncodeToString(h[:])
	case s.URL != "":
		return "url:" + s.URL
	default:
		return ""
	}
}

func (s specInput) validate() error {
	if err := options.ValidateSingleInputSource(
		"exactly one of file, url, or content must be provided (got none)",
		"exactly one of file, url, or content must be provided",
		s.File != "", s.URL != "", s.Content != "",
	); err != nil {
		return err
	}
	if n := int64(len(s.Content)); n > cfg.MaxInlineSize {
		return &oaserrors.ResourceLimitError{
			ResourceType: "inline_size",
			Limit:        cfg.MaxInlineSize,
			Actual:       n,
			Message:      "use file input instead, or set OASREF_MAX_INLINE_SIZE to increase",
		}
	}
	return nil
}

// entrypoint returns the loader input and the identifier relative
// references resolve against. Inline content is always decoded here so it
// can never be mistaken for a path.
func (s specInput) entrypoint() (input any, origin string, err error) {
	switch {
	case s.File != "":
		abs, err := filepath.Abs(s.File)
		if err != nil {
			return nil, "", fmt.Errorf("cannot resolve file path: %w", err)
		}
		return abs, abs, nil
	case s.URL != "":
		return s.URL, s.URL, nil
	default:
		value, _, err := document.Parse([]byte(s.Content))
		if err != nil {
			return nil, "", err
		}
		switch value.(type) {
		case map[string]any, []any:
			return value, "", nil
		}
		return nil, "", &oaserrors.ReferenceError{
			Code:    oaserrors.CodeNoContent,
			Message: "content is not a JSON or YAML object",
		}
	}
}

// plugins returns the source plugins every tool fetches through. URL
// fetches go through the SSRF-safe client unless private IPs are allowed.
func plugins() []source.Plugin {
	urlOpts := []source.URLOption{
		source.WithFetchLimit(cfg.FetchLimit),
		source.WithConcurrency(cfg.Concurrency),
	}
	if !cfg.AllowPrivateIPs {
		urlOpts = append(urlOpts, source.WithHTTPClient(newSafeHTTPClient()))
	}
	return []source.Plugin{source.NewInline(), source.NewURL(urlOpts...), source.NewFile()}
}

// load reads the document and its transitive references, using the cache
// for file, URL, and content inputs.
func (s specInput) load(ctx context.Context) (*loader.Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	var key string
	var ttl time.Duration
	if cfg.CacheEnabled {
		key = makeCacheKey(s)
		switch {
		case s.File != "":
			ttl = cfg.CacheFileTTL
		case s.URL != "":
			ttl = cfg.CacheURLTTL
		default:
			ttl = cfg.CacheContentTTL
		}
	}

	if key != "" {
		if cached := specCache.get(key); cached != nil {
			return cached, nil
		}
	}

	input, _, err := s.entrypoint()
	if err != nil {
		return nil, err
	}
	result, err := loader.Load(ctx, input,
		loader.WithPlugins(plugins()...),
		loader.WithConcurrency(cfg.Concurrency),
		loader.WithThrowOnError(true),
	)
	if err != nil {
		return nil, err
	}

	if key != "" {
		specCache.putWithTTL(key, result, ttl)
	}
	return result, nil
}
