package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/erraggy/oasref"
	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/oaserrors"
)

const (
	// URLPriority is the default priority of the URL plugin.
	URLPriority = 200

	// DefaultFetchLimit is the default number of documents a URL plugin
	// fetches before it starts refusing.
	DefaultFetchLimit = 20
)

// Fetcher retrieves the body at rawURL. header carries the user agent and
// any per-domain headers.
type Fetcher func(ctx context.Context, rawURL string, header http.Header) ([]byte, error)

// URL fetches documents over http and https.
type URL struct {
	client    *http.Client
	fetch     Fetcher
	limit     int
	count     atomic.Int64
	sem       *semaphore.Weighted
	userAgent string
	priority  int

	mu      sync.RWMutex
	headers map[string]http.Header
}

// URLOption configures a URL plugin.
type URLOption func(*URL)

// WithHTTPClient sets the client used by the default fetcher.
func WithHTTPClient(c *http.Client) URLOption {
	return func(u *URL) { u.client = c }
}

// WithFetcher replaces the HTTP fetch entirely.
func WithFetcher(f Fetcher) URLOption {
	return func(u *URL) { u.fetch = f }
}

// WithFetchLimit caps the number of fetches. Zero disables fetching and a
// negative value removes the cap.
func WithFetchLimit(n int) URLOption {
	return func(u *URL) { u.limit = n }
}

// WithConcurrency caps the number of fetches in flight.
func WithConcurrency(n int) URLOption {
	return func(u *URL) {
		if n > 0 {
			u.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithDomainHeaders sends header with every request to host and its
// subdomains, for example an Authorization header.
func WithDomainHeaders(host string, header http.Header) URLOption {
	return func(u *URL) { u.setHeaders(host, header) }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) URLOption {
	return func(u *URL) { u.userAgent = ua }
}

// WithURLPriority overrides URLPriority.
func WithURLPriority(p int) URLOption {
	return func(u *URL) { u.priority = p }
}

// NewURL creates a URL plugin.
func NewURL(opts ...URLOption) *URL {
	u := &URL{
		limit:     DefaultFetchLimit,
		userAgent: oasref.UserAgent(),
		priority:  URLPriority,
		headers:   make(map[string]http.Header),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.client == nil {
		u.client = &http.Client{Timeout: 30 * time.Second}
	}
	if u.fetch == nil {
		u.fetch = u.httpFetch
	}
	return u
}

// Name implements Plugin.
func (u *URL) Name() string { return "url" }

// Priority implements Plugin.
func (u *URL) Priority() int { return u.priority }

// CanHandle accepts http and https URLs.
func (u *URL) CanHandle(identifier string) bool {
	return document.IsRemoteURL(identifier)
}

// ResolveIdentifier implements IdentifierResolver.
func (u *URL) ResolveIdentifier(base, relative string) string {
	return document.ResolveIdentifier(base, relative)
}

// Fetched returns the number of fetches attempted so far.
func (u *URL) Fetched() int {
	return int(u.count.Load())
}

// Fetch implements Plugin. Once the fetch limit is reached it returns a
// ResourceLimitError without contacting the server.
func (u *URL) Fetch(ctx context.Context, identifier string) (*Content, error) {
	if n := u.count.Add(1); u.limit >= 0 && n > int64(u.limit) {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "fetch_count",
			Limit:        int64(u.limit),
			Actual:       n,
			Message:      identifier,
		}
	}
	if u.sem != nil {
		if err := u.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer u.sem.Release(1)
	}

	data, err := u.fetch(ctx, identifier, u.headersFor(identifier))
	if err != nil {
		return nil, err
	}
	value, format, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("source: decoding %s: %w", identifier, err)
	}
	return &Content{Identifier: identifier, Raw: data, Value: value, Format: format}, nil
}

func (u *URL) httpFetch(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("source: failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := u.client.Do(req) //nolint:gosec // G704 - URL comes from the document being processed
	if err != nil {
		return nil, fmt.Errorf("source: failed to fetch URL: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("source: HTTP %d: %s", resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("source: failed to read response body: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        MaxFileSize,
			Message:      rawURL,
		}
	}
	return data, nil
}

func (u *URL) setHeaders(host string, header http.Header) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.headers == nil {
		u.headers = make(map[string]http.Header)
	}
	u.headers[strings.ToLower(host)] = header.Clone()
}

func (u *URL) headersFor(rawURL string) http.Header {
	h := make(http.Header)
	if u.userAgent != "" {
		h.Set("User-Agent", u.userAgent)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return h
	}
	host := strings.ToLower(parsed.Hostname())

	u.mu.RLock()
	defer u.mu.RUnlock()
	for domain, extra := range u.headers {
		if host != domain && !strings.HasSuffix(host, "."+domain) {
			continue
		}
		for k, vs := range extra {
			h[k] = append([]string(nil), vs...)
		}
	}
	return h
}

var (
	_ Plugin             = (*URL)(nil)
	_ IdentifierResolver = (*URL)(nil)
)
