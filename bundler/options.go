package bundler

import (
	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/oaserrors"
	"github.com/erraggy/oasref/oaslog"
	"github.com/erraggy/oasref/source"
)

const (
	// DefaultExternalsKey is the root property holding embedded documents.
	DefaultExternalsKey = "x-ext"

	// DefaultConcurrency is the default number of fetches in flight.
	DefaultConcurrency = 8
)

// Option is a function that configures a bundle operation
type Option func(*bundleConfig) error

type bundleConfig struct {
	plugins      source.Plugins
	treeShake    bool
	urlMap       bool
	partialRoot  map[string]any
	cache        *Cache
	visited      *document.NodeSet
	maxDepth     int
	origin       string
	hasOrigin    bool
	compress     func(string) string
	hooks        hookList
	logger       oaslog.Logger
	concurrency  int
	externalsKey string
}

// WithPlugins sets the source plugins used to fetch external documents.
// Defaults to source.Default().
func WithPlugins(plugins ...source.Plugin) Option {
	return func(cfg *bundleConfig) error {
		cfg.plugins = source.NewPlugins(plugins...)
		return nil
	}
}

// WithTreeShake embeds only the referenced parts of external documents,
// plus whatever they reference locally.
func WithTreeShake(enabled bool) Option {
	return func(cfg *bundleConfig) error {
		cfg.treeShake = enabled
		return nil
	}
}

// WithURLMap records the identifier behind every externals key in
// "<externals key>-urls".
func WithURLMap(enabled bool) Option {
	return func(cfg *bundleConfig) error {
		cfg.urlMap = enabled
		return nil
	}
}

// WithRoot bundles the input as a part of root: externals are stored in
// root, and local references are followed into root. Implies WithURLMap.
func WithRoot(root map[string]any) Option {
	return func(cfg *bundleConfig) error {
		if root == nil {
			return &oaserrors.ConfigError{Option: "root", Message: "root document must not be nil"}
		}
		cfg.partialRoot = root
		return nil
	}
}

// WithCache shares fetched documents and keys with other Bundle calls.
func WithCache(c *Cache) Option {
	return func(cfg *bundleConfig) error {
		if c == nil {
			return &oaserrors.ConfigError{Option: "cache", Message: "cache must not be nil"}
		}
		cfg.cache = c
		return nil
	}
}

// WithVisitedNodes shares the set of processed nodes with other Bundle
// calls. Nodes in the set are skipped.
func WithVisitedNodes(set *document.NodeSet) Option {
	return func(cfg *bundleConfig) error {
		if set == nil {
			return &oaserrors.ConfigError{Option: "visited nodes", Message: "set must not be nil"}
		}
		cfg.visited = set
		return nil
	}
}

// WithDepth stops traversal below depth n; the input is at depth 0.
// Implies WithURLMap.
func WithDepth(n int) Option {
	return func(cfg *bundleConfig) error {
		if n < 0 {
			return &oaserrors.ConfigError{Option: "depth", Value: n, Message: "must not be negative"}
		}
		cfg.maxDepth = n
		return nil
	}
}

// WithOrigin sets the identifier relative references in the input are
// resolved against. It overrides the identifier of a string input.
func WithOrigin(origin string) Option {
	return func(cfg *bundleConfig) error {
		cfg.origin = origin
		cfg.hasOrigin = true
		return nil
	}
}

// WithCompress replaces the default content key (the first hex digits of
// the SHA-1 of the identifier).
func WithCompress(fn func(identifier string) string) Option {
	return func(cfg *bundleConfig) error {
		cfg.compress = fn
		return nil
	}
}

// WithHooks registers bundling hooks. It may be given more than once.
func WithHooks(h Hooks) Option {
	return func(cfg *bundleConfig) error {
		cfg.hooks = append(cfg.hooks, h)
		return nil
	}
}

// WithLogger sets the logger. Fetch failures are logged as warnings.
func WithLogger(l oaslog.Logger) Option {
	return func(cfg *bundleConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithConcurrency limits the number of fetches in flight.
func WithConcurrency(n int) Option {
	return func(cfg *bundleConfig) error {
		if n < 1 {
			return &oaserrors.ConfigError{Option: "concurrency", Value: n, Message: "must be at least 1"}
		}
		cfg.concurrency = n
		return nil
	}
}

// WithExternalsKey changes the root property holding embedded documents.
func WithExternalsKey(key string) Option {
	return func(cfg *bundleConfig) error {
		if key == "" {
			return &oaserrors.ConfigError{Option: "externals key", Message: "must not be empty"}
		}
		cfg.externalsKey = key
		return nil
	}
}

func applyOptions(opts ...Option) (*bundleConfig, error) {
	cfg := &bundleConfig{
		maxDepth:     -1,
		concurrency:  DefaultConcurrency,
		externalsKey: DefaultExternalsKey,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.plugins == nil {
		cfg.plugins = source.Default()
	}
	if cfg.cache == nil {
		cfg.cache = NewCache()
	}
	if cfg.visited == nil {
		cfg.visited = document.NewNodeSet()
	}
	cfg.logger = oaslog.OrNop(cfg.logger)
	return cfg, nil
}
