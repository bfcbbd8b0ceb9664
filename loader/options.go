package loader

import (
	"github.com/erraggy/oasref/oaserrors"
	"github.com/erraggy/oasref/oaslog"
	"github.com/erraggy/oasref/source"
)

// DefaultConcurrency is the number of documents fetched in parallel.
const DefaultConcurrency = 8

// Option is a function that configures a load operation
type Option func(*loadConfig) error

type loadConfig struct {
	plugins      source.Plugins
	source       string
	throwOnError bool
	concurrency  int
	logger       oaslog.Logger
}

// WithPlugins replaces the default source plugins.
func WithPlugins(plugins ...source.Plugin) Option {
	return func(cfg *loadConfig) error {
		cfg.plugins = source.NewPlugins(plugins...)
		return nil
	}
}

// WithSource sets the identifier of an in-memory input, used as the base
// for its relative references.
func WithSource(id string) Option {
	return func(cfg *loadConfig) error {
		cfg.source = id
		return nil
	}
}

// WithThrowOnError makes Load return the first error instead of recording it.
func WithThrowOnError(enabled bool) Option {
	return func(cfg *loadConfig) error {
		cfg.throwOnError = enabled
		return nil
	}
}

// WithConcurrency caps the number of parallel fetches.
func WithConcurrency(n int) Option {
	return func(cfg *loadConfig) error {
		if n < 1 {
			return &oaserrors.ConfigError{Option: "concurrency", Value: n, Message: "must be at least 1"}
		}
		cfg.concurrency = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l oaslog.Logger) Option {
	return func(cfg *loadConfig) error {
		cfg.logger = l
		return nil
	}
}

func applyOptions(opts ...Option) (*loadConfig, error) {
	cfg := &loadConfig{
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.plugins == nil {
		cfg.plugins = source.Default()
	}
	cfg.logger = oaslog.OrNop(cfg.logger)
	return cfg, nil
}
