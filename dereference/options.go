package dereference

import (
	"github.com/erraggy/oasref/oaserrors"
	"github.com/erraggy/oasref/oaslog"
	"github.com/erraggy/oasref/resolver"
	"github.com/erraggy/oasref/source"
	"github.com/erraggy/oasref/validate"
)

// Upgrader converts a document to the version the rest of the pipeline
// expects. It may modify doc in place or return a new document.
type Upgrader func(doc map[string]any) map[string]any

// Option is a function that configures a dereference operation
type Option func(*config) error

type config struct {
	plugins       source.Plugins
	source        string
	throwOnError  bool
	upgrader      Upgrader
	validator     validate.Validator
	onDereference resolver.DereferenceFunc
	concurrency   int
	logger        oaslog.Logger
}

// WithPlugins replaces the default source plugins.
func WithPlugins(plugins ...source.Plugin) Option {
	return func(cfg *config) error {
		cfg.plugins = source.NewPlugins(plugins...)
		return nil
	}
}

// WithSource sets the identifier of an in-memory input.
func WithSource(id string) Option {
	return func(cfg *config) error {
		cfg.source = id
		return nil
	}
}

// WithThrowOnError stops at the first load, validation or resolution error.
func WithThrowOnError(enabled bool) Option {
	return func(cfg *config) error {
		cfg.throwOnError = enabled
		return nil
	}
}

// WithUpgrader runs fn on the entrypoint document after loading.
func WithUpgrader(fn Upgrader) Option {
	return func(cfg *config) error {
		cfg.upgrader = fn
		return nil
	}
}

// WithValidator validates the entrypoint document before it is
// dereferenced.
func WithValidator(v validate.Validator) Option {
	return func(cfg *config) error {
		cfg.validator = v
		return nil
	}
}

// WithOnDereference registers a callback invoked for every replaced $ref.
func WithOnDereference(fn resolver.DereferenceFunc) Option {
	return func(cfg *config) error {
		cfg.onDereference = fn
		return nil
	}
}

// WithConcurrency limits the number of documents loaded in parallel.
func WithConcurrency(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return &oaserrors.ConfigError{Option: "concurrency", Value: n, Message: "must be at least 1"}
		}
		cfg.concurrency = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l oaslog.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = l
		return nil
	}
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	cfg.logger = oaslog.OrNop(cfg.logger)
	return cfg, nil
}
