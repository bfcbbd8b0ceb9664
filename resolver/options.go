package resolver

import (
	"github.com/erraggy/oasref/oaslog"
)

// DereferenceFunc is called after a $ref has been replaced. node is the map
// that held the reference and ref is the reference string it held.
type DereferenceFunc func(node map[string]any, ref string)

// Option is a function that configures a resolve operation
type Option func(*resolveConfig) error

type resolveConfig struct {
	throwOnError  bool
	onDereference DereferenceFunc
	logger        oaslog.Logger
}

// WithThrowOnError makes Resolve return the first error it encounters.
func WithThrowOnError(enabled bool) Option {
	return func(cfg *resolveConfig) error {
		cfg.throwOnError = enabled
		return nil
	}
}

// WithOnDereference registers a callback invoked for every replaced $ref.
func WithOnDereference(fn DereferenceFunc) Option {
	return func(cfg *resolveConfig) error {
		cfg.onDereference = fn
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l oaslog.Logger) Option {
	return func(cfg *resolveConfig) error {
		cfg.logger = l
		return nil
	}
}

func applyOptions(opts ...Option) (*resolveConfig, error) {
	cfg := &resolveConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	cfg.logger = oaslog.OrNop(cfg.logger)
	return cfg, nil
}
