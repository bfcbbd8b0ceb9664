// Package dereference runs the full pipeline: load a document and its
// dependencies, optionally upgrade and validate it, then resolve every
// reference.
//
//	result, err := dereference.Dereference(ctx, "openapi.yaml",
//	    dereference.WithValidator(v),
//	)
//	if err != nil {
//	    return err
//	}
//	if !result.Valid {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package dereference

import (
	"context"
	"fmt"

	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/filesystem"
	"github.com/erraggy/oasref/loader"
	"github.com/erraggy/oasref/oaserrors"
	"github.com/erraggy/oasref/resolver"
	"github.com/erraggy/oasref/validate"
)

// Result is the outcome of Dereference.
type Result struct {
	// Valid is true when nothing was reported by any stage.
	Valid bool
	// Errors lists load and resolution errors.
	Errors []error
	// Schema is the dereferenced entrypoint document.
	Schema any
	// Filesystem holds the dereferenced copies of every loaded document.
	Filesystem filesystem.Filesystem
	// Version is the "openapi" or "swagger" field of the document, after
	// upgrading.
	Version string
	// Validation is the validator's report, if a validator was set.
	Validation *validate.Result
}

// Dereference loads input (see loader.Load for accepted inputs) and returns
// it fully dereferenced.
func Dereference(ctx context.Context, input any, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("dereference: invalid options: %w", err)
	}

	loaded, err := loader.Load(ctx, input, cfg.loaderOptions()...)
	if err != nil {
		return nil, err
	}
	result := &Result{Errors: loaded.Errors}
	if len(loaded.Filesystem) == 0 {
		return result, nil
	}

	entry := loaded.Filesystem.Entrypoint()
	if entry == nil {
		return nil, &oaserrors.ConfigError{Option: "input", Message: "filesystem has no entrypoint"}
	}
	if m, ok := entry.Value.(map[string]any); ok && cfg.upgrader != nil {
		upgraded := cfg.upgrader(m)
		entry.Value = upgraded
		entry.References = document.ExternalRefs(upgraded)
	}
	result.Version = validate.DetectVersion(entry.Value)
	cfg.logger.Debug("loaded document",
		"documents", len(loaded.Filesystem),
		"version", result.Version)

	if cfg.validator != nil {
		report, err := cfg.validator.Validate(ctx, entry.Value)
		if err != nil {
			return nil, fmt.Errorf("dereference: validation failed: %w", err)
		}
		result.Validation = report
		if cfg.throwOnError {
			if err := report.Err(); err != nil {
				return nil, err
			}
		}
	}

	resolved, err := resolver.Resolve(loaded.Filesystem, cfg.resolverOptions()...)
	if err != nil {
		return nil, err
	}
	result.Errors = append(result.Errors, resolved.Errors...)
	result.Schema = resolved.Schema
	result.Filesystem = resolved.Filesystem
	result.Valid = len(result.Errors) == 0 && (result.Validation == nil || result.Validation.Valid)
	return result, nil
}

func (cfg *config) loaderOptions() []loader.Option {
	opts := []loader.Option{
		loader.WithThrowOnError(cfg.throwOnError),
		loader.WithLogger(cfg.logger),
	}
	if cfg.plugins != nil {
		opts = append(opts, loader.WithPlugins(cfg.plugins...))
	}
	if cfg.source != "" {
		opts = append(opts, loader.WithSource(cfg.source))
	}
	if cfg.concurrency > 0 {
		opts = append(opts, loader.WithConcurrency(cfg.concurrency))
	}
	return opts
}

func (cfg *config) resolverOptions() []resolver.Option {
	return []resolver.Option{
		resolver.WithThrowOnError(cfg.throwOnError),
		resolver.WithOnDereference(cfg.onDereference),
		resolver.WithLogger(cfg.logger),
	}
}
