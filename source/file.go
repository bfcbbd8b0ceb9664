package source

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/oaserrors"
)

// FilePriority is the default priority of the file plugin.
const FilePriority = 100

// File reads documents from a billy filesystem, the host filesystem by
// default.
type File struct {
	fs       billy.Filesystem
	osBacked bool
	maxSize  int64
	priority int
}

// FileOption configures a File plugin.
type FileOption func(*File)

// WithFilesystem reads from fs instead of the host filesystem. Identifiers
// are used as given, without being made absolute.
func WithFilesystem(fs billy.Filesystem) FileOption {
	return func(f *File) {
		f.fs = fs
		f.osBacked = false
	}
}

// WithMaxFileSize overrides MaxFileSize.
func WithMaxFileSize(n int64) FileOption {
	return func(f *File) { f.maxSize = n }
}

// WithFilePriority overrides FilePriority.
func WithFilePriority(p int) FileOption {
	return func(f *File) { f.priority = p }
}

// NewFile creates a file plugin.
func NewFile(opts ...FileOption) *File {
	f := &File{
		fs:       osfs.New("/"),
		osBacked: true,
		maxSize:  MaxFileSize,
		priority: FilePriority,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name implements Plugin.
func (f *File) Name() string { return "file" }

// Priority implements Plugin.
func (f *File) Priority() int { return f.priority }

// CanHandle accepts local paths and file:// URLs. URLs of other schemes and
// identifiers that are themselves JSON or YAML text are rejected.
func (f *File) CanHandle(identifier string) bool {
	if identifier == "" {
		return false
	}
	if strings.HasPrefix(identifier, "file://") {
		return true
	}
	if document.HasScheme(identifier) {
		return false
	}
	return !document.LooksLikeDocument(identifier)
}

// ResolveIdentifier implements IdentifierResolver. On the host filesystem the
// result is made absolute.
func (f *File) ResolveIdentifier(base, relative string) string {
	id := document.ResolveIdentifier(f.path(base), f.path(relative))
	if f.osBacked && !document.IsRemoteURL(id) && !filepath.IsAbs(id) {
		if abs, err := filepath.Abs(id); err == nil {
			return abs
		}
	}
	return id
}

// Fetch implements Plugin.
func (f *File) Fetch(ctx context.Context, identifier string) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := f.ResolveIdentifier("", identifier)

	info, err := f.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("source: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("source: %s is a directory", path)
	}
	if f.maxSize > 0 && info.Size() > f.maxSize {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        f.maxSize,
			Actual:       info.Size(),
			Message:      path,
		}
	}

	data, err := util.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("source: reading %s: %w", path, err)
	}
	value, format, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("source: decoding %s: %w", path, err)
	}
	return &Content{Identifier: path, Raw: data, Value: value, Format: format}, nil
}

func (f *File) path(identifier string) string {
	if !strings.HasPrefix(identifier, "file://") {
		return identifier
	}
	u, err := url.Parse(identifier)
	if err != nil {
		return strings.TrimPrefix(identifier, "file://")
	}
	return u.Path
}

var (
	_ Plugin             = (*File)(nil)
	_ IdentifierResolver = (*File)(nil)
)
