// Package files exposes a directory tree as MCP resources, plus prompts
// that operate on individual files. Paths are addressed as file:/// URIs
// relative to the configured root; nothing outside the root is ever
// served.
package files

// file: internal/providers/files/provider.go

import (
	"context"
	"encoding/base64"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcperrors"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcptypes"
)

// uriScheme prefixes every resource URI served by this provider.
const uriScheme = "file:///"

// maxListedResources caps the resource listing so a huge tree cannot blow
// out a list response.
const maxListedResources = 1000

// maxFileSize caps a single resource read at 4MB.
const maxFileSize = 4 * 1024 * 1024

// Provider serves files under a root directory as resources and file
// prompts. It implements the resource and prompt provider interfaces.
type Provider struct {
	root   string
	ignore []string
	logger logging.Logger

	mu    sync.RWMutex
	cache []mcptypes.Resource

	watcher *watcher
}

// NewProvider creates a file provider rooted at root. ignore holds
// doublestar glob patterns matched against root-relative paths.
func NewProvider(root string, ignore []string, logger logging.Logger) (*Provider, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving files root %s", root)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, errors.Wrapf(err, "files root %s is not accessible", absRoot)
	}
	if !info.IsDir() {
		return nil, errors.Newf("files root %s is not a directory", absRoot)
	}

	return &Provider{
		root:   absRoot,
		ignore: ignore,
		logger: logger.WithField("component", "files_provider"),
	}, nil
}

// Name returns the provider's name prefix.
func (p *Provider) Name() string { return "files" }

// Root returns the absolute root directory being served.
func (p *Provider) Root() string { return p.root }

// Start begins watching the root for changes so the resource listing stays
// fresh. Without Start, every listing walks the tree.
func (p *Provider) Start(ctx context.Context) error {
	w, err := newWatcher(p, p.logger)
	if err != nil {
		return err
	}
	p.watcher = w
	return w.run(ctx)
}

// Close stops the change watcher, if one was started.
func (p *Provider) Close() error {
	if p.watcher != nil {
		return p.watcher.close()
	}
	return nil
}

// Resources lists the files under the root, ignored paths excluded. The
// listing is cached until the watcher reports a change.
func (p *Provider) Resources() []mcptypes.Resource {
	p.mu.RLock()
	cached := p.cache
	p.mu.RUnlock()
	if cached != nil {
		return append([]mcptypes.Resource(nil), cached...)
	}

	listing := p.walk()
	p.mu.Lock()
	p.cache = listing
	p.mu.Unlock()
	return append([]mcptypes.Resource(nil), listing...)
}

// invalidate drops the cached listing.
func (p *Provider) invalidate() {
	p.mu.Lock()
	p.cache = nil
	p.mu.Unlock()
}

func (p *Provider) walk() []mcptypes.Resource {
	listing := make([]mcptypes.Resource, 0, 64)

	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			p.logger.Debug("Skipping unreadable path.", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(p.root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if p.ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		listing = append(listing, mcptypes.Resource{
			URI:      uriScheme + rel,
			Name:     rel,
			MimeType: mimeTypeFor(rel),
		})
		if len(listing) >= maxListedResources {
			return errors.New("listing truncated")
		}
		return nil
	})
	if err != nil {
		p.logger.Debug("Resource listing stopped early.", "count", len(listing), "reason", err)
	}
	return listing
}

// ReadResource serves one file under the root.
func (p *Provider) ReadResource(_ context.Context, uri string) (*mcptypes.ResourceContent, error) {
	rel, ok := strings.CutPrefix(uri, uriScheme)
	if !ok || rel == "" {
		return nil, mcperrors.NewResourceNotFoundError(uri)
	}

	path, err := p.resolve(rel)
	if err != nil {
		return nil, err
	}
	if p.ignored(filepath.ToSlash(rel)) {
		return nil, mcperrors.NewResourceNotFoundError(uri)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, mcperrors.NewResourceNotFoundError(uri)
	}
	if info.Size() > maxFileSize {
		return nil, mcperrors.NewProviderError("file exceeds the resource size limit", nil)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- resolve confines path to the root.
	if err != nil {
		return nil, mcperrors.NewProviderError("reading file", err)
	}

	if utf8.Valid(data) {
		content := mcptypes.NewTextResource(uri, mimeTypeFor(rel), string(data))
		return &content, nil
	}
	content := mcptypes.NewBlobResource(uri, mimeTypeFor(rel), base64.StdEncoding.EncodeToString(data))
	return &content, nil
}

// resolve maps a root-relative path onto the filesystem, rejecting any
// path that escapes the root.
func (p *Provider) resolve(rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", mcperrors.NewResourceNotFoundError(uriScheme + rel)
	}
	return filepath.Join(p.root, cleaned), nil
}

// ignored reports whether the root-relative slash path matches any ignore
// pattern.
func (p *Provider) ignored(rel string) bool {
	for _, pattern := range p.ignore {
		if match, _ := doublestar.Match(pattern, rel); match {
			return true
		}
	}
	return false
}

// mimeTypeFor picks a MIME type from the file extension.
func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		return "text/markdown"
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".html", ".htm":
		return "text/html"
	case ".txt", ".log":
		return "text/plain"
	case ".go", ".rs", ".py", ".js", ".ts", ".c", ".h", ".sh":
		return "text/plain"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
