// Package files exposes a directory tree as MCP resources.
package files

// file: internal/providers/files/watcher.go

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
)

// watcher invalidates the provider's listing cache when anything under the
// root changes. Directories are watched recursively; fsnotify does not do
// that itself, so new directories are added as create events arrive.
type watcher struct {
	provider *Provider
	fsw      *fsnotify.Watcher
	logger   logging.Logger
}

func newWatcher(p *Provider, logger logging.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &watcher{
		provider: p,
		fsw:      fsw,
		logger:   logger.WithField("component", "files_watcher"),
	}, nil
}

// run registers the root tree and starts the event loop. It returns after
// registration; the loop runs until the context ends or close is called.
func (w *watcher) run(ctx context.Context) error {
	if err := w.addTree(w.provider.root); err != nil {
		_ = w.fsw.Close()
		return err
	}

	go w.loop(ctx)
	w.logger.Debug("File watcher started.", "root", w.provider.root)
	return nil
}

// addTree registers dir and every non-ignored subdirectory.
func (w *watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.provider.root, path)
		if err == nil && rel != "." && w.provider.ignored(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Debug("Failed to watch directory.", "path", path, "error", err)
		}
		return nil
	})
}

func (w *watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.provider.invalidate()
			if event.Has(fsnotify.Create) {
				w.maybeWatchDir(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error.", "error", err)
		}
	}
}

// maybeWatchDir adds path to the watch set when it is a directory.
func (w *watcher) maybeWatchDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	rel, err := filepath.Rel(w.provider.root, path)
	if err != nil || w.provider.ignored(filepath.ToSlash(rel)) {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Debug("Failed to watch new directory.", "path", path, "error", err)
	}
}

func (w *watcher) close() error {
	return w.fsw.Close()
}
