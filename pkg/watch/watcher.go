// Package watch reports files created inside workspace roots to the
// interception policy, for files that appear without going through the
// intercepting filesystem.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jingkaihe/p4gate/internal/errx"
)

// CreateHandler receives newly created regular files.
type CreateHandler interface {
	AfterCreate(ctx context.Context, path string) error
}

// DefaultIgnore skips version-control metadata and editor swap files.
var DefaultIgnore = []string{".git", ".svn", ".hg", ".p4root", "*.swp", "*~", ".#*"}

// Watcher follows directory trees with fsnotify. New directories are
// watched as they appear and the files already inside them are reported.
type Watcher struct {
	fsw     *fsnotify.Watcher
	handler CreateHandler
	filter  func(path string) bool
	ignore  []string
	logger  *slog.Logger

	mu     sync.Mutex
	paths  map[string]bool
	closed bool
}

type Option func(*Watcher)

// WithFilter restricts reporting to paths for which filter returns true.
func WithFilter(filter func(path string) bool) Option {
	return func(w *Watcher) {
		w.filter = filter
	}
}

// WithIgnore replaces DefaultIgnore. Patterns match base names with
// filepath.Match.
func WithIgnore(patterns ...string) Option {
	return func(w *Watcher) {
		w.ignore = patterns
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

func New(handler CreateHandler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errx.Wrap(ErrCreateWatcher, err)
	}
	w := &Watcher{
		fsw:     fsw,
		handler: handler,
		ignore:  DefaultIgnore,
		logger:  slog.Default(),
		paths:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "watch")
	return w, nil
}

// Add watches root and every directory below it.
func (w *Watcher) Add(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return errx.Wrap(ErrAddPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return errx.Wrap(ErrAddPath, err)
	}
	if !info.IsDir() {
		return errx.With(ErrAddPath, ": %s is not a directory", abs)
	}
	return w.addTree(abs, nil)
}

// Paths returns the watched directories.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.paths))
	for p := range w.paths {
		out = append(out, p)
	}
	return out
}

// Run dispatches events until ctx is done or the watcher is closed.
// Handler failures are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) || w.ignored(ev.Name) {
		return
	}
	info, err := os.Lstat(ev.Name)
	if err != nil {
		return
	}
	switch {
	case info.IsDir():
		var found []string
		if err := w.addTree(ev.Name, &found); err != nil {
			w.logger.Warn("watch new directory", "path", ev.Name, "error", err)
		}
		for _, f := range found {
			w.created(ctx, f)
		}
	case info.Mode().IsRegular():
		w.created(ctx, ev.Name)
	}
}

func (w *Watcher) created(ctx context.Context, path string) {
	if w.filter != nil && !w.filter(path) {
		return
	}
	if err := w.handler.AfterCreate(ctx, path); err != nil {
		w.logger.Warn("handle created file", "path", path, "error", err)
		return
	}
	w.logger.Debug("handled created file", "path", path)
}

// addTree watches dir and its subdirectories. Regular files found on the
// way are appended to files when it is non-nil.
func (w *Watcher) addTree(dir string, files *[]string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if p != dir && w.ignored(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if files != nil && d.Type().IsRegular() {
				*files = append(*files, p)
			}
			return nil
		}
		return w.watch(p)
	})
}

func (w *Watcher) watch(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.paths[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return errx.Wrap(ErrAddPath, err)
	}
	w.paths[dir] = true
	return nil
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.ignore {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
