// Package engine wires routing, status, the p4 wrapper and the
// interception policy around one settings store. Hosts (the CLI, the
// watcher, the intercepting filesystem) hold an *Engine; there is no
// process-wide instance.
package engine

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jingkaihe/p4gate/internal/errx"
	"github.com/jingkaihe/p4gate/pkg/api"
	"github.com/jingkaihe/p4gate/pkg/codec"
	"github.com/jingkaihe/p4gate/pkg/logging"
	"github.com/jingkaihe/p4gate/pkg/p4"
	"github.com/jingkaihe/p4gate/pkg/policy"
	"github.com/jingkaihe/p4gate/pkg/route"
	"github.com/jingkaihe/p4gate/pkg/settings"
	"github.com/jingkaihe/p4gate/pkg/status"
	"github.com/jingkaihe/p4gate/pkg/vfs"
)

type Options struct {
	Store     settings.Store
	Executor  p4.Executor
	Confirmer policy.Confirmer

	// Out and Err receive console output. Nil Out disables the console.
	Out io.Writer
	Err io.Writer

	Emitter *logging.Emitter
	Binary  string
	Timeout time.Duration
	Logger  *slog.Logger

	// Writable overrides the filesystem writability check.
	Writable func(path string) bool
}

type Engine struct {
	store  settings.Store
	routes *route.Store
	prefs  atomic.Pointer[api.Preferences]

	// writeMu serializes settings writers. Readers never take it.
	writeMu sync.Mutex

	wrapper     *p4.Wrapper
	status      *status.Provider
	interceptor *policy.Interceptor
	emitter     *logging.Emitter
	logger      *slog.Logger
	warnings    []error
}

// New loads connections and preferences from the store and builds the
// engine. Undecodable stored values fall back to defaults and are
// reported by Warnings.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, ErrMissingStore
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loaded, err := settings.Load(opts.Store, logger)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:    opts.Store,
		routes:   route.NewStore(loaded.Connections, loaded.Preferences.CaseSensitiveWorkspaces),
		emitter:  opts.Emitter,
		logger:   logger.With("component", "engine"),
		warnings: loaded.Warnings,
	}
	prefs := loaded.Preferences
	e.prefs.Store(&prefs)

	var console *logging.Console
	if opts.Out != nil {
		console = logging.NewConsole(opts.Out, opts.Err, func() bool { return e.Preferences().PrintOutput })
	}

	e.wrapper = p4.NewWrapper(e.routes, opts.Executor,
		p4.WithBinary(opts.Binary),
		p4.WithTimeout(opts.Timeout),
		p4.WithConsole(console),
		p4.WithEmitter(opts.Emitter),
		p4.WithLogger(logger),
	)
	e.status = status.NewProvider(e.wrapper, status.WithLogger(logger))

	confirmer := opts.Confirmer
	if confirmer == nil {
		confirmer = policy.ConfirmFunc(func(string, string) bool { return false })
	}
	e.interceptor, err = policy.NewInterceptor(policy.Deps{
		Commands:    e.wrapper,
		Status:      e.status,
		Confirmer:   confirmer,
		Preferences: e.Preferences,
		Writable:    opts.Writable,
		Logger:      logger,
		Emitter:     opts.Emitter,
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("engine ready",
		"connections", len(loaded.Connections),
		"preferences", codec.EncodePreferences(prefs),
	)
	return e, nil
}

// Warnings returns the decode problems recovered from at load time.
func (e *Engine) Warnings() []error {
	return append([]error(nil), e.warnings...)
}

// Preferences returns the current preferences.
func (e *Engine) Preferences() api.Preferences {
	return *e.prefs.Load()
}

// Connections returns the configured connections in order.
func (e *Engine) Connections() []api.Connection {
	return e.routes.Connections()
}

// SetConnections validates, persists and publishes a new connection list,
// then drops every cached status. The list is replaced as a whole.
func (e *Engine) SetConnections(conns []api.Connection) error {
	for _, c := range conns {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := settings.SaveConnections(e.store, conns); err != nil {
		return errx.Wrap(ErrSave, err)
	}
	e.routes.Replace(conns, e.Preferences().CaseSensitiveWorkspaces)
	e.status.InvalidateAll()

	e.logger.Info("connections updated", "count", len(conns))
	e.emitSettings()
	return nil
}

// SetPreferences persists and publishes new preferences. A change of
// workspace case sensitivity rebuilds the routing table.
func (e *Engine) SetPreferences(p api.Preferences) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := settings.SavePreferences(e.store, p); err != nil {
		return errx.Wrap(ErrSave, err)
	}
	old := e.prefs.Swap(&p)
	if old.CaseSensitiveWorkspaces != p.CaseSensitiveWorkspaces {
		e.routes.Replace(e.routes.Connections(), p.CaseSensitiveWorkspaces)
		e.status.InvalidateAll()
	}

	e.logger.Info("preferences updated", "preferences", codec.EncodePreferences(p))
	e.emitSettings()
	return nil
}

// FindConnection returns the connection owning path.
func (e *Engine) FindConnection(path string) (api.Connection, bool) {
	return e.routes.Find(path)
}

// TopmostManagedAncestor returns the workspace root owning path.
func (e *Engine) TopmostManagedAncestor(path string) (string, bool) {
	return e.routes.TopmostManagedAncestor(path)
}

// Manages reports whether any connection owns path.
func (e *Engine) Manages(path string) bool {
	_, ok := e.routes.Find(path)
	return ok
}

// Status returns the cached or freshly queried status of path.
func (e *Engine) Status(ctx context.Context, path string) (*api.FileStatus, error) {
	return e.status.Status(ctx, path)
}

// Execute runs a p4 command template against file. Any verb not known to
// be read-only invalidates the file's cached status.
func (e *Engine) Execute(ctx context.Context, template, file string) (*p4.Result, error) {
	res, err := e.wrapper.Execute(ctx, template, file)
	if mutates(template) {
		e.status.Invalidate(file)
	}
	return res, err
}

// GetOriginalFile writes the depot revision of workingCopy to dest.
func (e *Engine) GetOriginalFile(ctx context.Context, workingCopy, dest string) error {
	return e.wrapper.PrintOriginal(ctx, workingCopy, dest)
}

// Actions lists the host menu actions.
func (e *Engine) Actions() []Action {
	return Actions()
}

// RunAction runs the menu action with the given template on file.
func (e *Engine) RunAction(ctx context.Context, template, file string) (*p4.Result, error) {
	a, ok := LookupAction(template)
	if !ok {
		return nil, errx.With(ErrUnknownVerb, ": %q", template)
	}
	return e.Execute(ctx, a.Template, file)
}

func (e *Engine) Interceptor() *policy.Interceptor {
	return e.interceptor
}

// FS returns the host filesystem with operations inside workspaces routed
// through the interception policy.
func (e *Engine) FS(ctx context.Context) vfs.Provider {
	return vfs.NewInterceptProvider(ctx, vfs.OSProvider{}, e.interceptor, e.Manages)
}

func (e *Engine) emitSettings() {
	_ = e.emitter.Emit(logging.EventSettings, "settings updated", "engine", nil, &logging.SettingsData{
		Connections: e.routes.Snapshot().Len(),
		Preferences: codec.EncodePreferences(e.Preferences()),
	})
}

// readOnlyVerbs leave what Perforce knows about a file unchanged. Every
// other verb invalidates the file's cached status.
var readOnlyVerbs = map[string]bool{
	"fstat":    true,
	"print":    true,
	"files":    true,
	"filelog":  true,
	"where":    true,
	"have":     true,
	"opened":   true,
	"diff":     true,
	"annotate": true,
	"describe": true,
	"changes":  true,
}

func mutates(template string) bool {
	verb, _, _ := strings.Cut(strings.TrimSpace(template), " ")
	return !readOnlyVerbs[verb]
}
