// Package policy decides how local file operations inside a Perforce
// workspace turn into p4 commands.
//
// A host (the intercepting filesystem, the watcher, the CLI) reports each
// event to the Interceptor, which consults the current preferences and
// the file's status, asks for confirmation where required, and runs the
// matching p4 command. Nothing is retried or rolled back: a failed command
// is returned to the host as an error.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jingkaihe/p4gate/internal/errx"
	"github.com/jingkaihe/p4gate/pkg/api"
	"github.com/jingkaihe/p4gate/pkg/logging"
	"github.com/jingkaihe/p4gate/pkg/p4"
)

// Commands runs p4 verbs against a file.
type Commands interface {
	Execute(ctx context.Context, template, file string) (*p4.Result, error)
}

// StatusSource is the status cache.
type StatusSource interface {
	Status(ctx context.Context, path string) (*api.FileStatus, error)
	Invalidate(path string)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(title, message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(title, message string) bool

func (f ConfirmFunc) Confirm(title, message string) bool { return f(title, message) }

// Deps are the collaborators of an Interceptor. Commands, Status and
// Confirmer are required.
type Deps struct {
	Commands  Commands
	Status    StatusSource
	Confirmer Confirmer

	// Preferences returns the current preferences. Nil means defaults.
	Preferences func() api.Preferences
	// Writable reports real filesystem writability. Nil means FileWritable.
	Writable func(path string) bool
	// Rename performs the plain move. Nil means os.Rename.
	Rename func(from, to string) error

	Logger  *slog.Logger
	Emitter *logging.Emitter
}

// Decisions recorded in intercept events.
const (
	DecisionIntercepted = "intercepted"
	DecisionPassthrough = "passthrough"
	DecisionDeclined    = "declined"
	DecisionFailed      = "failed"
)

const (
	EditConfirmTitle   = "Edit Confirmation"
	DeleteConfirmTitle = "Delete Confirmation"
)

// Interceptor is safe for concurrent use; it holds no mutable state of
// its own.
type Interceptor struct {
	deps   Deps
	logger *slog.Logger
}

func NewInterceptor(deps Deps) (*Interceptor, error) {
	switch {
	case deps.Commands == nil:
		return nil, errx.With(ErrMissingDependency, ": commands")
	case deps.Status == nil:
		return nil, errx.With(ErrMissingDependency, ": status")
	case deps.Confirmer == nil:
		return nil, errx.With(ErrMissingDependency, ": confirmer")
	}
	if deps.Preferences == nil {
		deps.Preferences = api.DefaultPreferences
	}
	if deps.Writable == nil {
		deps.Writable = FileWritable
	}
	if deps.Rename == nil {
		deps.Rename = os.Rename
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Interceptor{deps: deps, logger: logger.With("component", "policy")}, nil
}

// AfterCreate opens a newly created file for add when add interception is
// on. No confirmation is asked.
func (i *Interceptor) AfterCreate(ctx context.Context, file string) error {
	if !i.deps.Preferences().InterceptAdd {
		i.record("create", file, DecisionPassthrough, nil, nil)
		return nil
	}
	_, err := i.deps.Commands.Execute(ctx, "add", file)
	i.deps.Status.Invalidate(file)
	i.record("create", file, DecisionIntercepted, nil, err)
	return err
}

// BeforeEdit makes a read-only file writable by opening it for edit. A
// file that is already writable is left alone. When edit confirmation is
// on and the user declines, api.ErrDeclined is returned and the file stays
// read-only.
func (i *Interceptor) BeforeEdit(ctx context.Context, file string) error {
	if i.deps.Writable(file) {
		i.record("edit", file, DecisionPassthrough, nil, nil)
		return nil
	}
	if i.deps.Preferences().ConfirmEdit {
		msg := fmt.Sprintf("Are you sure you want to \"p4 edit\" file %s", filepath.Base(file))
		if !i.deps.Confirmer.Confirm(EditConfirmTitle, msg) {
			i.record("edit", file, DecisionDeclined, nil, nil)
			return errx.With(api.ErrDeclined, ": p4 edit %s", file)
		}
	}
	_, err := i.deps.Commands.Execute(ctx, "edit", file)
	i.deps.Status.Invalidate(file)
	i.record("edit", file, DecisionIntercepted, nil, err)
	return err
}

// BeforeDelete reports whether the host should hand the delete to
// DoDelete. It is true only for files Perforce knows about, and always
// false when delete interception is off.
func (i *Interceptor) BeforeDelete(ctx context.Context, file string) (bool, error) {
	if !i.deps.Preferences().InterceptDelete {
		return false, nil
	}
	st, err := i.deps.Status.Status(ctx, file)
	if err != nil {
		return false, err
	}
	return st != nil, nil
}

// DoDelete deletes a Perforce-known file through p4 after confirmation.
// A file opened for any action is reverted first. The cached status is
// invalidated afterwards even when a command fails.
func (i *Interceptor) DoDelete(ctx context.Context, file string) error {
	msg := fmt.Sprintf("Are you sure you want to delete %s", filepath.Base(file))
	if !i.deps.Confirmer.Confirm(DeleteConfirmTitle, msg) {
		i.record("delete", file, DecisionDeclined, nil, nil)
		return errx.With(api.ErrDeclined, ": delete %s", file)
	}

	i.deps.Status.Invalidate(file)
	defer i.deps.Status.Invalidate(file)

	st, err := i.deps.Status.Status(ctx, file)
	if err != nil {
		i.record("delete", file, DecisionFailed, nil, err)
		return err
	}
	if st == nil {
		err := errx.With(api.ErrStatusUnavailable, ": %s", file)
		i.record("delete", file, DecisionFailed, nil, err)
		return err
	}

	if st.Action != api.ActionNone {
		if _, err := i.deps.Commands.Execute(ctx, "revert", file); err != nil {
			i.record("delete", file, DecisionFailed, st, err)
			return err
		}
	}
	_, err = i.deps.Commands.Execute(ctx, "delete", file)
	i.record("delete", file, DecisionIntercepted, st, err)
	return err
}

// BeforeMove always declines; moves are plain filesystem renames.
func (i *Interceptor) BeforeMove(from, to string) bool {
	return false
}

// DoMove renames from to to without involving Perforce.
func (i *Interceptor) DoMove(from, to string) error {
	if err := i.deps.Rename(from, to); err != nil {
		return errx.Wrap(ErrRename, err)
	}
	return nil
}

// AfterMove does nothing.
func (i *Interceptor) AfterMove(from, to string) {}

// IsMutable tells the host whether a write may proceed. With edit
// interception on every file is reported mutable so that BeforeEdit gets
// the chance to open it.
func (i *Interceptor) IsMutable(file string) bool {
	if i.deps.Preferences().InterceptEdit {
		return true
	}
	return i.deps.Writable(file)
}

func (i *Interceptor) record(op, file, decision string, st *api.FileStatus, err error) {
	data := &logging.InterceptData{Op: op, File: file, Decision: decision}
	if st != nil {
		data.Action = st.Action.String()
	}
	if err != nil {
		data.Decision = DecisionFailed
		data.Error = err.Error()
		i.logger.Warn("intercept failed", "op", op, "file", file, "error", err)
	} else {
		i.logger.Debug("intercept", "op", op, "file", file, "decision", decision)
	}
	_ = i.deps.Emitter.Emit(logging.EventIntercept, op+" "+file, "policy", nil, data)
}
