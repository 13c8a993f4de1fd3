// Package p4 runs Perforce command-line operations on behalf of the file
// that owns them. Every call is routed to the connection whose workspace
// contains the file, and the connection's server, user, client and password
// become p4 global options.
package p4

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jingkaihe/p4gate/internal/errx"
	"github.com/jingkaihe/p4gate/pkg/api"
	"github.com/jingkaihe/p4gate/pkg/logging"
	"github.com/jingkaihe/p4gate/pkg/route"
)

// Router resolves a canonical path to its owning connection.
type Router interface {
	Find(path string) (api.Connection, bool)
}

// Wrapper builds and runs p4 command lines.
type Wrapper struct {
	router  Router
	exec    Executor
	binary  string
	timeout time.Duration
	console *logging.Console
	emitter *logging.Emitter
	logger  *slog.Logger
}

type Option func(*Wrapper)

func WithBinary(binary string) Option {
	return func(w *Wrapper) {
		if binary != "" {
			w.binary = binary
		}
	}
}

// WithTimeout bounds each invocation. Values <= 0 keep the default.
func WithTimeout(d time.Duration) Option {
	return func(w *Wrapper) {
		if d > 0 {
			w.timeout = d
		}
	}
}

func WithConsole(c *logging.Console) Option {
	return func(w *Wrapper) {
		w.console = c
	}
}

func WithEmitter(e *logging.Emitter) Option {
	return func(w *Wrapper) {
		w.emitter = e
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Wrapper) {
		if l != nil {
			w.logger = l
		}
	}
}

func NewWrapper(router Router, exec Executor, opts ...Option) *Wrapper {
	if exec == nil {
		exec = ExecExecutor{}
	}
	w := &Wrapper{
		router:  router,
		exec:    exec,
		binary:  api.DefaultBinary,
		timeout: api.DefaultCommandTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "p4")
	return w
}

// Execute runs "p4 <global options> <template words> <file>". The template
// is split with shell quoting rules, so "sync -f" becomes two words.
func (w *Wrapper) Execute(ctx context.Context, template, file string) (*Result, error) {
	args, err := SplitTemplate(template)
	if err != nil {
		return nil, err
	}
	return w.ExecuteArgs(ctx, args, file)
}

// ExecuteArgs is Execute with pre-split command words.
func (w *Wrapper) ExecuteArgs(ctx context.Context, args []string, file string) (*Result, error) {
	if len(args) == 0 {
		return nil, ErrEmptyTemplate
	}
	if file == "" {
		return nil, ErrNoFile
	}

	path := route.Canonical(file)
	conn, ok := w.router.Find(path)
	if !ok {
		return nil, errx.With(api.ErrConnectionNotFound, ": %s", path)
	}

	argv := w.buildArgv(conn, args, path)
	redacted := logging.RedactArgv(argv)
	dir := filepath.Dir(path)

	w.console.Print(DisplayCommand(redacted), false)

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	res, runErr := w.exec.Run(ctx, Invocation{
		Argv: argv,
		Dir:  dir,
		// p4 resolves relative paths and P4CONFIG from $PWD, not getcwd.
		Env: []string{"PWD=" + dir},
	})
	elapsed := time.Since(start)

	w.printOutput(res)

	var cmdErr *CommandError
	switch {
	case runErr != nil:
		cmdErr = &CommandError{
			Argv:     redacted,
			ExitCode: -1,
			Stderr:   string(res.Stderr),
			Timeout:  errors.Is(runErr, context.DeadlineExceeded),
			Err:      runErr,
		}
	case res.ExitCode != 0:
		cmdErr = &CommandError{
			Argv:     redacted,
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
		}
	}

	data := &logging.CommandData{
		Argv:       redacted,
		File:       path,
		Server:     conn.Server,
		Client:     conn.Client,
		ExitCode:   res.ExitCode,
		DurationMS: elapsed.Milliseconds(),
	}
	if cmdErr != nil {
		data.ExitCode = cmdErr.ExitCode
		data.TimedOut = cmdErr.Timeout
		data.Error = cmdErr.Error()
		if runErr != nil {
			w.console.Print(cmdErr.Error(), true)
		}
		w.logger.Warn("p4 command failed",
			"args", strings.Join(args, " "),
			"file", path,
			"exit_code", cmdErr.ExitCode,
			"timeout", cmdErr.Timeout,
			"duration", elapsed,
		)
	} else {
		w.logger.Debug("p4 command completed",
			"args", strings.Join(args, " "),
			"file", path,
			"duration", elapsed,
		)
	}
	_ = w.emitter.Emit(logging.EventCommand, strings.Join(args, " ")+" "+path, "p4", nil, data)

	if cmdErr != nil {
		return &res, cmdErr
	}
	return &res, nil
}

// PrintOriginal writes the depot revision of workingCopy to dest.
func (w *Wrapper) PrintOriginal(ctx context.Context, workingCopy, dest string) error {
	if dest == "" {
		return errx.With(ErrNoFile, ": destination")
	}
	_, err := w.ExecuteArgs(ctx, []string{"print", "-o", dest, "-q"}, workingCopy)
	return err
}

// buildArgv assembles the full command line. Global options with empty
// values are left out so P4CONFIG and P4* environment settings apply.
func (w *Wrapper) buildArgv(conn api.Connection, args []string, path string) []string {
	argv := make([]string, 0, len(args)+10)
	argv = append(argv, w.binary)
	for _, opt := range []struct{ flag, value string }{
		{"-p", conn.Server},
		{"-u", conn.User},
		{"-c", conn.Client},
		{"-P", conn.Password},
	} {
		if opt.value != "" {
			argv = append(argv, opt.flag, opt.value)
		}
	}
	argv = append(argv, args...)
	return append(argv, path)
}

func (w *Wrapper) printOutput(res Result) {
	if w.console == nil {
		return
	}
	if out := strings.TrimRight(string(res.Stdout), "\n"); out != "" {
		w.console.Print(out, false)
	}
	if errOut := strings.TrimRight(string(res.Stderr), "\n"); errOut != "" {
		w.console.Print(errOut, true)
	}
}
