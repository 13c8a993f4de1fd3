package p4

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// Invocation is one process to run. Argv[0] is the executable.
type Invocation struct {
	Argv []string
	Dir  string
	// Env entries are appended to the current environment.
	Env []string
}

// Result is the outcome of a process that ran to completion.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Executor runs processes. Run returns an error only when the process
// could not be started or was stopped by ctx; a nonzero exit is reported
// through Result.ExitCode.
type Executor interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// ExecExecutor runs processes with os/exec.
type ExecExecutor struct{}

func (ExecExecutor) Run(ctx context.Context, inv Invocation) (Result, error) {
	if len(inv.Argv) == 0 {
		return Result{ExitCode: -1}, ErrEmptyTemplate
	}

	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		return res, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	res.ExitCode = -1
	return res, err
}
