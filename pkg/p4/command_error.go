package p4

import (
	"fmt"
	"strings"

	"github.com/jingkaihe/p4gate/pkg/api"
)

// CommandError reports a p4 invocation that did not succeed. It matches
// api.ErrCommandFailed with errors.Is.
type CommandError struct {
	// Argv has passwords masked.
	Argv     []string
	ExitCode int
	Stderr   string
	Timeout  bool
	Err      error
}

func (e *CommandError) Error() string {
	cmd := DisplayCommand(e.Argv)
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: %s: timed out", api.ErrCommandFailed, cmd)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", api.ErrCommandFailed, cmd, e.Err)
	}
	msg := fmt.Sprintf("%s: %s: exit status %d", api.ErrCommandFailed, cmd, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandError) Is(target error) bool {
	return target == api.ErrCommandFailed
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
