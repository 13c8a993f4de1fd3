package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Mask replaces password values in console output.
const Mask = "********"

const passwordFlag = "-P"

// Console is the user-visible output channel for p4 commands and their
// results. Lines are prefixed with [HH:MM:SS.mmm] and password values
// following -P are masked before anything is written.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	err     io.Writer
	enabled func() bool
	now     func() time.Time
}

// NewConsole writes regular lines to out and error lines to errOut.
// enabled is consulted on every Print; nil means always on.
func NewConsole(out, errOut io.Writer, enabled func() bool) *Console {
	if errOut == nil {
		errOut = out
	}
	return &Console{out: out, err: errOut, enabled: enabled, now: time.Now}
}

// Print emits one line. It is a no-op on a nil Console or when output is
// disabled.
func (c *Console) Print(message string, isError bool) {
	if c == nil || c.out == nil {
		return
	}
	if c.enabled != nil && !c.enabled() {
		return
	}

	line := fmt.Sprintf("[%s] %s\n", c.now().Format("15:04:05.000"), Redact(message))

	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.out
	if isError {
		w = c.err
	}
	_, _ = io.WriteString(w, line)
}

// Redact masks the word following every -P flag in a rendered command
// line. The flag itself is kept. A -P at the very end has nothing to mask.
func Redact(message string) string {
	var b strings.Builder
	rest := message
	for {
		idx := flagIndex(rest)
		if idx < 0 {
			b.WriteString(rest)
			return b.String()
		}
		valueStart := idx + len(passwordFlag) + 1
		b.WriteString(rest[:valueStart])
		rest = rest[valueStart:]

		end := strings.IndexAny(rest, " \n")
		if end < 0 {
			end = len(rest)
		}
		if end > 0 {
			b.WriteString(Mask)
		}
		rest = rest[end:]
	}
}

// flagIndex finds "-P " at the start of s or after a space.
func flagIndex(s string) int {
	if strings.HasPrefix(s, passwordFlag+" ") {
		return 0
	}
	idx := strings.Index(s, " "+passwordFlag+" ")
	if idx < 0 {
		return -1
	}
	return idx + 1
}

// RedactArgv returns a copy of argv with the element after each -P
// replaced by Mask.
func RedactArgv(argv []string) []string {
	out := append([]string(nil), argv...)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == passwordFlag {
			out[i+1] = Mask
			i++
		}
	}
	return out
}
