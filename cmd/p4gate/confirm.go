package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminalConfirmer asks on the terminal. Without a terminal every
// question is answered no, unless assumeYes is set.
type terminalConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
	isTTY     func() bool
}

func newTerminalConfirmer(in *os.File, out io.Writer, assumeYes bool) *terminalConfirmer {
	return &terminalConfirmer{
		in:        bufio.NewReader(in),
		out:       out,
		assumeYes: assumeYes,
		isTTY:     func() bool { return term.IsTerminal(int(in.Fd())) },
	}
}

func (c *terminalConfirmer) Confirm(title, message string) bool {
	if c.assumeYes {
		return true
	}
	if !c.isTTY() {
		fmt.Fprintf(c.out, "%s: %s? no terminal, declining (use --yes)\n", title, message)
		return false
	}
	fmt.Fprintf(c.out, "%s: %s? [y/N] ", title, message)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
