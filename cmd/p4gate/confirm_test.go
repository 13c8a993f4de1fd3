package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testConfirmer(input string, tty, assumeYes bool) (*terminalConfirmer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &terminalConfirmer{
		in:        bufio.NewReader(strings.NewReader(input)),
		out:       out,
		assumeYes: assumeYes,
		isTTY:     func() bool { return tty },
	}, out
}

func TestConfirmAnswers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			c, out := testConfirmer(tt.input, true, false)
			assert.Equal(t, tt.want, c.Confirm("Delete Confirmation", "Are you sure you want to delete a.c"))
			assert.Contains(t, out.String(), "Delete Confirmation: Are you sure you want to delete a.c? [y/N]")
		})
	}
}

func TestConfirmWithoutTerminalDeclines(t *testing.T) {
	c, out := testConfirmer("y\n", false, false)
	assert.False(t, c.Confirm("Edit Confirmation", "edit?"))
	assert.Contains(t, out.String(), "--yes")
}

func TestConfirmAssumeYes(t *testing.T) {
	c, out := testConfirmer("", false, true)
	assert.True(t, c.Confirm("Edit Confirmation", "edit?"))
	assert.Empty(t, out.String())
}
