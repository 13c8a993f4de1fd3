package vfs

import "errors"

var (
	ErrNotMutable = errors.New("vfs: file is not writable")
	ErrAfterAdd   = errors.New("vfs: open for add")
)
