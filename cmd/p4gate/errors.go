package main

import "errors"

var (
	ErrOpenStore    = errors.New("open settings store")
	ErrOpenEvents   = errors.New("open event log")
	ErrNotManaged   = errors.New("path is not in any configured workspace")
	ErrNoWorkspaces = errors.New("no workspaces to watch")
	ErrBadIndex     = errors.New("invalid connection index")
)
