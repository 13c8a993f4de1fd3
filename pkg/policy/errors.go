package policy

import "errors"

var (
	ErrMissingDependency = errors.New("policy: missing dependency")
	ErrRename            = errors.New("policy: rename")
)
