package p4

import "errors"

var (
	ErrEmptyTemplate = errors.New("p4: empty command template")
	ErrParseTemplate = errors.New("p4: parse command template")
	ErrNoFile        = errors.New("p4: no file given")
)
