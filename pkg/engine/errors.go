package engine

import "errors"

var (
	ErrMissingStore = errors.New("engine: settings store is required")
	ErrSave         = errors.New("engine: save settings")
	ErrUnknownVerb  = errors.New("engine: unknown action")
)
