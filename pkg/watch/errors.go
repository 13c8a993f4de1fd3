package watch

import "errors"

var (
	ErrCreateWatcher = errors.New("watch: create watcher")
	ErrAddPath       = errors.New("watch: add path")
	ErrClosed        = errors.New("watch: watcher closed")
)
