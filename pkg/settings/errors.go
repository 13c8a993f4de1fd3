package settings

import "errors"

var (
	ErrOpenStore   = errors.New("open settings store")
	ErrReadStore   = errors.New("read settings")
	ErrWriteStore  = errors.New("write settings")
	ErrStoreClosed = errors.New("settings store closed")
)
