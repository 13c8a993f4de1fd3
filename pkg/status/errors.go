package status

import "errors"

var (
	ErrQuery = errors.New("status: query file status")
)
