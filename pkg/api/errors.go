package api

import "errors"

var (
	// ErrConnectionNotFound means the path is not under any configured
	// workspace. Routing queries report it as a miss; CLI calls fail with it.
	ErrConnectionNotFound = errors.New("no perforce connection for path")

	// ErrCommandFailed means p4 exited nonzero, could not be spawned, or
	// timed out.
	ErrCommandFailed = errors.New("p4 command failed")

	// ErrConfigDecode means a persisted connection or preference string is
	// malformed.
	ErrConfigDecode = errors.New("decode stored configuration")

	// ErrStatusUnavailable means a file's status could not be determined
	// at a point where the operation requires it.
	ErrStatusUnavailable = errors.New("file status unavailable")

	// ErrDeclined means the user answered "no" to a confirmation.
	ErrDeclined = errors.New("operation declined")

	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidConnection = errors.New("invalid connection")
)
