// Package errx attaches context to sentinel errors without losing them.
//
// Packages declare their failure modes as sentinel values in errors.go and
// wrap causes at the boundary:
//
//	return errx.Wrap(ErrOpenStore, err)
//	return errx.With(ErrInvalidConnection, ": %q has %d fields", raw, n)
//
// Both forms keep the sentinel reachable through errors.Is.
package errx

import "fmt"

// Wrap joins sentinel and cause as "sentinel: cause". A nil cause returns the
// sentinel itself.
func Wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// With appends a formatted suffix to sentinel. The format may use %w to
// chain additional causes.
func With(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w"+format, append([]any{sentinel}, args...)...)
}
