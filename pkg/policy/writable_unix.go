//go:build !windows

package policy

import "golang.org/x/sys/unix"

// FileWritable reports whether the current process may write path.
func FileWritable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}
