//go:build windows

package policy

import "os"

// FileWritable reports whether path exists and is not read-only.
func FileWritable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0200 != 0
}
