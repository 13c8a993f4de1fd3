// Package vfs is the filesystem surface through which local file
// operations reach the interception policy.
package vfs

import (
	"io"
	"os"
)

// Handle is an open file.
type Handle interface {
	io.Reader
	io.ReaderAt
	io.Writer
	io.WriterAt
	io.Seeker
	io.Closer
	Stat() (os.FileInfo, error)
	Sync() error
	Truncate(size int64) error
}

// Provider is a filesystem. Paths are host paths.
type Provider interface {
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	Open(path string, flags int, mode os.FileMode) (Handle, error)
	Create(path string, mode os.FileMode) (Handle, error)
	Mkdir(path string, mode os.FileMode) error
	Chmod(path string, mode os.FileMode) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
}

// OSProvider is the host filesystem.
type OSProvider struct{}

func (OSProvider) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }

func (OSProvider) ReadDir(path string) ([]os.DirEntry, error) { return os.ReadDir(path) }

func (OSProvider) Open(path string, flags int, mode os.FileMode) (Handle, error) {
	f, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (OSProvider) Create(path string, mode os.FileMode) (Handle, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (OSProvider) Mkdir(path string, mode os.FileMode) error { return os.Mkdir(path, mode) }

func (OSProvider) Chmod(path string, mode os.FileMode) error { return os.Chmod(path, mode) }

func (OSProvider) Remove(path string) error { return os.Remove(path) }

func (OSProvider) Rename(oldPath, newPath string) error { return os.Rename(oldPath, newPath) }

// WriteFile replaces the contents of path, creating it if needed.
func WriteFile(p Provider, path string, data []byte, mode os.FileMode) error {
	h, err := p.Open(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := h.Write(data); err != nil {
		_ = h.Close()
		return err
	}
	return h.Close()
}

// ReadFile returns the contents of path.
func ReadFile(p Provider, path string) ([]byte, error) {
	h, err := p.Open(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	return io.ReadAll(h)
}

// Touch creates path if it does not exist. An existing file is left
// untouched so that it is never opened for writing.
func Touch(p Provider, path string, mode os.FileMode) error {
	if _, err := p.Stat(path); err == nil {
		return nil
	}
	h, err := p.Create(path, mode)
	if err != nil {
		return err
	}
	return h.Close()
}
