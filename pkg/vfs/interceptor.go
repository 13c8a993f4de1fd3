package vfs

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/jingkaihe/p4gate/internal/errx"
)

// Hooks is the interception policy as seen by the filesystem.
type Hooks interface {
	AfterCreate(ctx context.Context, path string) error
	IsMutable(path string) bool
	BeforeEdit(ctx context.Context, path string) error
	BeforeDelete(ctx context.Context, path string) (bool, error)
	DoDelete(ctx context.Context, path string) error
	BeforeMove(from, to string) bool
	DoMove(from, to string) error
	AfterMove(from, to string)
}

const writeFlags = os.O_WRONLY | os.O_RDWR | os.O_APPEND | os.O_TRUNC

type interceptProvider struct {
	ctx     context.Context
	inner   Provider
	hooks   Hooks
	managed func(path string) bool
}

// NewInterceptProvider routes operations on managed paths through hooks.
// Paths for which managed returns false go straight to inner.
//
//   - Creating a file runs AfterCreate once the new handle is closed, so
//     the file is added with its first contents.
//   - Opening an existing file for writing requires IsMutable, then runs
//     BeforeEdit.
//   - Removing a file asks BeforeDelete whether DoDelete takes over.
//   - Renames ask BeforeMove, then run DoMove or a plain rename, then
//     AfterMove.
func NewInterceptProvider(ctx context.Context, inner Provider, hooks Hooks, managed func(path string) bool) Provider {
	if inner == nil || hooks == nil {
		return inner
	}
	if managed == nil {
		managed = func(string) bool { return true }
	}
	return &interceptProvider{ctx: ctx, inner: inner, hooks: hooks, managed: managed}
}

func (p *interceptProvider) Stat(path string) (os.FileInfo, error) {
	return p.inner.Stat(path)
}

func (p *interceptProvider) ReadDir(path string) ([]os.DirEntry, error) {
	return p.inner.ReadDir(path)
}

func (p *interceptProvider) Open(path string, flags int, mode os.FileMode) (Handle, error) {
	if !p.managed(path) {
		return p.inner.Open(path, flags, mode)
	}

	info, statErr := p.inner.Stat(path)
	exists := statErr == nil
	if !exists && !errors.Is(statErr, fs.ErrNotExist) {
		return nil, statErr
	}

	if !exists {
		if flags&os.O_CREATE == 0 {
			return p.inner.Open(path, flags, mode)
		}
		h, err := p.inner.Open(path, flags|os.O_EXCL, mode)
		if err == nil {
			return &createdHandle{Handle: h, p: p, path: path}, nil
		}
		// Created by someone else since the stat: open it as an existing file.
		if flags&os.O_EXCL != 0 || !errors.Is(err, fs.ErrExist) {
			return nil, err
		}
		if info, err = p.inner.Stat(path); err != nil {
			return nil, err
		}
	}

	if flags&writeFlags != 0 && info.Mode().IsRegular() {
		if err := p.beforeWrite(path); err != nil {
			return nil, err
		}
	}
	return p.inner.Open(path, flags, mode)
}

func (p *interceptProvider) Create(path string, mode os.FileMode) (Handle, error) {
	h, err := p.inner.Create(path, mode)
	if err != nil || !p.managed(path) {
		return h, err
	}
	return &createdHandle{Handle: h, p: p, path: path}, nil
}

func (p *interceptProvider) Mkdir(path string, mode os.FileMode) error {
	return p.inner.Mkdir(path, mode)
}

func (p *interceptProvider) Chmod(path string, mode os.FileMode) error {
	return p.inner.Chmod(path, mode)
}

func (p *interceptProvider) Remove(path string) error {
	if !p.managed(path) {
		return p.inner.Remove(path)
	}
	info, err := p.inner.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return p.inner.Remove(path)
	}

	ok, err := p.hooks.BeforeDelete(p.ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		return p.inner.Remove(path)
	}
	return p.hooks.DoDelete(p.ctx, path)
}

func (p *interceptProvider) Rename(oldPath, newPath string) error {
	if !p.managed(oldPath) && !p.managed(newPath) {
		return p.inner.Rename(oldPath, newPath)
	}
	var err error
	if p.hooks.BeforeMove(oldPath, newPath) {
		err = p.hooks.DoMove(oldPath, newPath)
	} else {
		err = p.inner.Rename(oldPath, newPath)
	}
	if err != nil {
		return err
	}
	p.hooks.AfterMove(oldPath, newPath)
	return nil
}

func (p *interceptProvider) beforeWrite(path string) error {
	if !p.hooks.IsMutable(path) {
		return &fs.PathError{Op: "open", Path: path, Err: ErrNotMutable}
	}
	return p.hooks.BeforeEdit(p.ctx, path)
}

// createdHandle runs AfterCreate when a newly created file is closed.
type createdHandle struct {
	Handle
	p      *interceptProvider
	path   string
	closed bool
}

func (h *createdHandle) Close() error {
	if h.closed {
		return h.Handle.Close()
	}
	h.closed = true
	if err := h.Handle.Close(); err != nil {
		return err
	}
	if err := h.p.hooks.AfterCreate(h.p.ctx, h.path); err != nil {
		return errx.Wrap(ErrAfterAdd, err)
	}
	return nil
}
