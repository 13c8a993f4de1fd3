package storedb

import "errors"

var (
	ErrCreateDir     = errors.New("storedb: create database directory")
	ErrOpen          = errors.New("storedb: open database")
	ErrPragma        = errors.New("storedb: apply pragma")
	ErrMigrate       = errors.New("storedb: apply migration")
	ErrInvalidModule = errors.New("storedb: invalid module")
)
