package repository

import "errors"

var (
	// ErrNotFound is returned when a metadata file or directory doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrIO is returned when a directory or file operation fails
	ErrIO = errors.New("i/o failure")

	// ErrSerialization is returned when metadata cannot be encoded or decoded
	ErrSerialization = errors.New("malformed metadata")

	// ErrSourceNotFound is returned when a capture's backing file can't be resolved
	ErrSourceNotFound = errors.New("source file not found")

	// ErrInvalidPath is returned when a project has no folder on disk yet
	ErrInvalidPath = errors.New("invalid project path")
)
