package project

import "errors"

var (
	// ErrProjectNotFound indicates the project isn't in the loaded collection.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrNotPersisted indicates the project has no directory yet.
	ErrNotPersisted = errors.New("project has not been saved")
)
