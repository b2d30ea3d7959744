package asset

import "errors"

var (
	// ErrReadOnlySample indicates an attempt to delete a bundled sample.
	ErrReadOnlySample = errors.New("bundled samples cannot be deleted")
	// ErrUnknownKind indicates a capture kind other than room or object.
	ErrUnknownKind = errors.New("unknown capture kind")
)
