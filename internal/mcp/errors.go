package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/roomstage/internal/domain/activity"
	"github.com/ganot/roomstage/internal/domain/asset"
	"github.com/ganot/roomstage/internal/domain/project"
	"github.com/ganot/roomstage/internal/repository"
)

// ErrCaptureNotFound is returned when a capture ID does not match any
// descriptor in a fresh scan.
var ErrCaptureNotFound = errors.New("capture not found")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
	cause        error
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	apiErr := func(code, msg, hint string) *APIError {
		return &APIError{Code: code, Message: msg, RecoveryHint: hint, cause: err}
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return apiErr("PROJECT_NOT_FOUND", "project not found", "Call list_projects for valid IDs")
	case errors.Is(err, project.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput):
		return apiErr("INVALID_INPUT", err.Error(), "")
	case errors.Is(err, project.ErrNotPersisted):
		return apiErr("NOT_PERSISTED", "project has no directory on disk", "Reload projects")
	case errors.Is(err, ErrCaptureNotFound):
		return apiErr("CAPTURE_NOT_FOUND", err.Error(), "Call list_captures for valid IDs")
	case errors.Is(err, asset.ErrReadOnlySample):
		return apiErr("READ_ONLY_SAMPLE", "bundled samples cannot be deleted", "")
	case errors.Is(err, asset.ErrUnknownKind):
		return apiErr("INVALID_KIND", "kind must be room or object", "")
	case errors.Is(err, repository.ErrSourceNotFound):
		return apiErr("SOURCE_NOT_FOUND", "capture file is no longer available", "Rescan with list_captures")
	case errors.Is(err, repository.ErrInvalidPath):
		return apiErr("INVALID_PATH", err.Error(), "")
	case errors.Is(err, repository.ErrSerialization):
		return apiErr("SERIALIZATION_ERROR", err.Error(), "")
	case errors.Is(err, repository.ErrIO):
		return apiErr("IO_ERROR", err.Error(), "")
	default:
		return nil
	}
}

// toolError converts err into the error a tool handler returns.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
