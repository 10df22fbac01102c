package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ResourceNotFoundError indicates a resource was not found.
type ResourceNotFoundError struct {
	Kind string
	Name string
}

func NewResourceNotFoundError(kind string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: kind}
}

func NewLayerNotFoundError(name string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: "layer", Name: name}
}

func (e *ResourceNotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s not found", e.Kind)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// InvalidRequestError indicates a malformed request parameter.
type InvalidRequestError struct {
	Parameter string
	Message   string
}

func NewInvalidRequestError(parameter, format string, args ...any) *InvalidRequestError {
	return &InvalidRequestError{Parameter: parameter, Message: fmt.Sprintf(format, args...)}
}

func (e *InvalidRequestError) Error() string {
	if e.Parameter == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Parameter, e.Message)
}

func IsInvalidRequestError(err error) bool {
	var e *InvalidRequestError
	return errors.As(err, &e)
}

// SyncInProgressError indicates a catalog synchronisation is already running.
type SyncInProgressError struct{}

func NewSyncInProgressError() *SyncInProgressError {
	return &SyncInProgressError{}
}

func (e *SyncInProgressError) Error() string {
	return "catalog sync already in progress"
}

func IsSyncInProgressError(err error) bool {
	var e *SyncInProgressError
	return errors.As(err, &e)
}

// SourceUnavailableError wraps failures reaching the feature database.
type SourceUnavailableError struct {
	msg string
	err error
}

func NewSourceUnavailableError(err error) *SourceUnavailableError {
	sErr := &SourceUnavailableError{err: err}
	switch {
	case err == nil:
		sErr.msg = "feature source not configured"
	case strings.Contains(err.Error(), "password authentication failed"):
		sErr.msg = "invalid credentials"
	case strings.Contains(err.Error(), "connection refused"):
		sErr.msg = "feature source unreachable"
	default:
		sErr.msg = err.Error()
	}
	return sErr
}

func (e *SourceUnavailableError) Error() string {
	return e.msg
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.err
}

func IsSourceUnavailableError(err error) bool {
	var e *SourceUnavailableError
	return errors.As(err, &e)
}
