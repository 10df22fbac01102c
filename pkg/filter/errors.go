package filter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a translation failure.
type ErrorKind int

const (
	// InvalidFilter reports a structurally malformed predicate tree.
	InvalidFilter ErrorKind = iota + 1
	// UnknownProperty reports a PropertyName that is not part of the layer schema.
	UnknownProperty
	// InvalidUnits reports an unsupported distance unit.
	InvalidUnits
	// InvalidGeometry reports an unsupported or malformed GML geometry.
	InvalidGeometry
	// FeatureIdMismatch reports a feature id prefixed with another layer, or a layer without id column.
	FeatureIdMismatch
	// ConflictingIdKind reports FeatureId and GmlObjectId mixed in one filter.
	ConflictingIdKind
	// InvalidSrs reports an srsName that does not match the layer SRID.
	InvalidSrs
	// InvalidBbox reports a malformed KVP bbox.
	InvalidBbox
	// SchemaError reports a failed schema catalog lookup.
	SchemaError
)

var errorKindNames = map[ErrorKind]string{
	InvalidFilter:     "InvalidFilter",
	UnknownProperty:   "UnknownProperty",
	InvalidUnits:      "InvalidUnits",
	InvalidGeometry:   "InvalidGeometry",
	FeatureIdMismatch: "FeatureIdMismatch",
	ConflictingIdKind: "ConflictingIdKind",
	InvalidSrs:        "InvalidSrs",
	InvalidBbox:       "InvalidBbox",
	SchemaError:       "SchemaError",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Error is returned by every translation entry point.
// The partial SQL is never returned together with an Error.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	e := newError(kind, format, args...)
	e.Err = err
	return e
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a translation error found in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind checks if err is a translation error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsFilterError checks if err is any translation error.
func IsFilterError(err error) bool {
	_, ok := KindOf(err)
	return ok
}
