package builder

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/xviz/message"
)

// ErrNoMetadata is returned when a builder is created without metadata.
var ErrNoMetadata = errors.New("builder requires metadata")

// UndeclaredStreamError is returned when a stream id is not declared in the metadata.
type UndeclaredStreamError struct {
	Stream string
}

func (e *UndeclaredStreamError) Error() string {
	return fmt.Sprintf("stream %q is not declared in metadata", e.Stream)
}

// ProtocolViolation marks the error as a misuse of the builder.
func (e *UndeclaredStreamError) ProtocolViolation() bool { return true }

// CategoryMismatchError is returned when a stream is used as something other than what the
// metadata declares, either its category or its primitive type.
type CategoryMismatchError struct {
	Stream string
	Want   string
	Got    string
}

func (e *CategoryMismatchError) Error() string {
	return fmt.Sprintf("stream %q is declared as %s, used as %s", e.Stream, e.Want, e.Got)
}

// ProtocolViolation marks the error as a misuse of the builder.
func (e *CategoryMismatchError) ProtocolViolation() bool { return true }

// DuplicateAssignmentError is returned when a write-once field is set twice.
type DuplicateAssignmentError struct {
	Stream string
	Field  string
}

func (e *DuplicateAssignmentError) Error() string {
	if e.Stream == "" {
		return fmt.Sprintf("%s is already set", e.Field)
	}
	return fmt.Sprintf("%s of stream %q is already set", e.Field, e.Stream)
}

// ProtocolViolation marks the error as a misuse of the builder.
func (e *DuplicateAssignmentError) ProtocolViolation() bool { return true }

// BuilderClosedError is returned for any call after GetMessage.
type BuilderClosedError struct {
	Stream string
}

func (e *BuilderClosedError) Error() string {
	if e.Stream == "" {
		return "builder is closed"
	}
	return fmt.Sprintf("builder is closed, cannot update stream %q", e.Stream)
}

// ProtocolViolation marks the error as a misuse of the builder.
func (e *BuilderClosedError) ProtocolViolation() bool { return true }

// PersistentModeViolationError is returned when a frame redefines the shapes of a stream that
// an earlier persistent frame fixed.
type PersistentModeViolationError struct {
	Stream string
	Field  string
}

func (e *PersistentModeViolationError) Error() string {
	return fmt.Sprintf("stream %q is persistent, cannot set %s", e.Stream, e.Field)
}

// ProtocolViolation marks the error as a misuse of the builder.
func (e *PersistentModeViolationError) ProtocolViolation() bool { return true }

// LinkCycleError is returned when the links of a frame form a cycle. Parent and Child name
// the edge that closes it.
type LinkCycleError struct {
	Parent string
	Child  string
	Cycle  []string
}

func (e *LinkCycleError) Error() string {
	return fmt.Sprintf("link %q -> %q closes a cycle (%s)", e.Parent, e.Child, strings.Join(e.Cycle, " -> "))
}

// ProtocolViolation marks the error as a misuse of the builder.
func (e *LinkCycleError) ProtocolViolation() bool { return true }

// NoPrimitiveError is returned when a primitive field is set before any shape.
type NoPrimitiveError struct {
	Stream string
	Field  string
}

func (e *NoPrimitiveError) Error() string {
	return fmt.Sprintf("cannot set %s of stream %q before a shape", e.Field, e.Stream)
}

// ProtocolViolation marks the error as a misuse of the builder.
func (e *NoPrimitiveError) ProtocolViolation() bool { return true }

// UnsupportedFieldError is returned when a field does not apply to the current primitive.
type UnsupportedFieldError struct {
	Stream    string
	Field     string
	Primitive message.PrimitiveType
}

func (e *UnsupportedFieldError) Error() string {
	return fmt.Sprintf("%s does not apply to %s primitives (stream %q)", e.Field, e.Primitive, e.Stream)
}

// ProtocolViolation marks the error as a misuse of the builder.
func (e *UnsupportedFieldError) ProtocolViolation() bool { return true }

// MissingTimestampError is returned when a time series entry has no timestamp and the frame
// has none to fall back to.
type MissingTimestampError struct {
	Stream string
}

func (e *MissingTimestampError) Error() string {
	return fmt.Sprintf("time series %q has no timestamp and the frame has none", e.Stream)
}

// ProtocolViolation marks the error as a misuse of the builder.
func (e *MissingTimestampError) ProtocolViolation() bool { return true }

// ValidationError is reported by validators for structurally invalid data.
type ValidationError struct {
	Stream string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("stream %q: %s", e.Stream, e.Reason)
}

// IsProtocolViolation reports whether err, or any error it wraps, is a protocol violation.
func IsProtocolViolation(err error) bool {
	for err != nil {
		if pv, ok := err.(interface{ ProtocolViolation() bool }); ok && pv.ProtocolViolation() {
			return true
		}
		switch x := err.(type) {
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		case interface{ Cause() error }:
			err = x.Cause()
		default:
			return false
		}
	}
	return false
}
