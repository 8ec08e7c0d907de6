// Package domainerrors defines coded errors shared across all modules.
//
// Services return these so transport layers can translate failures into
// consistent HTTP responses without inspecting error strings. Stores return
// sentinel errors (pkg/platform/sentinel) instead; services translate them
// into coded errors at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error. The value doubles as the wire-level error
// identifier in JSON responses.
type Code string

const (
	// CodeValidation covers malformed or missing caller input: empty
	// comments, unknown status values, rejected uploads.
	CodeValidation Code = "validation_error"

	// CodeInvalidInput covers values that fail parsing at a trust boundary
	// (IDs, enums). Kept distinct from CodeValidation to mirror where the
	// failure occurred, both map to HTTP 400.
	CodeInvalidInput Code = "invalid_input"

	// CodeBadRequest covers undecodable or structurally broken requests.
	CodeBadRequest Code = "bad_request"

	// CodeUnauthorized means no valid principal accompanied the request.
	CodeUnauthorized Code = "unauthorized"

	// CodeForbidden means the principal is authenticated but the policy
	// denies the action.
	CodeForbidden Code = "forbidden"

	// CodeNotFound means the referenced entity does not exist.
	CodeNotFound Code = "not_found"

	// CodeConflict means a uniqueness or concurrency constraint was hit and
	// not resolved (e.g. application number collisions exhausted retries).
	CodeConflict Code = "conflict"

	// CodeInvariantViolation means a domain invariant would be broken.
	// Services usually convert this into a caller-facing code.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeTimeout means an operation was abandoned because its context
	// expired.
	CodeTimeout Code = "timeout"

	// CodeInternal covers unexpected infrastructure failures. Details are
	// never exposed to callers.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Construct via New or Wrap.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Description returns the human-readable message without the code prefix.
func (e *Error) Description() string {
	return e.Message
}

// New creates a coded error with a caller-facing message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message while keeping it unwrappable.
// Returns nil when err is nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// Is is shorthand for HasCode, matching how call sites read:
// dErrors.Is(err, dErrors.CodeNotFound).
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code carried by err, or CodeInternal when err
// carries none. Useful for logging and HTTP mapping.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
