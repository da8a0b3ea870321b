// Package errkit is the engine's layered error taxonomy: one typed error
// kind per subsystem (storage, query, expression, validation, session,
// permission, manager, lock), each implementing Go's error/Is/As
// conventions the way internal/repository/errors.go and
// internal/repository/postgres/errors.go do for the teacher's repository
// layer, generalized one file per layer.
//
// The source this is ported from keeps two parallel error-taxonomy
// definitions (a monolithic core/error.rs and a modular core/error/*); this
// package follows the modular one, which the spec calls out as the
// canonical, more recent design.
package errkit

import "fmt"

// ErrorCode is the small public code set every internal error kind projects
// down to via ToPublicError. It is what callers across a process boundary
// (the HTTP admin surface, a future wire protocol) ever see.
type ErrorCode int

const (
	CodeParseError ErrorCode = iota
	CodeValidationError
	CodeExecutionError
	CodeResourceNotFound
	CodeResourceAlreadyExists
	CodeInvalidInput
	CodeUnauthorized
	CodePermissionDenied
	CodeConflict
	CodeDeadlock
	CodeTimeout
	CodeResourceExhausted
	CodeInternalError
	CodeInvalidStatement
)

func (c ErrorCode) String() string {
	switch c {
	case CodeParseError:
		return "ParseError"
	case CodeValidationError:
		return "ValidationError"
	case CodeExecutionError:
		return "ExecutionError"
	case CodeResourceNotFound:
		return "ResourceNotFound"
	case CodeResourceAlreadyExists:
		return "ResourceAlreadyExists"
	case CodeInvalidInput:
		return "InvalidInput"
	case CodeUnauthorized:
		return "Unauthorized"
	case CodePermissionDenied:
		return "PermissionDenied"
	case CodeConflict:
		return "Conflict"
	case CodeDeadlock:
		return "Deadlock"
	case CodeTimeout:
		return "Timeout"
	case CodeResourceExhausted:
		return "ResourceExhausted"
	case CodeInternalError:
		return "InternalError"
	case CodeInvalidStatement:
		return "InvalidStatement"
	default:
		return "Unknown"
	}
}

// PublicError is the externally visible projection of an internal error: a
// stable code plus a human message, safe to hand back across an API
// boundary without leaking internal kind names.
type PublicError struct {
	Code    ErrorCode
	Message string
}

func NewPublicError(code ErrorCode, message string) *PublicError {
	return &PublicError{Code: code, Message: message}
}

func (e *PublicError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ToPublicError is implemented by every layer's error kind so it can be
// projected to the stable public code set at an API boundary.
type ToPublicError interface {
	error
	ToPublicError() *PublicError
}

// Retryable is implemented by error kinds whose failure is a candidate for
// retry with exponential backoff (LockTimeout, Deadlock, ConnectionError,
// TimeoutError). Retry policy itself is per call site, never automatic.
type Retryable interface {
	Retryable() bool
}

// IsRetryable reports whether err, or any error in its chain that
// implements Retryable, says it is retryable.
func IsRetryable(err error) bool {
	for err != nil {
		if r, ok := err.(Retryable); ok {
			return r.Retryable()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
