package errkit

import (
	"errors"
	"fmt"
)

// SessionKind enumerates session/auth/permission error kinds. The spec
// groups session, auth and permission errors under one bullet; they are
// split here into SessionError (this file) and PermissionError
// (permission.go) following the source's own file split, since permission
// errors are reused outside session context (schema/metadata admin ops).
type SessionKind int

const (
	SessionNotFound SessionKind = iota
	SessionPermissionDenied
	SessionExpired
	SessionMaxConnectionsExceeded
	SessionQueryNotFound
	SessionKillSessionFailed
	SessionManagerError
	SessionAuthenticationFailed
	SessionEmptyCredentials
	SessionInvalidCredentials
	SessionMaxAttemptsExceeded
)

var sessionKindNames = map[SessionKind]string{
	SessionNotFound:               "SessionNotFound",
	SessionPermissionDenied:       "PermissionDenied",
	SessionExpired:                "SessionExpired",
	SessionMaxConnectionsExceeded: "MaxConnectionsExceeded",
	SessionQueryNotFound:          "QueryNotFound",
	SessionKillSessionFailed:      "KillSessionFailed",
	SessionManagerError:           "ManagerError",
	SessionAuthenticationFailed:   "AuthenticationFailed",
	SessionEmptyCredentials:       "EmptyCredentials",
	SessionInvalidCredentials:     "InvalidCredentials",
	SessionMaxAttemptsExceeded:    "MaxAttemptsExceeded",
}

func (k SessionKind) String() string { return sessionKindNames[k] }

// SessionError is the session manager and authenticator's error type.
type SessionError struct {
	Kind    SessionKind
	Message string
}

func NewSessionError(kind SessionKind, message string) *SessionError {
	return &SessionError{Kind: kind, Message: message}
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session error [%s]: %s", e.Kind, e.Message)
}

func (e *SessionError) Is(target error) bool {
	var other *SessionError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

func (e *SessionError) ToPublicError() *PublicError {
	switch e.Kind {
	case SessionNotFound, SessionQueryNotFound:
		return NewPublicError(CodeResourceNotFound, e.Message)
	case SessionPermissionDenied:
		return NewPublicError(CodePermissionDenied, e.Message)
	case SessionExpired, SessionAuthenticationFailed, SessionInvalidCredentials, SessionEmptyCredentials:
		return NewPublicError(CodeUnauthorized, e.Message)
	case SessionMaxConnectionsExceeded:
		return NewPublicError(CodeResourceExhausted, e.Message)
	case SessionMaxAttemptsExceeded:
		return NewPublicError(CodeResourceExhausted, e.Message)
	default:
		return NewPublicError(CodeInternalError, e.Message)
	}
}
