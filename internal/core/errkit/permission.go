package errkit

import (
	"errors"
	"fmt"
)

// PermissionKind enumerates authorization-related error kinds.
type PermissionKind int

const (
	PermissionInsufficientPermission PermissionKind = iota
	PermissionRoleNotFound
	PermissionGrantRoleFailed
	PermissionRevokeRoleFailed
	PermissionUserNotFound
)

var permissionKindNames = map[PermissionKind]string{
	PermissionInsufficientPermission: "InsufficientPermission",
	PermissionRoleNotFound:           "RoleNotFound",
	PermissionGrantRoleFailed:        "GrantRoleFailed",
	PermissionRevokeRoleFailed:       "RevokeRoleFailed",
	PermissionUserNotFound:           "UserNotFound",
}

func (k PermissionKind) String() string { return permissionKindNames[k] }

// PermissionError is the authorization layer's error type.
type PermissionError struct {
	Kind    PermissionKind
	Message string
}

func NewPermissionError(kind PermissionKind, message string) *PermissionError {
	return &PermissionError{Kind: kind, Message: message}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission error [%s]: %s", e.Kind, e.Message)
}

func (e *PermissionError) Is(target error) bool {
	var other *PermissionError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

func (e *PermissionError) ToPublicError() *PublicError {
	return NewPublicError(CodePermissionDenied, e.Message)
}
