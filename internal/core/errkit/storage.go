package errkit

import (
	"errors"
	"fmt"
)

// StorageKind enumerates the storage layer's error kinds.
type StorageKind int

const (
	StorageDbError StorageKind = iota
	StorageNodeNotFound
	StorageEdgeNotFound
	StorageAlreadyExists
	StorageInvalidInput
	StorageConflict
	StorageLockTimeout
	StorageDeadlock
	StorageConnectionError
	StorageNotSupported
	StorageIOError
	StorageSerializeError
	StorageDeserializeError
	StorageParseError
	StorageIndexError
	StorageTransactionNotFound
)

var storageKindNames = map[StorageKind]string{
	StorageDbError:             "DbError",
	StorageNodeNotFound:        "NodeNotFound",
	StorageEdgeNotFound:        "EdgeNotFound",
	StorageAlreadyExists:       "AlreadyExists",
	StorageInvalidInput:        "InvalidInput",
	StorageConflict:            "Conflict",
	StorageLockTimeout:         "LockTimeout",
	StorageDeadlock:            "Deadlock",
	StorageConnectionError:     "ConnectionError",
	StorageNotSupported:        "NotSupported",
	StorageIOError:             "IOError",
	StorageSerializeError:      "SerializeError",
	StorageDeserializeError:    "DeserializeError",
	StorageParseError:          "ParseError",
	StorageIndexError:          "IndexError",
	StorageTransactionNotFound: "TransactionNotFound",
}

func (k StorageKind) String() string { return storageKindNames[k] }

// StorageError is the storage layer's error type. It wraps an optional
// underlying cause (for example a *pq.Error) without leaking it to the
// public projection.
type StorageError struct {
	Kind    StorageKind
	Message string
	Cause   error
}

func NewStorageError(kind StorageKind, message string) *StorageError {
	return &StorageError{Kind: kind, Message: message}
}

func WrapStorageError(kind StorageKind, message string, cause error) *StorageError {
	return &StorageError{Kind: kind, Message: message, Cause: cause}
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error [%s]: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage error [%s]: %s", e.Kind, e.Message)
}

func (e *StorageError) Unwrap() error { return e.Cause }

func (e *StorageError) Is(target error) bool {
	var other *StorageError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

func (e *StorageError) Retryable() bool {
	switch e.Kind {
	case StorageLockTimeout, StorageDeadlock, StorageConnectionError:
		return true
	default:
		return false
	}
}

func (e *StorageError) ToPublicError() *PublicError {
	switch e.Kind {
	case StorageNodeNotFound, StorageEdgeNotFound, StorageTransactionNotFound:
		return NewPublicError(CodeResourceNotFound, e.Message)
	case StorageAlreadyExists:
		return NewPublicError(CodeResourceAlreadyExists, e.Message)
	case StorageInvalidInput, StorageParseError:
		return NewPublicError(CodeInvalidInput, e.Message)
	case StorageConflict:
		return NewPublicError(CodeConflict, e.Message)
	case StorageDeadlock:
		return NewPublicError(CodeDeadlock, e.Message)
	case StorageLockTimeout, StorageConnectionError:
		return NewPublicError(CodeTimeout, e.Message)
	default:
		return NewPublicError(CodeInternalError, "internal storage error")
	}
}
