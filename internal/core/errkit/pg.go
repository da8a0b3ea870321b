package errkit

import (
	"database/sql"

	"github.com/lib/pq"
)

// FromPostgresError translates a raw database/sql or lib/pq error into the
// storage layer's taxonomy, generalizing
// internal/repository/postgres/helpers.go's handlePostgresError across the
// whole storage-client contract rather than one repository at a time.
func FromPostgresError(err error, resource string) *StorageError {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return NewStorageError(StorageNodeNotFound, resource+" not found")
	}
	if pgErr, ok := err.(*pq.Error); ok {
		switch pgErr.Code {
		case "23505": // unique_violation
			return WrapStorageError(StorageAlreadyExists, resource+" already exists: "+pgErr.Detail, err)
		case "23503": // foreign_key_violation
			return WrapStorageError(StorageInvalidInput, resource+" foreign key violation: "+pgErr.Detail, err)
		case "22P02": // invalid_text_representation
			return WrapStorageError(StorageInvalidInput, resource+" invalid format: "+pgErr.Message, err)
		case "40P01": // deadlock_detected
			return WrapStorageError(StorageDeadlock, resource+" deadlock detected", err)
		case "55P03": // lock_not_available
			return WrapStorageError(StorageLockTimeout, resource+" lock timeout", err)
		case "08000", "08003", "08006": // connection_exception family
			return WrapStorageError(StorageConnectionError, resource+" connection error", err)
		}
	}
	return WrapStorageError(StorageDbError, "database operation failed for "+resource, err)
}
