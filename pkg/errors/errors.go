package errors

import (
	"errors"
	"fmt"
)

// Custom error types for better error handling
var (
	// Storage errors
	ErrStorageIO          = errors.New("storage unavailable")
	ErrNotFound           = errors.New("note not found")
	ErrTransactionFailed  = errors.New("transaction failed")
	ErrMigrationFailed    = errors.New("migration failed")
	ErrDatabaseConnection = errors.New("database connection failed")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Encryption errors
	ErrEncryptionFailed = errors.New("encryption failed")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrInvalidKey       = errors.New("invalid encryption key")

	// Rate limiting errors
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// Backup errors
	ErrBackupFailed  = errors.New("backup operation failed")
	ErrRestoreFailed = errors.New("restore operation failed")
)

// AppError wraps errors with additional context
type AppError struct {
	Err     error
	Message string
	Code    int
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error
func NewAppError(err error, message string, code int) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// Storage marks err as a storage-layer failure while keeping the driver
// error reachable through errors.Is / errors.As.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStorageIO, err)
}
