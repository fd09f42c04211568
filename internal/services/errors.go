package services

import (
	"errors"
	"fmt"
)

// ServiceError represents a business logic error with a code
type ServiceError struct {
	Err     error
	Message string
	Code    string
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeValidation = "validation_error"
	ErrCodeConflict   = "conflict"
	ErrCodeNotFound   = "not_found"
	ErrCodeStorage    = "storage_error"
)

func validationError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeValidation, Message: message}
}

func conflictError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodeConflict, Message: message, Err: err}
}

func notFoundError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodeNotFound, Message: message, Err: err}
}

// storageError hides err from Message; only logs should see it.
func storageError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodeStorage, Message: message, Err: err}
}

// ErrorCode returns the ServiceError code carried by err, or ErrCodeStorage
// for errors that were never classified.
func ErrorCode(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ErrCodeStorage
}
