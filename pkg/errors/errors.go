package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Process errors
	ErrProcessStart ErrorCode = "PROCESS_START"
	ErrProcessExit  ErrorCode = "PROCESS_EXIT"

	// Git errors
	ErrGitExec   ErrorCode = "GIT_EXEC"
	ErrGitRepo   ErrorCode = "GIT_REPO"
	ErrGitBranch ErrorCode = "GIT_BRANCH"

	// Book content errors
	ErrBookMeta         ErrorCode = "BOOK_META"
	ErrBookTemplate     ErrorCode = "BOOK_TEMPLATE"
	ErrValidation       ErrorCode = "VALIDATION"
	ErrApprovedBookList ErrorCode = "APPROVED_BOOK_LIST"
	ErrBooksFailed      ErrorCode = "BOOKS_FAILED"

	// Remote service errors
	ErrRemoteRequest ErrorCode = "REMOTE_REQUEST"
	ErrMember        ErrorCode = "MEMBER"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// BookopsError represents a structured error with code and details
type BookopsError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *BookopsError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *BookopsError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *BookopsError) Is(target error) bool {
	var targetErr *BookopsError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new BookopsError with the given code and message
func New(code ErrorCode, message string) *BookopsError {
	return &BookopsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new BookopsError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BookopsError {
	return &BookopsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a BookopsError
func Wrap(err error, code ErrorCode, message string) *BookopsError {
	if err == nil {
		return nil
	}
	return &BookopsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BookopsError {
	if err == nil {
		return nil
	}
	return &BookopsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *BookopsError) WithDetail(key string, value interface{}) *BookopsError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var opsErr *BookopsError
	if errors.As(err, &opsErr) {
		return opsErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a BookopsError
func GetErrorCode(err error) ErrorCode {
	var opsErr *BookopsError
	if errors.As(err, &opsErr) {
		return opsErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a BookopsError
func GetErrorDetails(err error) map[string]interface{} {
	var opsErr *BookopsError
	if errors.As(err, &opsErr) {
		return opsErr.Details
	}
	return nil
}

// As is errors.As from the standard library.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
