package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ModelNotLoaded indicates no model is currently held in memory
	ModelNotLoaded ErrorCode = "MODEL_NOT_LOADED"
	// FileNotFound indicates the model file does not exist
	FileNotFound ErrorCode = "FILE_NOT_FOUND"
	// ValidationFailed indicates the model file failed schema validation
	ValidationFailed ErrorCode = "VALIDATION_FAILED"
	// SerializeFailed indicates the model could not be serialized or written
	SerializeFailed ErrorCode = "SERIALIZE_FAILED"
	// ObjectNotFound indicates a named data object does not exist
	ObjectNotFound ErrorCode = "OBJECT_NOT_FOUND"
	// ObjectNotLookup indicates the named data object is not a lookup object
	ObjectNotLookup ErrorCode = "OBJECT_NOT_LOOKUP"
	// RoleObjectMissing indicates the model has no Role data object
	RoleObjectMissing ErrorCode = "ROLE_OBJECT_MISSING"
	// ItemNotFound indicates a named lookup item or role does not exist
	ItemNotFound ErrorCode = "ITEM_NOT_FOUND"
	// DuplicateName indicates a name collision on creation
	DuplicateName ErrorCode = "DUPLICATE_NAME"
	// DuplicateStory indicates a user story with identical text already exists
	DuplicateStory ErrorCode = "DUPLICATE_STORY"
	// InvalidStory indicates user story text failed validation
	InvalidStory ErrorCode = "INVALID_STORY"
	// InvalidRequest indicates a malformed or incomplete request
	InvalidRequest ErrorCode = "INVALID_REQUEST"
	// UnknownCommand indicates a command name with no registered handler
	UnknownCommand ErrorCode = "UNKNOWN_COMMAND"
	// CommandRejected indicates a command blocked by the allow-list policy
	CommandRejected ErrorCode = "COMMAND_REJECTED"
	// Unauthorized indicates a missing or invalid bridge token
	Unauthorized ErrorCode = "UNAUTHORIZED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ServiceError represents a model service error with a stable code and message
type ServiceError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new ServiceError
func New(code ErrorCode, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new ServiceError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new ServiceError wrapping an underlying cause
func Wrap(code ErrorCode, message string, cause error) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ServiceError) WithDetails(details interface{}) *ServiceError {
	e.Details = details
	return e
}

// CodeOf returns the error code of err, or InternalError when err carries none.
func CodeOf(err error) ErrorCode {
	var svcErr *ServiceError
	if stderrors.As(err, &svcErr) {
		return svcErr.Code
	}
	return InternalError
}

// MessageOf returns the bare message of err without the code prefix,
// falling back to err.Error() for plain errors.
func MessageOf(err error) string {
	var svcErr *ServiceError
	if stderrors.As(err, &svcErr) {
		return svcErr.Message
	}
	return err.Error()
}

// Is reports whether err carries the given error code.
func Is(err error, code ErrorCode) bool {
	var svcErr *ServiceError
	if stderrors.As(err, &svcErr) {
		return svcErr.Code == code
	}
	return false
}
