package schema

import (
	"errors"
	"fmt"
)

// Error codes for structured error reporting.
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeSchemaViolation      = "SCHEMA_VIOLATION"
	ErrCodeParameterRange       = "PARAMETER_RANGE"
	ErrCodeCycleDetected        = "CYCLE_DETECTED"
	ErrCodeConstraintSyntax     = "CONSTRAINT_SYNTAX"
	ErrCodeEvaluation           = "EVALUATION_FAILED"
	ErrCodeDanglingReference    = "DANGLING_REFERENCE"
	ErrCodeTransportInvalid     = "TRANSPORT_INVALID"
	ErrCodeTransportUnreachable = "TRANSPORT_UNREACHABLE"
	ErrCodeTransportServer      = "TRANSPORT_SERVER_ERROR"
	ErrCodeSerialization        = "SERIALIZATION_FAILED"
	ErrCodeDownload             = "DOWNLOAD_FAILED"
)

// BatchMLError is the structured error type returned across the compiler.
type BatchMLError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	ItemID  string         `json:"item_id,omitempty"`
	Cause   error          `json:"-"`
}

func (e *BatchMLError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("[%s] item %s: %s", e.Code, e.ItemID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *BatchMLError) Unwrap() error {
	return e.Cause
}

// Is matches any BatchMLError carrying the same code.
func (e *BatchMLError) Is(target error) bool {
	var t *BatchMLError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new BatchMLError.
func NewError(code, message string) *BatchMLError {
	return &BatchMLError{Code: code, Message: message}
}

// NewErrorf creates a new BatchMLError with a formatted message.
func NewErrorf(code, format string, args ...any) *BatchMLError {
	return &BatchMLError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithItem attaches a workspace item ID to the error.
func (e *BatchMLError) WithItem(itemID string) *BatchMLError {
	e.ItemID = itemID
	return e
}

// WithCause attaches an underlying cause.
func (e *BatchMLError) WithCause(err error) *BatchMLError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *BatchMLError) WithDetails(details map[string]any) *BatchMLError {
	e.Details = details
	return e
}

// ErrorCode extracts the code of a BatchMLError anywhere in err's chain, or "".
func ErrorCode(err error) string {
	var be *BatchMLError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
