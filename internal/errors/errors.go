package errors

import "fmt"

// ErrorCode represents a pdfsmith error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrUnsupportedType  ErrorCode = "UNSUPPORTED_TYPE"  // 415
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrConversionFailed ErrorCode = "CONVERSION_FAILED" // 422
	ErrStorage          ErrorCode = "STORAGE"           // 500
	ErrPublish          ErrorCode = "PUBLISH"           // 502, warning-level at call sites
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnsupportedType creates a 415 error for a disallowed file extension.
func NewUnsupportedType(filename string, allowed []string) *Error {
	return &Error{
		Code:    ErrUnsupportedType,
		Status:  415,
		Message: fmt.Sprintf("file type not allowed: %s (allowed: %v)", filename, allowed),
		Details: map[string]any{"filename": filename, "allowed": allowed},
	}
}

// NewNotFound creates a 404 error for a missing document or file.
func NewNotFound(identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewConversionFailed creates a 422 error when an external converter fails.
func NewConversionFailed(source string, err error) *Error {
	msg := "conversion failed"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrConversionFailed,
		Status:  422,
		Message: fmt.Sprintf("PDF conversion failed for %s: %s", source, msg),
		Details: map[string]any{"source": source},
	}
}

// NewStorage creates a 500 error for a metadata persistence failure.
func NewStorage(err error) *Error {
	msg := "storage error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrStorage,
		Status:  500,
		Message: msg,
	}
}

// NewPublish creates a 502 error for a failed push.
// Callers report it as a warning, never as a failure of the primary operation.
func NewPublish(err error) *Error {
	msg := "publish failed"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrPublish,
		Status:  502,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a pdfsmith Error with the given code.
func Is(err error, code ErrorCode) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
}
