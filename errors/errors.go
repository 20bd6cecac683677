package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type returned by the kaproxy packages.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message. For proxy errors it is the
	// proxy's literal error text.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Constructors ---

// InvalidArgument creates an AppError for a call parameter that violates a precondition.
func InvalidArgument(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidArgument, Message: message}
}

// InvalidConfig creates an AppError for a configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidConfig, Message: message}
}

// Transport creates an AppError for a failed HTTP exchange.
func Transport(operation string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeTransport,
		Message: fmt.Sprintf("%s: http exchange failed", operation),
		Details: map[string]any{"operation": operation},
		Cause:   cause,
	}
}

// Timeout creates an AppError for an HTTP exchange that exceeded its deadline.
func Timeout(operation string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeTimeout,
		Message: fmt.Sprintf("%s: http exchange timed out", operation),
		Details: map[string]any{"operation": operation},
		Cause:   cause,
	}
}

// ProduceFailed creates an AppError carrying the proxy's error text for a produce call.
func ProduceFailed(proxyMessage string) *AppError {
	return &AppError{Code: ErrCodeProduceFailed, Message: proxyMessage}
}

// ConsumeFailed creates an AppError carrying the proxy's error text for a consume call.
func ConsumeFailed(proxyMessage string) *AppError {
	return &AppError{Code: ErrCodeConsumeFailed, Message: proxyMessage}
}

// InvalidResponse creates an AppError for a proxy answer that could not be interpreted.
func InvalidResponse(statusCode int, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidResponse,
		Message: reason,
		Details: map[string]any{"status_code": statusCode},
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the outermost AppError in err's chain, or ""
// when err carries none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsTransport reports whether err describes a failed exchange (including timeouts).
func IsTransport(err error) bool {
	return err != nil && IsTransportCode(CodeOf(err))
}
