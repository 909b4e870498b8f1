// Package errors provides unified error handling for the service.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
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

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Domain Error Constructors ---

// DownloadFailed creates an AppError for a remote video that could not be retrieved.
// The message mirrors the wording clients already parse.
func DownloadFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDownloadFailed, Message: fmt.Sprintf("Error downloading video: %v", cause),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Cause: cause,
	}
}

// NoMediaFound creates an AppError for a page without a locatable video element.
func NoMediaFound(url string) *AppError {
	return &AppError{
		Code: ErrCodeNoMediaFound, Message: "No video found at the specified URL",
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"url": url},
	}
}

// InvalidFormat creates an AppError for an upload that fails the file name checks.
func InvalidFormat(filename string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidFormat, Message: "Invalid file format",
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"filename": filename},
	}
}

// TranscriptionFailed creates an AppError for a speech-to-text model failure.
func TranscriptionFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionFailed, Message: fmt.Sprintf("Transcription failed: %v", cause),
		HTTPStatus: http.StatusBadGateway, Retryable: false, Cause: cause,
	}
}

// CleanupFailed creates an AppError for a working file that could not be deleted.
func CleanupFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeCleanupFailed, Message: fmt.Sprintf("Failed to delete file: %v", cause),
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// StorageFailed creates an AppError for a working file that could not be written.
func StorageFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorageFailed, Message: "Failed to store video for processing.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// --- Common Error Constructors ---

// ServiceUnavailable creates a new AppError for a service that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// NotFound creates an AppError for an unknown route.
func NotFound() *AppError {
	return New(ErrCodeNotFound, "Not Found", http.StatusNotFound)
}

// MethodNotAllowed creates an AppError for a known route called with the
// wrong method.
func MethodNotAllowed() *AppError {
	return New(ErrCodeMethodNotAllowed, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// Wrap returns err as an AppError. AppErrors anywhere in the chain are
// returned as-is; anything else becomes an internal error.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}
