package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Media acquisition errors
const (
	// ErrCodeDownloadFailed indicates a remote video could not be fetched.
	ErrCodeDownloadFailed ErrorCode = "DOWNLOAD_FAILED"
	// ErrCodeNoMediaFound indicates an HTML page carried no usable video element.
	ErrCodeNoMediaFound ErrorCode = "NO_MEDIA_FOUND"
	// ErrCodeInvalidFormat indicates an upload with a disallowed file name or extension.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeNotFound indicates no route matched the request path.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeMethodNotAllowed indicates the path exists under another method.
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
)

// Processing errors
const (
	// ErrCodeTranscriptionFailed indicates the speech-to-text model rejected the input.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeCleanupFailed indicates a working file could not be removed.
	ErrCodeCleanupFailed ErrorCode = "CLEANUP_FAILED"
	// ErrCodeStorageFailed indicates a working file could not be written.
	ErrCodeStorageFailed ErrorCode = "STORAGE_FAILED"
)

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable:  true,
	ErrCodeTimeout:             true,
	ErrCodeDownloadFailed:      false,
	ErrCodeTranscriptionFailed: false,
	ErrCodeInternal:            false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
