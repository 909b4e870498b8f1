package errors

import (
	stderrors "errors"
)

// DetailResponse is the flat {"detail": "..."} body used by the transcription
// endpoints for client and upstream failures.
type DetailResponse struct {
	Detail string    `json:"detail"`
	Code   ErrorCode `json:"code,omitempty"`
}

// ToDetail converts an AppError to a DetailResponse.
func (e *AppError) ToDetail() DetailResponse {
	return DetailResponse{Detail: e.Message, Code: e.Code}
}

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
