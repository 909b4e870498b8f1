package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/vidscribe/vidscribe/errors"
)

// RespondWithDetail renders err as {"detail": "..."} with the AppError's
// status; other errors become a generic 500.
func RespondWithDetail(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal(err)
	}
	if appErr.Retryable && appErr.HTTPStatus == http.StatusServiceUnavailable {
		c.Header("Retry-After", "30")
	}
	c.JSON(appErr.HTTPStatus, appErr.ToDetail())
}

// RespondCreated sends a 201 response with body as-is.
func RespondCreated(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}
