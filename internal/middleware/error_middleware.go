package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/taluation/internal/app/models/dto"
	"github.com/yigit/taluation/internal/pkg/apperrors"
	"github.com/yigit/taluation/internal/pkg/logger"
)

// Fallback messages for errors that carry none
const (
	MessageInternalError  = "Internal server error."
	MessageUnauthorized   = "Unauthorized."
	MessageNotFound       = "Resource not found."
	MessageAlreadyExists  = "Resource already exists."
	MessageForbidden      = "Permission denied."
	MessageInvalidRequest = "Invalid request data."
)

// HandleAPIError maps a service error onto the response envelope. Domain failures
// are answered with 200 and success=false; only unexpected faults become 500.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, dto.NewFailureResponse(MessageUnauthorized))
	case errors.Is(err, apperrors.ErrResourceNotFound):
		c.JSON(http.StatusOK, dto.NewFailureResponse(apperrors.Message(err, MessageNotFound)))
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		c.JSON(http.StatusOK, dto.NewFailureResponse(apperrors.Message(err, MessageAlreadyExists)))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(http.StatusOK, dto.NewFailureResponse(apperrors.Message(err, MessageForbidden)))
	case apperrors.Is(err, apperrors.ErrInvalidCredentials, apperrors.ErrPasswordTooShort, apperrors.ErrValidationFailed):
		c.JSON(http.StatusOK, dto.NewFailureResponse(apperrors.Message(err, MessageInvalidRequest)))
	default:
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error while serving request")
		c.JSON(http.StatusInternalServerError, dto.NewFailureResponse(MessageInternalError))
	}
}

// HandleBindingError answers a request whose payload could not be decoded or validated
func HandleBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewFailureResponse(FormatBindingError(err)))
}
