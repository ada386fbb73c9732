package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
)

// ErrorInfo error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error ErrorInfo `json:"error"`
}

// ErrorResponse returns an error JSON response
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Error: ErrorInfo{
		Code:    getErrorCode(status),
		Message: message,
	}})
}

// AbortWithError writes the error response and stops the chain
func AbortWithError(c *gin.Context, status int, message string) {
	ErrorResponse(c, status, message)
	c.Abort()
}

// HandleError maps an error kind to its status and writes the response
func HandleError(c *gin.Context, err error) {
	status := StatusOf(err)
	msg := MessageOf(err)

	if status >= http.StatusInternalServerError {
		pkglogger.GetLogger().Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		var e *Error
		if !errors.As(err, &e) {
			msg = "Internal server error"
		}
	}
	_ = c.Error(err)
	ErrorResponse(c, status, msg)
}

// StatusOf returns the HTTP status for an error kind
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 413:
		return "PAYLOAD_TOO_LARGE"
	case 429:
		return "TOO_MANY_REQUESTS"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "ERROR"
	}
}
