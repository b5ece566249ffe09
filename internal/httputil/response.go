// Package httputil writes the JSON envelopes shared by every storefront handler.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/storefront/internal/errors"
)

// Envelope is the body of every successful API response.
type Envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
	Pagination any    `json:"pagination,omitempty"`
}

// ErrorResponse is the body of every failed API response. Error is a stable
// machine-readable code; Message is for humans.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// errorKind maps one domain error to its response. An empty message means the
// error text itself is shown.
type errorKind struct {
	target  error
	status  int
	code    string
	message string
}

var errorKinds = []errorKind{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "A conflict occurred with existing data"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", "You don't have permission to access this resource"},
	{apperrors.ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "A dependency is temporarily unavailable"},
}

var internalError = errorKind{
	status:  http.StatusInternalServerError,
	code:    "internal_error",
	message: "An internal error occurred",
}

func classify(err error) errorKind {
	for _, kind := range errorKinds {
		if apperrors.Is(err, kind.target) {
			return kind
		}
	}
	return internalError
}

// RespondGin writes data wrapped in the success envelope.
func RespondGin(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Envelope{Success: true, Message: message, Data: data})
}

// RespondPageGin writes one page of a listing with its pagination block beside the data.
func RespondPageGin(c *gin.Context, message string, data any, pagination any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Pagination: pagination})
}

// HandleErrorGin maps err to a status code and writes the error envelope. Only
// invalid input echoes the error text; other kinds use a fixed message so storage
// details never reach the client. 5xx are logged at error level, the rest at warn.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	kind := classify(err)
	message := kind.message
	if message == "" {
		message = err.Error()
	}

	if logger != nil {
		level := slog.LevelWarn
		if kind.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", kind.status),
			slog.String("error_code", kind.code),
			slog.Any("error", err),
		)
	}

	c.JSON(kind.status, ErrorResponse{Error: kind.code, Message: message})
}

// HandleBadRequestGin writes a 400 for bodies or parameters that could not be parsed.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusBadRequest, "bad_request", err, logger)
}

// HandleValidationErrorGin writes a 422 for requests that parsed but failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusUnprocessableEntity, "validation_error", err, logger)
}

func writeClientError(c *gin.Context, status int, code string, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("rejected request", slog.String("error_code", code), slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}
