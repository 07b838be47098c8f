package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/markets-feeds/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeInvalidQuery     ErrorCode = "INVALID_QUERY"
	ErrorCodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"

	// Server Error Codes (5xx)
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeIndexNotReady      ErrorCode = "INDEX_NOT_READY"
	ErrorCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	ErrorCodeTimeout            ErrorCode = "TIMEOUT"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)

	if id := requestID(c); id != "" {
		errorResponse.RequestID = id
	}

	c.JSON(statusCode, errorResponse)
}

// SendStructuredValidationError sends a validation error with structured details
func SendStructuredValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}

	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}

// SendDomainError maps a service error onto its HTTP status so callers can tell
// "not ready" from "invalid query" from "storage down".
func SendDomainError(c *gin.Context, operation string, err error) {
	var validation *internalErrors.ValidationError

	switch {
	case errors.As(err, &validation):
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid "+operation+" request",
			ErrorDetail{Field: validation.Field, Message: validation.Message, Code: "VALIDATION_ERROR"})
	case errors.Is(err, internalErrors.ErrInvalidQuery):
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, err.Error())
	case errors.Is(err, internalErrors.ErrIndexNotReady):
		c.Header("Retry-After", "1")
		SendError(c, http.StatusServiceUnavailable, ErrorCodeIndexNotReady,
			"Search index is not ready yet, retry shortly")
	case errors.Is(err, internalErrors.ErrStorageUnavailable):
		SendError(c, http.StatusBadGateway, ErrorCodeStorageUnavailable,
			"Article storage is unavailable: "+err.Error())
	case errors.Is(err, internalErrors.ErrJobNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeJobNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		SendError(c, http.StatusGatewayTimeout, ErrorCodeTimeout, operation+" did not finish in time")
	default:
		SendInternalError(c, operation, err)
	}
}

// SendJobNotFoundError sends a standardized job not found error
func SendJobNotFoundError(c *gin.Context, jobID string) {
	SendError(c, http.StatusNotFound, ErrorCodeJobNotFound,
		"Job '"+jobID+"' not found")
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}
