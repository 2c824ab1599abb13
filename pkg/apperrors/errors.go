package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes, each mapped to an HTTP status by its constructor.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeBudgetExceeded  = "BUDGET_EXCEEDED"
	CodeQuotaExceeded   = "QUOTA_EXCEEDED"
	CodeValidation      = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeUpstreamFailure = "UPSTREAM_FAILURE"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError is an application error carrying an HTTP status and a stable
// machine-readable code alongside the human-readable message.
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithDetails attaches structured details to the error.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates an AppError with an explicit status.
func New(statusCode int, code, message string) *AppError {
	return &AppError{StatusCode: statusCode, Code: code, Message: message}
}

// NotFound reports a missing referenced entity, named so the caller can tell
// which lookup failed.
func NotFound(entity string, id any) *AppError {
	return New(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s %v does not exist", entity, id))
}

// NotFoundMsg reports a missing entity with a free-form message.
func NotFoundMsg(message string) *AppError {
	return New(http.StatusNotFound, CodeNotFound, message)
}

// Forbidden reports an ownership, role or ban failure.
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, CodeForbidden, message)
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

// BudgetExceeded reports a creation attempt over its tier cap; the message
// always names both the computed total and the cap.
func BudgetExceeded(total, cap int) *AppError {
	return New(http.StatusUnprocessableEntity, CodeBudgetExceeded,
		fmt.Sprintf("talent point cost %d exceeds tier budget %d", total, cap))
}

// QuotaExceeded reports the per-account character cap being hit.
func QuotaExceeded(limit int) *AppError {
	return New(http.StatusConflict, CodeQuotaExceeded,
		fmt.Sprintf("account already has the maximum of %d characters", limit))
}

// Validation reports structurally invalid input.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, CodeValidation, message)
}

// Conflict reports a concurrent modification or uniqueness clash.
func Conflict(message string) *AppError {
	return New(http.StatusConflict, CodeConflict, message)
}

// RateLimited reports a client exceeding a request window.
func RateLimited(message string) *AppError {
	return New(http.StatusTooManyRequests, CodeRateLimited, message)
}

// Upstream reports an external collaborator (Turnstile, SMTP) failure.
func Upstream(message string) *AppError {
	return New(http.StatusBadGateway, CodeUpstreamFailure, message)
}

// Internal wraps an unexpected failure without leaking its cause to clients.
func Internal(message string) *AppError {
	return New(http.StatusInternalServerError, CodeInternal, message)
}

// FromError returns err as an AppError, wrapping unknown errors as internal.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err.Error())
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
