package shared

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies an AppError
type ErrorKind string

const (
	KindAuth            ErrorKind = "auth"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindValidation      ErrorKind = "validation"
	KindBusiness        ErrorKind = "business"
	KindRateLimit       ErrorKind = "rate_limit"
	KindExternalService ErrorKind = "external_service"
	KindInternal        ErrorKind = "internal"
)

// Error codes carried by AppError
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

// GenericErrorMessage replaces the message of non-operational errors
const GenericErrorMessage = "An unexpected error occurred"

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is an error that knows how it should be presented to a caller.
//
// Operational errors are expected failures (bad input, missing record,
// rule violation) and their message is safe to show. Non-operational errors
// are bugs or infrastructure failures; callers only ever see
// GenericErrorMessage and the cause is logged server-side.
type AppError struct {
	Kind        ErrorKind
	Code        string
	Message     string
	Status      int
	Operational bool
	Fields      []FieldError
	RetryAfter  time.Duration
	Service     string
	cause       error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// PublicMessage returns the message that may be shown to a caller
func (e *AppError) PublicMessage() string {
	if !e.Operational {
		return GenericErrorMessage
	}
	return e.Message
}

// WithCause attaches an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// NewAuthError reports a missing or invalid identity
func NewAuthError(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return &AppError{Kind: KindAuth, Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized, Operational: true}
}

// NewForbiddenError reports an authenticated caller lacking permission
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "You do not have permission to perform this action"
	}
	return &AppError{Kind: KindForbidden, Code: CodeForbidden, Message: message, Status: http.StatusForbidden, Operational: true}
}

// NewNotFoundError reports a missing resource
func NewNotFoundError(resource string, id any) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	if id != nil {
		msg = fmt.Sprintf("%s %v not found", resource, id)
	}
	return &AppError{Kind: KindNotFound, Code: CodeNotFound, Message: msg, Status: http.StatusNotFound, Operational: true}
}

// NewValidationError reports invalid input, optionally per field
func NewValidationError(message string, fields ...FieldError) *AppError {
	if message == "" {
		message = "Validation failed"
	}
	return &AppError{Kind: KindValidation, Code: CodeValidation, Message: message, Status: http.StatusBadRequest, Operational: true, Fields: fields}
}

// NewBusinessError reports a violated business rule
func NewBusinessError(code, message string) *AppError {
	return &AppError{Kind: KindBusiness, Code: code, Message: message, Status: http.StatusUnprocessableEntity, Operational: true}
}

// NewRateLimitError reports a throttled caller
func NewRateLimitError(retryAfter time.Duration) *AppError {
	return &AppError{
		Kind:        KindRateLimit,
		Code:        CodeRateLimited,
		Message:     "Too many requests, please try again later",
		Status:      http.StatusTooManyRequests,
		Operational: true,
		RetryAfter:  retryAfter,
	}
}

// NewExternalServiceError reports a failing third-party dependency.
// The cause is kept for logs; the caller only learns which service failed.
func NewExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Kind:        KindExternalService,
		Code:        CodeExternalService,
		Message:     fmt.Sprintf("%s is currently unavailable", service),
		Status:      http.StatusBadGateway,
		Operational: true,
		Service:     service,
		cause:       cause,
	}
}

// NewInternalError wraps an unexpected failure
func NewInternalError(cause error) *AppError {
	return &AppError{Kind: KindInternal, Code: CodeInternal, Message: GenericErrorMessage, Status: http.StatusInternalServerError, cause: cause}
}

// AsAppError extracts an AppError from an error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsOperational reports whether err may be shown to a caller verbatim
func IsOperational(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Operational
	}
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}
