package dto

import (
	"net/http"

	"github.com/botforce/unity/internal/domain/shared"
)

// Codes raised by the HTTP layer itself
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeInvalidID    = "INVALID_ID"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "INVALID_TOKEN"
	ErrCodeBodyTooLarge = "REQUEST_TOO_LARGE"
)

// domainStatus lists the domain error codes that do not map to 422.
// Every other domain code is a violated business rule.
var domainStatus = map[string]int{
	shared.ErrNotFound.Code:            http.StatusNotFound,
	shared.ErrAlreadyExists.Code:       http.StatusConflict,
	shared.ErrConcurrencyConflict.Code: http.StatusConflict,
	shared.ErrInvalidInput.Code:        http.StatusBadRequest,
}

// DomainErrorStatus returns the HTTP status for a domain error code
func DomainErrorStatus(code string) int {
	if status, ok := domainStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}

// ToAppError maps a domain error onto the AppError taxonomy
func ToAppError(err *shared.DomainError) *shared.AppError {
	status := DomainErrorStatus(err.Code)
	kind := shared.KindBusiness
	switch status {
	case http.StatusNotFound:
		kind = shared.KindNotFound
	case http.StatusBadRequest:
		kind = shared.KindValidation
	}
	return &shared.AppError{
		Kind:        kind,
		Code:        err.Code,
		Message:     err.Message,
		Status:      status,
		Operational: true,
	}
}
