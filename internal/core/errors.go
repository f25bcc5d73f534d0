// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"net/http"
)

// Sentinel errors used across repositories and services. Components translate
// provider/library failures into one of these before crossing back to the
// HTTP layer.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Error kinds as they appear on the wire.
const (
	KindBadRequest   = "bad_request"
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
	KindNotFound     = "not_found"
	KindServerError  = "server_error"
)

type AppError struct {
	Kind    string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func BadRequestError(message string) *AppError {
	return &AppError{
		Kind:    KindBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

func UnauthorizedError(message string) *AppError {
	return &AppError{
		Kind:    KindUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

func ForbiddenError(message string) *AppError {
	return &AppError{
		Kind:    KindForbidden,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

func NotFoundError(message string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

func ServerError(message string) *AppError {
	return &AppError{
		Kind:    KindServerError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

func TokenExpiredError() *AppError {
	return UnauthorizedError("token has expired")
}

func TokenInvalidError() *AppError {
	return UnauthorizedError("invalid or expired token")
}
