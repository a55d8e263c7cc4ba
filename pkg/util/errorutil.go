package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Stable machine-readable error codes returned in the error envelope.
const (
	CodeValidationFailed          = "VALIDATION_FAILED"
	CodeNotFound                  = "RESOURCE_NOT_FOUND"
	CodeRouteNotFound             = "ROUTE_NOT_FOUND"
	CodeConflict                  = "RESOURCE_CONFLICT"
	CodeInternal                  = "INTERNAL_ERROR"
	CodeRateLimited               = "RATE_LIMITED"
	CodeNoToken                   = "NO_TOKEN"
	CodeTokenExpired              = "TOKEN_EXPIRED"
	CodeInvalidToken              = "INVALID_TOKEN"
	CodeAuthFailed                = "AUTH_FAILED"
	CodeAuthRequired              = "AUTH_REQUIRED"
	CodeUserNotFound              = "USER_NOT_FOUND"
	CodeAccountInactive           = "ACCOUNT_INACTIVE"
	CodeAccountBanned             = "ACCOUNT_BANNED"
	CodeAccountNotActive          = "ACCOUNT_NOT_ACTIVE"
	CodeInsufficientPermissions   = "INSUFFICIENT_PERMISSIONS"
	CodeAccessDenied              = "ACCESS_DENIED"
	CodeResourceIDRequired        = "RESOURCE_ID_REQUIRED"
	CodeEmailVerificationRequired = "EMAIL_VERIFICATION_REQUIRED"
	CodeUserExists                = "USER_EXISTS"
	CodeInvalidCredentials        = "INVALID_CREDENTIALS"
	CodeInvalidCurrentPassword    = "INVALID_CURRENT_PASSWORD"
	CodeSamePassword              = "SAME_PASSWORD"
	CodeRefreshTokenRequired      = "REFRESH_TOKEN_REQUIRED"
	CodeRefreshTokenExpired       = "REFRESH_TOKEN_EXPIRED"
	CodeInvalidRefreshToken       = "INVALID_REFRESH_TOKEN"
	CodeArticleNotFound           = "ARTICLE_NOT_FOUND"
	CodeCommentNotFound           = "COMMENT_NOT_FOUND"
	CodeTagExists                 = "TAG_EXISTS"
	CodeDependencyUnavailable     = "DEPENDENCY_UNAVAILABLE"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

// NewBadRequest is a 400 carrying a specific code, e.g. USER_EXISTS.
func NewBadRequest(code, message string, details map[string]any) error {
	return NewDomainError(code, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewNotFoundCode is a 404 with a resource specific code.
func NewNotFoundCode(code, message string) error {
	return NewDomainError(code, message, http.StatusNotFound, nil)
}

func NewUnauthorized(code, message string) error {
	return NewDomainError(code, message, http.StatusUnauthorized, nil)
}

func NewForbidden(code, message string, details map[string]any) error {
	return NewDomainError(code, message, http.StatusForbidden, details)
}

func NewConflict(code, message string, details map[string]any) error {
	if code == "" {
		code = CodeConflict
	}
	return NewDomainError(code, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &DomainError{
			Code:       CodeNotFound,
			Message:    "Requested resource not found",
			HTTPStatus: http.StatusNotFound,
			Err:        err,
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		field := pgErr.ConstraintName
		if field == "" {
			field = "resource"
		}
		return &DomainError{
			Code:       CodeConflict,
			Message:    fmt.Sprintf("%s already exists", field),
			HTTPStatus: http.StatusConflict,
			Err:        err,
		}
	}
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return &DomainError{
			Code:       CodeValidationFailed,
			Message:    "Referenced resource does not exist",
			HTTPStatus: http.StatusBadRequest,
			Details:    map[string]any{"constraint": pgErr.ConstraintName},
			Err:        err,
		}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// ToHTTPError is ToDomainError extended with framework errors (bad JSON,
// 405, body too large, limiter), which are mapped by their status.
func ToHTTPError(err error) *DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := CodeInternal
		switch {
		case fiberErr.Code == http.StatusNotFound:
			code = CodeRouteNotFound
		case fiberErr.Code == http.StatusTooManyRequests:
			code = CodeRateLimited
		case fiberErr.Code < http.StatusInternalServerError:
			code = CodeValidationFailed
		}
		return &DomainError{Code: code, Message: fiberErr.Message, HTTPStatus: fiberErr.Code, Err: err}
	}
	return ToDomainError(err)
}
