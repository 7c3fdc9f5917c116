package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
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

// NewInvalidCredentials covers every failed login uniformly so the
// response does not leak which half of the pair was wrong.
func NewInvalidCredentials() error {
	return NewDomainError("INVALID_CREDENTIALS", "usuario o contraseña incorrectos", http.StatusUnauthorized, nil)
}

// NewValidationError names the first offending field in its details.
func NewValidationError(field, message string) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, map[string]any{"field": field})
}

// NewProtectedAccount rejects deletion of the seeded primary admin.
func NewProtectedAccount() error {
	return NewDomainError("PROTECTED_ACCOUNT", "the primary admin account cannot be deleted", http.StatusConflict, nil)
}

// NewDuplicateIdentifier rejects a login identifier already in use.
func NewDuplicateIdentifier(identifier string) error {
	return NewDomainError("DUPLICATE_IDENTIFIER", "login identifier already registered", http.StatusConflict, map[string]any{"identifier": identifier})
}

// NewDuplicateFolio rejects a service-order folio already in use.
func NewDuplicateFolio(folio string) error {
	return NewDomainError("VALIDATION_FAILED", "folio already registered", http.StatusConflict, map[string]any{"field": "folio", "folio": folio})
}

// NewMissingRequiredEvidence blocks closure without the signed-report photo.
func NewMissingRequiredEvidence() error {
	return NewDomainError("MISSING_REQUIRED_EVIDENCE", "the signed report evidence photo is required to close the folio", http.StatusUnprocessableEntity, nil)
}

// NewAlreadyClosed rejects any mutation of a closed ticket.
func NewAlreadyClosed(folio string) error {
	return NewDomainError("ALREADY_CLOSED", "ticket is closed and read-only", http.StatusConflict, map[string]any{"folio": folio})
}

// NewExternalServiceUnavailable wraps assist/geo failures. Callers are
// expected to degrade to manual entry, never to fail the workflow.
func NewExternalServiceUnavailable(err error) error {
	return &DomainError{
		Code:       "EXTERNAL_SERVICE_UNAVAILABLE",
		Message:    "external service unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewRateLimited(message string) error {
	return NewDomainError("RATE_LIMITED", message, http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
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
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// IsNotFound reports a missing record from either store implementation.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || IsCode(err, "NOT_FOUND")
}

func MapError(err error) error {
	return ToDomainError(err)
}
