package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by DomainError. Every code except CodeUnauthorized is
// reported with HTTP 400.
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
	CodeRouting            = "ROUTING"
)

// InvalidTicketID is the message reported for unknown ticket identifiers.
const InvalidTicketID = "Invalid Ticket Id"

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Field      string
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
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

// NewUnauthorized is raised by the authorization check when no identity was resolved.
func NewUnauthorized() error {
	return NewDomainError(CodeUnauthorized, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

// NewInvalidCredentials wraps a directory rejection or failure.
func NewInvalidCredentials(message string, cause error) error {
	return &DomainError{
		Code:       CodeInvalidCredentials,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        cause,
	}
}

func NewValidationError(field, message string) error {
	return &DomainError{
		Code:       CodeValidationFailed,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Field:      field,
	}
}

func NewNotFound(message string) error {
	return NewDomainError(CodeNotFound, message, http.StatusBadRequest)
}

// NewInternalError keeps the raw error text as the client-facing message.
func NewInternalError(err error) error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
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
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return NewDomainError(CodeRouting, fiberErr.Message, fiberErr.Code)
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    err.Error(),
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// IsCode reports whether err carries the given DomainError code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
