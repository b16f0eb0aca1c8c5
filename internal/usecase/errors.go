package usecase

import (
	"errors"
	"fmt"

	"github.com/kgarten/customer-pool/internal/entity"
)

// Stable error codes surfaced to clients.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeForbidden  = "FORBIDDEN"
	CodeConflict   = "CONFLICT"
	CodeServer     = "SERVER_ERROR"
)

// DomainError is an expected failure the client can act on. Fields carries
// per-field detail when the failure came from input validation.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps an unexpected data-access failure. The client only
// ever sees the code and a generic message; the cause is for the log.
type TechnicalError struct {
	Code    string
	Message string
	Cause   error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Cause
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func invalid(format string, args ...interface{}) *DomainError {
	return &DomainError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...interface{}) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func forbidden(msg string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: msg}
}

func conflict(msg string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: msg}
}

// translate maps repository errors onto the taxonomy. Anything unrecognized
// becomes a TechnicalError so nothing leaks through untyped.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, entity.ErrNotFound):
		return notFound("%s: record not found", op)
	case errors.Is(err, entity.ErrCurrentConflict):
		return conflict("a concurrent update already changed this lead")
	case IsDomainError(err):
		return err
	default:
		return &TechnicalError{
			Code:    CodeServer,
			Message: "unexpected data access failure",
			Cause:   fmt.Errorf("%s: %w", op, err),
		}
	}
}
