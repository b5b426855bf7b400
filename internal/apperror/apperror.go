package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class the calling layer can act on.
type Code string

const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeValidation         Code = "VALIDATION"
	CodeInsufficientStock  Code = "INSUFFICIENT_STOCK"
	CodePaymentExceedsDue  Code = "PAYMENT_EXCEEDS_DUE"
	CodeWalkInNotFullyPaid Code = "WALK_IN_NOT_FULLY_PAID"
	CodeTxTimeout          Code = "TRANSACTION_TIMEOUT"
	CodeConflict           Code = "CONFLICT"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInternal           Code = "INTERNAL"
)

// Error is the single error type every public operation returns on failure.
// Err, when set, carries the underlying cause for logging; Message is what
// the operator sees.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with a formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new Error.
func Wrap(code Code, err error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFound(entity string) *Error {
	return New(CodeNotFound, "%s not found", entity)
}

func Validation(format string, args ...interface{}) *Error {
	return New(CodeValidation, format, args...)
}

// CodeOf extracts the Code from err, or CodeInternal for unknown errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error to the status code the handlers respond with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeWalkInNotFullyPaid:
		return http.StatusBadRequest
	case CodeInsufficientStock, CodePaymentExceedsDue, CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTxTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
