package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Blocking validation errors of the visit and claim engine. These halt the
// corresponding state transition; advisory flags never surface as errors.
var (
	ErrIncompleteContact       = New("INCOMPLETE_CONTACT", http.StatusUnprocessableEntity, "at least one contact is required")
	ErrMissingPurpose          = New("MISSING_PURPOSE", http.StatusUnprocessableEntity, "at least one visit purpose is required")
	ErrIncompleteSupplyChannel = New("INCOMPLETE_SUPPLY_CHANNEL", http.StatusUnprocessableEntity, "supply channel is required for school visits")
	ErrReceiptRequired         = New("RECEIPT_REQUIRED", http.StatusUnprocessableEntity, "receipt is required for this expense category")
	ErrEmptySelection          = New("EMPTY_SELECTION", http.StatusUnprocessableEntity, "select at least one expense")
	ErrMissingTitle            = New("MISSING_TITLE", http.StatusUnprocessableEntity, "report title is required")
	ErrInsufficientAllocation  = New("INSUFFICIENT_ALLOCATION", http.StatusUnprocessableEntity, "requested quantity exceeds remaining allocation")
	ErrNoVisitForClaimDate     = New("NO_VISIT_FOR_CLAIM_DATE", http.StatusUnprocessableEntity, "no visit logged for this date")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the same domain code as target.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}
