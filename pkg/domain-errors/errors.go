// Package domainerrors carries coded errors across layers.
//
// Services return *Error values with a Code so transports and tests can branch on the
// exact rejection reason. Stores return plain or sentinel errors which services wrap.
//
// Codes fall into two groups: generic request codes (bad_request, not_found, internal_error)
// and admission codes, each of which belongs to exactly one Category.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies the specific reason an operation failed.
type Code string

// Generic request codes.
const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeInvariantViolation Code = "invariant_violation"
	CodeRateLimited        Code = "rate_limited"
	CodeInternal           Code = "internal_error"
)

// Authorization codes. The two authority scopes never overlap.
const (
	CodeNotSuperAdmin Code = "not_super_admin"
	CodeNotArtist     Code = "not_artist"
)

// Assignment codes.
const (
	CodeNoMinterAssigned  Code = "no_minter_assigned"
	CodeWrongMinter       Code = "wrong_minter"
	CodeMinterNotApproved Code = "minter_not_approved"
	CodeAlreadyApproved   Code = "already_approved"
	CodeStillAssigned     Code = "still_assigned"
)

// Policy codes.
const (
	CodeProjectNotOpen      Code = "project_not_open"
	CodeUnsupportedCurrency Code = "unsupported_currency"
	CodeRedirectNotAllowed  Code = "redirect_not_allowed"
)

// Capacity and payment codes.
const (
	CodeSoldOut             Code = "sold_out"
	CodeCapacityExceeded    Code = "capacity_exceeded"
	CodeInsufficientPayment Code = "insufficient_payment"
)

// Category groups admission codes into the rejection taxonomy.
type Category string

const (
	CategoryAuthorization Category = "authorization"
	CategoryAssignment    Category = "assignment"
	CategoryPolicy        Category = "policy"
	CategoryCapacity      Category = "capacity"
	CategoryPayment       Category = "payment"
	CategoryRequest       Category = "request"
	CategoryInternal      Category = "internal"
)

var categories = map[Code]Category{
	CodeNotSuperAdmin:       CategoryAuthorization,
	CodeNotArtist:           CategoryAuthorization,
	CodeUnauthorized:        CategoryAuthorization,
	CodeNoMinterAssigned:    CategoryAssignment,
	CodeWrongMinter:         CategoryAssignment,
	CodeMinterNotApproved:   CategoryAssignment,
	CodeAlreadyApproved:     CategoryAssignment,
	CodeStillAssigned:       CategoryAssignment,
	CodeProjectNotOpen:      CategoryPolicy,
	CodeUnsupportedCurrency: CategoryPolicy,
	CodeRedirectNotAllowed:  CategoryPolicy,
	CodeSoldOut:             CategoryCapacity,
	CodeCapacityExceeded:    CategoryCapacity,
	CodeInsufficientPayment: CategoryPayment,
	CodeInternal:            CategoryInternal,
}

// Category returns the taxonomy bucket for the code.
func (c Code) Category() Category {
	if cat, ok := categories[c]; ok {
		return cat
	}
	return CategoryRequest
}

// Error is a coded domain error. Message is safe to return to clients except for
// internal errors, which transports must not echo.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// As extracts the outermost *Error from the chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the code of the outermost domain error, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost domain error carries code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// Is reports whether any domain error in the chain carries code.
func Is(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CategoryOf returns the taxonomy bucket for err.
func CategoryOf(err error) Category {
	return CodeOf(err).Category()
}

// ToHTTPStatus maps a code to the HTTP status transports should use.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotSuperAdmin, CodeNotArtist:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeAlreadyApproved, CodeStillAssigned, CodeInvariantViolation:
		return http.StatusConflict
	case CodeNoMinterAssigned, CodeWrongMinter, CodeMinterNotApproved,
		CodeProjectNotOpen, CodeUnsupportedCurrency, CodeRedirectNotAllowed:
		return http.StatusUnprocessableEntity
	case CodeSoldOut, CodeCapacityExceeded:
		return http.StatusGone
	case CodeInsufficientPayment:
		return http.StatusPaymentRequired
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
