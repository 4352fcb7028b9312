// Package errors carries the typed errors the API renders as
// {"error":{"code","reason","message","details"}} envelopes.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code is the top level category a client can switch on.
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "RESOURCE_NOT_FOUND_ERROR"
	CodeOrder        Code = "ORDER_ERROR"
	CodePayment      Code = "PAYMENT_ERROR"
	CodeDatabase     Code = "DATABASE_ERROR"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeDependency   Code = "DEPENDENCY_ERROR"
)

// Policy decides how errors of one code reach the client.
type Policy struct {
	Status int
	// Fallback replaces the message of errors that may not show their own.
	Fallback string
	// ShowMessage lets reasonless errors of this code expose their message.
	ShowMessage bool
	ShowDetails bool
}

var policies = map[Code]Policy{
	CodeValidation:   {Status: http.StatusBadRequest, Fallback: "validation failed", ShowMessage: true, ShowDetails: true},
	CodeUnauthorized: {Status: http.StatusUnauthorized, Fallback: "authentication required", ShowMessage: true},
	CodeForbidden:    {Status: http.StatusForbidden, Fallback: "access denied", ShowMessage: true},
	CodeNotFound:     {Status: http.StatusNotFound, Fallback: "resource not found", ShowMessage: true},
	CodeOrder:        {Status: http.StatusBadRequest, Fallback: "order rejected", ShowDetails: true},
	CodePayment:      {Status: http.StatusInternalServerError, Fallback: "payment failed"},
	CodeDatabase:     {Status: http.StatusInternalServerError, Fallback: "database operation failed"},
	CodeRateLimit:    {Status: http.StatusTooManyRequests, Fallback: "rate limit exceeded", ShowMessage: true},
	CodeInternal:     {Status: http.StatusInternalServerError, Fallback: "internal server error"},
	CodeDependency:   {Status: http.StatusServiceUnavailable, Fallback: "dependency unavailable", ShowDetails: true},
}

// PolicyFor falls back to the internal error policy for unknown codes.
func PolicyFor(code Code) Policy {
	if p, ok := policies[code]; ok {
		return p
	}
	return policies[CodeInternal]
}

// Error is immutable; the With helpers return copies.
type Error struct {
	code    Code
	reason  Reason
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, cause error, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Reason() Reason {
	if e == nil {
		return ""
	}
	return e.reason
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.details = details
	return &cp
}

func (e *Error) WithReason(reason Reason) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.reason = reason
	return &cp
}

// Status is the HTTP status of the error's code.
func (e *Error) Status() int {
	return PolicyFor(e.Code()).Status
}

// PublicMessage is the message safe to send to a client. Reason messages
// come from a fixed table, so they are always shown.
func (e *Error) PublicMessage() string {
	p := PolicyFor(e.Code())
	if e.Reason() != "" || (p.ShowMessage && e.Message() != "") {
		return e.Message()
	}
	return p.Fallback
}

// PublicDetails drops details for codes that must not leak internals.
func (e *Error) PublicDetails() any {
	if !PolicyFor(e.Code()).ShowDetails {
		return nil
	}
	return e.Details()
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.reason != "" {
		return fmt.Sprintf("%s(%s): %s", e.code, e.reason, e.message)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost typed error in err's chain.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// HasReason reports whether the outermost typed error carries code and reason.
func HasReason(err error, code Code, reason Reason) bool {
	typed := As(err)
	return typed != nil && typed.code == code && typed.reason == reason
}
