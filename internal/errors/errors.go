// Package errors defines the stable error kinds returned by campaign
// operations.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code is a machine-readable error kind.
type Code string

const (
	CodeUnauthorized           Code = "UNAUTHORIZED"
	CodeInsufficientFunds      Code = "INSUFFICIENT_FUNDS"
	CodeDonationTooSmall       Code = "DONATION_TOO_SMALL"
	CodeDuplicateCampaign      Code = "DUPLICATE_CAMPAIGN"
	CodeRecordNotFound         Code = "RECORD_NOT_FOUND"
	CodeArithmeticOverflow     Code = "ARITHMETIC_OVERFLOW"
	CodeInsufficientPayerFunds Code = "INSUFFICIENT_PAYER_FUNDS"
	CodeInvalidArgument        Code = "INVALID_ARGUMENT"

	// CodeInternal covers store failures that are not a rejection of the request.
	CodeInternal Code = "INTERNAL"
)

// Codes lists every kind in a stable order.
var Codes = []Code{
	CodeUnauthorized,
	CodeInsufficientFunds,
	CodeDonationTooSmall,
	CodeDuplicateCampaign,
	CodeRecordNotFound,
	CodeArithmeticOverflow,
	CodeInsufficientPayerFunds,
	CodeInvalidArgument,
	CodeInternal,
}

// Error is the domain error type.
type Error struct {
	Code     Code              // Machine-readable kind
	Message  string            // Human-readable message
	Metadata map[string]string // Additional context (amounts, addresses)
	Cause    error             // Wrapped underlying error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithMetadata creates a domain error carrying metadata.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the kind of err, CodeInternal for foreign errors and the
// empty code for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given kind anywhere in its chain.
func HasCode(err error, code Code) bool {
	return stderrors.Is(err, &Error{Code: code})
}
