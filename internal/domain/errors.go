package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness violation.
	ErrAlreadyExists = errors.New("already exists")
)

// ErrorKind classifies failures surfaced by the cart engine.
type ErrorKind string

const (
	KindInvalidInput           ErrorKind = "InvalidInput"
	KindInvalidOperation       ErrorKind = "InvalidOperation"
	KindCurrencyMismatch       ErrorKind = "CurrencyMismatch"
	KindInvalidCoupon          ErrorKind = "InvalidCoupon"
	KindEmptyCart              ErrorKind = "EmptyCart"
	KindMissingShippingAddress ErrorKind = "MissingShippingAddress"
	KindNotAuthenticated       ErrorKind = "NotAuthenticated"
	KindUpstreamUnavailable    ErrorKind = "UpstreamUnavailable"
	KindNotFound               ErrorKind = "NotFound"
)

// Error is a kinded failure. Redirect is set when the UI should navigate
// somewhere (e.g. address management) instead of only showing Message.
type Error struct {
	Kind     ErrorKind
	Message  string
	Redirect string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a kind and message to an underlying error.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or "" when err carries none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return ""
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	return err != nil && KindOf(err) == k
}
