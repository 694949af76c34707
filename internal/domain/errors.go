package domain

import (
	"errors"
	"fmt"
)

// Domain errors (no external dependencies).
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidState  = errors.New("action not allowed in the current workflow state")
	ErrParseInFlight = errors.New("a parse request is already in flight")
	ErrSaveInFlight  = errors.New("a save request is already in flight")
	ErrPayInFlight   = errors.New("a payment request is already in flight for this order")

	// ErrAbandoned marks an operator abandon: a required prompt was left blank or
	// unusable, so the action is dropped with no side effect. Not a true failure.
	ErrAbandoned = errors.New("action abandoned by operator")
)

// TransportError is a failed exchange with the backend boundary: the network was
// unreachable or the backend answered with a non-2xx status. The workflow treats
// every TransportError the same way regardless of Op.
type TransportError struct {
	Op     string // parse, create_order, list_orders, record_payment
	Status int    // HTTP status, 0 when the request never completed
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
