package order

import "errors"

// Module errors.
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrMissingFinalVideo    = errors.New("final video key is required")
	ErrVideoNotFound        = errors.New("video not found in storage")
	ErrSessionAlreadyBound  = errors.New("order already has a payment session")
	ErrDuplicateSession     = errors.New("payment session already bound to another order")
	ErrNotCompletable       = errors.New("order must be paid or processing to complete")
)
