package payment

import "errors"

var (
	// ErrProviderNotFound is returned when no provider is registered under
	// the requested name or payment method.
	ErrProviderNotFound = errors.New("payment provider not found")

	// ErrSessionNotFound is returned when no local session record exists.
	ErrSessionNotFound = errors.New("payment session not found")

	// ErrEventExists is returned when a webhook event was already stored.
	ErrEventExists = errors.New("webhook event already recorded")
)
