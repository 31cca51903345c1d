package provider

import (
	"context"
	"errors"
	"net"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
)

// User-safe failure categories. Raw provider payloads stay in logs; these are
// the only messages that reach API clients.
const (
	MsgConfiguration = "payment provider is misconfigured, contact support"
	MsgRejected      = "payment request was rejected by the provider"
	MsgRateLimited   = "payment provider is rate limiting requests, try again shortly"
	MsgTimeout       = "payment provider timed out, try again later"
	MsgUnavailable   = "payment provider is unavailable, try again later"
)

// UserFacingMessage maps a provider call error to a safe category message.
func UserFacingMessage(err error) string {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return MsgUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return MsgTimeout
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.HTTPStatusCode == 401 || stripeErr.HTTPStatusCode == 403:
			return MsgConfiguration
		case stripeErr.HTTPStatusCode == 429:
			return MsgRateLimited
		case stripeErr.Type == stripe.ErrorTypeInvalidRequest:
			return MsgRejected
		}
	}

	return MsgUnavailable
}
