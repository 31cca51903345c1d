package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPayPal(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPayPalVerifyWebhookSignature(t *testing.T) {
	p := &PayPalProvider{webhookSecret: "whsec_test"}
	payload := []byte(`{"id":"WH-1","event_type":"PAYMENT.CAPTURE.COMPLETED"}`)

	t.Run("valid signature", func(t *testing.T) {
		headers := http.Header{}
		headers.Set(PayPalSignatureHeader, signPayPal("whsec_test", payload))
		assert.NoError(t, p.VerifyWebhookSignature(payload, headers))
	})

	t.Run("tampered payload", func(t *testing.T) {
		headers := http.Header{}
		headers.Set(PayPalSignatureHeader, signPayPal("whsec_test", payload))
		err := p.VerifyWebhookSignature([]byte(`{"id":"WH-2"}`), headers)
		assert.ErrorIs(t, err, errBadSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		headers := http.Header{}
		headers.Set(PayPalSignatureHeader, signPayPal("other_secret", payload))
		err := p.VerifyWebhookSignature(payload, headers)
		assert.ErrorIs(t, err, errBadSignature)
	})

	t.Run("missing header", func(t *testing.T) {
		err := p.VerifyWebhookSignature(payload, http.Header{})
		assert.ErrorIs(t, err, errMissingSignature)
	})

	t.Run("missing secret fails closed", func(t *testing.T) {
		unconfigured := &PayPalProvider{}
		headers := http.Header{}
		headers.Set(PayPalSignatureHeader, signPayPal("whsec_test", payload))
		err := unconfigured.VerifyWebhookSignature(payload, headers)
		assert.ErrorIs(t, err, errMissingWebhookSecret)
	})
}

func TestPayPalParseWebhookEvent(t *testing.T) {
	p := &PayPalProvider{}

	tests := []struct {
		name        string
		payload     string
		wantKind    EventKind
		wantSession string
	}{
		{
			name: "capture completed",
			payload: `{
				"id": "WH-58D329510W468432D-8HN650336L201105X",
				"event_type": "PAYMENT.CAPTURE.COMPLETED",
				"resource": {
					"id": "3C679366HH908993F",
					"status": "COMPLETED",
					"supplementary_data": {"related_ids": {"order_id": "5O190127TN364715T"}}
				}
			}`,
			wantKind:    EventCaptured,
			wantSession: "5O190127TN364715T",
		},
		{
			name: "capture denied",
			payload: `{
				"id": "WH-2",
				"event_type": "PAYMENT.CAPTURE.DENIED",
				"resource": {
					"id": "7NW873794T343360M",
					"status": "DECLINED",
					"supplementary_data": {"related_ids": {"order_id": "5O190127TN364715T"}}
				}
			}`,
			wantKind:    EventFailed,
			wantSession: "5O190127TN364715T",
		},
		{
			name: "order approved",
			payload: `{
				"id": "WH-3",
				"event_type": "CHECKOUT.ORDER.APPROVED",
				"resource": {"id": "5O190127TN364715T", "status": "APPROVED"}
			}`,
			wantKind:    EventPending,
			wantSession: "5O190127TN364715T",
		},
		{
			name: "unrelated event",
			payload: `{
				"id": "WH-4",
				"event_type": "BILLING.PLAN.CREATED",
				"resource": {"id": "P-123"}
			}`,
			wantKind:    EventIgnored,
			wantSession: "P-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := p.ParseWebhookEvent([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, event.Kind)
			assert.Equal(t, tt.wantSession, event.SessionID)
			assert.NotEmpty(t, event.EventID)
		})
	}

	t.Run("malformed payload", func(t *testing.T) {
		_, err := p.ParseWebhookEvent([]byte("not json"))
		assert.Error(t, err)
	})
}

func TestPayPalAmountConversion(t *testing.T) {
	tests := []struct {
		cents   int64
		decimal string
	}{
		{4999, "49.99"},
		{100, "1.00"},
		{1, "0.01"},
		{0, "0.00"},
		{123450, "1234.50"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.decimal, centsToDecimal(tt.cents))

		cents, err := decimalToCents(tt.decimal)
		require.NoError(t, err)
		assert.Equal(t, tt.cents, cents)
	}

	_, err := decimalToCents("not-a-number")
	assert.Error(t, err)
}

func TestMapPayPalOrderStatus(t *testing.T) {
	assert.Equal(t, EventCaptured, mapPayPalOrderStatus("COMPLETED"))
	assert.Equal(t, EventFailed, mapPayPalOrderStatus("VOIDED"))
	assert.Equal(t, EventPending, mapPayPalOrderStatus("CREATED"))
	assert.Equal(t, EventPending, mapPayPalOrderStatus("APPROVED"))
}
