package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeParseWebhookEvent(t *testing.T) {
	p := &StripeProvider{webhookSecret: "whsec_test"}

	tests := []struct {
		name        string
		payload     string
		wantKind    EventKind
		wantSession string
	}{
		{
			name: "session completed and paid",
			payload: `{
				"id": "evt_1",
				"type": "checkout.session.completed",
				"data": {"object": {"id": "cs_test_a1", "payment_status": "paid"}}
			}`,
			wantKind:    EventCaptured,
			wantSession: "cs_test_a1",
		},
		{
			name: "session completed awaiting async payment",
			payload: `{
				"id": "evt_2",
				"type": "checkout.session.completed",
				"data": {"object": {"id": "cs_test_a2", "payment_status": "unpaid"}}
			}`,
			wantKind:    EventPending,
			wantSession: "cs_test_a2",
		},
		{
			name: "async payment succeeded",
			payload: `{
				"id": "evt_3",
				"type": "checkout.session.async_payment_succeeded",
				"data": {"object": {"id": "cs_test_a3", "payment_status": "paid"}}
			}`,
			wantKind:    EventCaptured,
			wantSession: "cs_test_a3",
		},
		{
			name: "session expired",
			payload: `{
				"id": "evt_4",
				"type": "checkout.session.expired",
				"data": {"object": {"id": "cs_test_a4", "payment_status": "unpaid"}}
			}`,
			wantKind:    EventFailed,
			wantSession: "cs_test_a4",
		},
		{
			name: "async payment failed",
			payload: `{
				"id": "evt_5",
				"type": "checkout.session.async_payment_failed",
				"data": {"object": {"id": "cs_test_a5", "payment_status": "unpaid"}}
			}`,
			wantKind:    EventFailed,
			wantSession: "cs_test_a5",
		},
		{
			name: "unrelated event",
			payload: `{
				"id": "evt_6",
				"type": "invoice.paid",
				"data": {"object": {"id": "in_1"}}
			}`,
			wantKind: EventIgnored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := p.ParseWebhookEvent([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, event.Kind)
			assert.Equal(t, tt.wantSession, event.SessionID)
		})
	}

	t.Run("malformed payload", func(t *testing.T) {
		_, err := p.ParseWebhookEvent([]byte("{"))
		assert.Error(t, err)
	})
}
