package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-pay/gopay"
	"github.com/go-pay/gopay/paypal"
)

// PayPalSignatureHeader carries the HMAC signature of the webhook body.
const PayPalSignatureHeader = "Paypal-Transmission-Sig"

var (
	errMissingWebhookSecret = errors.New("paypal webhook secret is not configured")
	errMissingSignature     = errors.New("missing " + PayPalSignatureHeader + " header")
	errBadSignature         = errors.New("paypal webhook signature mismatch")
)

// PayPalConfig holds PayPal configuration.
type PayPalConfig struct {
	ClientID      string
	Secret        string
	WebhookSecret string
	IsProd        bool
	BrandName     string
}

// PayPalProvider implements Provider on top of the PayPal Orders v2 API.
type PayPalProvider struct {
	client        *paypal.Client
	webhookSecret string
	brandName     string
}

// NewPayPalProvider creates a new PayPal provider.
func NewPayPalProvider(config *PayPalConfig) (*PayPalProvider, error) {
	client, err := paypal.NewClient(config.ClientID, config.Secret, config.IsProd)
	if err != nil {
		return nil, fmt.Errorf("create paypal client: %w", err)
	}
	return &PayPalProvider{
		client:        client,
		webhookSecret: config.WebhookSecret,
		brandName:     config.BrandName,
	}, nil
}

// Name returns the provider name.
func (p *PayPalProvider) Name() string {
	return "paypal"
}

// --- Checkout ---

func (p *PayPalProvider) CreateCheckout(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error) {
	bm := make(gopay.BodyMap)
	bm.Set("intent", "CAPTURE").
		Set("purchase_units", []*paypal.PurchaseUnit{
			{
				ReferenceId: params.OrderID,
				Amount: &paypal.Amount{
					CurrencyCode: strings.ToUpper(params.Currency),
					Value:        centsToDecimal(params.AmountCents),
				},
				Description: params.Description,
				CustomId:    params.OrderID,
			},
		}).
		SetBodyMap("application_context", func(b gopay.BodyMap) {
			b.Set("brand_name", p.brandName).
				Set("user_action", "PAY_NOW").
				Set("return_url", params.SuccessURL).
				Set("cancel_url", params.CancelURL)
		})

	rsp, err := p.client.CreateOrder(ctx, bm)
	if err != nil {
		return nil, fmt.Errorf("create paypal order: %w", err)
	}
	if rsp.Code != paypal.Success {
		return nil, fmt.Errorf("create paypal order: code %d: %s", rsp.Code, rsp.Error)
	}

	approvalURL := ""
	for _, link := range rsp.Response.Links {
		if link.Rel == "approve" {
			approvalURL = link.Href
			break
		}
	}
	if approvalURL == "" {
		return nil, errors.New("paypal order has no approval link")
	}

	return &CheckoutSession{
		SessionID:   rsp.Response.Id,
		ApprovalURL: approvalURL,
		RawStatus:   rsp.Response.Status,
	}, nil
}

// Capture captures an approved PayPal order.
func (p *PayPalProvider) Capture(ctx context.Context, sessionID string) (*CaptureResult, error) {
	rsp, err := p.client.OrderCapture(ctx, sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("capture paypal order: %w", err)
	}
	if rsp.Code != paypal.Success {
		return nil, fmt.Errorf("capture paypal order: code %d: %s", rsp.Code, rsp.Error)
	}

	detail := rsp.Response
	result := &CaptureResult{
		SessionID: detail.Id,
		RawStatus: detail.Status,
		Captured:  detail.Status == "COMPLETED",
	}

	if len(detail.PurchaseUnits) > 0 &&
		detail.PurchaseUnits[0].Payments != nil &&
		len(detail.PurchaseUnits[0].Payments.Captures) > 0 {
		capture := detail.PurchaseUnits[0].Payments.Captures[0]
		result.CaptureID = capture.Id
		if capture.Amount != nil {
			result.Currency = strings.ToLower(capture.Amount.CurrencyCode)
			cents, err := decimalToCents(capture.Amount.Value)
			if err != nil {
				return nil, fmt.Errorf("parse capture amount %q: %w", capture.Amount.Value, err)
			}
			result.AmountCents = cents
		}
	}

	return result, nil
}

func (p *PayPalProvider) GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	rsp, err := p.client.OrderDetail(ctx, sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("get paypal order: %w", err)
	}
	if rsp.Code != paypal.Success {
		return nil, fmt.Errorf("get paypal order: code %d: %s", rsp.Code, rsp.Error)
	}

	detail := rsp.Response
	status := &SessionStatus{
		SessionID: detail.Id,
		RawStatus: detail.Status,
		Kind:      mapPayPalOrderStatus(detail.Status),
	}
	if len(detail.PurchaseUnits) > 0 && detail.PurchaseUnits[0].Amount != nil {
		amount := detail.PurchaseUnits[0].Amount
		status.Currency = strings.ToLower(amount.CurrencyCode)
		if cents, err := decimalToCents(amount.Value); err == nil {
			status.AmountCents = cents
		}
	}
	return status, nil
}

// --- Webhooks ---

// VerifyWebhookSignature checks the HMAC-SHA256 of the raw body against the
// transmission signature header. Verification fails closed: a missing secret
// or header rejects the request.
func (p *PayPalProvider) VerifyWebhookSignature(payload []byte, headers http.Header) error {
	if p.webhookSecret == "" {
		return errMissingWebhookSecret
	}
	signature := headers.Get(PayPalSignatureHeader)
	if signature == "" {
		return errMissingSignature
	}

	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return errBadSignature
	}
	return nil
}

type paypalWebhookEvent struct {
	ID           string `json:"id"`
	EventType    string `json:"event_type"`
	ResourceType string `json:"resource_type"`
	Resource     struct {
		ID                string `json:"id"`
		Status            string `json:"status"`
		CustomID          string `json:"custom_id"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

func (p *PayPalProvider) ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var event paypalWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("parse paypal event: %w", err)
	}

	result := &WebhookEvent{
		EventID:   event.ID,
		RawType:   event.EventType,
		RawStatus: event.Resource.Status,
		Kind:      EventIgnored,
	}

	switch event.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		result.Kind = EventCaptured
		// Capture events carry the capture ID as resource.id; the order ID
		// travels in supplementary data.
		result.SessionID = event.Resource.SupplementaryData.RelatedIDs.OrderID
	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.DECLINED", "PAYMENT.CAPTURE.REFUNDED":
		result.Kind = EventFailed
		result.SessionID = event.Resource.SupplementaryData.RelatedIDs.OrderID
	case "CHECKOUT.ORDER.APPROVED":
		result.Kind = EventPending
		result.SessionID = event.Resource.ID
	default:
		result.SessionID = event.Resource.ID
	}

	return result, nil
}

func mapPayPalOrderStatus(status string) EventKind {
	switch status {
	case "COMPLETED":
		return EventCaptured
	case "VOIDED":
		return EventFailed
	default:
		// CREATED, SAVED, APPROVED, PAYER_ACTION_REQUIRED
		return EventPending
	}
}

// --- Amount conversion ---
//
// PayPal speaks decimal strings on the wire; everything else in this codebase
// is int64 minor units. The conversion lives here and nowhere else.

func centsToDecimal(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}

func decimalToCents(value string) (int64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f * 100)), nil
}
