package payment

// CreateLinkRequest asks for a hosted checkout link for an existing order.
// The provider defaults to the order's payment method; amount is accepted for
// validation but the charge always uses the price stored on the order.
type CreateLinkRequest struct {
	OrderID       string `json:"order_id" binding:"required,uuid"`
	Amount        *int64 `json:"amount,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// CreateLinkResponse carries the checkout link the customer is sent to.
type CreateLinkResponse struct {
	PaymentID  string `json:"payment_id"`
	PaymentURL string `json:"payment_url"`
	Provider   string `json:"provider"`
}

// CaptureRequest captures an approved payment.
type CaptureRequest struct {
	PaymentID     string `json:"payment_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// CaptureResponse reports the capture outcome.
type CaptureResponse struct {
	PaymentID   string `json:"payment_id"`
	Provider    string `json:"provider"`
	Status      string `json:"status"`
	Captured    bool   `json:"captured"`
	OrderID     string `json:"order_id"`
	OrderStatus string `json:"order_status"`
}

// StatusResponse reports the provider-side and order-side state of a payment.
type StatusResponse struct {
	PaymentID   string `json:"payment_id"`
	Provider    string `json:"provider"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	OrderID     string `json:"order_id"`
	OrderStatus string `json:"order_status"`
}
