package order

import (
	"time"

	"github.com/google/uuid"
)

// CreateOrderRequest represents a request to create an order.
type CreateOrderRequest struct {
	FirstName        string        `json:"first_name" binding:"required"`
	LastName         string        `json:"last_name" binding:"required"`
	Email            string        `json:"email" binding:"required,email"`
	Phone            string        `json:"phone"`
	Price            int64         `json:"price" binding:"required,min=1"` // In cents
	Duration         int           `json:"duration" binding:"required,min=1"` // In seconds
	Script           string        `json:"script"`
	OriginalVideoKey string        `json:"original_video_key" binding:"required"`
	PaymentMethod    PaymentMethod `json:"payment_method" binding:"required"`
}

// CompleteOrderRequest represents an admin completion request.
type CompleteOrderRequest struct {
	FinalVideoKey string `json:"final_video_key" binding:"required"`
}

// UpdateStatusRequest represents an admin status override request.
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// CustomerResponse is the minimal user shape embedded in order responses.
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID            uuid.UUID         `json:"id"`
	Status        Status            `json:"status"`
	Price         int64             `json:"price"`
	Duration      int               `json:"duration"`
	Script        string            `json:"script,omitempty"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	PaymentStatus string            `json:"payment_status,omitempty"`
	VideoURL      string            `json:"video_url,omitempty"`
	FinalVideoURL string            `json:"final_video_url,omitempty"`
	Customer      *CustomerResponse `json:"customer,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ToResponse converts an Order to OrderResponse. Video URLs are attached
// separately because they are presigned per request.
func (o *Order) ToResponse() *OrderResponse {
	resp := &OrderResponse{
		ID:            o.ID,
		Status:        o.Status,
		Price:         o.Price,
		Duration:      o.Duration,
		Script:        o.Script,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.User != nil {
		resp.Customer = &CustomerResponse{
			ID:        o.User.ID,
			FirstName: o.User.FirstName,
			LastName:  o.User.LastName,
			Email:     o.User.Email,
			Phone:     o.User.Phone,
		}
	}
	return resp
}

// ListOrdersResponse represents a paginated list of orders.
type ListOrdersResponse struct {
	Orders []*OrderResponse `json:"orders"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
