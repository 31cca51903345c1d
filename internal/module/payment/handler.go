package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shoutly/server/internal/shared/response"
)

// Handler handles public HTTP requests for payments.
type Handler struct {
	service *Service
}

// NewHandler creates a new payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers public payment routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("/create-link", h.CreateLink)
		payments.POST("/capture", h.Capture)
		payments.GET("/status/:paymentId/:paymentMethod", h.GetStatus)
	}
}

// CreateLink creates a hosted checkout link for an order.
//
//	@Summary		Create payment link
//	@Description	Create a hosted checkout session; repeated calls return the same link
//	@Tags			Payment
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateLinkRequest	true	"Order to pay for"
//	@Success		200		{object}	CreateLinkResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		502		{object}	response.ErrorResponse
//	@Router			/payments/create-link [post]
func (h *Handler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "order_id is required")
		return
	}

	resp, err := h.service.CreateLink(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Capture captures an approved payment.
//
//	@Summary		Capture payment
//	@Tags			Payment
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CaptureRequest	true	"Payment to capture"
//	@Success		200		{object}	CaptureResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		502		{object}	response.ErrorResponse
//	@Router			/payments/capture [post]
func (h *Handler) Capture(c *gin.Context) {
	var req CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "payment_id and payment_method are required")
		return
	}

	resp, err := h.service.Capture(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetStatus returns the provider-side status of a payment.
//
//	@Summary		Get payment status
//	@Tags			Payment
//	@Produce		json
//	@Param			paymentId		path		string	true	"Provider session ID"
//	@Param			paymentMethod	path		string	true	"card or paypal"
//	@Success		200				{object}	StatusResponse
//	@Failure		400				{object}	response.ErrorResponse
//	@Failure		404				{object}	response.ErrorResponse
//	@Router			/payments/status/{paymentId}/{paymentMethod} [get]
func (h *Handler) GetStatus(c *gin.Context) {
	resp, err := h.service.GetStatus(c.Request.Context(), c.Param("paymentId"), c.Param("paymentMethod"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
