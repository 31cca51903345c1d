package order

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shoutly/server/internal/shared/response"
)

// Handler handles public HTTP requests for orders.
type Handler struct {
	service *Service
}

// NewHandler creates a new order handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers public order routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
	}
}

// CreateOrder creates a new order in state pending.
//
//	@Summary		Create order
//	@Description	Create a custom-video order; payment link is requested separately
//	@Tags			Order
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateOrderRequest	true	"Order details"
//	@Success		201		{object}	OrderResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Router			/orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid order payload: "+err.Error())
		return
	}

	o, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusCreated, o.ToResponse())
}

// GetOrder returns an order with fresh video download links.
//
//	@Summary		Get order
//	@Tags			Order
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	OrderResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	o, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	resp := o.ToResponse()
	h.service.AttachVideoURLs(c.Request.Context(), o, resp)

	c.JSON(http.StatusOK, resp)
}
