package order

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shoutly/server/internal/shared/pagination"
	"github.com/shoutly/server/internal/shared/response"
)

// AdminHandler handles admin HTTP requests for orders. All routes require
// admin authentication; that is enforced by the route group, not here.
type AdminHandler struct {
	service *Service
}

// NewAdminHandler creates a new admin order handler.
func NewAdminHandler(service *Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers admin order routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.POST("/:id/complete", h.CompleteOrder)
		orders.PUT("/:id/status", h.UpdateStatus)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}

// ListOrders returns orders newest-first with optional status filter.
//
//	@Summary		List orders
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status	query		string	false	"Filter by status"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Offset"
//	@Success		200		{object}	ListOrdersResponse
//	@Router			/admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	params := pagination.FromQuery(c)

	var filter Filter
	if status := c.Query("status"); status != "" {
		s := Status(status)
		filter.Status = &s
	}

	orders, total, err := h.service.List(c.Request.Context(), &filter, params.Limit, params.Offset)
	if err != nil {
		response.FromError(c, err)
		return
	}

	resp := &ListOrdersResponse{
		Orders: make([]*OrderResponse, len(orders)),
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	for i, o := range orders {
		r := o.ToResponse()
		h.service.AttachVideoURLs(c.Request.Context(), o, r)
		resp.Orders[i] = r
	}

	c.JSON(http.StatusOK, resp)
}

// CreateOrder creates an order on a customer's behalf.
//
//	@Summary		Create order (admin)
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateOrderRequest	true	"Order details"
//	@Success		201		{object}	OrderResponse
//	@Router			/admin/orders [post]
func (h *AdminHandler) CreateOrder(c *gin.Context) {
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

// CompleteOrder attaches the final video and marks the order complete.
//
//	@Summary		Complete order
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Order ID"
//	@Param			request	body		CompleteOrderRequest	true	"Final video"
//	@Success		200		{object}	OrderResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Router			/admin/orders/{id}/complete [post]
func (h *AdminHandler) CompleteOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	var req CompleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "final_video_key is required")
		return
	}

	o, err := h.service.AdminComplete(c.Request.Context(), id, req.FinalVideoKey)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, o.ToResponse())
}

// UpdateStatus overrides the order status.
//
//	@Summary		Override order status
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Order ID"
//	@Param			request	body		UpdateStatusRequest	true	"Target status"
//	@Success		200		{object}	OrderResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Router			/admin/orders/{id}/status [put]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}

	o, err := h.service.AdminOverrideStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, o.ToResponse())
}

// DeleteOrder removes an order.
//
//	@Summary		Delete order
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Order ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/admin/orders/{id} [delete]
func (h *AdminHandler) DeleteOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
