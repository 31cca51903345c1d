package payment

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoutly/server/internal/shared/response"
)

// WebhookHandler handles provider webhook notifications. These routes sit
// outside the API group so no middleware consumes the request body before
// signature verification.
type WebhookHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service *Service, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the webhook routes.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/stripe", h.HandleStripeWebhook)
	r.POST("/paypal", h.HandlePayPalWebhook)
}

// HandleStripeWebhook handles incoming Stripe webhook events.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	h.handle(c, "stripe")
}

// HandlePayPalWebhook handles incoming PayPal webhook events.
func (h *WebhookHandler) HandlePayPalWebhook(c *gin.Context) {
	h.handle(c, "paypal")
}

func (h *WebhookHandler) handle(c *gin.Context, providerName string) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body",
			zap.String("provider", providerName),
			zap.Error(err),
		)
		response.BadRequest(c, "failed to read body")
		return
	}

	result, err := h.service.HandleWebhook(c.Request.Context(), providerName, payload, c.Request.Header)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": result})
}
