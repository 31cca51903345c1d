package payment

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/shoutly/server/internal/module/order"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newWebhookRouter(f *serviceFixture) *gin.Engine {
	r := gin.New()
	h := NewWebhookHandler(f.service, zap.NewNop())
	h.RegisterRoutes(r.Group("/webhooks"))
	return r
}

func TestWebhookEndpoint_AcknowledgesAppliedEvent(t *testing.T) {
	o := boundOrder(order.PaymentMethodCard, "cs_test_123")
	f := newFixture(t, &fakeProvider{name: "stripe", event: capturedEvent("cs_test_123")}, o)
	router := newWebhookRouter(f)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"applied"`)
	assert.Equal(t, order.StatusPaid, o.Status)
}

func TestWebhookEndpoint_RejectsBadSignature(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "stripe", verifyErr: errors.New("bad sig")})
	router := newWebhookRouter(f)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookEndpoint_UnknownProviderIs404(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "stripe"})
	router := newWebhookRouter(f)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paypal", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
