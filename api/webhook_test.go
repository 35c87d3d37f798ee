package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/rgcaparas/intellipark/internal/payment/xendit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestWebhookHandler_paid(t *testing.T) {
	mockService := &MockParkingUseCase{}
	handler := NewWebhookHandler(mockService)

	body := map[string]interface{}{
		"external_id": "WEBSITE_slot01_1", "status": "PAID", "amount": 50, "id": "inv-1",
	}
	c, w := newTestContext(t, "POST", "/api/xendit-webhook", body)

	mockService.On("HandlePaymentWebhook", c.Request.Context(), mock.MatchedBy(func(event xendit.WebhookEvent) bool {
		return event.ExternalID == "WEBSITE_slot01_1" && event.Status == "PAID" &&
			event.Amount.Equal(decimal.NewFromInt(50)) && event.ID == "inv-1"
	})).Return(nil)

	handler.handle(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestWebhookHandler_internalFault(t *testing.T) {
	mockService := &MockParkingUseCase{}
	handler := NewWebhookHandler(mockService)

	body := map[string]interface{}{"external_id": "WEBSITE_slot01_1", "status": "PAID"}
	c, w := newTestContext(t, "POST", "/api/xendit-webhook", body)

	// An internal fault returns a failure status so the gateway resends.
	mockService.On("HandlePaymentWebhook", c.Request.Context(), mock.Anything).
		Return(errors.New("database unavailable"))

	handler.handle(c)
	// c.Status defers the header write; outside the engine it must be flushed
	// for the recorder to observe the status code.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	mockService.AssertExpectations(t)
}
