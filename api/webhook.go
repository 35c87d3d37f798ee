package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rgcaparas/intellipark/internal/payment/xendit"
	"github.com/rgcaparas/intellipark/internal/service/parking"
	"github.com/rgcaparas/intellipark/monitoring"
)

type WebhookHandler struct {
	service parking.ParkingUseCase
}

func NewWebhookHandler(service parking.ParkingUseCase) *WebhookHandler {
	return &WebhookHandler{service: service}
}

func (h *WebhookHandler) Register(router *gin.RouterGroup) {
	router.POST("/xendit-webhook", h.handle)
}

// handle acknowledges every recognizable event, relevant or not, so the
// gateway does not keep retrying. Only an internal fault returns a failure
// status and lets the gateway's retry policy resend.
func (h *WebhookHandler) handle(c *gin.Context) {
	var event xendit.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	monitoring.RecordWebhookEvent(event.Status)

	if err := h.service.HandlePaymentWebhook(c.Request.Context(), event); err != nil {
		log.Printf("webhook error for %s: %v", event.ExternalID, err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}
