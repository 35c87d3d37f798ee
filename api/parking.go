package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rgcaparas/intellipark/internal/domain"
	"github.com/rgcaparas/intellipark/internal/service/parking"
	"github.com/rgcaparas/intellipark/monitoring"
	"github.com/shopspring/decimal"
)

type ParkingHandler struct {
	service parking.ParkingUseCase
}

func NewParkingHandler(service parking.ParkingUseCase) *ParkingHandler {
	return &ParkingHandler{service: service}
}

func (h *ParkingHandler) Register(router *gin.RouterGroup) {
	router.POST("/create-invoice", h.createInvoice)
	router.POST("/exit", h.exit)
	router.POST("/verify-exit", h.verifyExit)
	router.GET("/booking/:externalId", h.lookupBooking)
}

type createInvoiceRequest struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Plate   string          `json:"plate"`
	Vehicle string          `json:"vehicle"`
	Time    string          `json:"time"`
	Slot    string          `json:"slot"`
	Type    string          `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
}

type createInvoiceResponse struct {
	Success    bool            `json:"success"`
	InvoiceURL string          `json:"invoiceUrl"`
	ExternalID string          `json:"externalId"`
	Amount     decimal.Decimal `json:"amount"`
	Vehicle    string          `json:"vehicle"`
	Invoice    interface{}     `json:"invoice"`
}

type exitRequest struct {
	Slot     string `json:"slot"`
	Plate    string `json:"plate"`
	ExitTime string `json:"exitTime"`
	TicketID string `json:"ticketId"`
}

type exitResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ExitTime string `json:"exitTime"`
	Duration string `json:"duration"`
	Slot     string `json:"slot"`
	Plate    string `json:"plate"`
}

type verifyExitRequest struct {
	Plate string `json:"plate"`
}

type reservationResponse struct {
	Slot        string          `json:"slot"`
	Name        string          `json:"name,omitempty"`
	Email       string          `json:"email"`
	Plate       string          `json:"plate"`
	Vehicle     string          `json:"vehicle"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Type        string          `json:"type"`
	ReservedVia string          `json:"reservedVia"`
	BookingTime string          `json:"bookingTime,omitempty"`
	ExternalID  string          `json:"externalId"`
	InvoiceID   string          `json:"invoiceId,omitempty"`
	Timestamp   string          `json:"timestamp"`
	PaymentTime string          `json:"paymentTime,omitempty"`
	ExitTime    string          `json:"exitTime,omitempty"`
}

func toReservationResponse(res *domain.Reservation) reservationResponse {
	out := reservationResponse{
		Slot:        res.Slot,
		Name:        res.Name,
		Email:       res.Email,
		Plate:       res.Plate,
		Vehicle:     res.Vehicle,
		Amount:      res.Amount,
		Status:      string(res.Status),
		Type:        string(res.Type),
		ReservedVia: res.ReservedVia,
		BookingTime: res.BookingTime,
		ExternalID:  res.ExternalID,
		InvoiceID:   res.InvoiceID,
		Timestamp:   res.CreatedAt.Format(time.RFC3339),
	}
	if res.PaymentTime != nil {
		out.PaymentTime = res.PaymentTime.Format(time.RFC3339)
	}
	if res.ExitTime != nil {
		out.ExitTime = res.ExitTime.Format(time.RFC3339)
	}
	return out
}

// respondError maps service errors onto the HTTP error taxonomy: input
// problems 400, conflicts 403, missing records 404, gateway rejections 400
// with the gateway detail, everything else 500.
func respondError(c *gin.Context, err error) {
	var invalid parking.InvalidRequestError
	var forbidden parking.ForbiddenError
	var notFound parking.NotFoundError
	var gateway *parking.GatewayError

	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &gateway):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Xendit API error", "details": gateway.Detail})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *ParkingHandler) createInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreateInvoice(c.Request.Context(), parking.CreateInvoiceInput{
		Name:    req.Name,
		Email:   req.Email,
		Plate:   req.Plate,
		Vehicle: req.Vehicle,
		Time:    req.Time,
		Slot:    req.Slot,
		Type:    req.Type,
		Amount:  req.Amount,
	})
	if err != nil {
		monitoring.RecordInvoiceCreated(req.Type, "rejected")
		respondError(c, err)
		return
	}
	monitoring.RecordInvoiceCreated(req.Type, "created")

	c.JSON(http.StatusOK, createInvoiceResponse{
		Success:    true,
		InvoiceURL: result.InvoiceURL,
		ExternalID: result.ExternalID,
		Amount:     result.Amount,
		Vehicle:    result.Vehicle,
		Invoice:    result.Invoice,
	})
}

func (h *ParkingHandler) exit(c *gin.Context) {
	var req exitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Exit(c.Request.Context(), parking.ExitInput{
		Slot:     req.Slot,
		Plate:    req.Plate,
		ExitTime: req.ExitTime,
		TicketID: req.TicketID,
	})
	if err != nil {
		monitoring.RecordExit("rejected")
		respondError(c, err)
		return
	}
	monitoring.RecordExit("completed")

	c.JSON(http.StatusOK, exitResponse{
		Success:  true,
		Message:  "Gate opened",
		ExitTime: result.ExitTime.Format(time.RFC3339),
		Duration: result.Duration,
		Slot:     result.Slot,
		Plate:    result.Plate,
	})
}

func (h *ParkingHandler) verifyExit(c *gin.Context) {
	var req verifyExitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.service.VerifyExitByPlate(c.Request.Context(), req.Plate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"slot":        reservation.Slot,
		"reservation": toReservationResponse(reservation),
		"message":     "Reservation verified",
	})
}

func (h *ParkingHandler) lookupBooking(c *gin.Context) {
	externalID := c.Param("externalId")

	booking, err := h.service.LookupBooking(c.Request.Context(), externalID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"booking": toReservationResponse(booking),
	})
}
