package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invoicesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoices_created_total",
			Help: "Invoices requested from the payment gateway",
		},
		[]string{"booking_type", "result"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Payment gateway webhook events by invoice status",
		},
		[]string{"status"},
	)

	exits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_exits_total",
			Help: "Exit-gate requests",
		},
		[]string{"result"},
	)

	expiredReservations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "expired_reservations_total",
			Help: "Pending reservations cancelled by the expiration sweep",
		},
	)
)

func RecordInvoiceCreated(bookingType, result string) {
	invoicesCreated.WithLabelValues(bookingType, result).Inc()
}

func RecordWebhookEvent(status string) {
	webhookEvents.WithLabelValues(status).Inc()
}

func RecordExit(result string) {
	exits.WithLabelValues(result).Inc()
}

func RecordExpiredReservations(n int) {
	expiredReservations.Add(float64(n))
}
