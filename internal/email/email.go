package email

import (
	"context"
	"fmt"

	"github.com/rgcaparas/intellipark/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// Send notifies the customer about a reservation lifecycle event. Events
// without a customer email (some kiosk flows) are skipped.
func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	if event.Email == "" {
		return nil
	}

	var subject string
	switch event.Type {
	case kafka.EventReservationCreated:
		subject = fmt.Sprintf("IntelliPark: invoice for slot %s", event.Slot)
	case kafka.EventPaymentConfirmed:
		subject = fmt.Sprintf("IntelliPark: payment received for slot %s", event.Slot)
	case kafka.EventReservationCancelled:
		subject = fmt.Sprintf("IntelliPark: reservation for slot %s cancelled (%s)", event.Slot, event.Reason)
	case kafka.EventVehicleExited:
		subject = fmt.Sprintf("IntelliPark: thanks for parking, slot %s released", event.Slot)
	default:
		subject = fmt.Sprintf("IntelliPark: update for slot %s", event.Slot)
	}

	fmt.Printf("send email to %s: %s (plate %s, amount %s)\n", event.Email, subject, event.Plate, event.Amount)
	return nil
}
