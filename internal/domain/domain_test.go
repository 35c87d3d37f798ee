package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTariffFor(t *testing.T) {
	assert.True(t, TariffFor("Motorcycle").Equal(decimal.NewFromInt(30)))
	assert.True(t, TariffFor("Car").Equal(decimal.NewFromInt(50)))
	assert.True(t, TariffFor("SUV").Equal(decimal.NewFromInt(50)))
	assert.True(t, TariffFor("Van").Equal(decimal.NewFromInt(50)))
}

func TestTicketInferType(t *testing.T) {
	explicit := &Ticket{Type: TicketTypeReservation}
	got, ok := explicit.InferType()
	assert.True(t, ok)
	assert.Equal(t, TicketTypeReservation, got)

	paidNoEntry := &Ticket{Status: "Paid"}
	got, ok = paidNoEntry.InferType()
	assert.True(t, ok)
	assert.Equal(t, TicketTypeWalkIn, got)

	entryVerified := &Ticket{EntryVerified: true}
	got, ok = entryVerified.InferType()
	assert.True(t, ok)
	assert.Equal(t, TicketTypeReservation, got)

	_, ok = (&Ticket{}).InferType()
	assert.False(t, ok)
}

func TestWalkInName(t *testing.T) {
	assert.Equal(t, "Walk-in ABC123", WalkInName("ABC123"))
}

func TestReservationTerminal(t *testing.T) {
	assert.False(t, (&Reservation{Status: ReservationStatusPending}).Terminal())
	assert.False(t, (&Reservation{Status: ReservationStatusPaid}).Terminal())
	assert.True(t, (&Reservation{Status: ReservationStatusCancelled}).Terminal())
	assert.True(t, (&Reservation{Status: ReservationStatusCompleted}).Terminal())
}
