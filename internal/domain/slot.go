package domain

import "github.com/shopspring/decimal"

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "Available"
	SlotStatusReserved  SlotStatus = "Reserved"
	SlotStatusOccupied  SlotStatus = "Occupied"
)

// Slot is a single parking space. Slots are provisioned up front and are
// never created or destroyed by the booking flow, only updated or reset.
type Slot struct {
	Code            string
	Status          SlotStatus
	Reserved        bool
	ReservedBy      string
	ReservationType string
	Name            string
	Email           string
	Plate           string
	Vehicle         string
	Time            string
	BookedAt        string
	Amount          decimal.Decimal
	PaymentStatus   string
}

// SlotOccupant carries the denormalized booking fields written onto the slot
// record so dashboards can render it without joining reservations.
type SlotOccupant struct {
	ReservedBy      string
	ReservationType string
	Name            string
	Email           string
	Plate           string
	Vehicle         string
	Time            string
	BookedAt        string
	Amount          decimal.Decimal
}
