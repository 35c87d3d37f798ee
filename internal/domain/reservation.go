package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "Pending"
	ReservationStatusPaid      ReservationStatus = "Paid"
	ReservationStatusCancelled ReservationStatus = "Cancelled"
	ReservationStatusCompleted ReservationStatus = "Completed"
)

type BookingType string

const (
	BookingTypeWalkIn  BookingType = "walk-in"
	BookingTypeWebsite BookingType = "website-booking"
)

// ReservedVia values recorded on reservations and slots.
const (
	ReservedViaKiosk   = "Kiosk"
	ReservedViaWebsite = "Website"
)

// Reservation binds a requester to a slot for one paid or pending occupancy
// period. At most one non-terminal reservation exists per slot.
type Reservation struct {
	Slot         string
	Name         string
	Email        string
	Plate        string
	Vehicle      string
	Amount       decimal.Decimal
	Status       ReservationStatus
	Type         BookingType
	ReservedVia  string
	BookingTime  string
	ExternalID   string
	InvoiceID    string
	CancelReason string
	CreatedAt    time.Time
	PaymentTime  *time.Time
	ExitTime     *time.Time
	PaymentOK    bool
}

// Terminal reports whether the reservation can no longer change state.
func (r *Reservation) Terminal() bool {
	return r.Status == ReservationStatusCancelled || r.Status == ReservationStatusCompleted
}

// WalkInName is the display name recorded for kiosk bookings, which carry no
// customer name of their own.
func WalkInName(plate string) string {
	return fmt.Sprintf("Walk-in %s", plate)
}

// PendingBooking is the staged payload written at invoice-creation time and
// consumed when the payment gateway reports the outcome. Its presence is the
// completion marker that makes webhook handling idempotent.
type PendingBooking struct {
	Slot      string          `json:"slot"`
	Name      string          `json:"name,omitempty"`
	Email     string          `json:"email"`
	Plate     string          `json:"plate"`
	Vehicle   string          `json:"vehicle"`
	Amount    decimal.Decimal `json:"amount"`
	Time      string          `json:"time,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Type      BookingType     `json:"type"`
}

func (p *PendingBooking) IsWalkIn() bool {
	return p.Type == BookingTypeWalkIn
}
