package domain

import "time"

type TicketType string

const (
	TicketTypeWalkIn      TicketType = "walkin"
	TicketTypeReservation TicketType = "reservation"
)

// Ticket is a scannable token presented at the exit gate. A ticket is
// consumed at most once. Older kiosks issue tickets without an explicit
// type; those are classified at scan time from their flags.
type Ticket struct {
	ID            string
	Type          TicketType
	Slot          string
	Plate         string
	Status        string
	Used          bool
	EntryVerified bool
	UsedAt        *time.Time
}

// InferType classifies an untyped ticket from its flags: a paid ticket that
// never passed the entrance check is a walk-in, an entry-verified ticket is a
// reservation. Returns false when neither condition holds.
func (t *Ticket) InferType() (TicketType, bool) {
	if t.Type != "" {
		return t.Type, true
	}
	if t.Status == "Paid" && !t.EntryVerified {
		return TicketTypeWalkIn, true
	}
	if t.EntryVerified {
		return TicketTypeReservation, true
	}
	return "", false
}
