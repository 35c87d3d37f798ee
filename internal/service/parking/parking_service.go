package parking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/rgcaparas/intellipark/config"
	"github.com/rgcaparas/intellipark/internal/domain"
	"github.com/rgcaparas/intellipark/internal/kafka"
	"github.com/rgcaparas/intellipark/internal/payment/xendit"
	"github.com/rgcaparas/intellipark/internal/repository"
	"github.com/shopspring/decimal"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	platePattern = regexp.MustCompile(`^[A-Za-z]{3}[0-9]{3}$`)
)

// InvalidRequestError is a client input problem. Nothing was written.
type InvalidRequestError string

func (e InvalidRequestError) Error() string { return string(e) }

// ForbiddenError is a rejected conflict (used ticket, plate mismatch, unpaid
// walk-in). Nothing was written.
type ForbiddenError string

func (e ForbiddenError) Error() string { return string(e) }

// NotFoundError marks a missing slot, reservation, ticket or booking.
type NotFoundError string

func (e NotFoundError) Error() string { return string(e) }

// GatewayError is a rejection reported by the payment gateway after the
// provisional reservation was already rolled back.
type GatewayError struct {
	Detail string
}

func (e *GatewayError) Error() string { return "payment gateway error: " + e.Detail }

type ParkingUseCase interface {
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*CreateInvoiceResult, error)
	HandlePaymentWebhook(ctx context.Context, event xendit.WebhookEvent) error
	Exit(ctx context.Context, input ExitInput) (*ExitResult, error)
	VerifyExitByPlate(ctx context.Context, plate string) (*domain.Reservation, error)
	LookupBooking(ctx context.Context, externalID string) (*domain.Reservation, error)
	ExpirePendingReservations(ctx context.Context) ([]domain.Reservation, error)
}

// Staging is the pending-booking store plus the per-slot locks that
// serialize the availability check-then-act window.
type Staging interface {
	StagePending(ctx context.Context, externalID string, booking *domain.PendingBooking) error
	GetPending(ctx context.Context, externalID string) (*domain.PendingBooking, error)
	RemovePending(ctx context.Context, externalID string) error
	AcquireSlotLock(ctx context.Context, slot string, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, slot string) error
}

type InvoiceClient interface {
	CreateInvoice(ctx context.Context, inv xendit.InvoiceRequest) (*xendit.Invoice, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ParkingService struct {
	slots              repository.SlotRepository
	reservations       repository.ReservationRepository
	tickets            repository.TicketRepository
	staging            Staging
	invoices           InvoiceClient
	producer           Producer
	reservationsTopic  string
	notificationsTopic string
	xenditCfg          config.XenditConfig
	slotLockTTL        time.Duration
	pendingTTL         time.Duration
}

type ParkingServiceOption func(*ParkingService)

func WithNotificationsTopic(topic string) ParkingServiceOption {
	return func(s *ParkingService) {
		s.notificationsTopic = topic
	}
}

func NewParkingService(
	slots repository.SlotRepository,
	reservations repository.ReservationRepository,
	tickets repository.TicketRepository,
	staging Staging,
	invoices InvoiceClient,
	producer Producer,
	reservationsTopic string,
	xenditCfg config.XenditConfig,
	slotLockTTL, pendingTTL time.Duration,
	opts ...ParkingServiceOption,
) *ParkingService {
	service := &ParkingService{
		slots:             slots,
		reservations:      reservations,
		tickets:           tickets,
		staging:           staging,
		invoices:          invoices,
		producer:          producer,
		reservationsTopic: reservationsTopic,
		xenditCfg:         xenditCfg,
		slotLockTTL:       slotLockTTL,
		pendingTTL:        pendingTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type CreateInvoiceInput struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Plate   string          `json:"plate"`
	Vehicle string          `json:"vehicle"`
	Time    string          `json:"time"`
	Slot    string          `json:"slot"`
	Type    string          `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
}

func (in CreateInvoiceInput) walkIn() bool {
	return in.Type == string(domain.BookingTypeWalkIn)
}

type CreateInvoiceResult struct {
	InvoiceURL string
	ExternalID string
	Amount     decimal.Decimal
	Vehicle    string
	Invoice    *xendit.Invoice
}

func (s *ParkingService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*CreateInvoiceResult, error) {
	isWalkIn := input.walkIn()

	if input.Slot == "" {
		return nil, InvalidRequestError("Missing slot parameter")
	}
	if input.Email == "" {
		return nil, InvalidRequestError("Missing email parameter")
	}
	if input.Plate == "" {
		return nil, InvalidRequestError("Missing plate parameter")
	}
	if input.Vehicle == "" {
		return nil, InvalidRequestError("Missing vehicle parameter")
	}
	if input.Amount.IsZero() {
		return nil, InvalidRequestError("Missing amount parameter")
	}
	if !isWalkIn && input.Time == "" {
		return nil, InvalidRequestError("Missing time parameter")
	}
	if !isWalkIn && input.Name == "" {
		return nil, InvalidRequestError("Missing name parameter")
	}

	// The tariff is fixed per vehicle class; a mismatched amount is rejected
	// rather than corrected.
	expected := domain.TariffFor(input.Vehicle)
	if !input.Amount.Equal(expected) {
		return nil, InvalidRequestError(fmt.Sprintf("Invalid amount for %s. Expected ₱%s", input.Vehicle, expected))
	}

	if !emailPattern.MatchString(input.Email) {
		return nil, InvalidRequestError("Invalid email format")
	}
	if !platePattern.MatchString(input.Plate) {
		return nil, InvalidRequestError("Plate number must be in format ABC123 (3 letters + 3 digits)")
	}

	if s.staging != nil {
		ok, err := s.staging.AcquireSlotLock(ctx, input.Slot, s.slotLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, InvalidRequestError(fmt.Sprintf("Slot %s is being booked by another request", input.Slot))
		}
		defer func() {
			_ = s.staging.ReleaseSlotLock(ctx, input.Slot)
		}()
	}

	slot, err := s.slots.Get(ctx, input.Slot)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError(fmt.Sprintf("Slot %s does not exist", input.Slot))
		}
		return nil, err
	}

	if !isWalkIn && slot.Status != domain.SlotStatusAvailable {
		return nil, InvalidRequestError(fmt.Sprintf("Slot %s is no longer available", input.Slot))
	}
	if isWalkIn && slot.Status == domain.SlotStatusOccupied {
		return nil, InvalidRequestError(fmt.Sprintf("Slot %s is currently occupied", input.Slot))
	}
	if isWalkIn && slot.Status == domain.SlotStatusReserved {
		existing, err := s.reservations.Get(ctx, input.Slot)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.Status == domain.ReservationStatusPaid {
			return nil, InvalidRequestError(fmt.Sprintf("Slot %s is already reserved and paid", input.Slot))
		}
		if existing != nil && existing.Status == domain.ReservationStatusPending {
			// A walk-in at the kiosk takes priority over a booking that was
			// never paid for.
			log.Printf("overriding pending reservation for %s", input.Slot)
			if err := s.reservations.Delete(ctx, input.Slot); err != nil {
				return nil, err
			}
		}
	}

	now := time.Now().UTC()
	prefix := "WEBSITE"
	bookingType := domain.BookingTypeWebsite
	reservedVia := domain.ReservedViaWebsite
	displayName := input.Name
	if isWalkIn {
		prefix = "WALKIN"
		bookingType = domain.BookingTypeWalkIn
		reservedVia = domain.ReservedViaKiosk
		displayName = domain.WalkInName(input.Plate)
	}
	externalID := fmt.Sprintf("%s_%s_%d", prefix, input.Slot, now.UnixMilli())

	pending := &domain.PendingBooking{
		Slot:      input.Slot,
		Email:     input.Email,
		Plate:     input.Plate,
		Vehicle:   input.Vehicle,
		Amount:    input.Amount,
		Timestamp: now,
		Type:      bookingType,
	}
	if !isWalkIn {
		pending.Name = input.Name
		pending.Time = input.Time
	}
	if err := s.staging.StagePending(ctx, externalID, pending); err != nil {
		return nil, err
	}

	reservation := &domain.Reservation{
		Slot:        input.Slot,
		Name:        displayName,
		Email:       input.Email,
		Plate:       input.Plate,
		Vehicle:     input.Vehicle,
		Amount:      input.Amount,
		Status:      domain.ReservationStatusPending,
		Type:        bookingType,
		ReservedVia: reservedVia,
		BookingTime: input.Time,
		ExternalID:  externalID,
		CreatedAt:   now,
	}
	if err := s.reservations.Put(ctx, reservation); err != nil {
		return nil, err
	}

	occ := domain.SlotOccupant{
		ReservedBy:      displayName,
		ReservationType: reservedVia,
		Name:            displayName,
		Email:           input.Email,
		Plate:           input.Plate,
		Vehicle:         input.Vehicle,
		Time:            input.Time,
		BookedAt:        now.Format(time.RFC3339),
		Amount:          input.Amount,
	}
	if err := s.slots.MarkReserved(ctx, input.Slot, occ); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Website Reservation (%s) - %s", input.Vehicle, input.Slot)
	successURL, failureURL := s.xenditCfg.WebsiteSuccessURL, s.xenditCfg.WebsiteFailureURL
	if isWalkIn {
		description = fmt.Sprintf("Walk-in Parking (%s) - %s", input.Vehicle, input.Slot)
		successURL, failureURL = s.xenditCfg.KioskSuccessURL, s.xenditCfg.KioskFailureURL
	}

	invoice, err := s.invoices.CreateInvoice(ctx, xendit.InvoiceRequest{
		ExternalID:         externalID,
		Amount:             input.Amount,
		Currency:           domain.Currency,
		Description:        description,
		PayerEmail:         input.Email,
		SuccessRedirectURL: successURL,
		FailureRedirectURL: failureURL,
		InvoiceDuration:    s.xenditCfg.InvoiceDurationSeconds,
	})
	if err != nil {
		var apiErr *xendit.APIError
		if errors.As(err, &apiErr) {
			// The gateway rejected the invoice: undo the provisional
			// reservation so the slot is bookable again. Best effort, in
			// sequence; a failed step is logged and not retried.
			if rerr := s.staging.RemovePending(ctx, externalID); rerr != nil {
				log.Printf("rollback: remove pending %s: %v", externalID, rerr)
			}
			if rerr := s.reservations.Delete(ctx, input.Slot); rerr != nil {
				log.Printf("rollback: delete reservation %s: %v", input.Slot, rerr)
			}
			if rerr := s.slots.Reset(ctx, input.Slot); rerr != nil {
				log.Printf("rollback: reset slot %s: %v", input.Slot, rerr)
			}
			return nil, &GatewayError{Detail: apiErr.Error()}
		}
		return nil, err
	}

	s.publish(ctx, kafka.EventReservationCreated, reservation, "")

	return &CreateInvoiceResult{
		InvoiceURL: invoice.InvoiceURL,
		ExternalID: externalID,
		Amount:     input.Amount,
		Vehicle:    input.Vehicle,
		Invoice:    invoice,
	}, nil
}

// HandlePaymentWebhook reconciles an invoice callback. Delivery is
// at-least-once and unordered: the staged payload doubles as the completion
// marker, so replays and unknown ids are acknowledged without any change.
func (s *ParkingService) HandlePaymentWebhook(ctx context.Context, event xendit.WebhookEvent) error {
	switch event.Status {
	case xendit.StatusPaid:
		pending, err := s.staging.GetPending(ctx, event.ExternalID)
		if err != nil {
			return err
		}
		if pending == nil {
			log.Printf("webhook: no pending booking for %s, ignoring", event.ExternalID)
			return nil
		}

		now := time.Now().UTC()
		if err := s.reservations.MarkPaid(ctx, pending.Slot, event.Amount, event.ID, now); err != nil {
			return err
		}
		if err := s.slots.SetPaymentStatus(ctx, pending.Slot, string(domain.ReservationStatusPaid)); err != nil {
			return err
		}
		if err := s.staging.RemovePending(ctx, event.ExternalID); err != nil {
			return err
		}

		s.publish(ctx, kafka.EventPaymentConfirmed, &domain.Reservation{
			Slot:       pending.Slot,
			Email:      pending.Email,
			Plate:      pending.Plate,
			Vehicle:    pending.Vehicle,
			Amount:     event.Amount,
			Status:     domain.ReservationStatusPaid,
			ExternalID: event.ExternalID,
		}, "")
		return nil

	case xendit.StatusExpired, xendit.StatusFailed:
		pending, err := s.staging.GetPending(ctx, event.ExternalID)
		if err != nil {
			return err
		}
		// Walk-in payment failures are resolved at the kiosk, not here.
		if pending == nil || pending.IsWalkIn() {
			return nil
		}

		reason := "Payment failed"
		if event.Status == xendit.StatusExpired {
			reason = "Payment timeout"
		}
		if err := s.reservations.MarkCancelled(ctx, pending.Slot, reason); err != nil {
			return err
		}
		if err := s.slots.Reset(ctx, pending.Slot); err != nil {
			return err
		}
		if err := s.staging.RemovePending(ctx, event.ExternalID); err != nil {
			return err
		}
		log.Printf("released slot %s due to %s", pending.Slot, event.Status)

		s.publish(ctx, kafka.EventReservationCancelled, &domain.Reservation{
			Slot:       pending.Slot,
			Email:      pending.Email,
			Plate:      pending.Plate,
			Vehicle:    pending.Vehicle,
			Amount:     pending.Amount,
			Status:     domain.ReservationStatusCancelled,
			ExternalID: event.ExternalID,
		}, reason)
		return nil

	default:
		// Non-terminal statuses are acknowledged and ignored.
		return nil
	}
}

type ExitInput struct {
	Slot     string
	Plate    string
	ExitTime string
	TicketID string
}

type ExitResult struct {
	ExitTime time.Time
	Duration string
	Slot     string
	Plate    string
}

func (s *ParkingService) Exit(ctx context.Context, input ExitInput) (*ExitResult, error) {
	if input.Slot == "" || input.Plate == "" {
		return nil, InvalidRequestError("Missing slot or plate")
	}

	exitTime := time.Now().UTC()
	if input.ExitTime != "" {
		parsed, err := time.Parse(time.RFC3339, input.ExitTime)
		if err != nil {
			return nil, InvalidRequestError("Invalid exitTime format")
		}
		exitTime = parsed
	}

	var ticket *domain.Ticket
	if input.TicketID != "" {
		var err error
		ticket, err = s.tickets.Get(ctx, input.TicketID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, NotFoundError("Invalid ticket")
			}
			return nil, err
		}
		if ticket.Used {
			return nil, ForbiddenError("Ticket already used")
		}

		ticketType, ok := ticket.InferType()
		if !ok {
			return nil, ForbiddenError("Ticket not verified")
		}
		switch ticketType {
		case domain.TicketTypeWalkIn:
			if ticket.Status != string(domain.ReservationStatusPaid) {
				return nil, ForbiddenError("Payment required")
			}
		case domain.TicketTypeReservation:
			if !ticket.EntryVerified {
				return nil, ForbiddenError("Please check in at entrance first")
			}
		}

		if ticket.Slot != input.Slot || ticket.Plate != input.Plate {
			return nil, ForbiddenError("Ticket data mismatch")
		}
	}

	// The reservation record gates the exit even when a valid ticket was
	// presented.
	reservation, err := s.reservations.Get(ctx, input.Slot)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("No reservation found")
		}
		return nil, err
	}
	if reservation.Plate != input.Plate {
		return nil, ForbiddenError("Plate mismatch")
	}

	completed, err := s.reservations.Complete(ctx, input.Slot, exitTime)
	if err != nil {
		return nil, err
	}
	if err := s.slots.Reset(ctx, input.Slot); err != nil {
		return nil, err
	}
	if ticket != nil {
		if err := s.tickets.MarkUsed(ctx, ticket.ID, exitTime); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, kafka.EventVehicleExited, completed, "")

	return &ExitResult{
		ExitTime: exitTime,
		Duration: formatDuration(completed.CreatedAt, exitTime),
		Slot:     input.Slot,
		Plate:    input.Plate,
	}, nil
}

func (s *ParkingService) VerifyExitByPlate(ctx context.Context, plate string) (*domain.Reservation, error) {
	if plate == "" {
		return nil, InvalidRequestError("Missing plate parameter")
	}

	reservation, err := s.reservations.FindPaidByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("No active reservation found for this plate number")
		}
		return nil, err
	}
	return reservation, nil
}

// LookupBooking classifies the correlation id by its naming convention to
// decide which namespace to read.
func (s *ParkingService) LookupBooking(ctx context.Context, externalID string) (*domain.Reservation, error) {
	walkIn := strings.Contains(externalID, "WALKIN")
	booking, err := s.reservations.GetByExternalID(ctx, externalID, walkIn)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("Booking not found")
		}
		return nil, err
	}
	return booking, nil
}

// ExpirePendingReservations cancels reservations that stayed Pending past
// the invoice validity window and frees their slots. This is the backstop
// for callbacks that never arrive, walk-ins included.
func (s *ParkingService) ExpirePendingReservations(ctx context.Context) ([]domain.Reservation, error) {
	deadline := time.Now().UTC().Add(-s.pendingTTL)
	expired, err := s.reservations.ExpirePendingBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	for _, res := range expired {
		if err := s.slots.Reset(ctx, res.Slot); err != nil {
			log.Printf("expire: reset slot %s: %v", res.Slot, err)
		}
		if res.ExternalID != "" {
			_ = s.staging.RemovePending(ctx, res.ExternalID)
		}
		s.publish(ctx, kafka.EventReservationCancelled, &res, "Payment timeout")
	}
	return expired, nil
}

func (s *ParkingService) publish(ctx context.Context, eventType string, res *domain.Reservation, reason string) {
	if s.producer == nil || s.reservationsTopic == "" {
		return
	}
	event := kafka.ReservationEvent{
		Type:       eventType,
		ExternalID: res.ExternalID,
		Slot:       res.Slot,
		Plate:      res.Plate,
		Email:      res.Email,
		Vehicle:    res.Vehicle,
		Amount:     res.Amount,
		Status:     string(res.Status),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.reservationsTopic, res.Slot, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for slot %s: %v", eventType, res.Slot, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, res.Slot, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for slot %s: %v", eventType, res.Slot, err)
		}
	}
}

func formatDuration(entry, exit time.Time) string {
	mins := int(exit.Sub(entry).Minutes())
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

var _ ParkingUseCase = (*ParkingService)(nil)
