package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rgcaparas/intellipark/internal/domain"
	"github.com/shopspring/decimal"
)

type ReservationRepository interface {
	Get(ctx context.Context, slot string) (*domain.Reservation, error)
	GetByExternalID(ctx context.Context, externalID string, walkIn bool) (*domain.Reservation, error)
	Put(ctx context.Context, res *domain.Reservation) error
	Delete(ctx context.Context, slot string) error
	MarkPaid(ctx context.Context, slot string, amount decimal.Decimal, invoiceID string, at time.Time) error
	MarkCancelled(ctx context.Context, slot, reason string) error
	Complete(ctx context.Context, slot string, exitTime time.Time) (*domain.Reservation, error)
	FindPaidByPlate(ctx context.Context, plate string) (*domain.Reservation, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Reservation, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

const reservationColumns = `slot, name, email, plate, vehicle, amount, status, type, reserved_via, booking_time, external_id, invoice_id, cancel_reason, created_at, payment_time, exit_time, payment_confirmed`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := row.Scan(&res.Slot, &res.Name, &res.Email, &res.Plate, &res.Vehicle, &res.Amount, &res.Status, &res.Type, &res.ReservedVia, &res.BookingTime, &res.ExternalID, &res.InvoiceID, &res.CancelReason, &res.CreatedAt, &res.PaymentTime, &res.ExitTime, &res.PaymentOK); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGReservationRepository) Get(ctx context.Context, slot string) (*domain.Reservation, error) {
	return scanReservation(r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE slot=$1`, slot))
}

func (r *PGReservationRepository) GetByExternalID(ctx context.Context, externalID string, walkIn bool) (*domain.Reservation, error) {
	bookingType := domain.BookingTypeWebsite
	if walkIn {
		bookingType = domain.BookingTypeWalkIn
	}
	return scanReservation(r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE external_id=$1 AND type=$2`, externalID, bookingType))
}

// Put writes the reservation for a slot, replacing whatever was there. The
// lifecycle engine guarantees it never replaces a Paid reservation.
func (r *PGReservationRepository) Put(ctx context.Context, res *domain.Reservation) error {
	_, err := r.db.Exec(ctx, `INSERT INTO reservations (slot, name, email, plate, vehicle, amount, status, type, reserved_via, booking_time, external_id, invoice_id, cancel_reason, created_at, payment_time, exit_time, payment_confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (slot) DO UPDATE SET
			name=EXCLUDED.name, email=EXCLUDED.email, plate=EXCLUDED.plate, vehicle=EXCLUDED.vehicle,
			amount=EXCLUDED.amount, status=EXCLUDED.status, type=EXCLUDED.type, reserved_via=EXCLUDED.reserved_via,
			booking_time=EXCLUDED.booking_time, external_id=EXCLUDED.external_id, invoice_id=EXCLUDED.invoice_id,
			cancel_reason=EXCLUDED.cancel_reason, created_at=EXCLUDED.created_at, payment_time=EXCLUDED.payment_time,
			exit_time=EXCLUDED.exit_time, payment_confirmed=EXCLUDED.payment_confirmed`,
		res.Slot, res.Name, res.Email, res.Plate, res.Vehicle, res.Amount, res.Status, res.Type, res.ReservedVia, res.BookingTime, res.ExternalID, res.InvoiceID, res.CancelReason, res.CreatedAt, res.PaymentTime, res.ExitTime, res.PaymentOK)
	return err
}

func (r *PGReservationRepository) Delete(ctx context.Context, slot string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE slot=$1`, slot)
	return err
}

func (r *PGReservationRepository) MarkPaid(ctx context.Context, slot string, amount decimal.Decimal, invoiceID string, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE reservations SET status=$2, amount=$3, invoice_id=$4, payment_time=$5, payment_confirmed=true WHERE slot=$1`,
		slot, domain.ReservationStatusPaid, amount, invoiceID, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGReservationRepository) MarkCancelled(ctx context.Context, slot, reason string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE reservations SET status=$2, cancel_reason=$3 WHERE slot=$1`,
		slot, domain.ReservationStatusCancelled, reason)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGReservationRepository) Complete(ctx context.Context, slot string, exitTime time.Time) (*domain.Reservation, error) {
	return scanReservation(r.db.QueryRow(ctx, `UPDATE reservations SET status=$2, exit_time=$3 WHERE slot=$1 RETURNING `+reservationColumns,
		slot, domain.ReservationStatusCompleted, exitTime))
}

// FindPaidByPlate returns the oldest Paid reservation for the plate. The
// lifecycle keeps at most one non-terminal reservation per slot, so ties are
// only possible across slots; created_at ordering keeps the answer stable.
func (r *PGReservationRepository) FindPaidByPlate(ctx context.Context, plate string) (*domain.Reservation, error) {
	return scanReservation(r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE plate=$1 AND status=$2 ORDER BY created_at LIMIT 1`,
		plate, domain.ReservationStatusPaid))
}

func (r *PGReservationRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `UPDATE reservations SET status=$1, cancel_reason=$2 WHERE status=$3 AND created_at <= $4 RETURNING `+reservationColumns,
		domain.ReservationStatusCancelled, "Payment timeout", domain.ReservationStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *res)
	}
	return expired, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
