package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rgcaparas/intellipark/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type SlotRepository interface {
	Get(ctx context.Context, code string) (*domain.Slot, error)
	MarkReserved(ctx context.Context, code string, occ domain.SlotOccupant) error
	SetPaymentStatus(ctx context.Context, code, paymentStatus string) error
	Reset(ctx context.Context, code string) error
}

type PGSlotRepository struct {
	db *pgxpool.Pool
}

func NewSlotRepository(db *pgxpool.Pool) SlotRepository {
	return &PGSlotRepository{db: db}
}

func (r *PGSlotRepository) Get(ctx context.Context, code string) (*domain.Slot, error) {
	row := r.db.QueryRow(ctx, `SELECT code, status, reserved, reserved_by, reservation_type, name, email, plate, vehicle, booking_time, booked_at, amount, payment_status FROM slots WHERE code=$1`, code)
	var s domain.Slot
	if err := row.Scan(&s.Code, &s.Status, &s.Reserved, &s.ReservedBy, &s.ReservationType, &s.Name, &s.Email, &s.Plate, &s.Vehicle, &s.Time, &s.BookedAt, &s.Amount, &s.PaymentStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGSlotRepository) MarkReserved(ctx context.Context, code string, occ domain.SlotOccupant) error {
	cmd, err := r.db.Exec(ctx, `UPDATE slots SET status=$2, reserved=true, reserved_by=$3, reservation_type=$4, name=$5, email=$6, plate=$7, vehicle=$8, booking_time=$9, booked_at=$10, amount=$11, updated_at=now() WHERE code=$1`,
		code, domain.SlotStatusReserved, occ.ReservedBy, occ.ReservationType, occ.Name, occ.Email, occ.Plate, occ.Vehicle, occ.Time, occ.BookedAt, occ.Amount)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGSlotRepository) SetPaymentStatus(ctx context.Context, code, paymentStatus string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE slots SET status=$2, reserved=true, payment_status=$3, updated_at=now() WHERE code=$1`,
		code, domain.SlotStatusReserved, paymentStatus)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reset returns the slot to its empty Available representation, clearing all
// denormalized occupant fields.
func (r *PGSlotRepository) Reset(ctx context.Context, code string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE slots SET status=$2, reserved=false, reserved_by='', reservation_type='', name='', email='', plate='', vehicle='', booking_time='', booked_at='', amount=0, payment_status='', updated_at=now() WHERE code=$1`,
		code, domain.SlotStatusAvailable)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ SlotRepository = (*PGSlotRepository)(nil)
