package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rgcaparas/intellipark/internal/domain"
)

type TicketRepository interface {
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

func (r *PGTicketRepository) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	row := r.db.QueryRow(ctx, `SELECT id, type, slot, plate, status, used, entry_verified, used_at FROM tickets WHERE id=$1`, id)
	var t domain.Ticket
	if err := row.Scan(&t.ID, &t.Type, &t.Slot, &t.Plate, &t.Status, &t.Used, &t.EntryVerified, &t.UsedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGTicketRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE tickets SET used=true, used_at=$2 WHERE id=$1`, id, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ TicketRepository = (*PGTicketRepository)(nil)
