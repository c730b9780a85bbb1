package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/airlineops/internal/domain"
	"github.com/jackc/pgx/v5"
)

// SeatLedger is the sole owner of seat-class counter arithmetic. Both
// mutations are conditional single-row updates, so concurrent callers are
// serialized by the row lock and the counter can never leave
// [0, total_seats].
type SeatLedger interface {
	WithTx(db DB) SeatLedger
	Reserve(ctx context.Context, flightID int64, class domain.SeatClass) error
	Release(ctx context.Context, flightID int64, class domain.SeatClass) (clamped bool, err error)
	ReadSeatClass(ctx context.Context, flightID int64, class domain.SeatClass) (*domain.SeatInventory, error)
}

type PGSeatLedger struct {
	db DB
}

func NewSeatLedger(db DB) SeatLedger {
	return &PGSeatLedger{db: db}
}

func (l *PGSeatLedger) WithTx(db DB) SeatLedger {
	return &PGSeatLedger{db: db}
}

func (l *PGSeatLedger) Reserve(ctx context.Context, flightID int64, class domain.SeatClass) error {
	res, err := l.db.Exec(ctx, `UPDATE flight_seat_classes SET available_seats = available_seats - 1, updated_at = now() WHERE flight_id=$1 AND class=$2 AND available_seats > 0`, flightID, class)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return l.classifyMiss(ctx, flightID, class, domain.ErrCapacityExhausted)
	}
	return nil
}

func (l *PGSeatLedger) Release(ctx context.Context, flightID int64, class domain.SeatClass) (bool, error) {
	res, err := l.db.Exec(ctx, `UPDATE flight_seat_classes SET available_seats = available_seats + 1, updated_at = now() WHERE flight_id=$1 AND class=$2 AND available_seats < total_seats`, flightID, class)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() == 0 {
		// Row exists but the counter already sits at total_seats: the
		// increment is clamped and reported instead of overflowing.
		if err := l.classifyMiss(ctx, flightID, class, nil); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (l *PGSeatLedger) ReadSeatClass(ctx context.Context, flightID int64, class domain.SeatClass) (*domain.SeatInventory, error) {
	row := l.db.QueryRow(ctx, `SELECT class, total_seats, available_seats, price_cents FROM flight_seat_classes WHERE flight_id=$1 AND class=$2`, flightID, class)
	var inv domain.SeatInventory
	if err := row.Scan(&inv.Class, &inv.TotalSeats, &inv.AvailableSeats, &inv.PriceCents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, l.classifyMiss(ctx, flightID, class, nil)
		}
		return nil, err
	}
	return &inv, nil
}

// classifyMiss disambiguates a zero-row conditional update: missing flight,
// missing class entry, or (when onExists is non-nil) an exhausted counter.
func (l *PGSeatLedger) classifyMiss(ctx context.Context, flightID int64, class domain.SeatClass, onExists error) error {
	var one int
	err := l.db.QueryRow(ctx, `SELECT 1 FROM flight_seat_classes WHERE flight_id=$1 AND class=$2`, flightID, class).Scan(&one)
	if err == nil {
		return onExists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	err = l.db.QueryRow(ctx, `SELECT 1 FROM flights WHERE id=$1`, flightID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrFlightNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrInvalidSeatClass
}

var _ SeatLedger = (*PGSeatLedger)(nil)
