package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airlineops/internal/domain"
	"github.com/jackc/pgx/v5"
)

type BookingRepository interface {
	WithTx(db DB) BookingRepository
	Create(ctx context.Context, booking *domain.Booking) error
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error)
	LockByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error)
	ExistsByBookingID(ctx context.Context, bookingID string) (bool, error)
	List(ctx context.Context) ([]domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) WithTx(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, booking_id, flight_id, passenger_id, seat_class, seat_number, status, payment_amount_cents, payment_currency, payment_status, payment_method, payment_transaction_id, travel_date, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	err := r.db.QueryRow(ctx, `INSERT INTO bookings (booking_id, flight_id, passenger_id, seat_class, seat_number, status, payment_amount_cents, payment_currency, payment_status, payment_method, payment_transaction_id, travel_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		b.BookingID, b.FlightID, b.PassengerID, b.SeatClass, b.SeatNumber, b.Status,
		b.Payment.AmountCents, b.Payment.Currency, b.Payment.Status, b.Payment.Method, b.Payment.TransactionID, b.TravelDate).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: booking id %s", domain.ErrGenerationExhausted, b.BookingID)
	}
	return err
}

func (r *PGBookingRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id=$1`, bookingID)
	return scanBooking(row)
}

// LockByBookingID loads the booking with FOR UPDATE so a cancel or patch
// holds the row until its transaction commits.
func (r *PGBookingRepository) LockByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id=$1 FOR UPDATE`, bookingID)
	return scanBooking(row)
}

func (r *PGBookingRepository) ExistsByBookingID(ctx context.Context, bookingID string) (bool, error) {
	var one int
	err := r.db.QueryRow(ctx, `SELECT 1 FROM bookings WHERE booking_id=$1`, bookingID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET seat_number=$1, status=$2, payment_amount_cents=$3, payment_currency=$4, payment_status=$5, payment_method=$6, payment_transaction_id=$7, updated_at=now() WHERE booking_id=$8 RETURNING updated_at`,
		b.SeatNumber, b.Status, b.Payment.AmountCents, b.Payment.Currency, b.Payment.Status, b.Payment.Method, b.Payment.TransactionID, b.BookingID)
	if err := row.Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookingNotFound
		}
		return err
	}
	return nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.BookingID, &b.FlightID, &b.PassengerID, &b.SeatClass, &b.SeatNumber, &b.Status,
		&b.Payment.AmountCents, &b.Payment.Currency, &b.Payment.Status, &b.Payment.Method, &b.Payment.TransactionID,
		&b.TravelDate, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
