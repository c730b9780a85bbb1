package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airlineops/internal/domain"
	"github.com/jackc/pgx/v5"
)

type BaggageRepository interface {
	Create(ctx context.Context, baggage *domain.Baggage) error
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Baggage, error)
	ExistsByTrackingNumber(ctx context.Context, trackingNumber string) (bool, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Baggage, error)
	UpdateStatus(ctx context.Context, trackingNumber string, status domain.BaggageStatus) (*domain.Baggage, error)
}

type PGBaggageRepository struct {
	db DB
}

func NewBaggageRepository(db DB) BaggageRepository {
	return &PGBaggageRepository{db: db}
}

const baggageColumns = `id, booking_id, passenger_id, flight_id, tracking_number, type, weight_kg, pieces, status, fee_cents, description, created_at, updated_at`

func (r *PGBaggageRepository) Create(ctx context.Context, bg *domain.Baggage) error {
	err := r.db.QueryRow(ctx, `INSERT INTO baggage (booking_id, passenger_id, flight_id, tracking_number, type, weight_kg, pieces, status, fee_cents, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		bg.BookingID, bg.PassengerID, bg.FlightID, bg.TrackingNumber, bg.Type, bg.WeightKg, bg.Pieces, bg.Status, bg.FeeCents, bg.Description).
		Scan(&bg.ID, &bg.CreatedAt, &bg.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: tracking number %s", domain.ErrGenerationExhausted, bg.TrackingNumber)
	}
	return err
}

func (r *PGBaggageRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Baggage, error) {
	row := r.db.QueryRow(ctx, `SELECT `+baggageColumns+` FROM baggage WHERE tracking_number=$1`, trackingNumber)
	return scanBaggage(row)
}

func (r *PGBaggageRepository) ExistsByTrackingNumber(ctx context.Context, trackingNumber string) (bool, error) {
	var one int
	err := r.db.QueryRow(ctx, `SELECT 1 FROM baggage WHERE tracking_number=$1`, trackingNumber).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PGBaggageRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Baggage, error) {
	rows, err := r.db.Query(ctx, `SELECT `+baggageColumns+` FROM baggage WHERE booking_id=$1 ORDER BY created_at DESC`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	baggage := make([]domain.Baggage, 0)
	for rows.Next() {
		bg, err := scanBaggage(rows)
		if err != nil {
			return nil, err
		}
		baggage = append(baggage, *bg)
	}
	return baggage, rows.Err()
}

func (r *PGBaggageRepository) UpdateStatus(ctx context.Context, trackingNumber string, status domain.BaggageStatus) (*domain.Baggage, error) {
	row := r.db.QueryRow(ctx, `UPDATE baggage SET status=$1, updated_at=now() WHERE tracking_number=$2 RETURNING `+baggageColumns, status, trackingNumber)
	return scanBaggage(row)
}

func scanBaggage(row pgx.Row) (*domain.Baggage, error) {
	var bg domain.Baggage
	err := row.Scan(&bg.ID, &bg.BookingID, &bg.PassengerID, &bg.FlightID, &bg.TrackingNumber, &bg.Type,
		&bg.WeightKg, &bg.Pieces, &bg.Status, &bg.FeeCents, &bg.Description, &bg.CreatedAt, &bg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBaggageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bg, nil
}

var _ BaggageRepository = (*PGBaggageRepository)(nil)
