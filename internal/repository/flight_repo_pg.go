package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/airlineops/internal/domain"
	"github.com/jackc/pgx/v5"
)

// FlightRepository is the read side of the flight catalog. Seat counters
// are written exclusively through the SeatLedger.
type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type PGFlightRepository struct {
	db DB
}

func NewFlightRepository(db DB) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT id, flight_number, airline, origin, destination, departure_time, arrival_time, status, created_at, updated_at FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range flights {
		classes, err := r.seatClasses(ctx, flights[i].ID)
		if err != nil {
			return nil, err
		}
		flights[i].SeatClasses = classes
	}
	return flights, nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT id, flight_number, airline, origin, destination, departure_time, arrival_time, status, created_at, updated_at FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}

	classes, err := r.seatClasses(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	f.SeatClasses = classes
	return &f, nil
}

func (r *PGFlightRepository) seatClasses(ctx context.Context, flightID int64) ([]domain.SeatInventory, error) {
	rows, err := r.db.Query(ctx, `SELECT class, total_seats, available_seats, price_cents FROM flight_seat_classes WHERE flight_id=$1 ORDER BY price_cents`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := make([]domain.SeatInventory, 0)
	for rows.Next() {
		var inv domain.SeatInventory
		if err := rows.Scan(&inv.Class, &inv.TotalSeats, &inv.AvailableSeats, &inv.PriceCents); err != nil {
			return nil, err
		}
		classes = append(classes, inv)
	}
	return classes, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
