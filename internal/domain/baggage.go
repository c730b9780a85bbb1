package domain

import "time"

type BaggageType string

const (
	BaggageTypeCarryOn BaggageType = "CARRY_ON"
	BaggageTypeChecked BaggageType = "CHECKED"
)

func (t BaggageType) Valid() bool {
	return t == BaggageTypeCarryOn || t == BaggageTypeChecked
}

type BaggageStatus string

const (
	BaggageStatusChecked   BaggageStatus = "CHECKED"
	BaggageStatusLoaded    BaggageStatus = "LOADED"
	BaggageStatusInTransit BaggageStatus = "IN_TRANSIT"
	BaggageStatusArrived   BaggageStatus = "ARRIVED"
	BaggageStatusDelayed   BaggageStatus = "DELAYED"
	BaggageStatusLost      BaggageStatus = "LOST"
)

func (s BaggageStatus) Valid() bool {
	switch s {
	case BaggageStatusChecked, BaggageStatusLoaded, BaggageStatusInTransit,
		BaggageStatusArrived, BaggageStatusDelayed, BaggageStatusLost:
		return true
	}
	return false
}

type Baggage struct {
	ID             int64
	BookingID      int64
	PassengerID    int64
	FlightID       int64
	TrackingNumber string
	Type           BaggageType
	WeightKg       float64
	Pieces         int
	Status         BaggageStatus
	FeeCents       int64
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
