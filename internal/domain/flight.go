package domain

import "time"

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "SCHEDULED"
	FlightStatusDelayed   FlightStatus = "DELAYED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
	FlightStatusCompleted FlightStatus = "COMPLETED"
)

type SeatClass string

const (
	SeatClassEconomy  SeatClass = "ECONOMY"
	SeatClassBusiness SeatClass = "BUSINESS"
	SeatClassFirst    SeatClass = "FIRST"
)

func (c SeatClass) Valid() bool {
	switch c {
	case SeatClassEconomy, SeatClassBusiness, SeatClassFirst:
		return true
	}
	return false
}

// SeatInventory is the per-class availability counter of a flight.
// AvailableSeats is mutated only through the seat ledger.
type SeatInventory struct {
	Class          SeatClass
	TotalSeats     int
	AvailableSeats int
	PriceCents     int64
}

type Flight struct {
	ID            int64
	FlightNumber  string
	Airline       string
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	SeatClasses   []SeatInventory
	Status        FlightStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SeatClassByName returns the inventory entry for the given class, or nil.
func (f *Flight) SeatClassByName(class SeatClass) *SeatInventory {
	for i := range f.SeatClasses {
		if f.SeatClasses[i].Class == class {
			return &f.SeatClasses[i]
		}
	}
	return nil
}
