package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airlineops/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender turns booking events into passenger notifications. Delivery is a
// log line for now; a real transport slots in behind the same method.
type Sender struct {
	logger *logrus.Logger
}

func NewSender(logger *logrus.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	s.logger.WithFields(logrus.Fields{
		"booking_id":   event.BookingID,
		"passenger_id": event.PassengerID,
		"event":        event.Type,
	}).Info(subjectFor(event))
	return nil
}

func subjectFor(event kafka.BookingEvent) string {
	switch event.Type {
	case "booking_created":
		return fmt.Sprintf("Booking %s confirmed for flight %d (%s)", event.BookingID, event.FlightID, event.SeatClass)
	case "booking_cancelled":
		return fmt.Sprintf("Booking %s cancelled, payment %s", event.BookingID, event.PaymentStatus)
	case "booking_updated":
		return fmt.Sprintf("Booking %s updated", event.BookingID)
	default:
		return fmt.Sprintf("Booking %s: %s", event.BookingID, event.Type)
	}
}
