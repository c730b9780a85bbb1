package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// CanTransitionTo reports whether a payment status change is a legal
// forward transition. Refunds happen only through cancellation, never
// through a direct patch.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s == next {
		return true
	}
	return s == PaymentStatusPending && next == PaymentStatusPaid
}

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodWallet PaymentMethod = "WALLET"
	PaymentMethodOther  PaymentMethod = "OTHER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodCash, PaymentMethodWallet, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is bookkeeping only; no gateway is ever called.
type Payment struct {
	AmountCents   int64
	Currency      string
	Status        PaymentStatus
	Method        PaymentMethod
	TransactionID string
}

type Booking struct {
	ID          int64
	BookingID   string
	FlightID    int64
	PassengerID int64
	SeatClass   SeatClass
	SeatNumber  string
	Status      BookingStatus
	Payment     Payment
	TravelDate  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b *Booking) Cancelled() bool {
	return b.Status == BookingStatusCancelled
}

// MarkCancelled flips the booking into its terminal state. A PAID payment
// becomes REFUNDED; the refund is bookkeeping only. Returns false when the
// booking is already cancelled, in which case nothing changes.
func (b *Booking) MarkCancelled() bool {
	if b.Cancelled() {
		return false
	}
	b.Status = BookingStatusCancelled
	if b.Payment.Status == PaymentStatusPaid {
		b.Payment.Status = PaymentStatusRefunded
	}
	return true
}
