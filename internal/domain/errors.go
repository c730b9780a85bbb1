package domain

import "errors"

var (
	ErrFlightNotFound   = errors.New("flight not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrBaggageNotFound  = errors.New("baggage not found")
	ErrInvalidSeatClass = errors.New("invalid seat class")

	// ErrCapacityExhausted means the seat class has no available seats left.
	ErrCapacityExhausted = errors.New("no seats available in selected class")

	// ErrUnsupportedMutation rejects patches that would bypass the seat
	// ledger or the booking state machine.
	ErrUnsupportedMutation = errors.New("unsupported booking mutation")

	// ErrTransactionConflict is returned after the coordinator has exhausted
	// its retries on concurrent-write failures. Callers may retry.
	ErrTransactionConflict = errors.New("transaction conflict, retry")

	// ErrGenerationExhausted means the identifier fallback path still
	// collided with an existing identifier at the storage layer.
	ErrGenerationExhausted = errors.New("identifier generation exhausted")
)
