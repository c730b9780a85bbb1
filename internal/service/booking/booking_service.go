package booking

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/airlineops/internal/domain"
	"github.com/Domenick1991/airlineops/internal/ident"
	"github.com/Domenick1991/airlineops/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	bookingIDPrefix     = "BKG"
	bookingIDAttempts   = 5
	defaultCurrency     = "USD"
	eventBookingCreated = "booking_created"
	eventBookingUpdated = "booking_updated"
	eventBookingCancel  = "booking_cancelled"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, bookingID string, patch UpdateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
}

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Event mirrors kafka.BookingEvent; redeclared here so the service depends
// only on the Producer interface.
type Event struct {
	Type          string           `json:"type"`
	BookingID     string           `json:"booking_id"`
	FlightID      int64            `json:"flight_id"`
	PassengerID   int64            `json:"passenger_id"`
	SeatClass     domain.SeatClass `json:"seat_class"`
	Status        string           `json:"status"`
	PaymentStatus string           `json:"payment_status"`
	TravelDate    time.Time        `json:"travel_date"`
}

type BookingService struct {
	tx                 repository.Transactor
	ledger             repository.SeatLedger
	bookings           repository.BookingRepository
	cache              Cache
	producer           Producer
	logger             *logrus.Logger
	bookingTopic       string
	notificationsTopic string
	token              ident.TokenFunc
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithTokenFunc overrides the booking-id token source. Used by tests.
func WithTokenFunc(token ident.TokenFunc) BookingServiceOption {
	return func(s *BookingService) {
		s.token = token
	}
}

func NewBookingService(
	tx repository.Transactor,
	ledger repository.SeatLedger,
	bookings repository.BookingRepository,
	cache Cache,
	producer Producer,
	logger *logrus.Logger,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		tx:           tx,
		ledger:       ledger,
		bookings:     bookings,
		cache:        cache,
		producer:     producer,
		logger:       logger,
		bookingTopic: bookingTopic,
		token:        ident.HexToken(6),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type PaymentInput struct {
	AmountCents   int64                `json:"amount"`
	Currency      string               `json:"currency"`
	Status        domain.PaymentStatus `json:"status"`
	Method        domain.PaymentMethod `json:"method"`
	TransactionID string               `json:"transaction_id"`
}

type CreateBookingInput struct {
	FlightID    int64            `json:"flight_id"`
	PassengerID int64            `json:"passenger_id"`
	SeatClass   domain.SeatClass `json:"seat_class"`
	SeatNumber  string           `json:"seat_number"`
	Payment     PaymentInput     `json:"payment"`
	TravelDate  time.Time        `json:"travel_date"`
}

func (in *CreateBookingInput) validate() error {
	if in.FlightID <= 0 {
		return errors.New("flight is required")
	}
	if in.PassengerID <= 0 {
		return errors.New("passenger is required")
	}
	if !in.SeatClass.Valid() {
		return domain.ErrInvalidSeatClass
	}
	if in.Payment.AmountCents < 0 {
		return errors.New("payment amount must not be negative")
	}
	if in.TravelDate.IsZero() {
		return errors.New("travel date is required")
	}
	if in.Payment.Status == "" {
		in.Payment.Status = domain.PaymentStatusPending
	}
	if in.Payment.Status == domain.PaymentStatusRefunded {
		return errors.New("payment cannot start refunded")
	}
	if in.Payment.Method == "" {
		in.Payment.Method = domain.PaymentMethodCard
	}
	if !in.Payment.Method.Valid() {
		return errors.New("invalid payment method")
	}
	if in.Payment.Currency == "" {
		in.Payment.Currency = defaultCurrency
	}
	return nil
}

// CreateBooking reserves a seat and materializes the booking inside one
// transaction. If any step fails nothing is persisted and the ledger
// decrement is rolled back with it.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var created *domain.Booking
	err := s.tx.WithinTx(ctx, func(db repository.DB) error {
		ledger := s.ledger.WithTx(db)
		bookings := s.bookings.WithTx(db)

		if err := ledger.Reserve(ctx, input.FlightID, input.SeatClass); err != nil {
			return err
		}

		bookingID, err := ident.Generate(bookingIDPrefix, s.token, func(candidate string) (bool, error) {
			return bookings.ExistsByBookingID(ctx, candidate)
		}, bookingIDAttempts)
		if err != nil {
			return err
		}

		booking := &domain.Booking{
			BookingID:   bookingID,
			FlightID:    input.FlightID,
			PassengerID: input.PassengerID,
			SeatClass:   input.SeatClass,
			SeatNumber:  input.SeatNumber,
			Status:      domain.BookingStatusConfirmed,
			Payment: domain.Payment{
				AmountCents:   input.Payment.AmountCents,
				Currency:      input.Payment.Currency,
				Status:        input.Payment.Status,
				Method:        input.Payment.Method,
				TransactionID: input.Payment.TransactionID,
			},
			TravelDate: input.TravelDate,
		}
		if err := bookings.Create(ctx, booking); err != nil {
			return err
		}
		created = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFlights(ctx)
	s.publish(ctx, eventBookingCreated, created)
	return created, nil
}

// CancelBooking is idempotent: cancelling a cancelled booking returns it
// unchanged without touching the ledger. Otherwise the status flip and the
// seat release commit together.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	var result *domain.Booking
	released := false
	err := s.tx.WithinTx(ctx, func(db repository.DB) error {
		ledger := s.ledger.WithTx(db)
		bookings := s.bookings.WithTx(db)

		booking, err := bookings.LockByBookingID(ctx, bookingID)
		if err != nil {
			return err
		}
		if !booking.MarkCancelled() {
			result = booking
			return nil
		}
		if err := bookings.Update(ctx, booking); err != nil {
			return err
		}
		clamped, err := ledger.Release(ctx, booking.FlightID, booking.SeatClass)
		if err != nil {
			return err
		}
		if clamped {
			s.logger.WithFields(logrus.Fields{
				"booking_id": booking.BookingID,
				"flight_id":  booking.FlightID,
				"seat_class": booking.SeatClass,
			}).Warn("seat release clamped at total capacity")
		}
		result = booking
		released = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if released {
		s.invalidateFlights(ctx)
		s.publish(ctx, eventBookingCancel, result)
	}
	return result, nil
}

type PaymentPatch struct {
	Status        *domain.PaymentStatus `json:"status"`
	Method        *domain.PaymentMethod `json:"method"`
	TransactionID *string               `json:"transaction_id"`
}

type UpdateBookingInput struct {
	SeatClass  *domain.SeatClass     `json:"seat_class"`
	SeatNumber *string               `json:"seat_number"`
	Status     *domain.BookingStatus `json:"status"`
	Payment    *PaymentPatch         `json:"payment"`
}

// UpdateBooking patches cosmetic and payment fields. Seat class and booking
// status are owned by the ledger and the cancel flow; patches that touch
// them are rejected instead of silently desynchronizing seat counters.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID string, patch UpdateBookingInput) (*domain.Booking, error) {
	var updated *domain.Booking
	err := s.tx.WithinTx(ctx, func(db repository.DB) error {
		bookings := s.bookings.WithTx(db)

		booking, err := bookings.LockByBookingID(ctx, bookingID)
		if err != nil {
			return err
		}
		if patch.SeatClass != nil && *patch.SeatClass != booking.SeatClass {
			return domain.ErrUnsupportedMutation
		}
		if patch.Status != nil && *patch.Status != booking.Status {
			return domain.ErrUnsupportedMutation
		}
		if booking.Cancelled() {
			return domain.ErrUnsupportedMutation
		}

		if patch.SeatNumber != nil {
			booking.SeatNumber = *patch.SeatNumber
		}
		if patch.Payment != nil {
			if err := applyPaymentPatch(&booking.Payment, patch.Payment); err != nil {
				return err
			}
		}
		if err := bookings.Update(ctx, booking); err != nil {
			return err
		}
		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventBookingUpdated, updated)
	return updated, nil
}

func applyPaymentPatch(payment *domain.Payment, patch *PaymentPatch) error {
	if patch.Status != nil {
		if !payment.Status.CanTransitionTo(*patch.Status) {
			return domain.ErrUnsupportedMutation
		}
		if *patch.Status == domain.PaymentStatusPaid && payment.Status != domain.PaymentStatusPaid && payment.TransactionID == "" && patch.TransactionID == nil {
			// Capture without a gateway reference still gets a traceable id.
			payment.TransactionID = uuid.NewString()
		}
		payment.Status = *patch.Status
	}
	if patch.Method != nil {
		if !patch.Method.Valid() {
			return domain.ErrUnsupportedMutation
		}
		payment.Method = *patch.Method
	}
	if patch.TransactionID != nil {
		payment.TransactionID = *patch.TransactionID
	}
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.bookings.GetByBookingID(ctx, bookingID)
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

func (s *BookingService) invalidateFlights(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate flights cache")
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := Event{
		Type:          eventType,
		BookingID:     booking.BookingID,
		FlightID:      booking.FlightID,
		PassengerID:   booking.PassengerID,
		SeatClass:     booking.SeatClass,
		Status:        string(booking.Status),
		PaymentStatus: string(booking.Payment.Status),
		TravelDate:    booking.TravelDate,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.BookingID, event); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.BookingID).Warnf("failed to publish %s event", eventType)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.BookingID, event); err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.BookingID).Warnf("failed to publish %s notification", eventType)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
