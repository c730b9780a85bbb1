package baggage

import (
	"context"
	"errors"
	"math"

	"github.com/Domenick1991/airlineops/internal/domain"
	"github.com/Domenick1991/airlineops/internal/ident"
	"github.com/Domenick1991/airlineops/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	trackingPrefix   = "BG"
	trackingAttempts = 10

	excessStepKg         = 5.0
	excessStepFeeCents   = 5000
	extraPieceFeeCents   = 3000
	freeWeightFirstKg    = 32.0
	freeWeightBusinessKg = 23.0
	freeWeightEconomyKg  = 20.0
)

type BaggageUseCase interface {
	CheckIn(ctx context.Context, input CheckInInput) (*domain.Baggage, error)
	UpdateStatus(ctx context.Context, trackingNumber string, status domain.BaggageStatus) (*domain.Baggage, error)
	Track(ctx context.Context, trackingNumber string) (*domain.Baggage, error)
	ListByBooking(ctx context.Context, bookingID string) ([]domain.Baggage, error)
}

type BaggageService struct {
	baggage  repository.BaggageRepository
	bookings repository.BookingRepository
	logger   *logrus.Logger
	token    ident.TokenFunc
}

type BaggageServiceOption func(*BaggageService)

// WithTokenFunc overrides the tracking-number token source. Used by tests.
func WithTokenFunc(token ident.TokenFunc) BaggageServiceOption {
	return func(s *BaggageService) {
		s.token = token
	}
}

func NewBaggageService(baggage repository.BaggageRepository, bookings repository.BookingRepository, logger *logrus.Logger, opts ...BaggageServiceOption) *BaggageService {
	service := &BaggageService{
		baggage:  baggage,
		bookings: bookings,
		logger:   logger,
		token:    ident.Base36Token(8),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type CheckInInput struct {
	BookingID   string             `json:"booking_id"`
	Type        domain.BaggageType `json:"type"`
	WeightKg    float64            `json:"weight_kg"`
	Pieces      int                `json:"pieces"`
	Description string             `json:"description"`
}

func (in *CheckInInput) validate() error {
	if in.BookingID == "" {
		return errors.New("booking id is required")
	}
	if !in.Type.Valid() {
		return errors.New("invalid baggage type")
	}
	if in.WeightKg < 0 {
		return errors.New("weight must not be negative")
	}
	if in.Pieces <= 0 {
		in.Pieces = 1
	}
	return nil
}

func (s *BaggageService) CheckIn(ctx context.Context, input CheckInInput) (*domain.Baggage, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByBookingID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}

	trackingNumber, err := ident.Generate(trackingPrefix, s.token, func(candidate string) (bool, error) {
		return s.baggage.ExistsByTrackingNumber(ctx, candidate)
	}, trackingAttempts)
	if err != nil {
		return nil, err
	}

	bag := &domain.Baggage{
		BookingID:      booking.ID,
		PassengerID:    booking.PassengerID,
		FlightID:       booking.FlightID,
		TrackingNumber: trackingNumber,
		Type:           input.Type,
		WeightKg:       input.WeightKg,
		Pieces:         input.Pieces,
		Status:         domain.BaggageStatusChecked,
		FeeCents:       Fee(booking.SeatClass, input.Type, input.WeightKg, input.Pieces),
		Description:    input.Description,
	}
	if err := s.baggage.Create(ctx, bag); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tracking_number": bag.TrackingNumber,
		"booking_id":      booking.BookingID,
		"fee_cents":       bag.FeeCents,
	}).Info("baggage checked in")
	return bag, nil
}

func (s *BaggageService) UpdateStatus(ctx context.Context, trackingNumber string, status domain.BaggageStatus) (*domain.Baggage, error) {
	if !status.Valid() {
		return nil, errors.New("invalid baggage status")
	}
	return s.baggage.UpdateStatus(ctx, trackingNumber, status)
}

func (s *BaggageService) Track(ctx context.Context, trackingNumber string) (*domain.Baggage, error) {
	return s.baggage.GetByTrackingNumber(ctx, trackingNumber)
}

func (s *BaggageService) ListByBooking(ctx context.Context, bookingID string) ([]domain.Baggage, error) {
	booking, err := s.bookings.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.baggage.ListByBooking(ctx, booking.ID)
}

// Fee prices checked baggage: every started 5 kg over the class allowance
// costs $50, every piece past the first $30. Carry-on is free.
func Fee(class domain.SeatClass, bagType domain.BaggageType, weightKg float64, pieces int) int64 {
	if bagType != domain.BaggageTypeChecked {
		return 0
	}
	var fee int64
	excess := weightKg - freeWeight(class)
	if excess > 0 {
		fee += int64(math.Ceil(excess/excessStepKg)) * excessStepFeeCents
	}
	if pieces > 1 {
		fee += int64(pieces-1) * extraPieceFeeCents
	}
	return fee
}

func freeWeight(class domain.SeatClass) float64 {
	switch class {
	case domain.SeatClassFirst:
		return freeWeightFirstKg
	case domain.SeatClassBusiness:
		return freeWeightBusinessKg
	default:
		return freeWeightEconomyKg
	}
}

var _ BaggageUseCase = (*BaggageService)(nil)
