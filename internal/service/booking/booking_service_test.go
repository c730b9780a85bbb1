package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/airlineops/internal/domain"
	"github.com/Domenick1991/airlineops/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// stubTransactor runs the callback without a real database transaction.
type stubTransactor struct{}

func (stubTransactor) WithinTx(ctx context.Context, fn func(db repository.DB) error) error {
	return fn(nil)
}

// failingTransactor simulates a coordinator that exhausted its retries.
type failingTransactor struct{ err error }

func (t failingTransactor) WithinTx(ctx context.Context, fn func(db repository.DB) error) error {
	return t.err
}

type MockSeatLedger struct {
	mock.Mock
}

func (m *MockSeatLedger) WithTx(db repository.DB) repository.SeatLedger { return m }

func (m *MockSeatLedger) Reserve(ctx context.Context, flightID int64, class domain.SeatClass) error {
	args := m.Called(ctx, flightID, class)
	return args.Error(0)
}

func (m *MockSeatLedger) Release(ctx context.Context, flightID int64, class domain.SeatClass) (bool, error) {
	args := m.Called(ctx, flightID, class)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatLedger) ReadSeatClass(ctx context.Context, flightID int64, class domain.SeatClass) (*domain.SeatInventory, error) {
	args := m.Called(ctx, flightID, class)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatInventory), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) WithTx(db repository.DB) repository.BookingRepository { return m }

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) LockByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ExistsByBookingID(ctx context.Context, bookingID string) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func validInput() CreateBookingInput {
	return CreateBookingInput{
		FlightID:    4,
		PassengerID: 7,
		SeatClass:   domain.SeatClassEconomy,
		Payment:     PaymentInput{AmountCents: 10000},
		TravelDate:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	mockLedger := &MockSeatLedger{}
	mockRepo := &MockBookingRepository{}
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}

	service := NewBookingService(stubTransactor{}, mockLedger, mockRepo, mockCache, mockProducer, testLogger(), "booking_topic",
		WithTokenFunc(func() string { return "ABCDEF123456" }))

	ctx := context.Background()
	input := validInput()

	mockLedger.On("Reserve", ctx, int64(4), domain.SeatClassEconomy).Return(nil).Once()
	mockRepo.On("ExistsByBookingID", ctx, "BKG-ABCDEF123456").Return(false, nil).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	mockCache.On("InvalidateFlights", ctx).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking_topic", "BKG-ABCDEF123456", mock.Anything).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, booking)
	assert.Equal(t, "BKG-ABCDEF123456", booking.BookingID)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, domain.PaymentStatusPending, booking.Payment.Status)
	assert.Equal(t, domain.PaymentMethodCard, booking.Payment.Method)
	assert.Equal(t, "USD", booking.Payment.Currency)

	mockLedger.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_ValidationErrors(t *testing.T) {
	service := NewBookingService(stubTransactor{}, &MockSeatLedger{}, &MockBookingRepository{}, nil, nil, testLogger(), "")

	ctx := context.Background()

	testCases := []struct {
		name   string
		mutate func(*CreateBookingInput)
	}{
		{name: "missing flight", mutate: func(in *CreateBookingInput) { in.FlightID = 0 }},
		{name: "missing passenger", mutate: func(in *CreateBookingInput) { in.PassengerID = 0 }},
		{name: "invalid seat class", mutate: func(in *CreateBookingInput) { in.SeatClass = "PREMIUM" }},
		{name: "negative amount", mutate: func(in *CreateBookingInput) { in.Payment.AmountCents = -1 }},
		{name: "missing travel date", mutate: func(in *CreateBookingInput) { in.TravelDate = time.Time{} }},
		{name: "refunded payment", mutate: func(in *CreateBookingInput) { in.Payment.Status = domain.PaymentStatusRefunded }},
		{name: "invalid payment method", mutate: func(in *CreateBookingInput) { in.Payment.Method = "BARTER" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			booking, err := service.CreateBooking(ctx, input)
			assert.Error(t, err)
			assert.Nil(t, booking)
		})
	}
}

func TestBookingService_CreateBooking_CapacityExhausted(t *testing.T) {
	mockLedger := &MockSeatLedger{}
	mockRepo := &MockBookingRepository{}

	service := NewBookingService(stubTransactor{}, mockLedger, mockRepo, nil, nil, testLogger(), "booking_topic")

	ctx := context.Background()
	mockLedger.On("Reserve", ctx, int64(4), domain.SeatClassEconomy).Return(domain.ErrCapacityExhausted).Once()

	booking, err := service.CreateBooking(ctx, validInput())

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCapacityExhausted)
	assert.Nil(t, booking)

	mockLedger.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestBookingService_CreateBooking_RepositoryError(t *testing.T) {
	mockLedger := &MockSeatLedger{}
	mockRepo := &MockBookingRepository{}

	service := NewBookingService(stubTransactor{}, mockLedger, mockRepo, nil, nil, testLogger(), "booking_topic")

	ctx := context.Background()
	expectedErr := errors.New("database error")

	mockLedger.On("Reserve", ctx, int64(4), domain.SeatClassEconomy).Return(nil).Once()
	mockRepo.On("ExistsByBookingID", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	mockRepo.On("Create", ctx, mock.Anything).Return(expectedErr).Once()

	booking, err := service.CreateBooking(ctx, validInput())

	assert.Error(t, err)
	assert.Equal(t, expectedErr, err)
	assert.Nil(t, booking)

	mockRepo.AssertExpectations(t)
}

func TestBookingService_CreateBooking_TransactionConflict(t *testing.T) {
	service := NewBookingService(failingTransactor{err: domain.ErrTransactionConflict}, &MockSeatLedger{}, &MockBookingRepository{}, nil, nil, testLogger(), "")

	booking, err := service.CreateBooking(context.Background(), validInput())

	assert.ErrorIs(t, err, domain.ErrTransactionConflict)
	assert.Nil(t, booking)
}

func TestBookingService_CancelBooking_Success_RefundsPaid(t *testing.T) {
	mockLedger := &MockSeatLedger{}
	mockRepo := &MockBookingRepository{}
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}

	service := NewBookingService(stubTransactor{}, mockLedger, mockRepo, mockCache, mockProducer, testLogger(), "booking_topic")

	ctx := context.Background()
	existing := &domain.Booking{
		ID:        1,
		BookingID: "BKG-AAA",
		FlightID:  4,
		SeatClass: domain.SeatClassBusiness,
		Status:    domain.BookingStatusConfirmed,
		Payment:   domain.Payment{Status: domain.PaymentStatusPaid},
	}

	mockRepo.On("LockByBookingID", ctx, "BKG-AAA").Return(existing, nil).Once()
	mockRepo.On("Update", ctx, existing).Return(nil).Once()
	mockLedger.On("Release", ctx, int64(4), domain.SeatClassBusiness).Return(false, nil).Once()
	mockCache.On("InvalidateFlights", ctx).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking_topic", "BKG-AAA", mock.Anything).Return(nil).Once()

	booking, err := service.CancelBooking(ctx, "BKG-AAA")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	assert.Equal(t, domain.PaymentStatusRefunded, booking.Payment.Status)

	mockLedger.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_CancelBooking_AlreadyCancelled(t *testing.T) {
	mockLedger := &MockSeatLedger{}
	mockRepo := &MockBookingRepository{}
	mockProducer := &MockProducer{}

	service := NewBookingService(stubTransactor{}, mockLedger, mockRepo, nil, mockProducer, testLogger(), "booking_topic")

	ctx := context.Background()
	existing := &domain.Booking{
		BookingID: "BKG-AAA",
		FlightID:  4,
		SeatClass: domain.SeatClassEconomy,
		Status:    domain.BookingStatusCancelled,
		Payment:   domain.Payment{Status: domain.PaymentStatusRefunded},
	}

	mockRepo.On("LockByBookingID", ctx, "BKG-AAA").Return(existing, nil).Once()

	booking, err := service.CancelBooking(ctx, "BKG-AAA")

	assert.NoError(t, err)
	assert.Equal(t, existing, booking)

	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "Update")
	mockLedger.AssertNotCalled(t, "Release")
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestBookingService_CancelBooking_NotFound(t *testing.T) {
	mockRepo := &MockBookingRepository{}

	service := NewBookingService(stubTransactor{}, &MockSeatLedger{}, mockRepo, nil, nil, testLogger(), "")

	ctx := context.Background()
	mockRepo.On("LockByBookingID", ctx, "BKG-MISSING").Return(nil, domain.ErrBookingNotFound).Once()

	booking, err := service.CancelBooking(ctx, "BKG-MISSING")

	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	assert.Nil(t, booking)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestBookingService_CancelBooking_ClampedRelease(t *testing.T) {
	mockLedger := &MockSeatLedger{}
	mockRepo := &MockBookingRepository{}

	service := NewBookingService(stubTransactor{}, mockLedger, mockRepo, nil, nil, testLogger(), "")

	ctx := context.Background()
	existing := &domain.Booking{
		BookingID: "BKG-AAA",
		FlightID:  4,
		SeatClass: domain.SeatClassEconomy,
		Status:    domain.BookingStatusConfirmed,
		Payment:   domain.Payment{Status: domain.PaymentStatusPending},
	}

	mockRepo.On("LockByBookingID", ctx, "BKG-AAA").Return(existing, nil).Once()
	mockRepo.On("Update", ctx, existing).Return(nil).Once()
	mockLedger.On("Release", ctx, int64(4), domain.SeatClassEconomy).Return(true, nil).Once()

	booking, err := service.CancelBooking(ctx, "BKG-AAA")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	// Cancelled from PENDING: no refund is owed.
	assert.Equal(t, domain.PaymentStatusPending, booking.Payment.Status)

	mockLedger.AssertExpectations(t)
}

func confirmedBooking(payment domain.PaymentStatus) *domain.Booking {
	return &domain.Booking{
		BookingID: "BKG-AAA",
		FlightID:  4,
		SeatClass: domain.SeatClassEconomy,
		Status:    domain.BookingStatusConfirmed,
		Payment:   domain.Payment{Status: payment, Method: domain.PaymentMethodCard},
	}
}

func TestBookingService_UpdateBooking_SeatClassChangeRejected(t *testing.T) {
	mockRepo := &MockBookingRepository{}

	service := NewBookingService(stubTransactor{}, &MockSeatLedger{}, mockRepo, nil, nil, testLogger(), "")

	ctx := context.Background()
	mockRepo.On("LockByBookingID", ctx, "BKG-AAA").Return(confirmedBooking(domain.PaymentStatusPending), nil).Once()

	business := domain.SeatClassBusiness
	booking, err := service.UpdateBooking(ctx, "BKG-AAA", UpdateBookingInput{SeatClass: &business})

	assert.ErrorIs(t, err, domain.ErrUnsupportedMutation)
	assert.Nil(t, booking)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestBookingService_UpdateBooking_StatusChangeRejected(t *testing.T) {
	mockRepo := &MockBookingRepository{}

	service := NewBookingService(stubTransactor{}, &MockSeatLedger{}, mockRepo, nil, nil, testLogger(), "")

	ctx := context.Background()
	mockRepo.On("LockByBookingID", ctx, "BKG-AAA").Return(confirmedBooking(domain.PaymentStatusPending), nil).Once()

	cancelled := domain.BookingStatusCancelled
	booking, err := service.UpdateBooking(ctx, "BKG-AAA", UpdateBookingInput{Status: &cancelled})

	assert.ErrorIs(t, err, domain.ErrUnsupportedMutation)
	assert.Nil(t, booking)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestBookingService_UpdateBooking_CancelledBookingRejected(t *testing.T) {
	mockRepo := &MockBookingRepository{}

	service := NewBookingService(stubTransactor{}, &MockSeatLedger{}, mockRepo, nil, nil, testLogger(), "")

	ctx := context.Background()
	cancelled := confirmedBooking(domain.PaymentStatusPending)
	cancelled.Status = domain.BookingStatusCancelled
	mockRepo.On("LockByBookingID", ctx, "BKG-AAA").Return(cancelled, nil).Once()

	seat := "12A"
	booking, err := service.UpdateBooking(ctx, "BKG-AAA", UpdateBookingInput{SeatNumber: &seat})

	assert.ErrorIs(t, err, domain.ErrUnsupportedMutation)
	assert.Nil(t, booking)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestBookingService_UpdateBooking_PaymentCapture(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockProducer := &MockProducer{}

	service := NewBookingService(stubTransactor{}, &MockSeatLedger{}, mockRepo, nil, mockProducer, testLogger(), "booking_topic")

	ctx := context.Background()
	mockRepo.On("LockByBookingID", ctx, "BKG-AAA").Return(confirmedBooking(domain.PaymentStatusPending), nil).Once()
	mockRepo.On("Update", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking_topic", "BKG-AAA", mock.Anything).Return(nil).Once()

	paid := domain.PaymentStatusPaid
	booking, err := service.UpdateBooking(ctx, "BKG-AAA", UpdateBookingInput{Payment: &PaymentPatch{Status: &paid}})

	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, booking.Payment.Status)
	// A capture without a gateway reference mints one.
	assert.NotEmpty(t, booking.Payment.TransactionID)

	mockRepo.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_UpdateBooking_InvalidPaymentTransition(t *testing.T) {
	mockRepo := &MockBookingRepository{}

	service := NewBookingService(stubTransactor{}, &MockSeatLedger{}, mockRepo, nil, nil, testLogger(), "")

	ctx := context.Background()
	mockRepo.On("LockByBookingID", ctx, "BKG-AAA").Return(confirmedBooking(domain.PaymentStatusPaid), nil).Once()

	pending := domain.PaymentStatusPending
	booking, err := service.UpdateBooking(ctx, "BKG-AAA", UpdateBookingInput{Payment: &PaymentPatch{Status: &pending}})

	assert.ErrorIs(t, err, domain.ErrUnsupportedMutation)
	assert.Nil(t, booking)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestBookingService_UpdateBooking_SeatNumber(t *testing.T) {
	mockRepo := &MockBookingRepository{}

	service := NewBookingService(stubTransactor{}, &MockSeatLedger{}, mockRepo, nil, nil, testLogger(), "")

	ctx := context.Background()
	mockRepo.On("LockByBookingID", ctx, "BKG-AAA").Return(confirmedBooking(domain.PaymentStatusPending), nil).Once()
	mockRepo.On("Update", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()

	seat := "14C"
	booking, err := service.UpdateBooking(ctx, "BKG-AAA", UpdateBookingInput{SeatNumber: &seat})

	assert.NoError(t, err)
	assert.Equal(t, "14C", booking.SeatNumber)

	mockRepo.AssertExpectations(t)
}

// ---------------------------------------------------------------------------
// In-memory fakes for the end-to-end scenario and the race test. The fake
// ledger guards its counters with a mutex, which stands in for the row lock
// the conditional UPDATE takes in postgres.
// ---------------------------------------------------------------------------

type fakeLedger struct {
	mu      sync.Mutex
	total   map[string]int
	free    map[string]int
	clamped int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{total: map[string]int{}, free: map[string]int{}}
}

func classKey(flightID int64, class domain.SeatClass) string {
	return fmt.Sprintf("%d/%s", flightID, class)
}

func (l *fakeLedger) seed(flightID int64, class domain.SeatClass, total, free int) {
	key := classKey(flightID, class)
	l.total[key] = total
	l.free[key] = free
}

func (l *fakeLedger) available(flightID int64, class domain.SeatClass) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.free[classKey(flightID, class)]
}

func (l *fakeLedger) WithTx(db repository.DB) repository.SeatLedger { return l }

func (l *fakeLedger) Reserve(ctx context.Context, flightID int64, class domain.SeatClass) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := classKey(flightID, class)
	if _, ok := l.total[key]; !ok {
		return domain.ErrInvalidSeatClass
	}
	if l.free[key] <= 0 {
		return domain.ErrCapacityExhausted
	}
	l.free[key]--
	return nil
}

func (l *fakeLedger) Release(ctx context.Context, flightID int64, class domain.SeatClass) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := classKey(flightID, class)
	if l.free[key] >= l.total[key] {
		l.clamped++
		return true, nil
	}
	l.free[key]++
	return false, nil
}

func (l *fakeLedger) ReadSeatClass(ctx context.Context, flightID int64, class domain.SeatClass) (*domain.SeatInventory, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := classKey(flightID, class)
	return &domain.SeatInventory{Class: class, TotalSeats: l.total[key], AvailableSeats: l.free[key]}, nil
}

type fakeBookingStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[string]*domain.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: map[string]*domain.Booking{}}
}

func (s *fakeBookingStore) WithTx(db repository.DB) repository.BookingRepository { return s }

func (s *fakeBookingStore) Create(ctx context.Context, b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.BookingID]; ok {
		return domain.ErrGenerationExhausted
	}
	s.nextID++
	b.ID = s.nextID
	clone := *b
	s.bookings[b.BookingID] = &clone
	return nil
}

func (s *fakeBookingStore) GetByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.LockByBookingID(ctx, bookingID)
}

func (s *fakeBookingStore) LockByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (s *fakeBookingStore) ExistsByBookingID(ctx context.Context, bookingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.bookings[bookingID]
	return ok, nil
}

func (s *fakeBookingStore) List(ctx context.Context) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (s *fakeBookingStore) Update(ctx context.Context, b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.BookingID]; !ok {
		return domain.ErrBookingNotFound
	}
	clone := *b
	s.bookings[b.BookingID] = &clone
	return nil
}

// TestBookingService_Scenario walks the full lifecycle on a two-seat
// economy class: two creates drain availability, a third fails, cancelling
// a paid booking refunds it and frees the seat, and a repeated cancel is a
// no-op.
func TestBookingService_Scenario(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeBookingStore()
	ledger.seed(1, domain.SeatClassEconomy, 2, 2)

	service := NewBookingService(stubTransactor{}, ledger, store, nil, nil, testLogger(), "")

	ctx := context.Background()

	input := validInput()
	input.FlightID = 1
	input.PassengerID = 100
	bookingA, err := service.CreateBooking(ctx, input)
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, bookingA.Status)
	assert.Equal(t, domain.PaymentStatusPending, bookingA.Payment.Status)
	assert.Equal(t, 1, ledger.available(1, domain.SeatClassEconomy))

	input.PassengerID = 101
	input.Payment.Status = domain.PaymentStatusPaid
	bookingB, err := service.CreateBooking(ctx, input)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, bookingB.Payment.Status)
	assert.Equal(t, 0, ledger.available(1, domain.SeatClassEconomy))

	input.PassengerID = 102
	_, err = service.CreateBooking(ctx, input)
	assert.ErrorIs(t, err, domain.ErrCapacityExhausted)
	assert.Equal(t, 0, ledger.available(1, domain.SeatClassEconomy))

	cancelled, err := service.CancelBooking(ctx, bookingB.BookingID)
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, domain.PaymentStatusRefunded, cancelled.Payment.Status)
	assert.Equal(t, 1, ledger.available(1, domain.SeatClassEconomy))

	again, err := service.CancelBooking(ctx, bookingB.BookingID)
	assert.NoError(t, err)
	assert.Equal(t, cancelled.Status, again.Status)
	assert.Equal(t, cancelled.Payment.Status, again.Payment.Status)
	assert.Equal(t, 1, ledger.available(1, domain.SeatClassEconomy))
	assert.Zero(t, ledger.clamped)
}

// TestBookingService_CreateCancelRoundTrip verifies create-then-cancel
// restores availability exactly.
func TestBookingService_CreateCancelRoundTrip(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeBookingStore()
	ledger.seed(1, domain.SeatClassFirst, 5, 5)

	service := NewBookingService(stubTransactor{}, ledger, store, nil, nil, testLogger(), "")

	ctx := context.Background()
	input := validInput()
	input.FlightID = 1
	input.SeatClass = domain.SeatClassFirst

	booking, err := service.CreateBooking(ctx, input)
	assert.NoError(t, err)
	assert.Equal(t, 4, ledger.available(1, domain.SeatClassFirst))

	_, err = service.CancelBooking(ctx, booking.BookingID)
	assert.NoError(t, err)
	assert.Equal(t, 5, ledger.available(1, domain.SeatClassFirst))
}

// TestBookingService_ConcurrentCreates_LastSeat fires N concurrent creates
// at a class with a single free seat: exactly one must win, the rest must
// fail with CapacityExhausted, and the counter must never go negative.
func TestBookingService_ConcurrentCreates_LastSeat(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeBookingStore()
	ledger.seed(1, domain.SeatClassEconomy, 10, 1)

	service := NewBookingService(stubTransactor{}, ledger, store, nil, nil, testLogger(), "")

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := validInput()
			input.FlightID = 1
			input.PassengerID = int64(100 + i)
			_, errs[i] = service.CreateBooking(context.Background(), input)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrCapacityExhausted)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, ledger.available(1, domain.SeatClassEconomy))
}

func TestBookingService_GetBooking(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewBookingService(stubTransactor{}, &MockSeatLedger{}, mockRepo, nil, nil, testLogger(), "")

	ctx := context.Background()
	existing := confirmedBooking(domain.PaymentStatusPending)
	mockRepo.On("GetByBookingID", ctx, "BKG-AAA").Return(existing, nil).Once()

	booking, err := service.GetBooking(ctx, "BKG-AAA")

	assert.NoError(t, err)
	assert.Equal(t, existing, booking)
	mockRepo.AssertExpectations(t)
}

func TestBookingService_Publish_NoProducer(t *testing.T) {
	service := NewBookingService(stubTransactor{}, &MockSeatLedger{}, &MockBookingRepository{}, nil, nil, testLogger(), "")

	// Must not panic with no producer and no topic configured.
	service.publish(context.Background(), eventBookingCreated, confirmedBooking(domain.PaymentStatusPending))
}

func TestBookingService_Publish_WithNotifications(t *testing.T) {
	mockProducer := &MockProducer{}

	service := NewBookingService(stubTransactor{}, &MockSeatLedger{}, &MockBookingRepository{}, nil, mockProducer, testLogger(), "booking_topic",
		WithNotificationsTopic("notifications_topic"))

	ctx := context.Background()
	booking := confirmedBooking(domain.PaymentStatusPending)

	mockProducer.On("Publish", ctx, "booking_topic", "BKG-AAA", mock.Anything).Return(nil).Once()
	mockProducer.On("Publish", ctx, "notifications_topic", "BKG-AAA", mock.Anything).Return(nil).Once()

	service.publish(ctx, eventBookingCreated, booking)

	mockProducer.AssertExpectations(t)
}
