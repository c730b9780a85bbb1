package flights

import (
	"context"
	"time"

	"github.com/Domenick1991/airlineops/internal/domain"
	"github.com/Domenick1991/airlineops/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetSeatClass(ctx context.Context, flightID int64, class domain.SeatClass) (*domain.SeatInventory, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
}

type FlightService struct {
	repo     repository.FlightRepository
	ledger   repository.SeatLedger
	cache    FlightCache
	cacheTTL time.Duration
}

func NewFlightService(repo repository.FlightRepository, ledger repository.SeatLedger, cache FlightCache, cacheTTL time.Duration) *FlightService {
	return &FlightService{repo: repo, ledger: ledger, cache: cache, cacheTTL: cacheTTL}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// GetSeatClass reads the live availability counter, bypassing the cache.
func (s *FlightService) GetSeatClass(ctx context.Context, flightID int64, class domain.SeatClass) (*domain.SeatInventory, error) {
	if !class.Valid() {
		return nil, domain.ErrInvalidSeatClass
	}
	return s.ledger.ReadSeatClass(ctx, flightID, class)
}

var _ FlightUseCase = (*FlightService)(nil)
