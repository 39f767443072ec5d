package trips

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/repository"
)

type TripUseCase interface {
	GetTrip(ctx context.Context, tripID domain.TripID) (*domain.TripView, error)
	ListTrips(ctx context.Context) ([]domain.TripID, error)
}

// Cache stores composite trip views and the trip list. A miss is reported as
// a nil value with a nil error.
type Cache interface {
	GetTrip(ctx context.Context, tripID domain.TripID) (*domain.TripView, error)
	SetTrip(ctx context.Context, view *domain.TripView) error
	GetTripList(ctx context.Context) ([]domain.TripID, error)
	SetTripList(ctx context.Context, ids []domain.TripID) error
}

type TripService struct {
	repo  repository.TripRepository
	cache Cache
	log   *slog.Logger
}

type TripServiceOption func(*TripService)

func WithCache(cache Cache) TripServiceOption {
	return func(s *TripService) {
		s.cache = cache
	}
}

func WithLogger(log *slog.Logger) TripServiceOption {
	return func(s *TripService) {
		s.log = log
	}
}

func NewTripService(repo repository.TripRepository, opts ...TripServiceOption) *TripService {
	service := &TripService{repo: repo, log: slog.Default()}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// GetTrip assembles the composite view of a trip. A trip without any record
// fails with domain.ErrResourceNotFound.
func (s *TripService) GetTrip(ctx context.Context, tripID domain.TripID) (*domain.TripView, error) {
	if _, err := domain.NewTripID(string(tripID)); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.GetTrip(ctx, tripID)
		if err != nil {
			s.log.WarnContext(ctx, "trip cache read failed", "trip_id", tripID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	records, err := s.repo.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if records.Empty() {
		return nil, fmt.Errorf("%w: trip %s", domain.ErrResourceNotFound, tripID)
	}

	view := &domain.TripView{
		TripID:  tripID,
		Flight:  domain.NewFlightView(records.Flight),
		Hotel:   domain.NewHotelView(records.Hotel),
		Payment: domain.NewPaymentView(records.Payment),
	}
	if s.cache != nil {
		if err := s.cache.SetTrip(ctx, view); err != nil {
			s.log.WarnContext(ctx, "trip cache write failed", "trip_id", tripID, "error", err)
		}
	}
	return view, nil
}

func (s *TripService) ListTrips(ctx context.Context) ([]domain.TripID, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetTripList(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	ids, err := s.repo.ListTripIDs(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetTripList(ctx, ids)
	}
	return ids, nil
}

var _ TripUseCase = (*TripService)(nil)
