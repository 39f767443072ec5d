package hotels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/repository"
)

type HotelUseCase interface {
	Reserve(ctx context.Context, tripID domain.TripID, details domain.HotelDetails) (*domain.HotelBooking, error)
	Cancel(ctx context.Context, tripID domain.TripID) (*domain.HotelBooking, error)
	Confirm(ctx context.Context, tripID domain.TripID) (*domain.HotelBooking, error)
}

type HotelService struct {
	bookings repository.HotelBookingRepository
	log      *slog.Logger
}

type HotelServiceOption func(*HotelService)

func WithLogger(log *slog.Logger) HotelServiceOption {
	return func(s *HotelService) {
		s.log = log
	}
}

func NewHotelService(bookings repository.HotelBookingRepository, opts ...HotelServiceOption) *HotelService {
	service := &HotelService{
		bookings: bookings,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *HotelService) Reserve(ctx context.Context, tripID domain.TripID, details domain.HotelDetails) (*domain.HotelBooking, error) {
	booking, err := domain.NewHotelBooking(tripID, details)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrDuplicateResource) {
			return nil, s.duplicate(ctx, tripID, err)
		}
		return nil, fmt.Errorf("reserve hotel: %w", err)
	}
	s.log.InfoContext(ctx, "hotel reserved",
		"trip_id", tripID,
		"booking_id", booking.ID,
		"nights", booking.StayPeriod.Nights(),
	)
	return booking, nil
}

// Cancel is a no-op for a trip without a hotel booking.
func (s *HotelService) Cancel(ctx context.Context, tripID domain.TripID) (*domain.HotelBooking, error) {
	booking, err := s.bookings.FindByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		s.log.InfoContext(ctx, "no hotel booking to cancel", "trip_id", tripID)
		return nil, nil
	}

	expected := booking.Status
	booking.Cancel()
	if err := s.bookings.Update(ctx, booking, expected); err != nil {
		return nil, fmt.Errorf("cancel hotel: %w", err)
	}
	s.log.InfoContext(ctx, "hotel booking cancelled", "trip_id", tripID, "booking_id", booking.ID)
	return booking, nil
}

func (s *HotelService) Confirm(ctx context.Context, tripID domain.TripID) (*domain.HotelBooking, error) {
	booking, err := s.bookings.FindByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: no hotel booking for trip %s", domain.ErrResourceNotFound, tripID)
	}

	expected := booking.Status
	if err := booking.Confirm(); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, booking, expected); err != nil {
		return nil, fmt.Errorf("confirm hotel: %w", err)
	}
	return booking, nil
}

// duplicate keeps a canceled stay from being reported as already reserved.
func (s *HotelService) duplicate(ctx context.Context, tripID domain.TripID, dupErr error) error {
	existing, err := s.bookings.FindByTripID(ctx, tripID)
	if err != nil {
		return err
	}
	if existing != nil && !existing.Active() {
		return fmt.Errorf("%w: hotel booking for trip %s is %s", domain.ErrBusinessRule, tripID, existing.Status)
	}
	return fmt.Errorf("reserve hotel: %w", dupErr)
}

var _ HotelUseCase = (*HotelService)(nil)
