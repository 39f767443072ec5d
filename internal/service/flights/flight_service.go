package flights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/repository"
)

type FlightUseCase interface {
	Reserve(ctx context.Context, tripID domain.TripID, details domain.FlightDetails) (*domain.Booking, error)
	Cancel(ctx context.Context, tripID domain.TripID) (*domain.Booking, error)
	Confirm(ctx context.Context, tripID domain.TripID) (*domain.Booking, error)
}

type FlightService struct {
	bookings repository.BookingRepository
	log      *slog.Logger
}

type FlightServiceOption func(*FlightService)

func WithLogger(log *slog.Logger) FlightServiceOption {
	return func(s *FlightService) {
		s.log = log
	}
}

func NewFlightService(bookings repository.BookingRepository, opts ...FlightServiceOption) *FlightService {
	service := &FlightService{
		bookings: bookings,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Reserve creates the trip's PENDING flight booking. A second reservation for
// the same trip fails with domain.ErrDuplicateResource while the first one is
// live, and with domain.ErrBusinessRule once it has been cancelled.
func (s *FlightService) Reserve(ctx context.Context, tripID domain.TripID, details domain.FlightDetails) (*domain.Booking, error) {
	booking, err := domain.NewBooking(tripID, details)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrDuplicateResource) {
			return nil, s.duplicate(ctx, tripID, err)
		}
		return nil, fmt.Errorf("reserve flight: %w", err)
	}
	s.log.InfoContext(ctx, "flight reserved",
		"trip_id", tripID,
		"booking_id", booking.ID,
		"flight_number", booking.FlightNumber,
	)
	return booking, nil
}

// Cancel soft-cancels the trip's flight booking. It succeeds without doing
// anything when the trip has no booking.
func (s *FlightService) Cancel(ctx context.Context, tripID domain.TripID) (*domain.Booking, error) {
	booking, err := s.bookings.FindByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		s.log.InfoContext(ctx, "no flight booking to cancel", "trip_id", tripID)
		return nil, nil
	}

	expected := booking.Status
	booking.Cancel()
	if err := s.bookings.Update(ctx, booking, expected); err != nil {
		return nil, fmt.Errorf("cancel flight: %w", err)
	}
	s.log.InfoContext(ctx, "flight booking cancelled", "trip_id", tripID, "booking_id", booking.ID)
	return booking, nil
}

func (s *FlightService) Confirm(ctx context.Context, tripID domain.TripID) (*domain.Booking, error) {
	booking, err := s.bookings.FindByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: no flight booking for trip %s", domain.ErrResourceNotFound, tripID)
	}

	expected := booking.Status
	if err := booking.Confirm(); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, booking, expected); err != nil {
		return nil, fmt.Errorf("confirm flight: %w", err)
	}
	return booking, nil
}

func (s *FlightService) duplicate(ctx context.Context, tripID domain.TripID, dupErr error) error {
	existing, err := s.bookings.FindByTripID(ctx, tripID)
	if err != nil {
		return err
	}
	if existing != nil && !existing.Active() {
		return fmt.Errorf("%w: flight booking for trip %s is %s", domain.ErrBusinessRule, tripID, existing.Status)
	}
	return fmt.Errorf("reserve flight: %w", dupErr)
}

var _ FlightUseCase = (*FlightService)(nil)
