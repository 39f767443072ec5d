package flights

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/repository"
	"github.com/Domenick1991/tripsaga/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) FindByTripID(ctx context.Context, tripID domain.TripID) (*domain.Booking, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking, expected domain.BookingStatus) error {
	args := m.Called(ctx, booking, expected)
	return args.Error(0)
}

func newTestService(repo repository.BookingRepository) *FlightService {
	return NewFlightService(repo, WithLogger(slog.New(slog.DiscardHandler)))
}

func sampleDetails() domain.FlightDetails {
	return domain.FlightDetails{
		FlightNumber:  "NH001",
		DepartureTime: "2025-10-01T10:00:00",
		ArrivalTime:   "2025-10-01T18:00:00",
		PriceAmount:   decimal.NewFromInt(50000),
		PriceCurrency: "JPY",
	}
}

func TestFlightService_Reserve_Success(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("Save", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()

	booking, err := service.Reserve(ctx, "t1", sampleDetails())

	require.NoError(t, err)
	assert.Equal(t, domain.ResourceID("flight_for_t1"), booking.ID)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, domain.FlightNumber("NH001"), booking.FlightNumber)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_Reserve_InvalidSchedule(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo)

	details := sampleDetails()
	details.ArrivalTime = "2025-10-01T09:00:00"

	booking, err := service.Reserve(context.Background(), "t1", details)

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrBusinessRule)
	mockRepo.AssertNotCalled(t, "Save")
}

func TestFlightService_Reserve_Duplicate(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	existing, err := domain.NewBooking("t1", sampleDetails())
	require.NoError(t, err)

	mockRepo.On("Save", ctx, mock.Anything).Return(domain.ErrDuplicateResource).Once()
	mockRepo.On("FindByTripID", ctx, domain.TripID("t1")).Return(existing, nil).Once()

	booking, err := service.Reserve(ctx, "t1", sampleDetails())

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrDuplicateResource)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_Reserve_CancelledBooking(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	cancelled, err := domain.NewBooking("t1", sampleDetails())
	require.NoError(t, err)
	cancelled.Cancel()

	mockRepo.On("Save", ctx, mock.Anything).Return(domain.ErrDuplicateResource).Once()
	mockRepo.On("FindByTripID", ctx, domain.TripID("t1")).Return(cancelled, nil).Once()

	booking, err := service.Reserve(ctx, "t1", sampleDetails())

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrBusinessRule)
	assert.NotErrorIs(t, err, domain.ErrDuplicateResource)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestFlightService_Cancel_NoBooking(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("FindByTripID", ctx, domain.TripID("t1")).Return(nil, nil).Once()

	booking, err := service.Cancel(ctx, "t1")

	assert.NoError(t, err)
	assert.Nil(t, booking)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestFlightService_Cancel_UsesCapturedStatus(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	existing, err := domain.NewBooking("t1", sampleDetails())
	require.NoError(t, err)

	mockRepo.On("FindByTripID", ctx, domain.TripID("t1")).Return(existing, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusCancelled
	}), domain.BookingStatusPending).Return(nil).Once()

	booking, err := service.Cancel(ctx, "t1")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_Cancel_OptimisticLock(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	existing, err := domain.NewBooking("t1", sampleDetails())
	require.NoError(t, err)

	mockRepo.On("FindByTripID", ctx, domain.TripID("t1")).Return(existing, nil).Once()
	mockRepo.On("Update", ctx, mock.Anything, domain.BookingStatusPending).Return(domain.ErrOptimisticLock).Once()

	_, err = service.Cancel(ctx, "t1")

	assert.ErrorIs(t, err, domain.ErrOptimisticLock)
	assert.True(t, domain.IsRetryable(err))
}

func TestFlightService_Cancel_RepositoryError(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	expectedErr := domain.Transient(errors.New("connection reset"))
	mockRepo.On("FindByTripID", ctx, domain.TripID("t1")).Return(nil, expectedErr).Once()

	_, err := service.Cancel(ctx, "t1")

	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestFlightService_Confirm_NotFound(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("FindByTripID", ctx, domain.TripID("t1")).Return(nil, nil).Once()

	_, err := service.Confirm(ctx, "t1")

	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestFlightService_Confirm_Cancelled(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	existing, err := domain.NewBooking("t1", sampleDetails())
	require.NoError(t, err)
	existing.Cancel()

	mockRepo.On("FindByTripID", ctx, domain.TripID("t1")).Return(existing, nil).Once()

	_, err = service.Confirm(ctx, "t1")

	assert.ErrorIs(t, err, domain.ErrBusinessRule)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestFlightService_WithMemoryStore(t *testing.T) {
	ctx := context.Background()
	service := newTestService(repository.NewBookingRepository(store.NewMemoryStore()))

	_, err := service.Reserve(ctx, "t1", sampleDetails())
	require.NoError(t, err)

	_, err = service.Reserve(ctx, "t1", sampleDetails())
	assert.ErrorIs(t, err, domain.ErrDuplicateResource)

	confirmed, err := service.Confirm(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, confirmed.Status)

	cancelled, err := service.Cancel(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)

	// A repeated cancel is still a success.
	cancelled, err = service.Cancel(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)

	_, err = service.Reserve(ctx, "t1", sampleDetails())
	assert.ErrorIs(t, err, domain.ErrBusinessRule)
}
